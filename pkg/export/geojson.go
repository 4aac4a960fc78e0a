package export

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"spatialrpe/pkg/analysis"
	"spatialrpe/pkg/geometry"
)

// FeatureCollection builds one Point feature per grid cell carrying its
// annotations, followed by the reliable prediction extent as a Polygon
// feature when the samples enclose any area.
func FeatureCollection(res *analysis.Results) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, c := range res.Cells {
		f := geojson.NewFeature(orb.Point{c.Lng, c.Lat})
		f.Properties["kind"] = "cell"
		f.Properties["value"] = c.Value
		if c.Class != nil {
			f.Properties["class"] = *c.Class
		}
		if c.Accuracy != nil {
			f.Properties["accuracy"] = *c.Accuracy
		}
		if c.Residual != nil {
			f.Properties["residual"] = *c.Residual
		}
		if c.Uncertainty != nil {
			f.Properties["uncertainty"] = *c.Uncertainty
		}
		if c.Reliable != nil {
			f.Properties["reliable"] = *c.Reliable
		}
		fc.Append(f)
	}

	if !geometry.Degenerate(res.RPEPolygon) {
		f := geojson.NewFeature(orb.Polygon{res.RPEPolygon})
		f.Properties["kind"] = "rpe"
		f.Properties["method"] = res.RPEMethod
		f.Properties["reliableCells"] = res.ReliableCells
		fc.Append(f)
	}

	return fc
}

// WriteGeoJSONFile writes FeatureCollection(res) to path.
func WriteGeoJSONFile(path string, res *analysis.Results) error {
	data, err := FeatureCollection(res).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding GeoJSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
