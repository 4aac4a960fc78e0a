package loader

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"spatialrpe/internal/models"
)

// ParseGeoJSON reads a FeatureCollection of Point features. Feature
// properties become sample properties; JSON numbers arrive as float64.
// Features with other geometry types are rejected.
func ParseGeoJSON(data []byte) ([]models.SamplePoint, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	points := make([]models.SamplePoint, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: expected Point geometry, got %T", i, f.Geometry)
		}
		if !finite(pt.X()) || !finite(pt.Y()) {
			return nil, fmt.Errorf("feature %d: non-finite coordinates", i)
		}

		props := make(map[string]any, len(f.Properties))
		for k, v := range f.Properties {
			if v == nil {
				continue
			}
			props[k] = v
		}
		points = append(points, models.SamplePoint{Lat: pt.Y(), Lng: pt.X(), Properties: props})
	}
	return points, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
