// Package export writes analysis results in interchange formats: ESRI ASCII
// grids for single surfaces and GeoJSON for the annotated lattice plus the
// reliable prediction extent.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"spatialrpe/pkg/analysis"
)

// NoData marks cells without a value in ASCII grids.
const NoData = -9999

// WriteASCIIGrid writes one surface of res ("value", "class", ...) as an
// ESRI ASCII grid. Rows are written north to south as the format requires.
func WriteASCIIGrid(w io.Writer, res *analysis.Results, surface string) error {
	values, present, err := res.Surface(surface)
	if err != nil {
		return err
	}
	l := res.Lattice
	if l.Len() != len(values) {
		return fmt.Errorf("lattice has %d cells, surface has %d", l.Len(), len(values))
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\n", l.Cols)
	fmt.Fprintf(bw, "nrows %d\n", l.Rows)
	fmt.Fprintf(bw, "xllcenter %s\n", formatFloat(l.MinLng))
	fmt.Fprintf(bw, "yllcenter %s\n", formatFloat(l.MinLat))
	fmt.Fprintf(bw, "cellsize %s\n", formatFloat(l.Resolution))
	fmt.Fprintf(bw, "NODATA_value %d\n", NoData)

	for row := l.Rows - 1; row >= 0; row-- {
		for col := 0; col < l.Cols; col++ {
			if col > 0 {
				bw.WriteByte(' ')
			}
			i := l.Index(row, col)
			if !present[i] {
				bw.WriteString(strconv.Itoa(NoData))
				continue
			}
			bw.WriteString(formatFloat(values[i]))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteASCIIGridFile writes a surface to path, replacing any existing file.
func WriteASCIIGridFile(path string, res *analysis.Results, surface string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteASCIIGrid(f, res, surface); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
