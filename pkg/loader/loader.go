// Package loader reads sample points from CSV, GeoJSON and Excel files.
//
// Tabular formats need a header row. Latitude and longitude columns are
// found by name (see LatColumns and LngColumns); every other column becomes
// a property. Cells that parse as numbers are stored as float64, the rest
// as trimmed strings, and empty cells are omitted.
package loader

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"spatialrpe/internal/models"
)

// Header names recognised as coordinates, compared case-insensitively.
var (
	LatColumns = []string{"lat", "latitude", "y"}
	LngColumns = []string{"lng", "lon", "long", "longitude", "x"}
)

// Load reads points from path, choosing the format from the extension:
// .csv, .geojson/.json or .xlsx.
func Load(path string) ([]models.SamplePoint, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".geojson", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		return ParseGeoJSON(data)
	case ".xlsx":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
}

// fromRows converts a header row plus data rows into sample points.
// Row numbers in errors are 1-based and count the header.
func fromRows(header []string, rows [][]string) ([]models.SamplePoint, error) {
	latCol, lngCol := -1, -1
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(h)
		key := strings.ToLower(names[i])
		if latCol < 0 && contains(LatColumns, key) {
			latCol = i
			continue
		}
		if lngCol < 0 && contains(LngColumns, key) {
			lngCol = i
		}
	}
	if latCol < 0 || lngCol < 0 {
		return nil, fmt.Errorf("header %v has no latitude/longitude columns", header)
	}

	points := make([]models.SamplePoint, 0, len(rows))
	for r, row := range rows {
		if blank(row) {
			continue
		}
		lat, err := coordinate(row, latCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: latitude: %w", r+2, err)
		}
		lng, err := coordinate(row, lngCol)
		if err != nil {
			return nil, fmt.Errorf("row %d: longitude: %w", r+2, err)
		}

		props := make(map[string]any, len(header))
		for c, name := range names {
			if c == latCol || c == lngCol || c >= len(row) || name == "" {
				continue
			}
			if v, ok := cellValue(row[c]); ok {
				props[name] = v
			}
		}
		points = append(points, models.SamplePoint{Lat: lat, Lng: lng, Properties: props})
	}
	return points, nil
}

func coordinate(row []string, col int) (float64, error) {
	if col >= len(row) {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", row[col])
	}
	return v, nil
}

// cellValue converts a raw cell: numbers become float64, other text stays a
// string. Empty cells report ok == false.
func cellValue(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return v, true
	}
	return s, true
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
