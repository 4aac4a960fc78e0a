package loader

import (
	"encoding/csv"
	"fmt"
	"io"

	"spatialrpe/internal/models"
)

// ReadCSV parses comma-separated points with a header row.
func ReadCSV(r io.Reader) ([]models.SamplePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV rows: %w", err)
	}
	return fromRows(header, rows)
}
