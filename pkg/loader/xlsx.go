package loader

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"spatialrpe/internal/models"
)

// ReadXLSX parses points from the first sheet of an Excel workbook. The
// first row is the header.
func ReadXLSX(r io.Reader) ([]models.SamplePoint, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}
	return fromRows(rows[0], rows[1:])
}
