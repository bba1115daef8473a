package loader

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
)

// LoadCSV reads a CSV file through the same column-selection and row-dropping
// pipeline as LoadWorkbook. The Sheet field of the request is ignored.
func LoadCSV(req Request, logger *slog.Logger) (*Loaded, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return buildSeries(req, rows, logger)
}
