// Package export writes the reconciled table to its published artifacts.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

// WriteCSV writes the table as comma-delimited text, header first, columns in
// declared order. Missing cells are written empty.
func WriteCSV(t *table.Table, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
