package export

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

// WriteXLSX writes the table as a single-sheet spreadsheet, same layout as
// the CSV artifact.
func WriteXLSX(t *table.Table, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, col := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, col)
	}
	for r, row := range t.Rows {
		for i, col := range t.Columns {
			v, ok := row[col]
			if !ok {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
