package loaders

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

// ReadTable parses one delimited-text or spreadsheet file into a table. The
// first row is the header. For spreadsheets the named sheet is read, or the
// first sheet when the name is empty.
func ReadTable(path, sheet string) (*table.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return readCSV(path)
	case ".xlsx", ".xls":
		return readXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
}

func readCSV(path string) (*table.Table, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(strings.NewReader(string(blob)))
	reader.Comma = sniffDelimiter(string(blob))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if len(records) == 0 {
		return table.New(), nil
	}
	return fromRecords(records), nil
}

// sniffDelimiter counts candidate separators on the header line.
func sniffDelimiter(sample string) rune {
	line := sample
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(line, string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func readXLSX(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return table.New(), nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheet, filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return table.New(), nil
	}
	return fromRecords(rows), nil
}

func fromRecords(records [][]string) *table.Table {
	header := records[0]
	columns := make([]string, 0, len(header))
	colIdx := make([]int, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		columns = append(columns, h)
		colIdx = append(colIdx, i)
	}

	t := table.New(columns...)
	for _, record := range records[1:] {
		row := table.Row{}
		empty := true
		for j, i := range colIdx {
			if i >= len(record) {
				continue
			}
			row[columns[j]] = record[i]
			if strings.TrimSpace(record[i]) != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		t.Append(row)
	}
	return t
}

// ConcatFolder reads every csv/xlsx file in a folder (non-recursive, sorted
// by name) into one table, tagging each row with the file stem in the Source
// column. Unreadable files are skipped with a warning; they never abort the
// load.
func ConcatFolder(dir, sheet string, log zerolog.Logger) (*table.Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx", ".xls":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := table.New(internal.ColumnSourceFile)
	loaded := 0
	for _, name := range names {
		part, err := ReadTable(filepath.Join(dir, name), sheet)
		if err != nil {
			log.Warn().Str("file", name).Err(err).Msg("skipping unreadable source file")
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		for _, col := range part.Columns {
			out.EnsureColumn(col)
		}
		for _, row := range part.Rows {
			r := row.Clone()
			r[internal.ColumnSourceFile] = stem
			out.Append(r)
		}
		loaded++
	}
	if loaded == 0 {
		log.Info().Str("dir", dir).Msg("no readable files in source folder")
	}
	return out, nil
}
