package pipeline

import (
	"strings"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/util"
)

// DefaultDelimiters are the token separators accepted inside a single
// identifier cell.
const DefaultDelimiters = ",;/"

// UnpivotIdentifiers expands every column whose name contains "issn" into the
// single canonical identifier column, one row per (record, identifier). Cells
// may hold several delimited tokens; each valid token yields its own row.
// Rows that produce no valid identifier are returned separately so the caller
// can decide whether to keep them (primary source) or drop them with a
// warning (secondary sources).
func UnpivotIdentifiers(t *table.Table, delimiters string) (*table.Table, []table.Row) {
	if delimiters == "" {
		delimiters = DefaultDelimiters
	}

	issnCols := make([]string, 0, 2)
	metaCols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if strings.Contains(strings.ToLower(c), "issn") {
			issnCols = append(issnCols, c)
		} else {
			metaCols = append(metaCols, c)
		}
	}

	out := table.New(append(append([]string{}, metaCols...), internal.ColumnIdentifier)...)
	var orphans []table.Row

	for _, row := range t.Rows {
		identifiers := make([]string, 0, len(issnCols))
		seen := map[string]struct{}{}
		for _, col := range issnCols {
			cell, ok := row[col]
			if !ok {
				continue
			}
			for _, token := range splitTokens(cell, delimiters) {
				issn := util.NormalizeISSN(token)
				if issn == "" {
					continue
				}
				if _, dup := seen[issn]; dup {
					continue
				}
				seen[issn] = struct{}{}
				identifiers = append(identifiers, issn)
			}
		}

		meta := table.Row{}
		for _, col := range metaCols {
			if v, ok := row[col]; ok {
				meta[col] = v
			}
		}

		if len(identifiers) == 0 {
			orphans = append(orphans, meta)
			continue
		}
		for _, issn := range identifiers {
			r := meta.Clone()
			r[internal.ColumnIdentifier] = issn
			out.Append(r)
		}
	}

	return out, orphans
}

func splitTokens(cell, delimiters string) []string {
	fields := strings.FieldsFunc(cell, func(r rune) bool {
		return strings.ContainsRune(delimiters, r)
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
