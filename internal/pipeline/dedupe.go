package pipeline

import (
	"strings"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

// Dedupe keeps one row per composite identity key, first-encountered wins.
// The number of dropped rows is returned so callers can surface it; a dropped
// row is lossy and must never disappear silently.
func Dedupe(t *table.Table, key []string) (*table.Table, int, error) {
	for _, col := range key {
		if !t.HasColumn(col) {
			return nil, 0, &SchemaError{Source: "aggregated", Column: col}
		}
	}

	out := table.New(t.Columns...)
	seen := map[string]struct{}{}
	dropped := 0
	for _, row := range t.Rows {
		parts := make([]string, len(key))
		for i, col := range key {
			parts[i] = row[col]
		}
		id := strings.Join(parts, groupSep)
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		out.Append(row)
	}
	return out, dropped, nil
}
