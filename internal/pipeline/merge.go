package pipeline

import (
	"sync"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

// Secondary is one metric source prepared for merging: already unpivoted to
// one identifier per row, with the columns to carry into the merged table.
type Secondary struct {
	Name   internal.SourceName
	Table  *table.Table
	Fields []string
}

// joinIndex maps identifier to the matching right-side rows, in input order.
type joinIndex map[string][]table.Row

func buildJoinIndex(t *table.Table, key string) joinIndex {
	idx := make(joinIndex, t.Len())
	for _, row := range t.Rows {
		k, ok := row[key]
		if !ok || k == "" {
			continue
		}
		idx[k] = append(idx[k], row)
	}
	return idx
}

// MergeSources left-joins the primary table against every secondary on the
// identifier column. Every primary row survives; a row whose identifier
// matches several rows of one source fans out, one merged row per match.
// Duplicate identifiers inside a source are joined as-is; collapsing them is
// the aggregator's job, not the merger's.
//
// The per-source join indexes are built concurrently and folded in declared
// source order once all of them are ready, so the output is deterministic.
func MergeSources(primary *table.Table, secondaries []Secondary, key string) (*table.Table, error) {
	if !primary.HasColumn(key) {
		return nil, &SchemaError{Source: string(internal.SourceJournalList), Column: key}
	}
	for _, sec := range secondaries {
		if !sec.Table.HasColumn(key) {
			return nil, &SchemaError{Source: string(sec.Name), Column: key}
		}
	}

	indexes := make([]joinIndex, len(secondaries))
	var wg sync.WaitGroup
	for i, sec := range secondaries {
		wg.Add(1)
		go func(i int, sec Secondary) {
			defer wg.Done()
			indexes[i] = buildJoinIndex(sec.Table, key)
		}(i, sec)
	}
	wg.Wait()

	merged := primary
	for i, sec := range secondaries {
		merged = leftJoin(merged, indexes[i], key, sec.Fields, sec.Name.Tag())
	}
	return merged, nil
}

// leftJoin extends every left row with the named fields of its matches,
// fan-out preserved. Colliding column names get the source tag appended so no
// left value is ever overwritten.
func leftJoin(left *table.Table, idx joinIndex, key string, fields []string, tag string) *table.Table {
	rename := map[string]string{}
	columns := append([]string{}, left.Columns...)
	for _, f := range fields {
		if f == key {
			continue
		}
		name := f
		if left.HasColumn(name) {
			name = f + "_" + tag
		}
		rename[f] = name
		columns = append(columns, name)
	}

	out := table.New(columns...)
	for _, row := range left.Rows {
		matches := idx[row[key]]
		if len(matches) == 0 {
			out.Append(row.Clone())
			continue
		}
		for _, match := range matches {
			r := row.Clone()
			for _, f := range fields {
				if f == key {
					continue
				}
				if v, ok := match[f]; ok {
					r[rename[f]] = v
				}
			}
			out.Append(r)
		}
	}
	return out
}

// MergeByKey left-joins extra columns from right onto left using an arbitrary
// key column. Used for the identifier-set and agreement metadata merges that
// run after aggregation.
func MergeByKey(left, right *table.Table, key string, fields []string, tag string) (*table.Table, error) {
	if !left.HasColumn(key) {
		return nil, &SchemaError{Source: "merged", Column: key}
	}
	if !right.HasColumn(key) {
		return nil, &SchemaError{Source: "lookup", Column: key}
	}
	return leftJoin(left, buildJoinIndex(right, key), key, fields, tag), nil
}
