package pipeline

import (
	"fmt"
	"strings"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/util"
)

// groupSep joins group-key parts; it never occurs in cleaned values.
const groupSep = "\x1f"

// Aggregate collapses the merged table to one row per identity key. GroupBy
// columns must exist in the input; every field must have a policy. Groups are
// emitted in first-seen order and values are resolved in row order, so the
// result is deterministic for a fixed input ordering.
func Aggregate(t *table.Table, groupBy []string, fields []string, policies PolicyTable) (*table.Table, Warnings, error) {
	for _, col := range groupBy {
		if !t.HasColumn(col) {
			return nil, nil, &SchemaError{Source: "merged", Column: col}
		}
	}
	if err := policies.Validate(fields); err != nil {
		return nil, nil, err
	}

	type group struct {
		key  table.Row
		rows []table.Row
	}
	order := make([]string, 0, t.Len())
	groups := map[string]*group{}

	for _, row := range t.Rows {
		parts := make([]string, len(groupBy))
		key := table.Row{}
		for i, col := range groupBy {
			parts[i] = row[col]
			if v, ok := row[col]; ok {
				key[col] = v
			}
		}
		id := strings.Join(parts, groupSep)
		g, ok := groups[id]
		if !ok {
			g = &group{key: key}
			groups[id] = g
			order = append(order, id)
		}
		g.rows = append(g.rows, row)
	}

	out := table.New(append(append([]string{}, groupBy...), fields...)...)
	var warnings Warnings

	for _, id := range order {
		g := groups[id]
		row := g.key.Clone()
		for _, field := range fields {
			value, ws := resolveField(g.rows, field, policies[field])
			row[field] = value
			warnings = append(warnings, ws...)
		}
		out.Append(row)
	}

	return out, warnings, nil
}

func resolveField(rows []table.Row, field string, policy FieldPolicy) (string, Warnings) {
	switch policy.Kind {
	case Concatenate:
		return concatValues(rows, field, policy.Delimiter), nil
	case NumericReduce:
		return reduceValues(rows, field, policy.Op)
	default:
		return firstNonBlank(rows, field), nil
	}
}

// firstNonBlank returns the first value in group order that is non-missing
// and non-blank after trimming, or the sentinel.
func firstNonBlank(rows []table.Row, field string) string {
	for _, row := range rows {
		v, ok := row[field]
		if ok && !util.IsBlank(v) {
			return v
		}
	}
	return Sentinel
}

// concatValues joins all distinct non-blank values in first-seen order.
// Duplicates are removed by exact string match.
func concatValues(rows []table.Row, field, delimiter string) string {
	if delimiter == "" {
		delimiter = "; "
	}
	seen := map[string]struct{}{}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		v, ok := row[field]
		if !ok || util.IsBlank(v) {
			continue
		}
		v = strings.TrimSpace(v)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	if len(values) == 0 {
		return Sentinel
	}
	return strings.Join(values, delimiter)
}

// reduceValues parses the numeric candidates and reduces them. Values that
// fail to parse are excluded and reported; a group with no numeric value
// yields the sentinel.
func reduceValues(rows []table.Row, field string, op ReduceOp) (string, Warnings) {
	var warnings Warnings
	var nums []float64
	for _, row := range rows {
		v, ok := row[field]
		if !ok || util.IsBlank(v) || util.IsSentinel(v) {
			continue
		}
		n, ok := util.ParseNumber(v)
		if !ok {
			warnings = append(warnings, Warning{
				Kind:   WarnNumericParse,
				Source: field,
				Detail: fmt.Sprintf("value %q is not numeric", v),
			})
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return Sentinel, warnings
	}

	var result float64
	switch op {
	case ReduceMax:
		result = nums[0]
		for _, n := range nums[1:] {
			if n > result {
				result = n
			}
		}
	case ReduceSum, ReduceMean:
		for _, n := range nums {
			result += n
		}
		if op == ReduceMean {
			result /= float64(len(nums))
		}
	}
	return util.FormatNumber(result), warnings
}
