package pipeline

import (
	"errors"
	"testing"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

func TestAggregateFirstNonBlank(t *testing.T) {
	in := table.New(internal.ColumnJournalName, internal.ColumnJournalType)
	// missing, blank, then a value: the value wins.
	in.Append(table.Row{internal.ColumnJournalName: "Journal A"})
	in.Append(table.Row{internal.ColumnJournalName: "Journal A", internal.ColumnJournalType: ""})
	in.Append(table.Row{internal.ColumnJournalName: "Journal A", internal.ColumnJournalType: "Hybrid"})
	// missing and blank only: sentinel.
	in.Append(table.Row{internal.ColumnJournalName: "Journal B"})
	in.Append(table.Row{internal.ColumnJournalName: "Journal B", internal.ColumnJournalType: ""})

	policies := PolicyTable{internal.ColumnJournalType: {Kind: FirstNonBlank}}
	out, warnings, err := Aggregate(in, []string{internal.ColumnJournalName}, []string{internal.ColumnJournalType}, policies)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", out.Len())
	}
	if got := out.Rows[0][internal.ColumnJournalType]; got != "Hybrid" {
		t.Fatalf("got %q want Hybrid", got)
	}
	if got := out.Rows[1][internal.ColumnJournalType]; got != Sentinel {
		t.Fatalf("got %q want sentinel", got)
	}
}

func TestAggregateConcatenate(t *testing.T) {
	in := table.New(internal.ColumnNameKey, internal.ColumnSJRQuartile)
	for _, v := range []string{"Q1", "Q1", "Q2"} {
		in.Append(table.Row{internal.ColumnNameKey: "JOURNAL A", internal.ColumnSJRQuartile: v})
	}

	policies := PolicyTable{internal.ColumnSJRQuartile: {Kind: Concatenate}}
	out, _, err := Aggregate(in, []string{internal.ColumnNameKey}, []string{internal.ColumnSJRQuartile}, policies)
	if err != nil {
		t.Fatal(err)
	}
	// Order preserved, exact duplicates removed.
	if got := out.Rows[0][internal.ColumnSJRQuartile]; got != "Q1; Q2" {
		t.Fatalf("got %q want %q", got, "Q1; Q2")
	}
}

func TestAggregateConcatenateCustomDelimiter(t *testing.T) {
	in := table.New(internal.ColumnNameKey, internal.ColumnAllISSNs)
	in.Append(table.Row{internal.ColumnNameKey: "J", internal.ColumnAllISSNs: "1111-2222"})
	in.Append(table.Row{internal.ColumnNameKey: "J", internal.ColumnAllISSNs: "3333-4444"})

	policies := PolicyTable{internal.ColumnAllISSNs: {Kind: Concatenate, Delimiter: ", "}}
	out, _, err := Aggregate(in, []string{internal.ColumnNameKey}, []string{internal.ColumnAllISSNs}, policies)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Rows[0][internal.ColumnAllISSNs]; got != "1111-2222, 3333-4444" {
		t.Fatalf("got %q", got)
	}
}

func TestAggregateNumericReduce(t *testing.T) {
	cases := []struct {
		name   string
		op     ReduceOp
		values []string
		want   string
	}{
		{name: "mean", op: ReduceMean, values: []string{"1.0", "2.0", "3.0"}, want: "2"},
		{name: "max", op: ReduceMax, values: []string{"1.5", "4.25", "2.0"}, want: "4.25"},
		{name: "sum", op: ReduceSum, values: []string{"1", "2", "3"}, want: "6"},
		{name: "non-numeric excluded", op: ReduceMax, values: []string{"n.d.", "2,5"}, want: "2.5"},
		{name: "all unusable", op: ReduceMean, values: []string{"", "N/A"}, want: Sentinel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := table.New(internal.ColumnNameKey, internal.ColumnCiteScore)
			for _, v := range tc.values {
				in.Append(table.Row{internal.ColumnNameKey: "J", internal.ColumnCiteScore: v})
			}
			policies := PolicyTable{internal.ColumnCiteScore: {Kind: NumericReduce, Op: tc.op}}
			out, warnings, err := Aggregate(in, []string{internal.ColumnNameKey}, []string{internal.ColumnCiteScore}, policies)
			if err != nil {
				t.Fatal(err)
			}
			if got := out.Rows[0][internal.ColumnCiteScore]; got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if tc.name == "non-numeric excluded" && len(warnings) != 1 {
				t.Fatalf("expected a numeric parse warning, got %v", warnings)
			}
		})
	}
}

func TestAggregateGroupOrderIsStable(t *testing.T) {
	in := table.New(internal.ColumnJournalName, internal.ColumnPublisher)
	in.Append(table.Row{internal.ColumnJournalName: "Zeta", internal.ColumnPublisher: "P1"})
	in.Append(table.Row{internal.ColumnJournalName: "Alpha", internal.ColumnPublisher: "P2"})
	in.Append(table.Row{internal.ColumnJournalName: "Zeta", internal.ColumnPublisher: "P3"})

	policies := PolicyTable{internal.ColumnPublisher: {Kind: FirstNonBlank}}
	out, _, err := Aggregate(in, []string{internal.ColumnJournalName}, []string{internal.ColumnPublisher}, policies)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows[0][internal.ColumnJournalName] != "Zeta" || out.Rows[1][internal.ColumnJournalName] != "Alpha" {
		t.Fatal("groups must be emitted in first-seen order")
	}
	if out.Rows[0][internal.ColumnPublisher] != "P1" {
		t.Fatal("first-non-blank must follow row order")
	}
}

func TestAggregateUndeclaredFieldFailsFast(t *testing.T) {
	in := table.New(internal.ColumnJournalName, internal.ColumnSJR)
	in.Append(table.Row{internal.ColumnJournalName: "J", internal.ColumnSJR: "1"})

	_, _, err := Aggregate(in, []string{internal.ColumnJournalName}, []string{internal.ColumnSJR}, PolicyTable{})
	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if policyErr.Field != internal.ColumnSJR {
		t.Fatalf("wrong field: %q", policyErr.Field)
	}
}

func TestAggregateMissingGroupColumn(t *testing.T) {
	in := table.New(internal.ColumnSJR)
	_, _, err := Aggregate(in, []string{internal.ColumnJournalName}, nil, PolicyTable{})
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestPolicyTableValidate(t *testing.T) {
	bad := PolicyTable{"X": {Kind: NumericReduce, Op: "median"}}
	if err := bad.Validate(nil); err == nil {
		t.Fatal("expected error for unknown reduce op")
	}
	bad = PolicyTable{"X": {Kind: "pick"}}
	if err := bad.Validate(nil); err == nil {
		t.Fatal("expected error for unknown policy kind")
	}
	good := DefaultPolicies()
	if err := good.Validate(AggregatedFields()); err != nil {
		t.Fatalf("default policies must cover aggregated fields: %v", err)
	}
}
