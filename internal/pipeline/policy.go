package pipeline

import (
	"fmt"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
)

// Sentinel marks a field for which no source row supplied a qualifying value.
const Sentinel = "N/A"

// PolicyKind selects how a field is resolved inside a journal group.
type PolicyKind string

const (
	// FirstNonBlank returns the first non-blank value in merge order.
	FirstNonBlank PolicyKind = "first_non_blank"
	// Concatenate joins all distinct non-blank values in first-seen order.
	Concatenate PolicyKind = "concatenate"
	// NumericReduce reduces the parseable numeric values with Op.
	NumericReduce PolicyKind = "numeric_reduce"
)

// ReduceOp is the reduction applied by NumericReduce.
type ReduceOp string

const (
	ReduceMean ReduceOp = "mean"
	ReduceMax  ReduceOp = "max"
	ReduceSum  ReduceOp = "sum"
)

// FieldPolicy is the tagged policy variant for one output field.
type FieldPolicy struct {
	Kind PolicyKind
	// Op is required when Kind is NumericReduce.
	Op ReduceOp
	// Delimiter joins concatenated values; "; " when empty.
	Delimiter string
}

// PolicyTable maps each declared output field to its policy.
type PolicyTable map[string]FieldPolicy

// Validate checks the table itself and that every projected field is covered.
// Both failures are structural and abort the run before row processing.
func (p PolicyTable) Validate(projected []string) error {
	for field, policy := range p {
		switch policy.Kind {
		case FirstNonBlank, Concatenate:
		case NumericReduce:
			switch policy.Op {
			case ReduceMean, ReduceMax, ReduceSum:
			default:
				return fmt.Errorf("field %q: unknown reduce op %q", field, policy.Op)
			}
		default:
			return fmt.Errorf("field %q: unknown policy kind %q", field, policy.Kind)
		}
	}
	for _, field := range projected {
		if _, ok := p[field]; !ok {
			return &PolicyError{Field: field}
		}
	}
	return nil
}

// DefaultPolicies is the policy table for the published schema: every metric
// and descriptive field takes the first non-blank value in merge order, the
// identifier set is concatenated.
func DefaultPolicies() PolicyTable {
	p := PolicyTable{
		internal.ColumnFiveYearIF:      {Kind: FirstNonBlank},
		internal.ColumnImpactFactor:    {Kind: FirstNonBlank},
		internal.ColumnSJR:             {Kind: FirstNonBlank},
		internal.ColumnHIndex:          {Kind: FirstNonBlank},
		internal.ColumnSNIP:            {Kind: FirstNonBlank},
		internal.ColumnCiteScore:       {Kind: FirstNonBlank},
		internal.ColumnSJRQuartile:     {Kind: FirstNonBlank},
		internal.ColumnCategories:      {Kind: FirstNonBlank},
		internal.ColumnWebsite:         {Kind: FirstNonBlank},
		internal.ColumnFieldOfResearch: {Kind: FirstNonBlank},
		internal.ColumnPublisher:       {Kind: FirstNonBlank},
		internal.ColumnAgreement:       {Kind: FirstNonBlank},
		internal.ColumnAgreementKey:    {Kind: FirstNonBlank},
		internal.ColumnAllISSNs:        {Kind: Concatenate, Delimiter: ", "},
	}
	return p
}

// AggregatedFields lists the fields resolved by the metric aggregation pass,
// in output order. The identifier set is aggregated separately on the cleaned
// name and is not part of this list.
func AggregatedFields() []string {
	return []string{
		internal.ColumnFiveYearIF,
		internal.ColumnImpactFactor,
		internal.ColumnSJR,
		internal.ColumnHIndex,
		internal.ColumnSNIP,
		internal.ColumnCiteScore,
		internal.ColumnSJRQuartile,
		internal.ColumnCategories,
		internal.ColumnWebsite,
		internal.ColumnFieldOfResearch,
		internal.ColumnPublisher,
		internal.ColumnAgreement,
		internal.ColumnAgreementKey,
	}
}
