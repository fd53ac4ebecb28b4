package pipeline

import "fmt"

// SchemaError reports a column that a join key or policy needs but an input
// table does not carry. It aborts the run before any merging happens.
type SchemaError struct {
	Source string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("source %q is missing required column %q", e.Source, e.Column)
}

// PolicyError reports an output field that is projected without a declared
// aggregation policy. It is raised at configuration validation, never while
// rows are being processed.
type PolicyError struct {
	Field string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("output field %q has no aggregation policy", e.Field)
}

// WarningKind classifies a non-fatal data-quality finding.
type WarningKind string

const (
	WarnNoIdentifier  WarningKind = "no_identifier"
	WarnNumericParse  WarningKind = "numeric_parse"
	WarnDedupeDropped WarningKind = "dedupe_dropped"
	WarnMissingName   WarningKind = "missing_name"
)

// Warning is one recovered data-quality issue. The row it concerns has been
// excluded, substituted, or coerced; the warning only records that it happened.
type Warning struct {
	Kind   WarningKind
	Source string
	Detail string
}

// Warnings collects the findings of a run.
type Warnings []Warning

// Counts returns the number of warnings per kind.
func (w Warnings) Counts() map[WarningKind]int {
	out := map[WarningKind]int{}
	for _, warning := range w {
		out[warning.Kind]++
	}
	return out
}
