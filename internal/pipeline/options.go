package pipeline

import "github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"

// Options carries every knob the engine honors. There are no package-level
// defaults to mutate; callers build Options once and pass it in.
type Options struct {
	// Delimiters are the separators accepted inside one identifier cell.
	Delimiters string
	// GroupBy is the identity key for metric aggregation.
	GroupBy []string
	// DedupeBy is the composite identity key for duplicate removal.
	DedupeBy []string
	// Fields are the aggregated output fields, in order.
	Fields []string
	// Policies resolves each field inside a group.
	Policies PolicyTable
	// Years stamps the published column labels.
	Years Years
	// FallbackURL is the template for derived website values.
	FallbackURL string
	// DedupeWarnFraction is the share of rows the deduplicator may drop
	// before the run carries a data-quality warning.
	DedupeWarnFraction float64
}

// DefaultOptions mirrors the published schema: group metrics by journal name
// plus identifier, dedupe on name plus concatenated identifier set.
func DefaultOptions(years Years) Options {
	return Options{
		Delimiters:         DefaultDelimiters,
		GroupBy:            []string{internal.ColumnJournalName, internal.ColumnIdentifier},
		DedupeBy:           []string{internal.ColumnJournalName, internal.ColumnAllISSNs},
		Fields:             AggregatedFields(),
		Policies:           DefaultPolicies(),
		Years:              years,
		FallbackURL:        DefaultFallbackURL,
		DedupeWarnFraction: 0.2,
	}
}

func (o *Options) fillDefaults() {
	if o.Delimiters == "" {
		o.Delimiters = DefaultDelimiters
	}
	if len(o.GroupBy) == 0 {
		o.GroupBy = []string{internal.ColumnJournalName, internal.ColumnIdentifier}
	}
	if len(o.DedupeBy) == 0 {
		o.DedupeBy = []string{internal.ColumnJournalName, internal.ColumnAllISSNs}
	}
	if len(o.Fields) == 0 {
		o.Fields = AggregatedFields()
	}
	if o.Policies == nil {
		o.Policies = DefaultPolicies()
	}
	if o.FallbackURL == "" {
		o.FallbackURL = DefaultFallbackURL
	}
	if o.DedupeWarnFraction <= 0 {
		o.DedupeWarnFraction = 0.2
	}
}
