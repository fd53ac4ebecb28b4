// Package pipeline implements the merge-aggregate-deduplicate engine that
// reconciles journal records from the eligibility list and the citation
// metric feeds into one analysis-ready table.
//
// Stages run synchronously in a fixed order: normalize, merge, aggregate,
// dedupe, fallback, project. Each stage consumes an immutable table and
// produces a new one. Structural problems (missing columns, undeclared
// policies) abort the run; data-quality issues are recovered locally and
// returned as warnings next to the result.
package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/util"
)

// Inputs are the fully materialized tables the engine reconciles. Primary and
// secondary tables arrive as loaded, identifier columns still pivoted; the
// engine normalizes them itself. CapLink is optional agreement metadata keyed
// by cleaned agreement label.
type Inputs struct {
	Primary     *table.Table
	Secondaries []Secondary
	CapLink     *table.Table
}

// Stats counts rows at each stage boundary.
type Stats struct {
	PrimaryRecords    int
	JoinRows          int
	MergedRows        int
	AggregatedRows    int
	DroppedDuplicates int
	OutputRows        int
}

// Result is the reconciled table plus everything the caller needs for
// observability.
type Result struct {
	Table    *table.Table
	Warnings Warnings
	Stats    Stats
}

// Engine runs the reconciliation. Safe for sequential reuse; it holds no
// state across runs.
type Engine struct {
	opts Options
	log  zerolog.Logger
}

// NewEngine validates nothing yet; structural validation happens at the start
// of Run so that per-run option overrides are covered too.
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	opts.fillDefaults()
	return &Engine{opts: opts, log: log}
}

// Run executes the full pipeline. The output is deterministic for identical
// inputs and options: identical tables in, byte-identical table out.
func (e *Engine) Run(in Inputs) (Result, error) {
	var res Result

	if err := e.opts.Policies.Validate(e.opts.Fields); err != nil {
		return res, err
	}
	if err := ValidateFallbackTemplate(e.opts.FallbackURL); err != nil {
		return res, err
	}
	if in.Primary == nil || !in.Primary.HasColumn(internal.ColumnJournalName) {
		return res, &SchemaError{Source: string(internal.SourceJournalList), Column: internal.ColumnJournalName}
	}
	res.Stats.PrimaryRecords = in.Primary.Len()

	// Normalize: one identifier per row. Primary records without a usable
	// identifier stay in the pipeline with a blank identifier; secondary rows
	// without one cannot be joined and are dropped.
	primary, orphans := UnpivotIdentifiers(in.Primary, e.opts.Delimiters)
	for _, orphan := range orphans {
		r := orphan.Clone()
		r[internal.ColumnIdentifier] = ""
		primary.Append(r)
		res.Warnings = append(res.Warnings, Warning{
			Kind:   WarnNoIdentifier,
			Source: string(internal.SourceJournalList),
			Detail: fmt.Sprintf("journal %q has no usable identifier", orphan[internal.ColumnJournalName]),
		})
	}
	primary = withNameKey(primary)
	res.Stats.JoinRows = primary.Len()
	e.log.Info().Int("records", res.Stats.PrimaryRecords).Int("join_rows", res.Stats.JoinRows).Msg("normalized primary source")

	secondaries := make([]Secondary, 0, len(in.Secondaries))
	for _, sec := range in.Secondaries {
		normalized, dropped := UnpivotIdentifiers(sec.Table, e.opts.Delimiters)
		for range dropped {
			res.Warnings = append(res.Warnings, Warning{
				Kind:   WarnNoIdentifier,
				Source: string(sec.Name),
				Detail: "row dropped: no usable identifier",
			})
		}
		e.log.Info().Str("source", string(sec.Name)).Int("join_rows", normalized.Len()).Int("dropped", len(dropped)).Msg("normalized secondary source")
		secondaries = append(secondaries, Secondary{Name: sec.Name, Table: normalized, Fields: sec.Fields})
	}

	// Merge: left-outer, fan-out preserved.
	merged, err := MergeSources(primary, secondaries, internal.ColumnIdentifier)
	if err != nil {
		return res, err
	}
	res.Stats.MergedRows = merged.Len()
	e.log.Info().Int("rows", merged.Len()).Msg("merged sources")

	// Aggregate metrics to one row per identity key.
	agg, warnings, err := Aggregate(merged, e.opts.GroupBy, e.opts.Fields, e.opts.Policies)
	if err != nil {
		return res, err
	}
	res.Warnings = append(res.Warnings, warnings...)
	agg = withNameKey(agg)
	res.Stats.AggregatedRows = agg.Len()
	e.log.Info().Int("rows", agg.Len()).Msg("aggregated journal groups")

	// Concatenate the identifier set per cleaned name and join it back on.
	issnSets, warnings, err := aggregateIdentifierSets(merged, e.opts.Policies)
	if err != nil {
		return res, err
	}
	res.Warnings = append(res.Warnings, warnings...)
	agg, err = MergeByKey(agg, issnSets, internal.ColumnNameKey, []string{internal.ColumnAllISSNs}, "ISSN")
	if err != nil {
		return res, err
	}

	// Agreement metadata joins on the cleaned agreement key.
	agg = withAgreementKey(agg)
	if in.CapLink != nil && in.CapLink.HasColumn(internal.ColumnAgreementKey) {
		agg, err = e.mergeAgreements(agg, in.CapLink)
		if err != nil {
			return res, err
		}
	} else if in.CapLink != nil {
		e.log.Warn().Msg("agreement metadata has no agreement key column, merge skipped")
	}

	// Dedupe on the configured identity key, first row wins.
	deduped, dropped, err := Dedupe(agg, e.opts.DedupeBy)
	if err != nil {
		return res, err
	}
	res.Stats.DroppedDuplicates = dropped
	e.log.Info().Int("before", agg.Len()).Int("after", deduped.Len()).Int("dropped", dropped).Msg("deduplicated output")
	if agg.Len() > 0 && float64(dropped) > e.opts.DedupeWarnFraction*float64(agg.Len()) {
		res.Warnings = append(res.Warnings, Warning{
			Kind:   WarnDedupeDropped,
			Source: "dedupe",
			Detail: fmt.Sprintf("dropped %d of %d rows", dropped, agg.Len()),
		})
	}

	// Fallback: derived website for rows without one.
	resolved, warnings := applyWebsiteFallback(deduped, e.opts.FallbackURL)
	res.Warnings = append(res.Warnings, warnings...)

	// Project into the published schema.
	out := Project(reformatCategories(resolved), OutputColumns(e.opts.Years))
	res.Stats.OutputRows = out.Len()
	res.Table = out
	e.log.Info().Int("rows", out.Len()).Int("warnings", len(res.Warnings)).Msg("pipeline complete")
	return res, nil
}

// withNameKey returns a copy of the table with the cleaned journal name
// recomputed for every row.
func withNameKey(t *table.Table) *table.Table {
	out := table.New(t.Columns...)
	out.EnsureColumn(internal.ColumnNameKey)
	for _, row := range t.Rows {
		r := row.Clone()
		r[internal.ColumnNameKey] = util.CleanJournalName(r[internal.ColumnJournalName])
		out.Append(r)
	}
	return out
}

// withAgreementKey recomputes the agreement join key from the aggregated
// agreement label so the key cleaning matches the metadata side exactly.
func withAgreementKey(t *table.Table) *table.Table {
	out := table.New(t.Columns...)
	out.EnsureColumn(internal.ColumnAgreementKey)
	for _, row := range t.Rows {
		r := row.Clone()
		agreement := r[internal.ColumnAgreement]
		if util.IsBlank(agreement) || util.IsSentinel(agreement) {
			r[internal.ColumnAgreementKey] = Sentinel
		} else {
			r[internal.ColumnAgreementKey] = util.CleanAgreementKey(agreement)
		}
		out.Append(r)
	}
	return out
}

// aggregateIdentifierSets builds the (name key, concatenated identifiers)
// lookup from the merged table.
func aggregateIdentifierSets(merged *table.Table, policies PolicyTable) (*table.Table, Warnings, error) {
	src := table.New(internal.ColumnNameKey, internal.ColumnAllISSNs)
	for _, row := range merged.Rows {
		r := table.Row{internal.ColumnNameKey: row[internal.ColumnNameKey]}
		if v, ok := row[internal.ColumnIdentifier]; ok && v != "" {
			r[internal.ColumnAllISSNs] = v
		}
		src.Append(r)
	}
	return Aggregate(src, []string{internal.ColumnNameKey}, []string{internal.ColumnAllISSNs}, policies)
}

// mergeAgreements joins the deduplicated agreement metadata columns onto the
// aggregated table.
func (e *Engine) mergeAgreements(agg, capLink *table.Table) (*table.Table, error) {
	fields := []string{
		internal.ColumnAgreementType,
		internal.ColumnAgreementLink,
		internal.ColumnPublisherData,
		internal.ColumnCapStats,
	}
	present := make([]string, 0, len(fields))
	for _, f := range fields {
		if capLink.HasColumn(f) {
			present = append(present, f)
		}
	}

	dedupeBy := append([]string{internal.ColumnAgreementKey}, present...)
	lookup, dropped, err := Dedupe(capLink, dedupeBy)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		e.log.Debug().Int("dropped", dropped).Msg("collapsed duplicate agreement metadata rows")
	}
	return MergeByKey(agg, lookup, internal.ColumnAgreementKey, present, internal.SourceCapLink.Tag())
}
