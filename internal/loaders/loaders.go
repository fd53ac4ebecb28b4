// Package loaders reads the five metadata feeds from their input folders and
// hands the engine fully materialized tables. All format handling (delimiter
// sniffing, sheet selection, folder concatenation) stays here; the engine
// never touches files.
package loaders

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/pipeline"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/util"
)

// Input folder names, one per feed.
const (
	FolderJournalList = "Journal List (CAUL)"
	FolderSCImago     = "SCImago (Scopus)"
	FolderJCR         = "Journal Citation Reports (JCR)"
	FolderCiteScore   = "CiteScore (Elsevier)"
	FolderCapLink     = "Cap and Link (CAUL)"
)

// Loader reads feeds relative to one input root.
type Loader struct {
	root              string
	sheet             string
	eligibilityColumn string
	log               zerolog.Logger
}

// New creates a loader. Sheet may be empty (first sheet per file); the
// eligibility column is the journal-list column holding the Y/N subscription
// flag.
func New(root, sheet, eligibilityColumn string, log zerolog.Logger) *Loader {
	return &Loader{root: root, sheet: sheet, eligibilityColumn: eligibilityColumn, log: log}
}

// JournalList loads the primary eligibility feed: concatenates the folder,
// filters to eligible journals, trims the descriptive fields, and drops exact
// duplicate rows. Identifier columns stay pivoted; the engine normalizes them.
// The journal name column must be present in the feed itself: it is the
// grouping and dedup key, and a synthesized empty one would collapse every
// journal into a single blank-named group downstream.
func (l *Loader) JournalList() (*table.Table, error) {
	t, err := ConcatFolder(filepath.Join(l.root, FolderJournalList), l.sheet, l.log)
	if err != nil {
		return nil, err
	}

	if !t.HasColumn(internal.ColumnJournalName) {
		return nil, &pipeline.SchemaError{
			Source: string(internal.SourceJournalList),
			Column: internal.ColumnJournalName,
		}
	}

	optional := []string{
		internal.ColumnJournalType,
		internal.ColumnWebsite,
		internal.ColumnPublisher,
		internal.ColumnAgreement,
		internal.ColumnFieldOfResearch,
	}
	for _, col := range optional {
		t.EnsureColumn(col)
	}

	if t.HasColumn(l.eligibilityColumn) {
		t = filterEligible(t, l.eligibilityColumn)
	} else if t.Len() > 0 {
		l.log.Warn().Str("column", l.eligibilityColumn).Msg("eligibility column not found, keeping all journals")
	}
	t = trimColumns(t, internal.ColumnJournalName, internal.ColumnAgreement)
	t = dropDuplicates(t)
	l.log.Info().Int("rows", t.Len()).Msg("loaded journal list")
	return t, nil
}

// Secondaries loads the three citation metric feeds, each paired with the
// fields it contributes to the merged table.
func (l *Loader) Secondaries() ([]pipeline.Secondary, error) {
	specs := []struct {
		name   internal.SourceName
		folder string
		fields []string
	}{
		{internal.SourceSCImago, FolderSCImago, []string{
			internal.ColumnSJR,
			internal.ColumnSJRQuartile,
			internal.ColumnHIndex,
			internal.ColumnCategories,
		}},
		{internal.SourceJCR, FolderJCR, []string{
			internal.ColumnImpactFactor,
			internal.ColumnFiveYearIF,
		}},
		{internal.SourceCiteScore, FolderCiteScore, []string{
			internal.ColumnCiteScore,
			internal.ColumnSNIP,
		}},
	}

	out := make([]pipeline.Secondary, 0, len(specs))
	for _, spec := range specs {
		t, err := ConcatFolder(filepath.Join(l.root, spec.folder), l.sheet, l.log)
		if err != nil {
			return nil, err
		}
		for _, col := range spec.fields {
			t.EnsureColumn(col)
		}
		t = dropDuplicates(t)
		l.log.Info().Str("source", string(spec.name)).Int("rows", t.Len()).Msg("loaded metric source")
		out = append(out, pipeline.Secondary{Name: spec.name, Table: t, Fields: spec.fields})
	}
	return out, nil
}

// CapLink loads the agreement metadata feed and stamps each row with its
// cleaned agreement join key. Returns an empty table when the folder is
// absent; the feed is optional.
func (l *Loader) CapLink() (*table.Table, error) {
	dir := filepath.Join(l.root, FolderCapLink)
	t, err := ConcatFolder(dir, l.sheet, l.log)
	if err != nil {
		l.log.Info().Str("dir", dir).Msg("agreement metadata folder missing, merge skipped")
		return table.New(), nil
	}
	if !t.HasColumn(internal.ColumnAgreement) {
		if t.Len() > 0 {
			l.log.Warn().Msg("agreement metadata has no agreement column, merge skipped")
		}
		return table.New(), nil
	}

	out := table.New(t.Columns...)
	out.EnsureColumn(internal.ColumnAgreementKey)
	for _, row := range t.Rows {
		r := row.Clone()
		r[internal.ColumnAgreementKey] = util.CleanAgreementKey(r[internal.ColumnAgreement])
		out.Append(r)
	}
	l.log.Info().Int("rows", out.Len()).Msg("loaded agreement metadata")
	return out, nil
}

// filterEligible keeps rows whose eligibility flag is Y, case-insensitive.
func filterEligible(t *table.Table, column string) *table.Table {
	out := table.New(t.Columns...)
	for _, row := range t.Rows {
		if strings.EqualFold(strings.TrimSpace(row[column]), "Y") {
			out.Append(row)
		}
	}
	return out
}

func trimColumns(t *table.Table, columns ...string) *table.Table {
	out := table.New(t.Columns...)
	for _, row := range t.Rows {
		r := row.Clone()
		for _, col := range columns {
			if v, ok := r[col]; ok {
				r[col] = strings.TrimSpace(v)
			}
		}
		out.Append(r)
	}
	return out
}

// dropDuplicates removes rows identical across all declared columns.
func dropDuplicates(t *table.Table) *table.Table {
	out := table.New(t.Columns...)
	seen := map[string]struct{}{}
	for _, row := range t.Rows {
		var b strings.Builder
		for _, col := range t.Columns {
			if v, ok := row[col]; ok {
				b.WriteString(v)
			}
			b.WriteByte('\x1f')
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out.Append(row)
	}
	return out
}
