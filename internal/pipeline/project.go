package pipeline

import (
	"fmt"
	"strings"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/util"
)

// Years are the edition years stamped into the published column labels.
type Years struct {
	JournalList int
	SCImago     int
	JCR         int
	CiteScore   int
	CapLink     int
}

// ColumnSpec maps an internal column to its published label.
type ColumnSpec struct {
	Source string
	Label  string
}

// OutputColumns is the published schema, in order. Labels that embed a source
// year are templated from the configured years.
func OutputColumns(y Years) []ColumnSpec {
	return []ColumnSpec{
		{internal.ColumnJournalName, internal.ColumnJournalName},
		{internal.ColumnWebsite, internal.ColumnWebsite},
		{internal.ColumnAllISSNs, "ISSN/s"},
		{internal.ColumnPublisher, internal.ColumnPublisher},
		{internal.ColumnAgreementLink, "Agreement link"},
		{internal.ColumnAgreementType, internal.ColumnAgreementType},
		{internal.ColumnFieldOfResearch, "Field of Research (CAUL)"},
		{internal.ColumnImpactFactor, fmt.Sprintf("JIF (JCR, %d)", y.JCR)},
		{internal.ColumnFiveYearIF, fmt.Sprintf("5-Year JIF (JCR, %d)", y.JCR)},
		{internal.ColumnCiteScore, fmt.Sprintf("CiteScore (Scopus, %d)", y.CiteScore)},
		{internal.ColumnSNIP, fmt.Sprintf("SNIP (Scopus, %d)", y.CiteScore)},
		{internal.ColumnSJR, fmt.Sprintf("SJR (SCImago, %d)", y.SCImago)},
		{internal.ColumnSJRQuartile, fmt.Sprintf("Best SJR Quartile (SCImago, %d)", y.SCImago)},
		{internal.ColumnHIndex, fmt.Sprintf("H-Index (SCImago, %d)", y.SCImago)},
		{internal.ColumnCategories, fmt.Sprintf("Categories (SCImago, %d)", y.SCImago)},
	}
}

// Project subsets and orders the table into the published schema. Columns not
// in the declared list are dropped; declared columns the table never produced
// are filled with the sentinel.
func Project(t *table.Table, specs []ColumnSpec) *table.Table {
	labels := make([]string, len(specs))
	for i, s := range specs {
		labels[i] = s.Label
	}
	out := table.New(labels...)
	for _, row := range t.Rows {
		r := table.Row{}
		for _, s := range specs {
			if v, ok := row[s.Source]; ok {
				r[s.Label] = v
			} else {
				r[s.Label] = Sentinel
			}
		}
		out.Append(r)
	}
	return out
}

// reformatCategories breaks the "; "-delimited subject list onto separate
// lines for the published table. The sentinel passes through untouched.
func reformatCategories(t *table.Table) *table.Table {
	if !t.HasColumn(internal.ColumnCategories) {
		return t
	}
	out := table.New(t.Columns...)
	for _, row := range t.Rows {
		r := row.Clone()
		if v, ok := r[internal.ColumnCategories]; ok && !util.IsSentinel(v) && !util.IsBlank(v) {
			r[internal.ColumnCategories] = strings.ReplaceAll(v, "; ", "\n")
		}
		out.Append(r)
	}
	return out
}
