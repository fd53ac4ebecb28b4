package pipeline

import (
	"testing"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

func TestOutputColumnsYearLabels(t *testing.T) {
	specs := OutputColumns(Years{SCImago: 2023, JCR: 2024, CiteScore: 2024})

	want := map[string]string{
		internal.ColumnImpactFactor: "JIF (JCR, 2024)",
		internal.ColumnFiveYearIF:   "5-Year JIF (JCR, 2024)",
		internal.ColumnCiteScore:    "CiteScore (Scopus, 2024)",
		internal.ColumnSNIP:         "SNIP (Scopus, 2024)",
		internal.ColumnSJR:          "SJR (SCImago, 2023)",
		internal.ColumnSJRQuartile:  "Best SJR Quartile (SCImago, 2023)",
		internal.ColumnHIndex:       "H-Index (SCImago, 2023)",
		internal.ColumnCategories:   "Categories (SCImago, 2023)",
		internal.ColumnAllISSNs:     "ISSN/s",
	}
	got := map[string]string{}
	for _, s := range specs {
		got[s.Source] = s.Label
	}
	for source, label := range want {
		if got[source] != label {
			t.Fatalf("%s: got %q want %q", source, got[source], label)
		}
	}
}

func TestProjectOrdersAndFills(t *testing.T) {
	in := table.New(internal.ColumnJournalName, internal.ColumnSJR, "Scratch Column")
	in.Append(table.Row{
		internal.ColumnJournalName: "Journal A",
		internal.ColumnSJR:         "1.5",
		"Scratch Column":           "drop me",
	})

	out := Project(in, OutputColumns(Years{SCImago: 2023, JCR: 2024, CiteScore: 2024}))

	if out.Columns[0] != internal.ColumnJournalName {
		t.Fatalf("first column is %q", out.Columns[0])
	}
	for _, c := range out.Columns {
		if c == "Scratch Column" {
			t.Fatal("undeclared column must be dropped")
		}
	}
	row := out.Rows[0]
	if row["SJR (SCImago, 2023)"] != "1.5" {
		t.Fatalf("metric not carried: %v", row)
	}
	// Declared but never produced: sentinel.
	if row["JIF (JCR, 2024)"] != Sentinel {
		t.Fatalf("absent column must be sentinel-filled, got %q", row["JIF (JCR, 2024)"])
	}
}

func TestReformatCategories(t *testing.T) {
	in := table.New(internal.ColumnCategories)
	in.Append(table.Row{internal.ColumnCategories: "Oncology; Immunology"})
	in.Append(table.Row{internal.ColumnCategories: Sentinel})

	out := reformatCategories(in)
	if got := out.Rows[0][internal.ColumnCategories]; got != "Oncology\nImmunology" {
		t.Fatalf("got %q", got)
	}
	if got := out.Rows[1][internal.ColumnCategories]; got != Sentinel {
		t.Fatalf("sentinel must pass through, got %q", got)
	}
}
