package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/pipeline"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

func reportFixture() pipeline.Result {
	t := table.New("Journal Name", "Publisher Name", "JIF (JCR, 2024)", "CiteScore (Scopus, 2024)")
	t.Append(table.Row{
		"Journal Name": "Alpha", "Publisher Name": "Pub A",
		"JIF (JCR, 2024)": "2.5", "CiteScore (Scopus, 2024)": pipeline.Sentinel,
	})
	t.Append(table.Row{
		"Journal Name": "Beta", "Publisher Name": "Pub A",
		"JIF (JCR, 2024)": pipeline.Sentinel, "CiteScore (Scopus, 2024)": "3.4",
	})
	return pipeline.Result{
		Table: t,
		Warnings: pipeline.Warnings{
			{Kind: pipeline.WarnNoIdentifier, Source: "Journal List", Detail: "x"},
			{Kind: pipeline.WarnNoIdentifier, Source: "SCImago", Detail: "y"},
			{Kind: pipeline.WarnMissingName, Source: "fallback", Detail: "z"},
		},
		Stats: pipeline.Stats{DroppedDuplicates: 3},
	}
}

func testYears() pipeline.Years {
	return pipeline.Years{SCImago: 2023, JCR: 2024, CiteScore: 2024}
}

func TestWriteSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_report.md")
	if err := WriteSummary(path, reportFixture(), testYears()); err != nil {
		t.Fatal(err)
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(blob)

	for _, want := range []string{
		"# Publishing Metrics Summary Report",
		"## Summary Statistics",
		"**Total Journals**: 2",
		"**Unique Publishers**: 1",
		"**Missing JIF (JCR, 2024)**: 1",
		"**Missing CiteScore (Scopus, 2024)**: 1",
		"**Duplicate rows dropped**: 3",
		"## Data Quality Warnings",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}

	// The warning table counts by kind.
	found := false
	for _, line := range strings.Split(got, "\n") {
		if strings.Contains(line, string(pipeline.WarnNoIdentifier)) && strings.Contains(line, "2") {
			found = true
		}
	}
	if !found {
		t.Errorf("summary missing warning row:\n%s", got)
	}
}

func TestWriteSummaryNoWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_report.md")
	result := reportFixture()
	result.Warnings = nil

	if err := WriteSummary(path, result, testYears()); err != nil {
		t.Fatal(err)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(blob), "No warnings collected.") {
		t.Fatalf("summary:\n%s", blob)
	}
}
