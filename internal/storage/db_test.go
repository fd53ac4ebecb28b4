package storage

import (
	"path/filepath"
	"testing"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/pipeline"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/table"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testResult() pipeline.Result {
	return pipeline.Result{
		Table: table.New("Journal Name"),
		Warnings: pipeline.Warnings{
			{Kind: pipeline.WarnNoIdentifier, Source: "Journal List", Detail: "journal \"X\" has no usable identifier"},
			{Kind: pipeline.WarnNumericParse, Source: "aggregate", Detail: "bad value"},
		},
		Stats: pipeline.Stats{
			PrimaryRecords:    100,
			JoinRows:          130,
			MergedRows:        130,
			AggregatedRows:    110,
			DroppedDuplicates: 5,
			OutputRows:        105,
		},
	}
}

func TestInsertAndListRuns(t *testing.T) {
	db := openTestDB(t)
	years := pipeline.Years{SCImago: 2023, JCR: 2024, CiteScore: 2024}

	id, err := db.InsertRun("abc123", "/tmp/out.csv", testResult(), years, 42.5)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("run id not assigned")
	}
	if _, err := db.InsertRun("def456", "/tmp/out2.csv", testResult(), years, 17.0); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs: %d", len(runs))
	}
	// Newest first.
	if runs[0].TraceID != "def456" || runs[1].TraceID != "abc123" {
		t.Fatalf("order: %s, %s", runs[0].TraceID, runs[1].TraceID)
	}
	r := runs[1]
	if r.PrimaryRecords != 100 || r.OutputRows != 105 || r.DroppedDuplicates != 5 {
		t.Fatalf("stats: %+v", r)
	}
	if r.WarningCount != 2 {
		t.Fatalf("warning count: %d", r.WarningCount)
	}
	if r.OutputPath != "/tmp/out.csv" {
		t.Fatalf("output path: %q", r.OutputPath)
	}
	if r.DurationMs != 42.5 {
		t.Fatalf("duration: %v", r.DurationMs)
	}
}

func TestListRunsLimit(t *testing.T) {
	db := openTestDB(t)
	years := pipeline.Years{}
	for i := 0; i < 5; i++ {
		if _, err := db.InsertRun("trace", "/tmp/out.csv", testResult(), years, 1); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("runs: %d", len(runs))
	}
}

func TestListWarnings(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertRun("abc123", "/tmp/out.csv", testResult(), pipeline.Years{}, 1)
	if err != nil {
		t.Fatal(err)
	}

	warnings, err := db.ListWarnings(int(id))
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings: %d", len(warnings))
	}
	if warnings[0].Kind != pipeline.WarnNoIdentifier || warnings[1].Kind != pipeline.WarnNumericParse {
		t.Fatalf("kinds: %v, %v", warnings[0].Kind, warnings[1].Kind)
	}
	if warnings[1].Source != "aggregate" {
		t.Fatalf("source: %q", warnings[1].Source)
	}

	none, err := db.ListWarnings(int(id) + 99)
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Fatalf("unexpected warnings for unknown run: %d", len(none))
	}
}
