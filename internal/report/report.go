// Package report renders the Markdown summary written next to the CSV
// artifact after every run.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	md "github.com/nao1215/markdown"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/pipeline"
)

// WriteSummary writes the run summary: headline row counts, per-metric
// missing-value counts, and the collected data-quality warnings.
func WriteSummary(path string, result pipeline.Result, years pipeline.Years) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	specs := pipeline.OutputColumns(years)
	jifLabel := labelFor(specs, internal.ColumnImpactFactor)
	citeScoreLabel := labelFor(specs, internal.ColumnCiteScore)
	publisherLabel := labelFor(specs, internal.ColumnPublisher)

	doc := md.NewMarkdown(f).
		H1("Publishing Metrics Summary Report").LF().
		H2("Summary Statistics").
		BulletList(
			fmt.Sprintf("**Total Journals**: %d", result.Table.Len()),
			fmt.Sprintf("**Unique Publishers**: %d", distinctValues(result, publisherLabel)),
			fmt.Sprintf("**Missing %s**: %d", jifLabel, missingValues(result, jifLabel)),
			fmt.Sprintf("**Missing %s**: %d", citeScoreLabel, missingValues(result, citeScoreLabel)),
			fmt.Sprintf("**Duplicate rows dropped**: %d", result.Stats.DroppedDuplicates),
		).LF().
		H2("Data Quality Warnings")

	counts := result.Warnings.Counts()
	if len(counts) == 0 {
		doc.PlainText("No warnings collected.")
	} else {
		kinds := make([]string, 0, len(counts))
		for kind := range counts {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		rows := make([][]string, 0, len(kinds))
		for _, kind := range kinds {
			rows = append(rows, []string{kind, fmt.Sprintf("%d", counts[pipeline.WarningKind(kind)])})
		}
		doc.Table(md.TableSet{
			Header: []string{"Warning", "Count"},
			Rows:   rows,
		})
	}

	if err := doc.Build(); err != nil {
		return err
	}
	return f.Close()
}

func labelFor(specs []pipeline.ColumnSpec, source string) string {
	for _, s := range specs {
		if s.Source == source {
			return s.Label
		}
	}
	return source
}

func missingValues(result pipeline.Result, label string) int {
	n := 0
	for _, row := range result.Table.Rows {
		if row[label] == pipeline.Sentinel {
			n++
		}
	}
	return n
}

func distinctValues(result pipeline.Result, label string) int {
	seen := map[string]struct{}{}
	for _, row := range result.Table.Rows {
		v, ok := row[label]
		if !ok || v == pipeline.Sentinel {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}
