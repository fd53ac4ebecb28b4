package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/config"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/export"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/loaders"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/logging"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/pipeline"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/report"
	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	must(cfg.Require("RP_DB_PATH", cfg.DBPath))
	log := logging.New(cfg.LogLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		inputRoot := fs.String("input-root", "", "root folder containing the data subfolders")
		out := fs.String("out", "", "output CSV path")
		xlsxOut := fs.String("xlsx", "", "optional output XLSX path")
		sheet := fs.String("sheet", cfg.SheetName, "Excel sheet name to read from")
		journalListYear := fs.Int("journal-list-year", 0, "year for Journal List (CAUL)")
		scimagoYear := fs.Int("scimago-year", 0, "year for SCImago (Scopus)")
		jcrYear := fs.Int("jcr-year", 0, "year for JCR")
		citescoreYear := fs.Int("citescore-year", 0, "year for CiteScore (Elsevier)")
		caplinkYear := fs.Int("caplink-year", 0, "year for Cap and Link (CAUL)")
		_ = fs.Parse(os.Args[2:])

		if strings.TrimSpace(*inputRoot) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--input-root and --out are required"))
		}
		if *scimagoYear == 0 || *jcrYear == 0 || *citescoreYear == 0 {
			must(fmt.Errorf("--scimago-year, --jcr-year and --citescore-year are required"))
		}
		if _, err := os.Stat(*inputRoot); err != nil {
			must(fmt.Errorf("input root not found: %s", *inputRoot))
		}

		years := pipeline.Years{
			JournalList: *journalListYear,
			SCImago:     *scimagoYear,
			JCR:         *jcrYear,
			CiteScore:   *citescoreYear,
			CapLink:     *caplinkYear,
		}
		opts := pipeline.DefaultOptions(years)
		opts.Delimiters = cfg.IdentifierDelims
		opts.FallbackURL = cfg.FallbackURL
		opts.DedupeWarnFraction = cfg.DedupeWarnFraction

		start := time.Now()
		loader := loaders.New(*inputRoot, *sheet, cfg.EligibilityColumn, log)
		primary, err := loader.JournalList()
		must(err)
		secondaries, err := loader.Secondaries()
		must(err)
		capLink, err := loader.CapLink()
		must(err)

		engine := pipeline.NewEngine(opts, log)
		result, err := engine.Run(pipeline.Inputs{
			Primary:     primary,
			Secondaries: secondaries,
			CapLink:     capLink,
		})
		must(err)

		must(export.WriteCSV(result.Table, *out))
		if strings.TrimSpace(*xlsxOut) != "" {
			must(export.WriteXLSX(result.Table, *xlsxOut))
		}
		summaryPath := filepath.Join(filepath.Dir(*out), "summary_report.md")
		must(report.WriteSummary(summaryPath, result, years))

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		runID, err := db.InsertRun(traceID(), *out, result, years, float64(time.Since(start).Milliseconds()))
		must(err)

		fmt.Printf("run %d done: %d journals, %d duplicates dropped, %d warnings, output=%s\n",
			runID, result.Stats.OutputRows, result.Stats.DroppedDuplicates, len(result.Warnings), *out)
	case "runs:list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 10, "max runs to show")
		withWarnings := fs.Bool("warnings", false, "print each run's recorded warnings")
		_ = fs.Parse(os.Args[2:])

		db, err := storage.Open(cfg.DBPath)
		must(err)
		defer db.Close()
		runs, err := db.ListRuns(*limit)
		must(err)
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return
		}
		for _, r := range runs {
			fmt.Printf("#%d %s journals=%d dropped=%d warnings=%d %.0fms %s\n",
				r.ID, r.CreatedAt, r.OutputRows, r.DroppedDuplicates, r.WarningCount, r.DurationMs, r.OutputPath)
			if !*withWarnings || r.WarningCount == 0 {
				continue
			}
			warnings, err := db.ListWarnings(r.ID)
			must(err)
			for _, w := range warnings {
				fmt.Printf("    [%s] %s: %s\n", w.Kind, w.Source, w.Detail)
			}
		}
	default:
		usage()
		os.Exit(1)
	}
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

func usage() {
	fmt.Println("usage: rppipeline <command>")
	fmt.Println("commands:")
	fmt.Println("  run --input-root=... --out=...csv [--xlsx=...xlsx] [--sheet=...]")
	fmt.Println("      --scimago-year=N --jcr-year=N --citescore-year=N")
	fmt.Println("      [--journal-list-year=N] [--caplink-year=N]")
	fmt.Println("  runs:list [--limit=10] [--warnings]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
