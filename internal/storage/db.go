// Package storage records run history in a local SQLite database so the
// observability numbers (stage row counts, dedup drops, warnings) survive the
// process.
package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/La-Trobe-University-Library/open-access-publishing-metrics-pipeline/internal/pipeline"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  outputPath TEXT NOT NULL,
  primaryRecords INTEGER NOT NULL,
  joinRows INTEGER NOT NULL,
  mergedRows INTEGER NOT NULL,
  aggregatedRows INTEGER NOT NULL,
  droppedDuplicates INTEGER NOT NULL,
  outputRows INTEGER NOT NULL,
  warningCount INTEGER NOT NULL,
  durationMs REAL NOT NULL,
  yearsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS warnings (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId INTEGER NOT NULL,
  kind TEXT NOT NULL,
  source TEXT NOT NULL,
  detail TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(runId) REFERENCES runs(id)
);
CREATE INDEX IF NOT EXISTS idx_warnings_runId ON warnings(runId);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertRun records one finished run and its warnings, returning the run id.
func (d *DB) InsertRun(traceID, outputPath string, result pipeline.Result, years pipeline.Years, durationMs float64) (int64, error) {
	yearsJSON, err := json.Marshal(years)
	if err != nil {
		return 0, err
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
INSERT INTO runs (
  traceId, outputPath, primaryRecords, joinRows, mergedRows,
  aggregatedRows, droppedDuplicates, outputRows, warningCount, durationMs, yearsJson
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		traceID, outputPath,
		result.Stats.PrimaryRecords, result.Stats.JoinRows, result.Stats.MergedRows,
		result.Stats.AggregatedRows, result.Stats.DroppedDuplicates, result.Stats.OutputRows,
		len(result.Warnings), durationMs, string(yearsJSON),
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO warnings (runId, kind, source, detail) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, w := range result.Warnings {
		if _, err := stmt.Exec(runID, string(w.Kind), w.Source, w.Detail); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// RunRecord is one row of run history.
type RunRecord struct {
	ID                int
	TraceID           string
	OutputPath        string
	PrimaryRecords    int
	OutputRows        int
	DroppedDuplicates int
	WarningCount      int
	DurationMs        float64
	CreatedAt         string
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, traceId, outputPath, primaryRecords, outputRows, droppedDuplicates, warningCount, durationMs, createdAt
FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.TraceID, &r.OutputPath, &r.PrimaryRecords, &r.OutputRows,
			&r.DroppedDuplicates, &r.WarningCount, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListWarnings returns the warnings recorded for one run.
func (d *DB) ListWarnings(runID int) ([]pipeline.Warning, error) {
	rows, err := d.conn.Query(`SELECT kind, source, detail FROM warnings WHERE runId = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pipeline.Warning
	for rows.Next() {
		var kind, source, detail string
		if err := rows.Scan(&kind, &source, &detail); err != nil {
			return nil, err
		}
		out = append(out, pipeline.Warning{Kind: pipeline.WarningKind(kind), Source: source, Detail: detail})
	}
	return out, rows.Err()
}
