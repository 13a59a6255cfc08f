// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed search runs in a local SQLite
// database so past queries and their per-source outcomes can be reviewed.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litsearch/pkg/types"
)

const dbFile = "history.db"

// Run is one stored search run.
type Run struct {
	ID                int64     `json:"id" yaml:"id"`
	Query             string    `json:"query" yaml:"query"`
	StartedAt         time.Time `json:"started_at" yaml:"started_at"`
	ElapsedMS         int64     `json:"elapsed_ms" yaml:"elapsed_ms"`
	SourcesQueried    int       `json:"sources_queried" yaml:"sources_queried"`
	SuccessfulSources int       `json:"successful_sources" yaml:"successful_sources"`
	RawRecords        int       `json:"raw_records" yaml:"raw_records"`
	AfterDedup        int       `json:"after_dedup" yaml:"after_dedup"`
	Returned          int       `json:"returned" yaml:"returned"`
	DupByDOI          int       `json:"dup_by_doi" yaml:"dup_by_doi"`
	DupByPMID         int       `json:"dup_by_pmid" yaml:"dup_by_pmid"`
	DupByTrialID      int       `json:"dup_by_trial_id" yaml:"dup_by_trial_id"`
	DupByTitleAuthor  int       `json:"dup_by_title_author" yaml:"dup_by_title_author"`

	// Sources is populated by GetRun only.
	Sources []RunSource `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// RunSource is the stored outcome of one source within a run.
type RunSource struct {
	SourceName  string `json:"source" yaml:"source"`
	RecordCount int    `json:"record_count" yaml:"record_count"`
	Error       string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Store manages the history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at dir/history.db and
// prepares the schema.
func Open(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = ".litsearch"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			started_at TEXT NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			sources_queried INTEGER NOT NULL,
			successful_sources INTEGER NOT NULL,
			raw_records INTEGER NOT NULL,
			after_dedup INTEGER NOT NULL,
			returned INTEGER NOT NULL,
			dup_by_doi INTEGER NOT NULL,
			dup_by_pmid INTEGER NOT NULL,
			dup_by_trial_id INTEGER NOT NULL,
			dup_by_title_author INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_sources (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source_name TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, source_name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores the accounting of one completed search along with the
// per-source envelopes. Returns the new run's id.
func (s *Store) RecordRun(ctx context.Context, stats types.RunStats, envelopes map[string]types.SourceEnvelope) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query, started_at, elapsed_ms, sources_queried,
			successful_sources, raw_records, after_dedup, returned,
			dup_by_doi, dup_by_pmid, dup_by_trial_id, dup_by_title_author)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.Query, stats.StartedAt.UTC().Format(time.RFC3339Nano),
		stats.Elapsed.Milliseconds(), stats.SourcesQueried,
		stats.SuccessfulSources, stats.RawRecords, stats.AfterDedup,
		stats.Returned, stats.Dedup.ByDOI, stats.Dedup.ByPMID,
		stats.Dedup.ByTrialID, stats.Dedup.ByTitleAuthor,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_sources (run_id, source_name, record_count, error)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing source insert: %w", err)
	}
	defer stmt.Close()

	for name, env := range envelopes {
		if _, err := stmt.ExecContext(ctx, runID, name, env.RecordCount, env.Error); err != nil {
			return 0, fmt.Errorf("inserting source %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first, without per-source
// detail. limit <= 0 means 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, started_at, elapsed_ms, sources_queried,
			successful_sources, raw_records, after_dedup, returned,
			dup_by_doi, dup_by_pmid, dup_by_trial_id, dup_by_title_author
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun returns one run with its per-source outcomes.
func (s *Store) GetRun(ctx context.Context, id int64) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, started_at, elapsed_ms, sources_queried,
			successful_sources, raw_records, after_dedup, returned,
			dup_by_doi, dup_by_pmid, dup_by_trial_id, dup_by_title_author
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return Run{}, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_name, record_count, error FROM run_sources
		 WHERE run_id = ? ORDER BY source_name`, id)
	if err != nil {
		return Run{}, fmt.Errorf("reading run sources: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var src RunSource
		if err := rows.Scan(&src.SourceName, &src.RecordCount, &src.Error); err != nil {
			return Run{}, fmt.Errorf("scanning run source: %w", err)
		}
		run.Sources = append(run.Sources, src)
	}
	return run, rows.Err()
}

// ExportYAML writes the most recent runs as YAML, newest first.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer, limit int) error {
	runs, err := s.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	for i := range runs {
		full, err := s.GetRun(ctx, runs[i].ID)
		if err != nil {
			return err
		}
		runs[i] = full
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(runs)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var startedAt string
	err := row.Scan(&run.ID, &run.Query, &startedAt, &run.ElapsedMS,
		&run.SourcesQueried, &run.SuccessfulSources, &run.RawRecords,
		&run.AfterDedup, &run.Returned, &run.DupByDOI, &run.DupByPMID,
		&run.DupByTrialID, &run.DupByTitleAuthor)
	if err != nil {
		return Run{}, err
	}
	if t, perr := time.Parse(time.RFC3339Nano, startedAt); perr == nil {
		run.StartedAt = t
	}
	return run, nil
}
