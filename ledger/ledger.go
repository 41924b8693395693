// Package ledger keeps a SQLite record of scrape runs: when each
// agency was last scraped, how many pages and assets the run touched,
// and where the export landed. The ledger is bookkeeping only; the
// pipeline runs fine without it.
package ledger

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/biglocalnews/clean-go/scrape"
)

// Run is one recorded scrape run.
type Run struct {
	RunID        uuid.UUID `json:"run_id"`
	Slug         string    `json:"slug"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	PagesFetched int       `json:"pages_fetched"`
	AssetsFound  int       `json:"assets_found"`
	ExportPath   string    `json:"export_path"`
}

// Store manages the runs table.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the ledger database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the runs table if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		slug TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		pages_fetched INTEGER NOT NULL,
		assets_found INTEGER NOT NULL,
		export_path TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_slug ON runs(slug);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a run summary. Satisfies scrape.RunRecorder.
func (s *Store) RecordRun(summary scrape.RunSummary) error {
	query := `
		INSERT INTO runs (
			run_id, slug, started_at, finished_at,
			pages_fetched, assets_found, export_path
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		uuid.New().String(),
		summary.Slug,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.PagesFetched,
		summary.AssetsFound,
		summary.ExportPath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Runs lists recorded runs for a slug, most recent first. An empty slug
// lists every agency's runs.
func (s *Store) Runs(slug string) ([]Run, error) {
	query := `
		SELECT run_id, slug, started_at, finished_at,
		       pages_fetched, assets_found, export_path
		FROM runs
	`
	var args []any
	if slug != "" {
		query += " WHERE slug = ?"
		args = append(args, slug)
	}
	query += " ORDER BY started_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var runID, startedAt, finishedAt string
		if err := rows.Scan(&runID, &run.Slug, &startedAt, &finishedAt,
			&run.PagesFetched, &run.AssetsFound, &run.ExportPath); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.RunID, err = uuid.Parse(runID)
		if err != nil {
			return nil, fmt.Errorf("invalid run_id %q: %w", runID, err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
		}
		run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid finished_at %q: %w", finishedAt, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun returns the most recent run for a slug, or nil if the agency
// has never been scraped.
func (s *Store) LastRun(slug string) (*Run, error) {
	runs, err := s.Runs(slug)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}
