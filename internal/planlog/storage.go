// Package planlog persists evaluation runs and their plan entries so
// the process stage can resume and the list command can inspect them.
package planlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"photomigrate/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

// Run is one persisted evaluation run.
type Run struct {
	ID         string
	StartedAt  time.Time
	Imports    int
	Duplicates int
	Skipped    int
}

// Storage handles persistence of runs and plan entries.
type Storage struct {
	db     *sql.DB
	dbPath string
}

// NewStorage opens (and if needed creates) the database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Current schema version
const schemaVersion = 1

// migrations defines all schema migrations. Each migration should be
// idempotent (safe to run multiple times).
var migrations = []struct {
	version     int
	description string
	up          string
}{
	{
		version:     1,
		description: "Initial schema",
		up:          "", // Handled by base schema creation
	},
}

// init creates the database schema
func (s *Storage) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		imports INTEGER NOT NULL,
		duplicates INTEGER NOT NULL,
		skipped INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plan_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		source TEXT NOT NULL,
		captured_at DATETIME NOT NULL,
		folder TEXT NOT NULL,
		name TEXT NOT NULL,
		disposition TEXT NOT NULL,
		convert INTEGER NOT NULL,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plan_entries_run_id ON plan_entries(run_id);
	CREATE INDEX IF NOT EXISTS idx_plan_entries_status ON plan_entries(status);
	`

	_, err = s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := s.migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrate runs pending schema migrations
func (s *Storage) migrate() error {
	currentVersion := s.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if m.up != "" {
			if _, err := s.db.Exec(m.up); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
			}
		}
		s.setSchemaVersion(m.version)
	}

	return nil
}

func (s *Storage) getSchemaVersion() int {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

func (s *Storage) setSchemaVersion(version int) {
	s.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and all its entries in one transaction.
func (s *Storage) SaveRun(run *Run, entries []models.PlanEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, imports, duplicates, skipped)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.Format(timeLayout), run.Imports, run.Duplicates, run.Skipped)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO plan_entries (run_id, source, captured_at, folder, name, disposition, convert, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		convertInt := 0
		if e.Convert {
			convertInt = 1
		}
		_, err := stmt.Exec(
			run.ID,
			e.Source,
			e.CapturedAt.Format(timeLayout),
			e.Folder,
			e.Name,
			string(e.Disposition),
			convertInt,
			e.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.Source, err)
		}
	}

	return tx.Commit()
}

// LatestRun returns the most recently started run, or nil when the
// database holds none.
func (s *Storage) LatestRun() (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, imports, duplicates, skipped
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`)

	run := &Run{}
	var startedAt string
	err := row.Scan(&run.ID, &startedAt, &run.Imports, &run.Duplicates, &run.Skipped)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	run.StartedAt, _ = time.Parse(timeLayout, startedAt)
	return run, nil
}

// EntriesByRun returns the plan entries of a run in insertion order.
func (s *Storage) EntriesByRun(runID string) ([]models.PlanEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, source, captured_at, folder, name, disposition, convert, status
		FROM plan_entries
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []models.PlanEntry
	for rows.Next() {
		var e models.PlanEntry
		var capturedAt, disposition string
		var convertInt int
		err := rows.Scan(
			&e.ID,
			&e.Source,
			&capturedAt,
			&e.Folder,
			&e.Name,
			&disposition,
			&convertInt,
			&e.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.CapturedAt, _ = time.Parse(timeLayout, capturedAt)
		e.Disposition = models.Disposition(disposition)
		e.Convert = convertInt == 1
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// UpdateStatus sets the status of one plan entry.
func (s *Storage) UpdateStatus(entryID int64, status string) error {
	_, err := s.db.Exec(`UPDATE plan_entries SET status = ? WHERE id = ?`, status, entryID)
	return err
}
