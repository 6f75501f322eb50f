// Package journal persists a per-run record of pipeline progress and created
// artifacts. When a later gateway step fails there is no rollback; the
// journal is the operator's reconciliation record of what already exists.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"meetbot/internal/domain"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed run journal.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite, single in-flight run.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		request     TEXT NOT NULL,
		state       TEXT NOT NULL,
		error       TEXT,
		reference_time DATETIME,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		step        TEXT NOT NULL,
		kind        TEXT NOT NULL,
		ref         TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) StartRun(ctx context.Context, runID, request string, ref time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, request, state, reference_time) VALUES (?, ?, ?, ?)`,
		runID, request, "received", ref,
	)
	return err
}

func (s *Store) SetState(ctx context.Context, runID, state string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET state = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		state, runID,
	)
	return err
}

func (s *Store) AddArtifact(ctx context.Context, runID string, a domain.Artifact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (run_id, step, kind, ref) VALUES (?, ?, ?, ?)`,
		runID, string(a.Step), a.Kind, a.Ref,
	)
	return err
}

func (s *Store) FinishRun(ctx context.Context, runID, state, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET state = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		state, errMsg, runID,
	)
	return err
}

// Run is one journal entry for display.
type Run struct {
	ID        string
	Request   string
	State     string
	Error     string
	CreatedAt time.Time
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request, state, COALESCE(error, ''), created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Request, &r.State, &r.Error, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Artifacts returns the artifacts created during a run, in creation order.
func (s *Store) Artifacts(ctx context.Context, runID string) ([]domain.Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, kind, ref FROM artifacts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []domain.Artifact
	for rows.Next() {
		var a domain.Artifact
		var step string
		if err := rows.Scan(&step, &a.Kind, &a.Ref); err != nil {
			return nil, err
		}
		a.Step = domain.Step(step)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
