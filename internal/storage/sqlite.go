// Package storage provides SQLite-based persistence for scores.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-flappy/internal/leaderboard"
)

// Store manages the SQLite database connection for score persistence.
// It doubles as a local leaderboard.Service.
type Store struct {
	db *sql.DB
}

// ScoreEntry represents a single recorded run.
type ScoreEntry struct {
	ID        int64
	RunID     string
	Identity  string
	Score     int
	CreatedAt time.Time
}

// PlayerStats contains aggregated statistics for one identity.
type PlayerStats struct {
	Identity   string
	Runs       int
	Best       int
	AvgScore   float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			identity TEXT NOT NULL,
			score INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_identity ON runs(identity);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a finished run. An empty runID gets a fresh one.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(ctx context.Context, runID, identity string, score int) (int64, error) {
	if identity == "" {
		return 0, errors.New("storage: identity is required")
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, identity, score) VALUES (?, ?, ?)",
		runID, identity, score,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// RecordRun implements leaderboard.RunRecorder.
func (s *Store) RecordRun(ctx context.Context, runID, identity string, score int) error {
	_, err := s.SaveRun(ctx, runID, identity, score)
	return err
}

// SubmitScore implements leaderboard.Service. The local store has no
// accounts, so the secret is ignored. A score already covered by a
// recorded run is not stored twice.
func (s *Store) SubmitScore(ctx context.Context, identity, _ string, score int) error {
	var covered bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM runs WHERE identity = ? AND score >= ?)", identity, score,
	).Scan(&covered); err != nil {
		return fmt.Errorf("storage: cannot check runs: %w", err)
	}
	if covered {
		return nil
	}
	_, err := s.SaveRun(ctx, "", identity, score)
	return err
}

// BestScore implements leaderboard.Service.
// Returns 0 if the identity has no runs.
func (s *Store) BestScore(ctx context.Context, identity string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(score) FROM runs WHERE identity = ?",
		identity,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// TopScores implements leaderboard.Service: each identity's best run,
// highest first. Ties go to whoever got there first.
func (s *Store) TopScores(ctx context.Context, n int) ([]leaderboard.Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT identity, MAX(score) AS best, MIN(created_at)
		 FROM runs r
		 WHERE score = (SELECT MAX(score) FROM runs WHERE identity = r.identity)
		 GROUP BY identity
		 ORDER BY best DESC, MIN(id) ASC
		 LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		var createdAt any
		if err := rows.Scan(&e.Identity, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.At = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// RecentRuns retrieves the latest runs, optionally for one identity.
func (s *Store) RecentRuns(ctx context.Context, identity string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, identity, score, created_at
		 FROM runs
		 WHERE ? = '' OR identity = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		identity, identity, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.RunID, &e.Identity, &e.Score, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Stats retrieves aggregated statistics for one identity.
func (s *Store) Stats(ctx context.Context, identity string) (*PlayerStats, error) {
	stats := &PlayerStats{Identity: identity}

	var lastPlayed any
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), MAX(created_at)
		 FROM runs WHERE identity = ?`,
		identity,
	).Scan(&stats.Runs, &stats.Best, &stats.AvgScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// ClearScores deletes every run of identity, or all runs when identity is empty.
func (s *Store) ClearScores(ctx context.Context, identity string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE ? = '' OR identity = ?", identity, identity)
	if err != nil {
		return fmt.Errorf("storage: cannot clear scores: %w", err)
	}
	return nil
}

// parseTime handles both time.Time and string datetime values.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

var (
	_ leaderboard.Service     = (*Store)(nil)
	_ leaderboard.RunRecorder = (*Store)(nil)
)
