// Package storage provides SQLite-based persistence for the session history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const timeLayout = "2006-01-02 15:04:05"

// Session kinds.
const (
	KindPlay    = "play"
	KindConvert = "convert"
	KindServe   = "serve"
)

// Session outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeStopped   = "stopped"
	OutcomeFailed    = "failed"
)

// Store manages the SQLite database connection for the session history.
type Store struct {
	db *sql.DB
}

// Session is one recorded play, convert or SSH viewing.
type Session struct {
	ID        string
	Kind      string
	Source    string
	Charset   string
	Columns   int
	Rows      int
	Frames    int
	Duration  time.Duration
	Outcome   string
	User      string // SSH user for served sessions
	Output    string // output file for conversions
	StartedAt time.Time
}

// KindStats aggregates sessions of one kind.
type KindStats struct {
	Kind      string
	Count     int
	Frames    int64
	Watched   time.Duration
	LastStart time.Time
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

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			source TEXT NOT NULL,
			charset TEXT NOT NULL,
			grid_cols INTEGER NOT NULL DEFAULT 0,
			grid_rows INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			outcome TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			output TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_sessions_kind ON sessions(kind);
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

// RecordSession stores a session and returns its ID. A missing ID is
// generated and a zero StartedAt means now.
func (s *Store) RecordSession(sess Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions
		 (id, kind, source, charset, grid_cols, grid_rows, frames, duration_ms, outcome, user_name, output, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.Kind,
		sess.Source,
		sess.Charset,
		sess.Columns,
		sess.Rows,
		sess.Frames,
		sess.Duration.Milliseconds(),
		sess.Outcome,
		sess.User,
		sess.Output,
		sess.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save session: %w", err)
	}
	return sess.ID, nil
}

// RecentSessions retrieves the most recent sessions, newest first.
// An empty kind matches every kind.
func (s *Store) RecentSessions(kind string, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, kind, source, charset, grid_cols, grid_rows, frames, duration_ms, outcome, user_name, output, started_at
		 FROM sessions
		 WHERE ? = '' OR kind = ?
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		kind, kind, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sessions, nil
}

// SessionByID retrieves one session. Returns nil if it does not exist.
func (s *Store) SessionByID(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, source, charset, grid_cols, grid_rows, frames, duration_ms, outcome, user_name, output, started_at
		 FROM sessions
		 WHERE id = ?`,
		id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// Stats aggregates the history per session kind, ordered by kind.
func (s *Store) Stats() ([]KindStats, error) {
	rows, err := s.db.Query(
		`SELECT kind, COUNT(*), COALESCE(SUM(frames), 0), COALESCE(SUM(duration_ms), 0), MAX(started_at)
		 FROM sessions
		 GROUP BY kind
		 ORDER BY kind`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get session stats: %w", err)
	}
	defer rows.Close()

	var stats []KindStats
	for rows.Next() {
		var ks KindStats
		var watchedMs int64
		var last any
		if err := rows.Scan(&ks.Kind, &ks.Count, &ks.Frames, &watchedMs, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ks.Watched = time.Duration(watchedMs) * time.Millisecond
		ks.LastStart = parseTime(last)
		stats = append(stats, ks)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

// ClearSessions deletes the whole history.
func (s *Store) ClearSessions() error {
	if _, err := s.db.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("storage: cannot clear sessions: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var sess Session
	var durationMs int64
	var startedAt any

	err := row.Scan(
		&sess.ID,
		&sess.Kind,
		&sess.Source,
		&sess.Charset,
		&sess.Columns,
		&sess.Rows,
		&sess.Frames,
		&durationMs,
		&sess.Outcome,
		&sess.User,
		&sess.Output,
		&startedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return sess, err
	}
	if err != nil {
		return sess, fmt.Errorf("storage: cannot scan row: %w", err)
	}

	sess.Duration = time.Duration(durationMs) * time.Millisecond
	sess.StartedAt = parseTime(startedAt)
	return sess, nil
}

// parseTime handles both time.Time and string columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
	case []byte:
		if parsed, err := time.Parse(timeLayout, string(t)); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
