// Package store provides the durable side of the scanning engine: a SQLite
// backed implementation of scan.AreaStore that persists captured areas and
// session summaries.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/philipparndt/meshscan/pkg/scan"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    saved_at   TEXT NOT NULL,
    total_area REAL NOT NULL,
    area_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS areas (
    id          TEXT PRIMARY KEY,
    session_id  TEXT NOT NULL REFERENCES sessions(id),
    position    INTEGER NOT NULL,
    label       TEXT NOT NULL,
    area        REAL NOT NULL,
    boundary    TEXT NOT NULL,
    captured_at TEXT NOT NULL
);
`

// SQLite persists captured area batches in a local SQLite database
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at the given path.
// The path ":memory:" opens a private in-memory database for tests.
func OpenSQLite(path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout=5000", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database handle
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveSession stores one row per captured area plus a session summary row,
// atomically. Implements scan.AreaStore.
func (s *SQLite) SaveSession(ctx context.Context, areas []scan.CapturedArea, summary scan.SessionSummary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	sessionID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
        INSERT INTO sessions (id, saved_at, total_area, area_count)
        VALUES (?, ?, ?, ?)
    `, sessionID, time.Now().UTC().Format(time.RFC3339), summary.TotalArea, summary.Count)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for i, area := range areas {
		boundary, err := encodeBoundary(area)
		if err != nil {
			return fmt.Errorf("encode boundary %q: %w", area.Label, err)
		}
		_, err = tx.ExecContext(ctx, `
            INSERT INTO areas (id, session_id, position, label, area, boundary, captured_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, area.ID, sessionID, i, area.Label, area.Area, boundary, area.CapturedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert area %q: %w", area.Label, err)
		}
	}

	return tx.Commit()
}

// encodeBoundary serializes the polygon as a JSON array of [x, y] pairs
func encodeBoundary(area scan.CapturedArea) (string, error) {
	pairs := make([][2]float64, len(area.Boundary))
	for i, p := range area.Boundary {
		pairs[i] = [2]float64{p.X, p.Y}
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SavedSession describes one persisted session for listings
type SavedSession struct {
	ID        string
	SavedAt   time.Time
	TotalArea float64
	AreaCount int
}

// SavedArea describes one persisted captured area
type SavedArea struct {
	ID         string
	Label      string
	Area       float64
	Boundary   [][2]float64
	CapturedAt time.Time
}

// Sessions returns all persisted sessions, most recent first
func (s *SQLite) Sessions(ctx context.Context) ([]SavedSession, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, saved_at, total_area, area_count
        FROM sessions
        ORDER BY saved_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SavedSession
	for rows.Next() {
		var sess SavedSession
		var savedAt string
		if err := rows.Scan(&sess.ID, &savedAt, &sess.TotalArea, &sess.AreaCount); err != nil {
			return nil, err
		}
		sess.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Areas returns the captured areas of a session in capture order
func (s *SQLite) Areas(ctx context.Context, sessionID string) ([]SavedArea, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, label, area, boundary, captured_at
        FROM areas
        WHERE session_id = ?
        ORDER BY position
    `, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []SavedArea
	for rows.Next() {
		var a SavedArea
		var boundary, capturedAt string
		if err := rows.Scan(&a.ID, &a.Label, &a.Area, &boundary, &capturedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(boundary), &a.Boundary); err != nil {
			return nil, fmt.Errorf("decode boundary: %w", err)
		}
		a.CapturedAt, _ = time.Parse(time.RFC3339, capturedAt)
		areas = append(areas, a)
	}
	return areas, rows.Err()
}
