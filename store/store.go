// Package store persists scan history and user settings in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/tracer/scan"
)

// ErrNotFound is returned when a requested scan does not exist.
var ErrNotFound = errors.New("store: not found")

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	url        TEXT NOT NULL,
	domain     TEXT NOT NULL,
	deep       INTEGER NOT NULL,
	scanned_at TEXT NOT NULL,
	result     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_domain ON scans(domain, scanned_at DESC);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// settingDefaults are the values reported for settings never written.
var settingDefaults = map[string]string{
	"deep_scan":           "false",
	"font_preview_source": "pangram",
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path with the
// production pragmas applied. Parent directories are created.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: exec schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveScan persists a scan result and returns its row id.
func (s *Store) SaveScan(ctx context.Context, res *scan.Result) (int64, error) {
	payload, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("store: marshal result: %w", err)
	}

	r, err := s.db.ExecContext(ctx,
		`INSERT INTO scans (url, domain, deep, scanned_at, result) VALUES (?, ?, ?, ?, ?)`,
		res.URL, res.Domain, boolInt(res.DeepScan),
		res.ScannedAt.UTC().Format(time.RFC3339), string(payload))
	if err != nil {
		return 0, fmt.Errorf("store: insert scan: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: last insert id: %w", err)
	}
	return id, nil
}

// ScanSummary is one history entry without the full result payload.
type ScanSummary struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Domain    string    `json:"domain"`
	DeepScan  bool      `json:"deepScan"`
	ScannedAt time.Time `json:"scannedAt"`
}

// ListScans returns the most recent scans, newest first.
func (s *Store) ListScans(ctx context.Context, limit int) ([]ScanSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, domain, deep, scanned_at FROM scans ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list scans: %w", err)
	}
	defer rows.Close()

	var out []ScanSummary
	for rows.Next() {
		var (
			sum  ScanSummary
			deep int
			at   string
		)
		if err := rows.Scan(&sum.ID, &sum.URL, &sum.Domain, &deep, &at); err != nil {
			return nil, fmt.Errorf("store: scan row: %w", err)
		}
		sum.DeepScan = deep != 0
		sum.ScannedAt, _ = time.Parse(time.RFC3339, at)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// GetScan loads one stored result by id.
func (s *Store) GetScan(ctx context.Context, id int64) (*scan.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM scans WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get scan %d: %w", id, err)
	}

	var res scan.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("store: unmarshal scan %d: %w", id, err)
	}
	return &res, nil
}

// Setting returns a setting value, falling back to the documented default
// for keys never written. Unknown keys yield "".
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return settingDefaults[key], nil
	}
	if err != nil {
		return "", fmt.Errorf("store: get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting writes a setting value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("store: set setting %q: %w", key, err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
