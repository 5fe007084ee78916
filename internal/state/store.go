// Package state persists process-wide UI state between runs: the last used
// slider percentages of the bulk edit dialog and the recently opened
// documents.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

// Memory is the path that selects a private in-memory database.
const Memory = ":memory:"

// maxRecent bounds the recent files list.
const maxRecent = 10

const schema = `
CREATE TABLE IF NOT EXISTS ui_state (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS recent_files (
    path TEXT PRIMARY KEY,
    opened_at TEXT NOT NULL
);`

// Store is a small key/value store backed by SQLite.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens or creates the state database at path. Memory opens a
// database that lives as long as the Store.
func Open(path string) (*Store, error) {
	if path == "" {
		path = Memory
	}
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create state tables: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Close releases the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v string
	err := s.db.QueryRow(`SELECT value FROM ui_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO ui_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func sliderKey(param string) string { return "slider." + param }

// Slider returns the stored percentage for param, or def when none was
// stored or the stored value is unusable.
func (s *Store) Slider(param string, def int) (int, error) {
	v, ok, err := s.Get(sliderKey(param))
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < types.SliderMin || n > types.SliderMax {
		return def, nil
	}
	return n, nil
}

// SetSlider stores the percentage for param.
func (s *Store) SetSlider(param string, percent int) error {
	if percent < types.SliderMin || percent > types.SliderMax {
		return types.ErrInvalidPercent
	}
	return s.Set(sliderKey(param), strconv.Itoa(percent))
}

// TouchRecent records path as the most recently opened document.
func (s *Store) TouchRecent(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.Exec(`INSERT INTO recent_files (path, opened_at) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET opened_at = excluded.opened_at`, path, now); err != nil {
		return fmt.Errorf("upsert recent: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM recent_files WHERE path NOT IN (
		SELECT path FROM recent_files ORDER BY opened_at DESC LIMIT ?)`, maxRecent); err != nil {
		return fmt.Errorf("trim recent: %w", err)
	}
	return tx.Commit()
}

// RecentFiles returns recently opened documents, newest first.
func (s *Store) RecentFiles() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT path FROM recent_files ORDER BY opened_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
