// Package store persists release history in SQLite under .relkit/.
// Every bump or release run records what was shipped so history and
// compare commands work offline.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"relkit/internal/logging"
)

// Release is one recorded release or bump run.
type Release struct {
	ID             string
	Version        string
	PreviousTag    string
	CreatedAt      time.Time
	PRCount        int
	CategoryCounts map[string]int
	Notes          string
	// Source records which command produced the entry:
	// "bump", "release", or "wizard".
	Source string
	PRURL  string
}

// Store wraps the SQLite release history database.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
	log    *logging.Logger
}

// Open initializes the SQLite database at path, creating the schema and
// running pending migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, dbPath: path, log: logging.Get(logging.CategoryStore)}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the base schema and applies migrations.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS releases (
		id TEXT PRIMARY KEY,
		version TEXT NOT NULL,
		previous_tag TEXT DEFAULT '',
		created_at DATETIME NOT NULL,
		pr_count INTEGER DEFAULT 0,
		category_counts TEXT DEFAULT '{}',
		notes TEXT DEFAULT '',
		source TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_releases_created ON releases(created_at DESC);
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return s.migrate()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a release entry. A missing ID or timestamp is filled in.
func (s *Store) Record(r Release) (Release, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	counts, err := json.Marshal(r.CategoryCounts)
	if err != nil {
		return Release{}, fmt.Errorf("failed to marshal category counts: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO releases (id, version, previous_tag, created_at, pr_count, category_counts, notes, source, pr_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Version, r.PreviousTag, r.CreatedAt.Format(time.RFC3339), r.PRCount,
		string(counts), r.Notes, r.Source, r.PRURL,
	)
	if err != nil {
		return Release{}, fmt.Errorf("failed to record release: %w", err)
	}

	s.log.Info("recorded release %s (%d PRs)", r.Version, r.PRCount)
	return r, nil
}

// History returns the most recent entries, newest first. limit <= 0 means all.
func (s *Store) History(limit int) ([]Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, version, previous_tag, created_at, pr_count, category_counts, notes, source, pr_url
		FROM releases ORDER BY created_at DESC, rowid DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var releases []Release
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, err
		}
		releases = append(releases, r)
	}
	return releases, rows.Err()
}

// Latest returns the newest entry, or sql.ErrNoRows if none exist.
func (s *Store) Latest() (Release, error) {
	releases, err := s.History(1)
	if err != nil {
		return Release{}, err
	}
	if len(releases) == 0 {
		return Release{}, sql.ErrNoRows
	}
	return releases[0], nil
}

// Get returns the entry recorded for a version string.
func (s *Store) Get(version string) (Release, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT id, version, previous_tag, created_at, pr_count, category_counts, notes, source, pr_url
		FROM releases WHERE version = ? ORDER BY created_at DESC LIMIT 1`, version)
	return scanRelease(row)
}

// Delta is the per-category PR-count difference between two releases.
type Delta struct {
	From    Release
	To      Release
	ByTitle map[string]int
}

// Compare diffs the category counts of two recorded versions.
func (s *Store) Compare(fromVersion, toVersion string) (Delta, error) {
	from, err := s.Get(fromVersion)
	if err != nil {
		return Delta{}, fmt.Errorf("release %s: %w", fromVersion, err)
	}
	to, err := s.Get(toVersion)
	if err != nil {
		return Delta{}, fmt.Errorf("release %s: %w", toVersion, err)
	}

	byTitle := make(map[string]int)
	for title, n := range to.CategoryCounts {
		byTitle[title] = n
	}
	for title, n := range from.CategoryCounts {
		byTitle[title] -= n
	}
	return Delta{From: from, To: to, ByTitle: byTitle}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRelease(row rowScanner) (Release, error) {
	var r Release
	var createdAt, counts string
	err := row.Scan(&r.ID, &r.Version, &r.PreviousTag, &createdAt, &r.PRCount, &counts, &r.Notes, &r.Source, &r.PRURL)
	if err != nil {
		return Release{}, err
	}

	r.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Release{}, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}
	if err := json.Unmarshal([]byte(counts), &r.CategoryCounts); err != nil {
		return Release{}, fmt.Errorf("failed to parse category counts: %w", err)
	}
	return r, nil
}
