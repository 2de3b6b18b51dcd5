// Package sqlitecache persists classification results keyed by a content
// fingerprint, so reruns over unchanged documents skip the model entirely
// and reproduce the previous record deterministically.
package sqlitecache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/auditscan/auditscan/internal/core/domain"
	"github.com/auditscan/auditscan/internal/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS classification_cache (
	fingerprint TEXT PRIMARY KEY,
	record TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path and ensures the schema.
func Open(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}
	db, err := sql.Open("sqlite", abs)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single connection sidesteps SQLITE_BUSY between the concurrent
	// classification goroutines sharing this cache.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, fingerprint string) (domain.ClassificationRecord, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM classification_cache WHERE fingerprint = ?`, fingerprint,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ClassificationRecord{}, false, nil
	}
	if err != nil {
		return domain.ClassificationRecord{}, false, fmt.Errorf("cache select: %w", err)
	}

	var record domain.ClassificationRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return domain.ClassificationRecord{}, false, fmt.Errorf("decode cached record: %w", err)
	}
	return record, true, nil
}

func (s *Store) Put(ctx context.Context, fingerprint string, record domain.ClassificationRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO classification_cache (fingerprint, record, created_at) VALUES (?, ?, ?)`,
		fingerprint, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cache insert: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ ports.ResultCache = (*Store)(nil)
