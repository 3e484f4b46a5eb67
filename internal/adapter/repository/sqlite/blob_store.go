package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iho/gospend/internal/domain"
)

const (
	getBlobSQL = `SELECT value FROM blobs WHERE key = ?`

	putBlobSQL = `INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// BlobStore implements usecase.BlobStore on an SQLite table.
type BlobStore struct {
	db *sql.DB
}

// NewBlobStore creates a new BlobStore. The schema must already be migrated.
func NewBlobStore(db *sql.DB) *BlobStore {
	return &BlobStore{db: db}
}

// Get retrieves the value stored under key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, getBlobSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob %q: %w", key, err)
	}
	return value, nil
}

// Put upserts value under key.
func (s *BlobStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, putBlobSQL, key, value); err != nil {
		return fmt.Errorf("put blob %q: %w", key, err)
	}
	return nil
}
