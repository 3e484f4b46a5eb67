package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/gospend/internal/domain"
)

const (
	getBlobSQL = `SELECT value FROM blobs WHERE key = $1`

	putBlobSQL = `INSERT INTO blobs (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// querier is the subset of pgxpool.Pool used by BlobStore.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var _ querier = (*pgxpool.Pool)(nil)

// BlobStore implements usecase.BlobStore on a single key/value table.
type BlobStore struct {
	db      querier
	retrier *Retrier
}

// NewBlobStore creates a new BlobStore.
func NewBlobStore(pool *pgxpool.Pool, retrier *Retrier) *BlobStore {
	return &BlobStore{db: pool, retrier: retrier}
}

// Get retrieves the value stored under key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.QueryRow(ctx, getBlobSQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, fmt.Errorf("get blob %q: %w", key, err)
	}
	return value, nil
}

// Put upserts value under key.
func (s *BlobStore) Put(ctx context.Context, key string, value []byte) error {
	put := func() error {
		_, err := s.db.Exec(ctx, putBlobSQL, key, value)
		return err
	}

	var err error
	if s.retrier != nil {
		err = s.retrier.Retry(ctx, put)
	} else {
		err = put()
	}
	if err != nil {
		return fmt.Errorf("put blob %q: %w", key, err)
	}
	return nil
}
