package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gospend/internal/domain"
)

// BlobStore implements usecase.BlobStore using Redis strings.
type BlobStore struct {
	client *redis.Client
	prefix string
}

// NewBlobStore creates a new BlobStore.
func NewBlobStore(client *redis.Client) *BlobStore {
	return &BlobStore{
		client: client,
		prefix: "blob:",
	}
}

// Get retrieves the value stored under key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Put stores value under key without expiry.
func (s *BlobStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

// Delete removes a key.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
