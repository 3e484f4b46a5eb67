package repository

import (
	"context"

	"github.com/iho/gospend/internal/usecase"
)

// PrefixedBlobStore namespaces every key of the wrapped store.
type PrefixedBlobStore struct {
	next   usecase.BlobStore
	prefix string
}

// WithPrefix wraps store so keys become prefix+key. An empty prefix
// returns store unchanged.
func WithPrefix(store usecase.BlobStore, prefix string) usecase.BlobStore {
	if prefix == "" {
		return store
	}
	return &PrefixedBlobStore{next: store, prefix: prefix}
}

// Get retrieves the value stored under prefix+key.
func (s *PrefixedBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.next.Get(ctx, s.prefix+key)
}

// Put stores value under prefix+key.
func (s *PrefixedBlobStore) Put(ctx context.Context, key string, value []byte) error {
	return s.next.Put(ctx, s.prefix+key, value)
}
