package usecase

import (
	"context"
	"time"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// BlobStore is the key-value persistence collaborator. Get returns
// domain.ErrBlobNotFound for keys that were never written. Put always
// overwrites the whole value.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Confirmer asks the user to approve a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Metrics records ledger activity.
type Metrics interface {
	ExpenseCreated()
	RecurrencesMaterialized(n int)
	ImportCompleted(mode string, added int)
	StoreError(operation string)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) ExpenseCreated()              {}
func (NopMetrics) RecurrencesMaterialized(int)  {}
func (NopMetrics) ImportCompleted(string, int) {}
func (NopMetrics) StoreError(string)           {}
