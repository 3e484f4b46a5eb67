package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iho/gospend/internal/domain"
)

// FakeBlobStore is an in-memory BlobStore with optional overrides.
type FakeBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	puts  int

	GetFunc func(ctx context.Context, key string) ([]byte, error)
	PutFunc func(ctx context.Context, key string, value []byte) error
}

func NewFakeBlobStore() *FakeBlobStore {
	return &FakeBlobStore{
		blobs: make(map[string][]byte),
	}
}

func (m *FakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.blobs[key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, domain.ErrBlobNotFound
}

func (m *FakeBlobStore) Put(ctx context.Context, key string, value []byte) error {
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), value...)
	m.puts++
	return nil
}

// Set stores a raw blob directly.
func (m *FakeBlobStore) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = value
}

// Raw returns the stored blob without going through Get.
func (m *FakeBlobStore) Raw(key string) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.blobs[key]
}

// Puts returns the number of successful writes.
func (m *FakeBlobStore) Puts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// SequenceIDGenerator returns id-1, id-2, ...
type SequenceIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

func (m *SequenceIDGenerator) Generate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("id-%d", m.counter)
}

// FixedClock is a Clock that only moves when told to.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StaticConfirmer answers every prompt with Answer and records the prompts.
type StaticConfirmer struct {
	mu      sync.Mutex
	Answer  bool
	Prompts []string
}

func (c *StaticConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Prompts = append(c.Prompts, prompt)
	return c.Answer, nil
}

// FakeIdempotencyStore is an in-memory IdempotencyStore.
type FakeIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewFakeIdempotencyStore() *FakeIdempotencyStore {
	return &FakeIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *FakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *FakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
