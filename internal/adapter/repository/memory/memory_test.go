package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/gospend/internal/domain"
)

func TestBlobStore(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "ledger"); !errors.Is(err, domain.ErrBlobNotFound) {
		t.Fatalf("expected ErrBlobNotFound, got %v", err)
	}

	value := []byte("v1")
	if err := store.Put(ctx, "ledger", value); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	value[0] = 'x'

	got, err := store.Get(ctx, "ledger")
	if err != nil || string(got) != "v1" {
		t.Fatalf("expected stored copy v1, got %s (%v)", got, err)
	}

	got[0] = 'y'
	again, _ := store.Get(ctx, "ledger")
	if string(again) != "v1" {
		t.Fatalf("callers must not modify stored data, got %s", again)
	}
}

func TestIdempotencyStore(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "k", nil, time.Minute)
	if err != nil || exists {
		t.Fatalf("expected first claim to succeed, got exists=%v err=%v", exists, err)
	}

	exists, resp, _ := store.CheckAndSet(ctx, "k", nil, time.Minute)
	if !exists || string(resp) != "processing" {
		t.Fatalf("expected pending marker, got exists=%v resp=%s", exists, resp)
	}

	if err := store.Update(ctx, "k", []byte("done"), time.Minute); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	_, resp, _ = store.CheckAndSet(ctx, "k", nil, time.Minute)
	if string(resp) != "done" {
		t.Fatalf("expected final response, got %s", resp)
	}

	now = now.Add(2 * time.Minute)
	exists, _, _ = store.CheckAndSet(ctx, "k", nil, time.Minute)
	if exists {
		t.Fatal("expired key must be claimable again")
	}
}
