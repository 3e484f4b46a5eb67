package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gospend/internal/adapter/http/middleware"
	"github.com/iho/gospend/internal/usecase"
	"github.com/iho/gospend/internal/usecase/mocks"
)

var stackNow = time.Date(2024, 9, 15, 12, 0, 0, 0, time.UTC)

type ledgerStack struct {
	ledger *usecase.LedgerUseCase
	prefs  *usecase.PreferencesUseCase
	blobs  *mocks.FakeBlobStore
}

// newLedgerStack wires real use cases over an in-memory store. Destructive
// operations are confirmed through the request context, as in the server.
func newLedgerStack(t *testing.T) *ledgerStack {
	t.Helper()

	blobs := mocks.NewFakeBlobStore()
	clock := mocks.NewFixedClock(stackNow)
	store := usecase.NewLedgerStore(blobs, clock, nil, zerolog.Nop())
	prefs := usecase.NewPreferencesUseCase(store)

	ledger := usecase.NewLedgerUseCase(usecase.LedgerUseCaseConfig{
		Store:       store,
		Preferences: prefs,
		IDGen:       mocks.NewSequenceIDGenerator(),
		Clock:       clock,
		Confirmer:   middleware.ContextConfirmer{},
		Location:    time.UTC,
		Logger:      zerolog.Nop(),
	})

	return &ledgerStack{ledger: ledger, prefs: prefs, blobs: blobs}
}

func (s *ledgerStack) add(t *testing.T, in usecase.ExpenseInput) {
	t.Helper()
	if _, err := s.ledger.AddExpense(context.Background(), in); err != nil {
		t.Fatalf("add expense: %v", err)
	}
}

// confirmed runs r through the confirmation middleware with X-Confirm set.
func confirmed(h http.HandlerFunc, w http.ResponseWriter, r *http.Request) {
	r.Header.Set(middleware.ConfirmHeader, "true")
	middleware.Confirmation(h).ServeHTTP(w, r)
}
