package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gospend/internal/domain"
)

// LedgerStore persists the ledger and preferences as JSON blobs.
// Unreadable or corrupt data never fails a load; it is logged and replaced
// with a fresh value.
type LedgerStore struct {
	blobs   BlobStore
	clock   Clock
	metrics Metrics
	logger  zerolog.Logger
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(blobs BlobStore, clock Clock, metrics Metrics, logger zerolog.Logger) *LedgerStore {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &LedgerStore{
		blobs:   blobs,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Load returns the persisted ledger, or an empty ledger when nothing usable
// is stored. Dates stored without a zone are taken in loc.
func (s *LedgerStore) Load(ctx context.Context, loc *time.Location) *domain.Ledger {
	raw, err := s.blobs.Get(ctx, LedgerKey)
	if err != nil {
		if !errors.Is(err, domain.ErrBlobNotFound) {
			s.metrics.StoreError("load")
			s.logger.Warn().Err(err).Msg("failed to read ledger, starting empty")
		}
		return domain.NewLedger(s.clock.Now())
	}

	ledger, err := ParseSnapshot(raw, loc)
	if err != nil {
		s.metrics.StoreError("decode")
		s.logger.Warn().Err(err).Msg("stored ledger is corrupt, starting empty")
		return domain.NewLedger(s.clock.Now())
	}
	if ledger.Meta.CreatedAt.IsZero() {
		ledger.Meta.CreatedAt = s.clock.Now()
	}

	return ledger
}

// Save writes the whole ledger.
func (s *LedgerStore) Save(ctx context.Context, ledger *domain.Ledger) error {
	raw, err := json.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.blobs.Put(ctx, LedgerKey, raw); err != nil {
		s.metrics.StoreError("save")
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// LoadPreferences returns stored preferences, or defaults.
func (s *LedgerStore) LoadPreferences(ctx context.Context) domain.Preferences {
	raw, err := s.blobs.Get(ctx, PreferencesKey)
	if err != nil {
		if !errors.Is(err, domain.ErrBlobNotFound) {
			s.metrics.StoreError("load")
			s.logger.Warn().Err(err).Msg("failed to read preferences, using defaults")
		}
		return domain.DefaultPreferences()
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		s.metrics.StoreError("decode")
		s.logger.Warn().Err(err).Msg("stored preferences are corrupt, using defaults")
		return domain.DefaultPreferences()
	}
	if prefs.Budget.IsNegative() {
		prefs.Budget = domain.DefaultPreferences().Budget
	}

	return prefs
}

// SavePreferences writes preferences.
func (s *LedgerStore) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := s.blobs.Put(ctx, PreferencesKey, raw); err != nil {
		s.metrics.StoreError("save")
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
