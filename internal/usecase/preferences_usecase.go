package usecase

import (
	"context"
	"strings"
	"sync"

	"github.com/iho/gospend/internal/domain"
)

// PreferencesUseCase manages user preferences.
type PreferencesUseCase struct {
	store *LedgerStore
	prefs *domain.Preferences
	mu    sync.Mutex
}

// NewPreferencesUseCase creates a new PreferencesUseCase.
func NewPreferencesUseCase(store *LedgerStore) *PreferencesUseCase {
	return &PreferencesUseCase{store: store}
}

// Get returns the current preferences.
func (uc *PreferencesUseCase) Get(ctx context.Context) domain.Preferences {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.currentLocked(ctx)
}

// SetBudget parses and stores the monthly budget. An empty value clears it.
func (uc *PreferencesUseCase) SetBudget(ctx context.Context, raw string) (domain.Preferences, error) {
	budget, err := domain.ValidateBudget(raw)
	if err != nil {
		return domain.Preferences{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	next := uc.currentLocked(ctx)
	next.Budget = budget
	if err := uc.saveLocked(ctx, next); err != nil {
		return domain.Preferences{}, err
	}
	return next, nil
}

// SetUsername stores the display name.
func (uc *PreferencesUseCase) SetUsername(ctx context.Context, name string) (domain.Preferences, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	next := uc.currentLocked(ctx)
	next.Username = strings.TrimSpace(name)
	if err := uc.saveLocked(ctx, next); err != nil {
		return domain.Preferences{}, err
	}
	return next, nil
}

// Reset restores default preferences.
func (uc *PreferencesUseCase) Reset(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.saveLocked(ctx, domain.DefaultPreferences())
}

func (uc *PreferencesUseCase) restore(ctx context.Context, prefs domain.Preferences) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.saveLocked(ctx, prefs)
}

func (uc *PreferencesUseCase) currentLocked(ctx context.Context) domain.Preferences {
	if uc.prefs == nil {
		loaded := uc.store.LoadPreferences(ctx)
		uc.prefs = &loaded
	}
	return *uc.prefs
}

func (uc *PreferencesUseCase) saveLocked(ctx context.Context, next domain.Preferences) error {
	if err := uc.store.SavePreferences(ctx, next); err != nil {
		return err
	}
	uc.prefs = &next
	return nil
}
