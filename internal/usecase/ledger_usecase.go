package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gospend/internal/domain"
)

// LedgerUseCase owns the in-memory ledger. Every mutation is computed on a
// copy, persisted, and only then swapped in, so a failed write leaves the
// previous state in place.
type LedgerUseCase struct {
	store       *LedgerStore
	preferences *PreferencesUseCase
	model       *ExpenseModel
	engine      *RecurrenceEngine
	confirmer   Confirmer
	clock       Clock
	metrics     Metrics
	location    *time.Location
	ledger      *domain.Ledger
	logger      zerolog.Logger
	mu          sync.Mutex
}

// LedgerUseCaseConfig holds the collaborators of a LedgerUseCase.
type LedgerUseCaseConfig struct {
	Store       *LedgerStore
	Preferences *PreferencesUseCase
	IDGen       IDGenerator
	Clock       Clock
	Confirmer   Confirmer
	Metrics     Metrics
	Location    *time.Location
	Logger      zerolog.Logger
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerUseCaseConfig) *LedgerUseCase {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &LedgerUseCase{
		store:       cfg.Store,
		preferences: cfg.Preferences,
		model:       NewExpenseModel(cfg.IDGen, cfg.Clock),
		engine:      NewRecurrenceEngine(cfg.IDGen),
		confirmer:   cfg.Confirmer,
		clock:       cfg.Clock,
		metrics:     cfg.Metrics,
		location:    cfg.Location,
		logger:      cfg.Logger.With().Str("component", "ledger").Logger(),
	}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Mode     ImportMode `json:"mode"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Total    int        `json:"total"`
}

// Open loads the ledger and materializes any due recurring expenses.
// A load never fails; an error means the materialized records could not
// be saved and were discarded.
func (uc *LedgerUseCase) Open(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.ledger = uc.store.Load(ctx, uc.location)
	uc.logger.Debug().Int("expenses", len(uc.ledger.Expenses)).Msg("ledger loaded")

	if _, err := uc.materializeLocked(ctx); err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	return nil
}

// AddExpense validates and appends a new expense.
func (uc *LedgerUseCase) AddExpense(ctx context.Context, in ExpenseInput) (domain.Expense, error) {
	if err := domain.ValidateExpenseInput(in.Title, domain.ParseAmount(in.Amount)); err != nil {
		return domain.Expense{}, err
	}
	if err := domain.ValidateNotes(in.Notes); err != nil {
		return domain.Expense{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	current := uc.currentLocked(ctx)
	expense := uc.model.Create(in)

	next := current.Clone()
	next.Expenses = append(next.Expenses, expense)

	if err := uc.commitLocked(ctx, next); err != nil {
		return domain.Expense{}, err
	}

	uc.metrics.ExpenseCreated()
	uc.logger.Info().Str("expense_id", expense.ID).Msg("expense added")

	return expense.Clone(), nil
}

// EditExpense applies patch to the expense with id.
func (uc *LedgerUseCase) EditExpense(ctx context.Context, id string, patch ExpensePatch) (domain.Expense, error) {
	if patch.Title != nil {
		if err := domain.ValidateTitle(*patch.Title); err != nil {
			return domain.Expense{}, err
		}
	}
	if amount, ok := patch.PatchedAmount(); ok {
		if err := domain.ValidateAmount(amount); err != nil {
			return domain.Expense{}, err
		}
	}
	if patch.Notes != nil {
		if err := domain.ValidateNotes(*patch.Notes); err != nil {
			return domain.Expense{}, err
		}
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	current := uc.currentLocked(ctx)
	idx := current.IndexOf(id)
	if idx < 0 {
		return domain.Expense{}, domain.ErrExpenseNotFound
	}

	next := current.Clone()
	next.Expenses[idx] = uc.model.Update(next.Expenses[idx], patch)

	if err := uc.commitLocked(ctx, next); err != nil {
		return domain.Expense{}, err
	}

	return uc.ledger.Expenses[idx].Clone(), nil
}

// DeleteExpense removes the expense with id after confirmation.
func (uc *LedgerUseCase) DeleteExpense(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	current := uc.currentLocked(ctx)
	idx := current.IndexOf(id)
	if idx < 0 {
		return domain.ErrExpenseNotFound
	}

	if err := uc.confirm(ctx, fmt.Sprintf("Delete expense %q?", current.Expenses[idx].Title)); err != nil {
		return err
	}

	next := current.Clone()
	next.Expenses = append(next.Expenses[:idx], next.Expenses[idx+1:]...)

	if err := uc.commitLocked(ctx, next); err != nil {
		return err
	}

	uc.logger.Info().Str("expense_id", id).Msg("expense deleted")
	return nil
}

// ClearAll removes every expense after confirmation and returns how many
// were removed. Ledger metadata is kept.
func (uc *LedgerUseCase) ClearAll(ctx context.Context) (int, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	current := uc.currentLocked(ctx)
	count := len(current.Expenses)
	if count == 0 {
		return 0, nil
	}

	if err := uc.confirm(ctx, fmt.Sprintf("Delete all %d expenses?", count)); err != nil {
		return 0, err
	}

	next := &domain.Ledger{Expenses: []domain.Expense{}, Meta: current.Meta}
	if err := uc.commitLocked(ctx, next); err != nil {
		return 0, err
	}

	uc.logger.Info().Int("removed", count).Msg("ledger cleared")
	return count, nil
}

// DeleteAllData resets the ledger and preferences after confirmation.
func (uc *LedgerUseCase) DeleteAllData(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.confirm(ctx, "Delete all expenses and preferences? This cannot be undone."); err != nil {
		return err
	}

	// Preferences reset first; a failed ledger save restores them.
	var prev domain.Preferences
	if uc.preferences != nil {
		prev = uc.preferences.Get(ctx)
		if err := uc.preferences.Reset(ctx); err != nil {
			return fmt.Errorf("reset preferences: %w", err)
		}
	}

	next := domain.NewLedger(uc.clock.Now())
	if err := uc.store.Save(ctx, next); err != nil {
		if uc.preferences != nil {
			if rerr := uc.preferences.restore(ctx, prev); rerr != nil {
				uc.logger.Error().Err(rerr).Msg("failed to restore preferences")
			}
		}
		return err
	}
	uc.ledger = next

	uc.logger.Warn().Msg("all data deleted")
	return nil
}

// RunRecurrence materializes due recurring expenses and returns the new
// records.
func (uc *LedgerUseCase) RunRecurrence(ctx context.Context) ([]domain.Expense, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.currentLocked(ctx)
	return uc.materializeLocked(ctx)
}

// Import parses raw as a JSON snapshot and replaces or merges it into the
// ledger. A malformed snapshot leaves the ledger unchanged.
func (uc *LedgerUseCase) Import(ctx context.Context, raw []byte, mode ImportMode) (ImportResult, error) {
	incoming, err := ParseSnapshot(raw, uc.location)
	if err != nil {
		return ImportResult{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	current := uc.currentLocked(ctx)
	result := ImportResult{Mode: mode}

	switch mode {
	case ImportReplace:
		prompt := fmt.Sprintf("Replace %d expenses with %d imported ones?", len(current.Expenses), len(incoming.Expenses))
		if err := uc.confirm(ctx, prompt); err != nil {
			return ImportResult{}, err
		}
		// Stored as given; due templates catch up on the next load or mutation.
		if err := uc.store.Save(ctx, incoming); err != nil {
			return ImportResult{}, err
		}
		uc.ledger = incoming
		result.Imported = len(incoming.Expenses)
	case ImportMerge:
		next, added := MergeSnapshot(current, incoming)
		if err := uc.commitLocked(ctx, next); err != nil {
			return ImportResult{}, err
		}
		result.Imported = added
		result.Skipped = len(incoming.Expenses) - added
	default:
		return ImportResult{}, fmt.Errorf("%w: %q", domain.ErrInvalidImportMode, mode)
	}
	result.Total = len(uc.ledger.Expenses)

	uc.metrics.ImportCompleted(string(mode), result.Imported)
	uc.logger.Info().
		Str("mode", string(mode)).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("snapshot imported")

	return result, nil
}

// Expenses returns a copy of every expense in ledger order.
func (uc *LedgerUseCase) Expenses(ctx context.Context) []domain.Expense {
	return uc.Snapshot(ctx).Expenses
}

// Get returns the expense with id.
func (uc *LedgerUseCase) Get(ctx context.Context, id string) (domain.Expense, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	current := uc.currentLocked(ctx)
	idx := current.IndexOf(id)
	if idx < 0 {
		return domain.Expense{}, domain.ErrExpenseNotFound
	}
	return current.Expenses[idx].Clone(), nil
}

// Snapshot returns a deep copy of the ledger.
func (uc *LedgerUseCase) Snapshot(ctx context.Context) *domain.Ledger {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.currentLocked(ctx).Clone()
}

// View returns the filtered and sorted expenses.
func (uc *LedgerUseCase) View(ctx context.Context, c Criteria) []domain.Expense {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return View(uc.currentLocked(ctx).Expenses, c)
}

// Stats aggregates the whole ledger.
func (uc *LedgerUseCase) Stats(ctx context.Context) Stats {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return Aggregate(uc.currentLocked(ctx).Expenses, uc.clock.Now(), uc.location)
}

// BudgetStatus compares total spend with the configured budget.
func (uc *LedgerUseCase) BudgetStatus(ctx context.Context) domain.BudgetStatus {
	budget := domain.DefaultPreferences().Budget
	if uc.preferences != nil {
		budget = uc.preferences.Get(ctx).Budget
	}

	return domain.EvaluateBudget(uc.Stats(ctx).Total, budget)
}

// Upcoming lists recurring occurrences due within horizon.
func (uc *LedgerUseCase) Upcoming(ctx context.Context, horizon time.Duration) []Upcoming {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return UpcomingOccurrences(uc.currentLocked(ctx).Expenses, uc.clock.Now(), horizon)
}

// ExportCSV renders the ledger as CSV and returns it with its file name.
func (uc *LedgerUseCase) ExportCSV(ctx context.Context) ([]byte, string) {
	snapshot := uc.Snapshot(ctx)
	return ToCSV(snapshot), ExportFilename(ExportCSV, uc.clock.Now().In(uc.location))
}

// ExportJSON renders the ledger as a JSON backup and returns it with its
// file name.
func (uc *LedgerUseCase) ExportJSON(ctx context.Context) ([]byte, string, error) {
	snapshot := uc.Snapshot(ctx)
	data, err := ToJSONSnapshot(snapshot)
	if err != nil {
		return nil, "", err
	}
	return data, ExportFilename(ExportJSON, uc.clock.Now().In(uc.location)), nil
}

func (uc *LedgerUseCase) currentLocked(ctx context.Context) *domain.Ledger {
	if uc.ledger == nil {
		uc.ledger = uc.store.Load(ctx, uc.location)
	}
	return uc.ledger
}

// commitLocked runs a recurrence pass over next, saves it and swaps it in.
func (uc *LedgerUseCase) commitLocked(ctx context.Context, next *domain.Ledger) error {
	spawned, updated := uc.engine.Materialize(next.Expenses, uc.clock.Now())
	next.Expenses = updated

	if err := uc.store.Save(ctx, next); err != nil {
		return err
	}
	uc.ledger = next

	uc.recordSpawned(spawned)
	return nil
}

func (uc *LedgerUseCase) materializeLocked(ctx context.Context) ([]domain.Expense, error) {
	spawned, updated := uc.engine.Materialize(uc.ledger.Expenses, uc.clock.Now())
	if len(spawned) == 0 {
		return nil, nil
	}

	next := &domain.Ledger{Expenses: updated, Meta: uc.ledger.Meta}
	if err := uc.store.Save(ctx, next); err != nil {
		return nil, err
	}
	uc.ledger = next

	uc.recordSpawned(spawned)
	return spawned, nil
}

func (uc *LedgerUseCase) recordSpawned(spawned []domain.Expense) {
	if len(spawned) == 0 {
		return
	}
	uc.metrics.RecurrencesMaterialized(len(spawned))
	uc.logger.Info().Int("count", len(spawned)).Msg("recurring expenses materialized")
}

func (uc *LedgerUseCase) confirm(ctx context.Context, prompt string) error {
	if uc.confirmer == nil {
		return domain.ErrConfirmationDeclined
	}

	ok, err := uc.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return domain.ErrConfirmationDeclined
	}
	return nil
}
