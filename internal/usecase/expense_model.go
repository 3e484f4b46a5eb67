package usecase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gospend/internal/domain"
)

// ExpenseInput is the raw data for a new expense.
type ExpenseInput struct {
	Date       time.Time
	Title      string
	Amount     string
	Category   string
	Notes      string
	Recurrence string // daily, weekly, monthly, or none
}

// ExpensePatch changes selected fields of an existing expense.
// Nil fields are left untouched.
type ExpensePatch struct {
	Date       *time.Time
	Title      *string
	Amount     *string
	Category   *string
	Notes      *string
	Recurrence *string
}

// IsEmpty reports whether the patch changes nothing.
func (p ExpensePatch) IsEmpty() bool {
	return p.Date == nil && p.Title == nil && p.Amount == nil &&
		p.Category == nil && p.Notes == nil && p.Recurrence == nil
}

// ExpenseModel builds and updates expense records. It does not validate;
// callers check title and amount first.
type ExpenseModel struct {
	idGen IDGenerator
	clock Clock
}

// NewExpenseModel creates a new ExpenseModel.
func NewExpenseModel(idGen IDGenerator, clock Clock) *ExpenseModel {
	return &ExpenseModel{
		idGen: idGen,
		clock: clock,
	}
}

// Create builds a new record with a fresh id.
func (m *ExpenseModel) Create(in ExpenseInput) domain.Expense {
	date := in.Date
	if date.IsZero() {
		date = m.clock.Now()
	}

	return domain.Expense{
		ID:        m.idGen.Generate(),
		Title:     strings.TrimSpace(in.Title),
		Amount:    domain.ParseAmount(in.Amount),
		Category:  domain.NormalizeCategory(in.Category),
		Date:      date.Round(0),
		Notes:     strings.TrimSpace(in.Notes),
		Recurring: newRecurrence(in.Recurrence),
	}
}

// Update returns a copy of rec with the patch applied. The id is preserved.
func (m *ExpenseModel) Update(rec domain.Expense, p ExpensePatch) domain.Expense {
	out := rec.Clone()

	if p.Title != nil {
		out.Title = strings.TrimSpace(*p.Title)
	}
	if p.Amount != nil {
		out.Amount = domain.ParseAmount(*p.Amount)
	}
	if p.Category != nil {
		out.Category = domain.NormalizeCategory(*p.Category)
	}
	if p.Date != nil && !p.Date.IsZero() {
		out.Date = p.Date.Round(0)
	}
	if p.Notes != nil {
		out.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Recurrence != nil {
		out.Recurring = patchRecurrence(out.Recurring, *p.Recurrence)
	}

	return out
}

// PatchedAmount returns the amount the patch would set, if any.
func (p ExpensePatch) PatchedAmount() (decimal.Decimal, bool) {
	if p.Amount == nil {
		return decimal.Zero, false
	}
	return domain.ParseAmount(*p.Amount), true
}

func newRecurrence(selection string) *domain.Recurrence {
	freq, ok := domain.ParseFrequency(selection)
	if !ok {
		return nil
	}
	return &domain.Recurrence{Frequency: freq}
}

// patchRecurrence keeps the spawned marker so an edited template that
// already produced its successor does not produce a second one.
func patchRecurrence(current *domain.Recurrence, selection string) *domain.Recurrence {
	next := newRecurrence(selection)
	if next == nil || current == nil {
		return next
	}
	next.SpawnedID = current.SpawnedID
	return next
}
