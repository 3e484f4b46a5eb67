package usecase

import (
	"slices"
	"time"

	"github.com/iho/gospend/internal/domain"
)

// RecurrenceEngine materializes due occurrences of recurring templates.
type RecurrenceEngine struct {
	idGen IDGenerator
}

// NewRecurrenceEngine creates a new RecurrenceEngine.
func NewRecurrenceEngine(idGen IDGenerator) *RecurrenceEngine {
	return &RecurrenceEngine{idGen: idGen}
}

// NextOccurrence returns when the template is next due, or false when e
// does not spawn anymore.
func NextOccurrence(e domain.Expense) (time.Time, bool) {
	if !e.IsTemplate() {
		return time.Time{}, false
	}
	return e.Recurring.Frequency.Advance(e.Date), true
}

// IsDue reports whether the template's next occurrence has been reached,
// allowing RecurrenceTolerance of slack.
func IsDue(e domain.Expense, now time.Time) bool {
	next, ok := NextOccurrence(e)
	if !ok {
		return false
	}
	return !now.Before(next.Add(-RecurrenceTolerance))
}

// Materialize returns the occurrences produced for every due template and
// the full updated list: the input with spawning templates marked and the
// new records appended. The input slice is not modified. Each template
// spawns at most once per call.
func (r *RecurrenceEngine) Materialize(expenses []domain.Expense, now time.Time) ([]domain.Expense, []domain.Expense) {
	updated := make([]domain.Expense, len(expenses))
	for i, e := range expenses {
		updated[i] = e.Clone()
	}

	successors := successorIndex(expenses)
	var spawned []domain.Expense

	for i := range expenses {
		tmpl := &updated[i]
		if !IsDue(*tmpl, now) {
			continue
		}
		next := tmpl.Recurring.Frequency.Advance(tmpl.Date)

		// Data written before spawn markers existed may already hold the
		// successor; adopt it instead of producing a duplicate.
		if id, ok := successors[occurrenceKeyOf(*tmpl, next)]; ok && id != tmpl.ID {
			tmpl.Recurring.SpawnedID = id
			continue
		}

		child := tmpl.Clone()
		child.ID = r.idGen.Generate()
		child.Date = next
		child.Recurring = &domain.Recurrence{Frequency: tmpl.Recurring.Frequency}

		tmpl.Recurring.SpawnedID = child.ID
		spawned = append(spawned, child)
	}

	updated = append(updated, spawned...)
	return spawned, updated
}

// Upcoming is the pending next occurrence of a live template.
type Upcoming struct {
	Template domain.Expense `json:"template"`
	DueAt    time.Time      `json:"dueAt"`
}

// UpcomingOccurrences returns pending occurrences due before now+horizon,
// soonest first.
func UpcomingOccurrences(expenses []domain.Expense, now time.Time, horizon time.Duration) []Upcoming {
	limit := now.Add(horizon)
	var out []Upcoming

	for _, e := range expenses {
		next, ok := NextOccurrence(e)
		if !ok || next.After(limit) {
			continue
		}
		out = append(out, Upcoming{Template: e.Clone(), DueAt: next})
	}

	slices.SortStableFunc(out, func(a, b Upcoming) int {
		return a.DueAt.Compare(b.DueAt)
	})
	return out
}

type occurrenceKey struct {
	title     string
	category  domain.Category
	amount    string
	frequency domain.Frequency
	date      int64
}

func occurrenceKeyOf(e domain.Expense, date time.Time) occurrenceKey {
	return occurrenceKey{
		title:     e.Title,
		category:  e.Category,
		amount:    e.Amount.String(),
		frequency: e.Recurring.Frequency,
		date:      date.UnixMilli(),
	}
}

func successorIndex(expenses []domain.Expense) map[occurrenceKey]string {
	idx := make(map[occurrenceKey]string)
	for _, e := range expenses {
		if e.Recurring == nil {
			continue
		}
		idx[occurrenceKeyOf(e, e.Date)] = e.ID
	}
	return idx
}
