package domain

import "time"

// LedgerMeta holds ledger-wide metadata.
type LedgerMeta struct {
	CreatedAt time.Time `json:"createdAt"`
}

// Ledger is the full ordered collection of expenses. Expenses keep
// insertion order, not any sort order.
type Ledger struct {
	Expenses []Expense `json:"expenses"`
	Meta     LedgerMeta `json:"meta"`
}

// NewLedger returns an empty ledger created at now.
func NewLedger(now time.Time) *Ledger {
	return &Ledger{
		Expenses: []Expense{},
		Meta:     LedgerMeta{CreatedAt: now},
	}
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	expenses := make([]Expense, len(l.Expenses))
	for i, e := range l.Expenses {
		expenses[i] = e.Clone()
	}
	return &Ledger{Expenses: expenses, Meta: l.Meta}
}

// IndexOf returns the position of the expense with id, or -1.
func (l *Ledger) IndexOf(id string) int {
	for i := range l.Expenses {
		if l.Expenses[i].ID == id {
			return i
		}
	}
	return -1
}

// IDs returns the set of expense ids in the ledger.
func (l *Ledger) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(l.Expenses))
	for _, e := range l.Expenses {
		ids[e.ID] = struct{}{}
	}
	return ids
}
