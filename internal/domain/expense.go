package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring expense repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency maps a recurrence selection to a Frequency.
// "none" and the empty string report false.
func ParseFrequency(raw string) (Frequency, bool) {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(raw))); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return f, true
	default:
		return "", false
	}
}

// Valid reports whether f is a supported frequency.
func (f Frequency) Valid() bool {
	_, ok := ParseFrequency(string(f))
	return ok
}

// Advance returns t moved forward by one period. Monthly steps keep the
// day of month, clamped to the last day of the target month.
func (f Frequency) Advance(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthClamped(t)
	default:
		return t
	}
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(year, month+1, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// Recurrence marks an expense as a template for future occurrences.
type Recurrence struct {
	Frequency Frequency `json:"frequency"`
	// SpawnedID is the id of the occurrence this template already produced.
	SpawnedID string `json:"spawnedId,omitempty"`
}

// Expense is a single dated money entry.
type Expense struct {
	Date      time.Time
	Recurring *Recurrence
	ID        string
	Title     string
	Category  Category
	Notes     string
	Amount    decimal.Decimal
}

// IsTemplate reports whether the expense should still spawn occurrences.
func (e *Expense) IsTemplate() bool {
	return e.Recurring != nil && e.Recurring.SpawnedID == "" && e.Recurring.Frequency.Valid()
}

// Clone returns a deep copy of the expense.
func (e Expense) Clone() Expense {
	if e.Recurring != nil {
		r := *e.Recurring
		e.Recurring = &r
	}
	return e
}

type expenseWire struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Amount    json.Number `json:"amount"`
	Category  Category    `json:"category"`
	Date      time.Time   `json:"date"`
	Notes     string      `json:"notes"`
	Recurring *Recurrence `json:"recurring"`
}

type expenseWireIn struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Amount    json.RawMessage `json:"amount"`
	Category  Category        `json:"category"`
	Date      string          `json:"date"`
	Notes     string          `json:"notes"`
	Recurring *Recurrence     `json:"recurring"`
}

// MarshalJSON encodes the amount as a JSON number.
func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseWire{
		ID:        e.ID,
		Title:     e.Title,
		Amount:    json.Number(e.Amount.String()),
		Category:  e.Category,
		Date:      e.Date,
		Notes:     e.Notes,
		Recurring: e.Recurring,
	})
}

// UnmarshalJSON decodes with DecodeExpense in time.Local. Callers that know
// the ledger's location use DecodeExpense directly.
func (e *Expense) UnmarshalJSON(data []byte) error {
	decoded, err := DecodeExpense(data, time.Local)
	if err != nil {
		return err
	}
	*e = decoded
	return nil
}

// DecodeExpense accepts numeric or string amounts (anything else becomes 0)
// and RFC 3339 or date-only timestamps. Timestamps without a zone are taken
// in loc.
func DecodeExpense(data []byte, loc *time.Location) (Expense, error) {
	var in expenseWireIn
	if err := json.Unmarshal(data, &in); err != nil {
		return Expense{}, err
	}

	var date time.Time
	if in.Date != "" {
		parsed, err := ParseDate(in.Date, loc)
		if err != nil {
			return Expense{}, err
		}
		date = parsed
	}

	return Expense{
		ID:        in.ID,
		Title:     in.Title,
		Amount:    decodeAmount(in.Amount),
		Category:  in.Category,
		Date:      date,
		Notes:     in.Notes,
		Recurring: in.Recurring,
	}, nil
}

func decodeAmount(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return decimal.Zero
		}
		return ParseAmount(s)
	}
	return ParseAmount(string(raw))
}

// ParseAmount coerces raw user input to a decimal, returning zero when it
// cannot be parsed. A comma is accepted as the decimal separator.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	if !strings.Contains(raw, ".") {
		raw = strings.Replace(raw, ",", ".", 1)
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses an absolute timestamp or a calendar date. Values without
// a zone are interpreted in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
