package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

// Amount accepts a JSON number or string and keeps the raw text, so that
// "12,50" typed into a form reaches the same parser as the CLI.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		*a = Amount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount must be a number or string: %w", err)
		}
		*a = Amount(n.String())
	}
	return nil
}

// CreateExpenseRequest represents a request to create an expense.
type CreateExpenseRequest struct {
	Title      string `json:"title"`
	Amount     Amount `json:"amount"`
	Category   string `json:"category"`
	Date       string `json:"date,omitempty"`
	Notes      string `json:"notes,omitempty"`
	Recurrence string `json:"recurrence,omitempty"`
}

// ToUseCaseInput converts to use case input. Dates without a zone are read
// in loc; an empty date means now.
func (r *CreateExpenseRequest) ToUseCaseInput(loc *time.Location) (usecase.ExpenseInput, error) {
	in := usecase.ExpenseInput{
		Title:      r.Title,
		Amount:     string(r.Amount),
		Category:   r.Category,
		Notes:      r.Notes,
		Recurrence: r.Recurrence,
	}

	if r.Date != "" {
		date, err := domain.ParseDate(r.Date, loc)
		if err != nil {
			return usecase.ExpenseInput{}, err
		}
		in.Date = date
	}

	return in, nil
}

// UpdateExpenseRequest represents a partial update of an expense. Absent
// fields are left unchanged.
type UpdateExpenseRequest struct {
	Title      *string `json:"title,omitempty"`
	Amount     *Amount `json:"amount,omitempty"`
	Category   *string `json:"category,omitempty"`
	Date       *string `json:"date,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Recurrence *string `json:"recurrence,omitempty"`
}

// ToUseCasePatch converts to a use case patch.
func (r *UpdateExpenseRequest) ToUseCasePatch(loc *time.Location) (usecase.ExpensePatch, error) {
	patch := usecase.ExpensePatch{
		Title:      r.Title,
		Category:   r.Category,
		Notes:      r.Notes,
		Recurrence: r.Recurrence,
	}

	if r.Amount != nil {
		amount := string(*r.Amount)
		patch.Amount = &amount
	}

	if r.Date != nil {
		date, err := domain.ParseDate(*r.Date, loc)
		if err != nil {
			return usecase.ExpensePatch{}, err
		}
		patch.Date = &date
	}

	return patch, nil
}

// UpdatePreferencesRequest changes the budget, the username, or both.
type UpdatePreferencesRequest struct {
	Budget   *Amount `json:"budget,omitempty"`
	Username *string `json:"username,omitempty"`
}
