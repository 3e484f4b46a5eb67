package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

// RecurrenceResponse describes the recurrence of an expense.
type RecurrenceResponse struct {
	Frequency domain.Frequency `json:"frequency"`
	SpawnedID string           `json:"spawned_id,omitempty"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Amount        decimal.Decimal     `json:"amount"`
	Category      domain.Category     `json:"category"`
	CategoryLabel string              `json:"category_label"`
	Date          time.Time           `json:"date"`
	Notes         string              `json:"notes,omitempty"`
	Recurring     *RecurrenceResponse `json:"recurring,omitempty"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:            e.ID,
		Title:         e.Title,
		Amount:        e.Amount,
		Category:      e.Category,
		CategoryLabel: e.Category.Label(),
		Date:          e.Date,
		Notes:         e.Notes,
	}
	if e.Recurring != nil {
		resp.Recurring = &RecurrenceResponse{
			Frequency: e.Recurring.Frequency,
			SpawnedID: e.Recurring.SpawnedID,
		}
	}
	return resp
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []domain.Expense) []ExpenseResponse {
	result := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// ListExpensesResponse represents a filtered list of expenses.
type ListExpensesResponse struct {
	Expenses []ExpenseResponse `json:"expenses"`
	Total    int               `json:"total"`
}

// ClearResponse reports how many expenses a clear removed.
type ClearResponse struct {
	Removed int `json:"removed"`
}

// RecurrenceRunResponse lists the expenses spawned by a recurrence pass.
type RecurrenceRunResponse struct {
	Spawned []ExpenseResponse `json:"spawned"`
	Count   int               `json:"count"`
}

// UpcomingResponse is a recurring occurrence due soon.
type UpcomingResponse struct {
	Template ExpenseResponse `json:"template"`
	DueAt    time.Time       `json:"due_at"`
}

// UpcomingFromUseCase converts upcoming occurrences to responses.
func UpcomingFromUseCase(items []usecase.Upcoming) []UpcomingResponse {
	result := make([]UpcomingResponse, len(items))
	for i, u := range items {
		result[i] = UpcomingResponse{
			Template: ExpenseFromDomain(u.Template),
			DueAt:    u.DueAt,
		}
	}
	return result
}

// BudgetResponse reports spend against the configured budget.
type BudgetResponse struct {
	Budget           decimal.Decimal   `json:"budget"`
	Spent            decimal.Decimal   `json:"spent"`
	Percent          decimal.Decimal   `json:"percent"`
	Tier             domain.BudgetTier `json:"tier"`
	RemainingPercent int64             `json:"remaining_percent"`
	HasBudget        bool              `json:"has_budget"`
}

// BudgetFromDomain builds a BudgetResponse.
func BudgetFromDomain(budget, spent decimal.Decimal, status domain.BudgetStatus) BudgetResponse {
	return BudgetResponse{
		Budget:           budget,
		Spent:            spent,
		Percent:          status.Percent.Round(2),
		Tier:             status.Tier,
		RemainingPercent: status.RemainingPercent,
		HasBudget:        status.HasBudget,
	}
}

// PreferencesResponse represents user preferences.
type PreferencesResponse struct {
	Budget   decimal.Decimal `json:"budget"`
	Username string          `json:"username"`
}

// PreferencesFromDomain converts domain preferences to a response.
func PreferencesFromDomain(p domain.Preferences) PreferencesResponse {
	return PreferencesResponse{Budget: p.Budget, Username: p.Username}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
