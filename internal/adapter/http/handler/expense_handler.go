package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gospend/internal/adapter/http/dto"
	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

// ExpenseService defines the behavior needed by ExpenseHandler.
type ExpenseService interface {
	AddExpense(ctx context.Context, in usecase.ExpenseInput) (domain.Expense, error)
	EditExpense(ctx context.Context, id string, patch usecase.ExpensePatch) (domain.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ClearAll(ctx context.Context) (int, error)
	Get(ctx context.Context, id string) (domain.Expense, error)
	View(ctx context.Context, c usecase.Criteria) []domain.Expense
}

// ExpenseHandler handles expense-related HTTP requests.
type ExpenseHandler struct {
	ledger   ExpenseService
	location *time.Location
}

// NewExpenseHandler creates a new ExpenseHandler. Dates sent without a
// zone are read in loc.
func NewExpenseHandler(ledger ExpenseService, loc *time.Location) *ExpenseHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ExpenseHandler{ledger: ledger, location: loc}
}

// Create adds a new expense.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	in, err := req.ToUseCaseInput(h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	expense, err := h.ledger.AddExpense(r.Context(), in)
	if err != nil {
		writeDomainError(w, "failed to create expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ExpenseFromDomain(expense))
}

// Get retrieves an expense by ID.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	expense, err := h.ledger.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get expense", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// List returns the expenses matching the category, q and sort query
// parameters.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	sortKey, err := usecase.ParseSortKey(query.Get("sort"))
	if err != nil {
		writeDomainError(w, "invalid sort", err)
		return
	}

	expenses := h.ledger.View(r.Context(), usecase.Criteria{
		Category: query.Get("category"),
		Search:   query.Get("q"),
		Sort:     sortKey,
	})

	writeJSON(w, http.StatusOK, dto.ListExpensesResponse{
		Expenses: dto.ExpensesFromDomain(expenses),
		Total:    len(expenses),
	})
}

// Update applies a partial update to an expense.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	patch, err := req.ToUseCasePatch(h.location)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	expense, err := h.ledger.EditExpense(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, "failed to update expense", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ExpenseFromDomain(expense))
}

// Delete removes an expense. Requires confirmation.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing expense ID", "")
		return
	}

	if err := h.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeDomainError(w, "failed to delete expense", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Clear removes every expense. Requires confirmation.
func (h *ExpenseHandler) Clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.ledger.ClearAll(r.Context())
	if err != nil {
		writeDomainError(w, "failed to clear expenses", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClearResponse{Removed: removed})
}
