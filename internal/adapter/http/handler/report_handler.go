package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/iho/gospend/internal/adapter/http/dto"
	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

const (
	defaultUpcomingDays = 7
	maxUpcomingDays     = 366
)

// ReportService defines the behavior needed by ReportHandler.
type ReportService interface {
	Stats(ctx context.Context) usecase.Stats
	BudgetStatus(ctx context.Context) domain.BudgetStatus
	Upcoming(ctx context.Context, horizon time.Duration) []usecase.Upcoming
}

// BudgetSource returns the configured budget.
type BudgetSource interface {
	Get(ctx context.Context) domain.Preferences
}

// ReportHandler serves aggregate views of the ledger.
type ReportHandler struct {
	ledger      ReportService
	preferences BudgetSource
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(ledger ReportService, preferences BudgetSource) *ReportHandler {
	return &ReportHandler{ledger: ledger, preferences: preferences}
}

// Stats returns totals by category and the daily trend.
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ledger.Stats(r.Context()))
}

// Budget returns spend against the configured budget.
func (h *ReportHandler) Budget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := h.ledger.Stats(ctx)
	status := h.ledger.BudgetStatus(ctx)
	prefs := h.preferences.Get(ctx)

	writeJSON(w, http.StatusOK, dto.BudgetFromDomain(prefs.Budget, stats.Total, status))
}

// Upcoming lists recurring occurrences due within ?days= days.
func (h *ReportHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days := parseIntQuery(r, "days", defaultUpcomingDays)
	if days < 1 || days > maxUpcomingDays {
		writeError(w, http.StatusBadRequest, "invalid days", "days must be between 1 and 366")
		return
	}

	items := h.ledger.Upcoming(r.Context(), time.Duration(days)*24*time.Hour)
	writeJSON(w, http.StatusOK, dto.UpcomingFromUseCase(items))
}
