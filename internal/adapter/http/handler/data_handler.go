package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/iho/gospend/internal/adapter/http/dto"
	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

// maxImportBytes bounds the size of an uploaded backup.
const maxImportBytes = 10 << 20

// DataService defines the behavior needed by DataHandler.
type DataService interface {
	ExportCSV(ctx context.Context) ([]byte, string)
	ExportJSON(ctx context.Context) ([]byte, string, error)
	Import(ctx context.Context, raw []byte, mode usecase.ImportMode) (usecase.ImportResult, error)
	RunRecurrence(ctx context.Context) ([]domain.Expense, error)
	DeleteAllData(ctx context.Context) error
}

// DataHandler handles export, import, recurrence runs and data deletion.
type DataHandler struct {
	ledger DataService
}

// NewDataHandler creates a new DataHandler.
func NewDataHandler(ledger DataService) *DataHandler {
	return &DataHandler{ledger: ledger}
}

// ExportCSV downloads the ledger as CSV.
func (h *DataHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, filename := h.ledger.ExportCSV(r.Context())
	writeAttachment(w, "text/csv; charset=utf-8", filename, data)
}

// ExportJSON downloads the ledger as a JSON backup.
func (h *DataHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.ledger.ExportJSON(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export ledger", err.Error())
		return
	}
	writeAttachment(w, "application/json", filename, data)
}

// Import reads a JSON backup from the body. ?mode=merge (default) appends
// unseen expenses; ?mode=replace swaps the ledger and requires
// confirmation.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	mode, err := usecase.ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeDomainError(w, "invalid import mode", err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "backup too large", err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	result, err := h.ledger.Import(r.Context(), raw, mode)
	if err != nil {
		writeDomainError(w, "failed to import backup", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RunRecurrence materializes due recurring expenses now.
func (h *DataHandler) RunRecurrence(w http.ResponseWriter, r *http.Request) {
	spawned, err := h.ledger.RunRecurrence(r.Context())
	if err != nil {
		writeDomainError(w, "failed to run recurrence", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RecurrenceRunResponse{
		Spawned: dto.ExpensesFromDomain(spawned),
		Count:   len(spawned),
	})
}

// DeleteAll wipes the ledger and preferences. Requires confirmation.
func (h *DataHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteAllData(r.Context()); err != nil {
		writeDomainError(w, "failed to delete data", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
