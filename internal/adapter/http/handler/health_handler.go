package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/iho/gospend/internal/domain"
	"github.com/iho/gospend/internal/usecase"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	store   usecase.BlobStore
	backend string
}

// NewHealthHandler creates a new HealthHandler that probes store.
func NewHealthHandler(store usecase.BlobStore, backend string) *HealthHandler {
	return &HealthHandler{store: store, backend: backend}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the blob store answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.store.Get(ctx, usecase.PreferencesKey); err != nil && !errors.Is(err, domain.ErrBlobNotFound) {
		writeError(w, http.StatusServiceUnavailable, h.backend+" unhealthy", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ready",
		h.backend: "ok",
	})
}
