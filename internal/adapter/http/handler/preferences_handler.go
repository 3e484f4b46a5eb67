package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/gospend/internal/adapter/http/dto"
	"github.com/iho/gospend/internal/domain"
)

// PreferencesService defines the behavior needed by PreferencesHandler.
type PreferencesService interface {
	Get(ctx context.Context) domain.Preferences
	SetBudget(ctx context.Context, raw string) (domain.Preferences, error)
	SetUsername(ctx context.Context, name string) (domain.Preferences, error)
}

// PreferencesHandler handles budget and username settings.
type PreferencesHandler struct {
	preferences PreferencesService
}

// NewPreferencesHandler creates a new PreferencesHandler.
func NewPreferencesHandler(preferences PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{preferences: preferences}
}

// Get returns the current preferences.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.PreferencesFromDomain(h.preferences.Get(r.Context())))
}

// Update sets the budget and/or the username.
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Budget == nil && req.Username == nil {
		writeError(w, http.StatusBadRequest, "nothing to update", "send budget and/or username")
		return
	}

	ctx := r.Context()
	prefs := h.preferences.Get(ctx)
	var err error

	if req.Budget != nil {
		prefs, err = h.preferences.SetBudget(ctx, string(*req.Budget))
		if err != nil {
			writeDomainError(w, "failed to set budget", err)
			return
		}
	}

	if req.Username != nil {
		prefs, err = h.preferences.SetUsername(ctx, *req.Username)
		if err != nil {
			writeDomainError(w, "failed to set username", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, dto.PreferencesFromDomain(prefs))
}
