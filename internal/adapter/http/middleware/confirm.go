package middleware

import (
	"context"
	"net/http"
	"strconv"
)

// ConfirmHeader approves destructive operations for a single request.
const ConfirmHeader = "X-Confirm"

type confirmKey struct{}

// Confirmation marks the request context as confirmed when the client sends
// "X-Confirm: true" or "?confirm=true".
func Confirmation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(ConfirmHeader)
		if raw == "" {
			raw = r.URL.Query().Get("confirm")
		}

		confirmed, _ := strconv.ParseBool(raw)
		ctx := context.WithValue(r.Context(), confirmKey{}, confirmed)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IsConfirmed reports whether ctx carries a confirmation.
func IsConfirmed(ctx context.Context) bool {
	confirmed, _ := ctx.Value(confirmKey{}).(bool)
	return confirmed
}

// ContextConfirmer answers confirmation prompts from the request context.
// It implements usecase.Confirmer.
type ContextConfirmer struct{}

// Confirm reports the confirmation carried by ctx. The prompt is not shown
// to anyone; clients learn about it from the 409 response.
func (ContextConfirmer) Confirm(ctx context.Context, _ string) (bool, error) {
	return IsConfirmed(ctx), nil
}
