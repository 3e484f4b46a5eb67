package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfirmation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   bool
	}{
		{"no confirmation", "/api/v1/data", "", false},
		{"header", "/api/v1/data", "true", true},
		{"query", "/api/v1/data?confirm=1", "", true},
		{"header wins over query", "/api/v1/data?confirm=true", "false", false},
		{"garbage", "/api/v1/data", "yes please", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(ConfirmHeader, tt.header)
			}

			var got bool
			Confirmation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = ContextConfirmer{}.Confirm(r.Context(), "Delete?")
			})).ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Fatalf("confirmed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContextConfirmer_DefaultsToDeclined(t *testing.T) {
	ok, err := ContextConfirmer{}.Confirm(context.Background(), "Delete?")
	if err != nil || ok {
		t.Fatalf("expected declined without error, got %v %v", ok, err)
	}
}
