package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{
			name:    "unauthorized",
			code:    http.StatusUnauthorized,
			message: "Invalid or expired token",
		},
		{
			name:    "not found",
			code:    http.StatusNotFound,
			message: "orbit is temporarily unavailable. Please try again shortly.",
		},
		{
			name:    "rate limited",
			code:    http.StatusTooManyRequests,
			message: "Rate limit exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithError(w, tt.code, tt.message)

			if w.Code != tt.code {
				t.Errorf("RespondWithError() status = %d, want %d", w.Code, tt.code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("RespondWithError() Content-Type = %s, want application/json", ct)
			}

			var response ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Error != tt.message {
				t.Errorf("RespondWithError() message = %s, want %s", response.Error, tt.message)
			}
		})
	}
}

func TestRespondWithJSON(t *testing.T) {
	t.Run("map payload", func(t *testing.T) {
		w := httptest.NewRecorder()

		payload := map[string]any{
			"alias_id": "orbit-v3.2",
			"status":   "active",
		}

		if err := RespondWithJSON(w, http.StatusOK, payload); err != nil {
			t.Errorf("RespondWithJSON() error = %v, want nil", err)
		}
		if w.Code != http.StatusOK {
			t.Errorf("RespondWithJSON() status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]any
		if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if response["alias_id"] != "orbit-v3.2" {
			t.Errorf("RespondWithJSON() alias_id = %v, want orbit-v3.2", response["alias_id"])
		}
	})

	t.Run("nil payload encodes null", func(t *testing.T) {
		w := httptest.NewRecorder()

		if err := RespondWithJSON(w, http.StatusOK, nil); err != nil {
			t.Errorf("RespondWithJSON() error = %v, want nil", err)
		}
		if body := w.Body.String(); body != "null\n" {
			t.Errorf("RespondWithJSON() body = %q, want null", body)
		}
	})
}

func TestRespondNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	RespondNoContent(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("RespondNoContent() status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("RespondNoContent() wrote a body: %q", w.Body.String())
	}
}
