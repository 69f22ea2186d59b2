package handler

import (
	"encoding/json"
	"net/http"

	"github.com/quotation-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// ActionResultEnvelope wraps confirm-action responses.
type ActionResultEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Action  domain.Action `json:"action,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
