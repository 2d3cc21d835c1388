package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Helper to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

// mustMarshal encodes payloads whose types cannot fail to marshal.
func mustMarshal(payload any) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal response payload", "error", err)
		return []byte("{}")
	}
	return data
}

func respondError(w http.ResponseWriter, status int, action string, err error) {
	respondJSON(w, status, map[string]any{
		"error":  err.Error(),
		"action": action,
	})
}
