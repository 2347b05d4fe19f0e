package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const maxBodySize = 1 << 20 // 1 MB

// Envelope is the body of every API response. Error holds either a single
// message or a list of validation messages.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Count   *int `json:"count,omitempty"`
	Error   any  `json:"error,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteList writes a collection along with its size.
func WriteList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: items, Count: &n})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Error: message})
}

func WriteErrors(w http.ResponseWriter, status int, messages []string) {
	WriteJSON(w, status, Envelope{Success: false, Error: messages})
}

// decodeJSON reads a size-limited JSON body into dst. On failure it writes
// the 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
