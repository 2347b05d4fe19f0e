package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the failure envelope shared with the handlers. The
// middleware cannot import the handler package, so the shape is repeated
// here.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
