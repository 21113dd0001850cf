// Package middleware provides HTTP middleware for the Inkwell API server.
package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError emits the API error envelope from middleware, which
// cannot depend on the handlers package.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   message,
	})
}
