// Package httputil holds the JSON response helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "signup/pkg/domain-errors"
)

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the standard error envelope.
// Internal errors never expose their description to the client.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	description := ""
	if de, ok := dErrors.As(err); ok {
		code = de.Code
		description = de.Message
	}

	body := map[string]string{"error": string(code)}
	if code != dErrors.CodeInternal && description != "" {
		body["error_description"] = description
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}
