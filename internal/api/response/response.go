// Package response holds the JSON response helpers shared by all handlers.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the error envelope for every failed request.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// RespondJSON writes a JSON response directly without wrapping.
func RespondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// RespondDetail writes an error response with the given status and detail text.
func RespondDetail(w http.ResponseWriter, statusCode int, detail string) {
	RespondJSON(w, statusCode, ErrorBody{Detail: detail})
}

// RespondInternalServerError writes a 500 error response.
func RespondInternalServerError(w http.ResponseWriter, detail string) {
	RespondDetail(w, http.StatusInternalServerError, detail)
}

// RespondBadRequest writes a 400 error response.
func RespondBadRequest(w http.ResponseWriter, detail string) {
	RespondDetail(w, http.StatusBadRequest, detail)
}
