package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/postboard/postboard-be/internal/errs"
	"github.com/rs/zerolog/log"
)

// writeJSON sends v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to write JSON response")
	}
}

// writeError sends an HTTPError as JSON.
func writeError(w http.ResponseWriter, httpErr *errs.HTTPError) {
	writeJSON(w, httpErr.Status, httpErr)
}

// messageResponse is the body of successful update and delete calls.
type messageResponse struct {
	Message string `json:"message"`
}
