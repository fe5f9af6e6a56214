package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/tair/foodgram/internal/apperr"
	"github.com/tair/foodgram/pkg/logger"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RespondJSON writes payload as JSON with the given status
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	json.NewEncoder(w).Encode(payload)
}

// RespondData wraps data in a successful envelope
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, Response{Success: true, Data: data})
}

// RespondMessage writes a successful envelope carrying only a message
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: true, Message: message})
}

// RespondStatus writes an error envelope with an explicit status.
// Its signature matches auth.ErrorResponder.
func RespondStatus(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: false, Error: message})
}

// RespondError maps err onto a status code and writes an error envelope
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context()).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	} else {
		logger.Debug(r.Context()).
			Err(err).
			Str("kind", apperr.KindOf(err).String()).
			Msg("Request rejected")
	}
	RespondStatus(w, status, apperr.MessageOf(err))
}

// RespondNoContent writes 204 with an empty body
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
