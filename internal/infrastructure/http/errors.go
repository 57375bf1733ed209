package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Standard messages used as ErrorResponse.Message.
const (
	MessageValidation     = "Error de Validación"
	MessageNotFound       = "Recurso no encontrado"
	MessageConflict       = "Conflicto"
	MessageInternal       = "Error Interno del Servidor"
	MessageInternalDetail = "Ha ocurrido un error interno"
)

// ErrorResponse represents a standardized error response format.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

// WriteError writes a standardized JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string, errors []string, log *slog.Logger) {
	if errors == nil {
		errors = []string{}
	}
	WriteJSON(w, statusCode, ErrorResponse{Message: message, Errors: errors}, log)
}

// WriteInternal answers 500 without leaking err to the client.
func WriteInternal(w http.ResponseWriter, err error, log *slog.Logger) {
	if log != nil {
		log.Error("request failed", "error", err)
	}
	WriteError(w, http.StatusInternalServerError, MessageInternal, []string{MessageInternalDetail}, nil)
}

// WriteJSON encodes payload with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// the status line is already on the wire
		if log != nil {
			log.Error("failed to encode response", "error", err)
		}
	}
}
