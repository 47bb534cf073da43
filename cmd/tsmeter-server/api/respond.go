package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// StatusFor maps an error class to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, meter.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, meter.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, meter.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, meter.ErrConnection):
		return http.StatusServiceUnavailable
	case errors.Is(err, meter.ErrInvalidCommand),
		errors.Is(err, meter.ErrDevice),
		errors.Is(err, meter.ErrParse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeJSONResponse writes a JSON response with the given status code.
func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSONResponse(w, status, ErrorResponse{Error: message, Details: details})
}

// writeError renders err with the status of its class.
func writeError(w http.ResponseWriter, err error) {
	writeJSONResponse(w, StatusFor(err), ErrorResponse{
		Error: err.Error(),
		Kind:  meter.Kind(err),
	})
}
