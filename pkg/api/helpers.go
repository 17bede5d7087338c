// Package api provides standardized helper functions for HTTP API responses.
package api

import (
	"encoding/json"
	"net/http"

	appErrors "ledgerchat-backend/pkg/errors"
)

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends a standardized error response with consistent JSON format.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ErrorFromApp maps an application error to the appropriate HTTP status code.
func ErrorFromApp(w http.ResponseWriter, err error) {
	switch appErrors.TypeOf(err) {
	case appErrors.ErrorTypeValidation:
		Error(w, http.StatusBadRequest, err.Error())
	case appErrors.ErrorTypeNotFound:
		Error(w, http.StatusNotFound, err.Error())
	case appErrors.ErrorTypeOwnership:
		Error(w, http.StatusForbidden, err.Error())
	case appErrors.ErrorTypeRateLimited:
		Error(w, http.StatusTooManyRequests, err.Error())
	case appErrors.ErrorTypeTimeout:
		Error(w, http.StatusGatewayTimeout, err.Error())
	case appErrors.ErrorTypeUnavailable, appErrors.ErrorTypeProvider:
		Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}
