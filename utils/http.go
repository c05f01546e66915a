package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteBadRequest writes a 400 Bad Request response with error details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]interface{}) error {
	return WriteError(w, http.StatusBadRequest, message, details)
}

// WriteUnauthorized writes a 401 with a default message when empty
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return writeStatus(w, http.StatusUnauthorized, message)
}

// WriteForbidden writes a 403 with a default message when empty
func WriteForbidden(w http.ResponseWriter, message string) error {
	return writeStatus(w, http.StatusForbidden, message)
}

// WriteInternalServerError writes a 500 with a default message when empty
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	return writeStatus(w, http.StatusInternalServerError, message)
}

var errorCodes = map[int]string{
	http.StatusBadRequest:       "bad_request",
	http.StatusUnauthorized:     "unauthorized",
	http.StatusForbidden:        "forbidden",
	http.StatusNotFound:         "not_found",
	http.StatusMethodNotAllowed: "method_not_allowed",
	http.StatusBadGateway:       "bad_gateway",
}

var defaultMessages = map[int]string{
	http.StatusUnauthorized:        "Authentication required",
	http.StatusForbidden:           "Access forbidden",
	http.StatusInternalServerError: "Internal server error",
}

func writeStatus(w http.ResponseWriter, status int, message string) error {
	if message == "" {
		message = defaultMessages[status]
	}
	return WriteError(w, status, message, nil)
}

// WriteError writes an ErrorResponse. Statuses without a code map to internal_error.
func WriteError(w http.ResponseWriter, status int, message string, details map[string]interface{}) error {
	code, ok := errorCodes[status]
	if !ok {
		code = "internal_error"
	}
	return WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: details,
	})
}
