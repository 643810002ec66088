// Package apierror provides the JSON error envelope returned by the HTTP API.
//
// Every error response has the shape {"error": {message, type, code, param}}.
package apierror

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error types.
const (
	TypeInvalidRequest = "invalid_request_error"
	TypeAuthentication = "authentication_error"
	TypeRateLimit      = "rate_limit_error"
	TypeServer         = "server_error"
)

// Error is an API error.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// response wraps an Error in the envelope.
type response struct {
	Error *Error `json:"error"`
}

// Write sends an Error as a JSON HTTP response.
func Write(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)

	if encErr := json.NewEncoder(w).Encode(response{Error: err}); encErr != nil {
		slog.Error("failed to encode error response", "err", encErr)
	}
}

// InvalidRequest returns a 400 error for malformed requests.
func InvalidRequest(msg string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: msg,
		Type:    TypeInvalidRequest,
	}
}

// InvalidParam returns a 400 error for a specific invalid parameter.
func InvalidParam(param, msg string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: msg,
		Type:    TypeInvalidRequest,
		Param:   param,
	}
}

// Unauthorized returns a 401 error for a missing or invalid session token.
func Unauthorized(msg string) *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Message: msg,
		Type:    TypeAuthentication,
		Code:    "invalid_token",
	}
}

// InvalidCredentials returns a 401 error for a login the chain rejected.
func InvalidCredentials() *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Message: "Invalid email or password.",
		Type:    TypeAuthentication,
		Code:    "invalid_credentials",
	}
}

// RateLimited returns a 429 error when a client exceeds its request rate.
func RateLimited() *Error {
	return &Error{
		Status:  http.StatusTooManyRequests,
		Message: "Rate limit exceeded. Please retry after a brief wait.",
		Type:    TypeRateLimit,
		Code:    "rate_limit_exceeded",
	}
}

// LoginThrottled returns a 429 error when the login chain's throttle has
// tripped. Logins stay closed until the throttle window ends.
func LoginThrottled() *Error {
	return &Error{
		Status:  http.StatusTooManyRequests,
		Message: "Too many login attempts. Logins are suspended for the current window.",
		Type:    TypeRateLimit,
		Code:    "login_throttled",
	}
}

// Unavailable returns a 503 error when the service cannot take requests.
func Unavailable(msg string) *Error {
	return &Error{
		Status:  http.StatusServiceUnavailable,
		Message: msg,
		Type:    TypeServer,
		Code:    "unavailable",
	}
}

// Internal returns a 500 error for unexpected server failures.
func Internal(msg string) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Message: msg,
		Type:    TypeServer,
	}
}
