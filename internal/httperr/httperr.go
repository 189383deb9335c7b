package httperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is an API error carried to the client as a uniform JSON envelope:
//
//	{"error": {"code": "...", "message": "...", "status": 429}}
//
// Handlers and middleware return or write these; anything else surfaces as a
// generic SERVER_ERROR without leaking internals.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

type envelope struct {
	Err *Error `json:"error"`
}

func NotFound(resourceType, id string) *Error {
	return &Error{
		Code:    "RESOURCE_NOT_FOUND",
		Message: resourceType + " with id " + id + " not found",
		Status:  http.StatusNotFound,
	}
}

func Authentication(message string) *Error {
	if message == "" {
		message = "Authentication failed"
	}
	return &Error{Code: "AUTHENTICATION_FAILED", Message: message, Status: http.StatusUnauthorized}
}

func Authorization(message string) *Error {
	if message == "" {
		message = "Not authorized to access this resource"
	}
	return &Error{Code: "AUTHORIZATION_FAILED", Message: message, Status: http.StatusForbidden}
}

func Validation(message string) *Error {
	return &Error{Code: "VALIDATION_ERROR", Message: message, Status: http.StatusUnprocessableEntity}
}

func Conflict(message string) *Error {
	return &Error{Code: "CONFLICT", Message: message, Status: http.StatusConflict}
}

func RateLimit() *Error {
	return &Error{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded", Status: http.StatusTooManyRequests}
}

func Server(message string) *Error {
	if message == "" {
		message = "Internal server error"
	}
	return &Error{Code: "SERVER_ERROR", Message: message, Status: http.StatusInternalServerError}
}

// Write emits err as the JSON envelope. Non-*Error values are converted to a
// generic SERVER_ERROR so internal detail never reaches the client.
// Authentication errors carry the Bearer challenge header.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Server("")
	}

	if apiErr.Status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(envelope{Err: apiErr})
}
