package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Common errors
var (
	// ErrUnauthorized is matched by any 401 APIError
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is matched by any 403 APIError
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is matched by any 404 APIError
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is matched by any 409 APIError
	ErrConflict = errors.New("resource conflict")

	// ErrNetwork is matched by APIErrors produced without a server response
	ErrNetwork = errors.New("network error")

	// ErrInvalidInput is returned when a payload fails client-side validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidEnum is returned when a string is not a member of a closed enum
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrNotLoggedIn is returned when an operation needs a stored session
	ErrNotLoggedIn = errors.New("not logged in")
)

// Error codes used when the server did not supply one
const (
	CodeBadRequest  = "ERR_BAD_REQUEST"
	CodeBadResponse = "ERR_BAD_RESPONSE"
	CodeNetwork     = "ERR_NETWORK"
	CodeCanceled    = "ERR_CANCELED"
	CodeBadPayload  = "ERR_BAD_PAYLOAD"
	CodeBusiness    = "ERR_BUSINESS"
)

// DefaultErrorMessage is shown when neither the server nor the transport
// produced a usable message
const DefaultErrorMessage = "서버와의 통신 중 오류가 발생했습니다"

// APIError is the uniform error value for every failed backend call
type APIError struct {
	// Status is the HTTP status, 0 when no response was received
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Is lets errors.Is match an APIError against the sentinel for its status
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrNetwork:
		return e.Status == 0 && e.Code == CodeNetwork
	}
	return false
}

// ValidationError carries per-field messages for a rejected payload
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ValidationMessages provides human-readable validation error messages
// These map validator tags to user-friendly messages
var ValidationMessages = map[string]string{
	"required": "This field is required",
	"email":    "Must be a valid email address",
	"max":      "Exceeds maximum length",
	"min":      "Below minimum length",
	"gte":      "Must be greater than or equal to minimum value",
	"gt":       "Must be greater than minimum value",
	"lte":      "Must be less than or equal to maximum value",
	"url":      "Must be a valid URL",
	"oneof":    "Must be one of the allowed values",
	"datetime": "Must be a date in YYYY-MM-DD format",
	"enum":     "Must be one of the allowed values",
	"eqfield":  "Must match the confirmation field",
	"nefield":  "Must differ from the current value",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := ValidationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}
