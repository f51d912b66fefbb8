package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every backend payload
type Envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`

	// HTTPStatus is the transport status, 0 when no response arrived
	HTTPStatus int `json:"-"`
}

// ErrorEnvelope builds a normalized failure envelope
func ErrorEnvelope(httpStatus int, code, message string) *Envelope {
	if message == "" {
		message = DefaultErrorMessage
	}
	return &Envelope{
		Status:     StatusError,
		Code:       code,
		Message:    message,
		Data:       json.RawMessage("null"),
		HTTPStatus: httpStatus,
	}
}

// IsSuccess reports whether the backend accepted the call
func (e *Envelope) IsSuccess() bool {
	return e != nil && e.Status == StatusSuccess
}

// Err returns the envelope as an *APIError, or nil on success
func (e *Envelope) Err() error {
	if e == nil {
		return &APIError{Code: CodeNetwork, Message: DefaultErrorMessage}
	}
	if e.IsSuccess() {
		return nil
	}
	code := e.Code
	if code == "" {
		code = CodeBusiness
	}
	msg := e.Message
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return &APIError{Status: e.HTTPStatus, Code: code, Message: msg}
}

// HasData reports whether the envelope carries a non-null payload
func (e *Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// DecodeData unmarshals the payload into v; a null payload leaves v untouched
func (e *Envelope) DecodeData(v interface{}) error {
	if !e.HasData() {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Status, err)
	}
	return nil
}
