package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrSessionUsed is reported when a session is run more than once.
var ErrSessionUsed = errors.New("stream session already started")

// ErrorClass represents a classification of streaming failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents connection, read and deadline failures.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassStatus represents a non-2xx response to the stream request.
	ErrorClassStatus ErrorClass = "status"

	// ErrorClassProtocol represents an [ERROR] sentinel sent by the server.
	ErrorClassProtocol ErrorClass = "protocol"
)

// Error is the failure delivered to OnError or carried by a Failed outcome.
type Error struct {
	Class      ErrorClass
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
// Protocol errors read as the server's message and nothing else.
func (e *Error) Error() string {
	switch e.Class {
	case ErrorClassProtocol:
		return e.Message
	case ErrorClassStatus:
		if e.Message != "" {
			return fmt.Sprintf("stream request failed (status %d): %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("stream request failed (status %d)", e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("stream %s: %v", e.Message, e.Err)
		}
		return "stream " + e.Message
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassOf returns the class of a streaming failure, or "" for foreign errors.
func ClassOf(err error) ErrorClass {
	var se *Error
	if errors.As(err, &se) {
		return se.Class
	}
	return ""
}

// ErrorDetail extracts a human readable message from an error response body.
// Bodies of the form {"detail": ...} yield the detail; anything else is
// returned trimmed.
func ErrorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil {
			return text
		}
		return string(payload.Detail)
	}
	return strings.TrimSpace(string(body))
}
