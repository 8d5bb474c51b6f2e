package client

import (
	"fmt"
)

// ErrorClass represents a classification of API errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents response bodies that could not be decoded.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError represents a failed backend call with additional context.
type APIError struct {
	Endpoint   string
	StatusCode int
	ErrorClass ErrorClass

	// Detail is the server's {"detail": ...} message, or the raw body.
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("twin %s error (%s): %v", e.ErrorClass, e.Endpoint, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("twin %s error (%s, status %d): %v", e.ErrorClass, e.Endpoint, e.StatusCode, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("twin %s error (%s, status %d): %s", e.ErrorClass, e.Endpoint, e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("twin %s error (%s, status %d)", e.ErrorClass, e.Endpoint, e.StatusCode)
	}
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes a non-2xx status code.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
