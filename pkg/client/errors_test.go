package client

import (
	"errors"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   ErrorClass
	}{
		{statusCode: 400, expected: ErrorClassClient},
		{statusCode: 404, expected: ErrorClassClient},
		{statusCode: 422, expected: ErrorClassClient},
		{statusCode: 500, expected: ErrorClassServer},
		{statusCode: 503, expected: ErrorClassServer},
		{statusCode: 200, expected: ""},
		{statusCode: 304, expected: ""},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.statusCode); got != tt.expected {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.statusCode, got, tt.expected)
		}
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "network error",
			apiError: &APIError{
				Endpoint:   "/health",
				ErrorClass: ErrorClassNetwork,
				Err:        errors.New("connection refused"),
			},
			expected: "twin network error (/health): connection refused",
		},
		{
			name: "error with detail",
			apiError: &APIError{
				Endpoint:   "/mem/chat-sync",
				StatusCode: 400,
				ErrorClass: ErrorClassClient,
				Detail:     "LLM API key not configured",
			},
			expected: "twin client error (/mem/chat-sync, status 400): LLM API key not configured",
		},
		{
			name: "error without detail",
			apiError: &APIError{
				Endpoint:   "/rag/stats",
				StatusCode: 502,
				ErrorClass: ErrorClassServer,
			},
			expected: "twin server error (/rag/stats, status 502)",
		},
		{
			name: "decode error",
			apiError: &APIError{
				Endpoint:   "/health",
				StatusCode: 200,
				ErrorClass: ErrorClassDecode,
				Err:        errors.New("unexpected end of JSON input"),
			},
			expected: "twin decode error (/health, status 200): unexpected end of JSON input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.apiError.Error(); result != tt.expected {
				t.Errorf("Error() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	apiError := &APIError{
		Endpoint:   "/health",
		ErrorClass: ErrorClassNetwork,
		Err:        wrappedErr,
	}

	if unwrapped := apiError.Unwrap(); unwrapped != wrappedErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, wrappedErr)
	}
	if !errors.Is(apiError, wrappedErr) {
		t.Error("errors.Is should work with wrapped error")
	}

	if (&APIError{StatusCode: 404}).Unwrap() != nil {
		t.Error("Unwrap() should be nil without a wrapped error")
	}
}
