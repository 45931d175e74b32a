package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{
			name:       "throttled should retry",
			errorClass: ErrorClassThrottled,
			expected:   true,
		},
		{
			name:       "query error should not retry",
			errorClass: ErrorClassQuery,
			expected:   false,
		},
		{
			name:       "transport error should not retry",
			errorClass: ErrorClassTransport,
			expected:   false,
		},
		{
			name:       "empty error class should not retry",
			errorClass: "",
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shouldRetry(tt.errorClass)
			if result != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, result, tt.expected)
			}
		})
	}
}

func TestIsThrottled(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "typed", err: &ThrottledError{StatusCode: 429, Message: "Too Many Requests"}, expected: true},
		{name: "wrapped typed", err: fmt.Errorf("fetch: %w", &ThrottledError{Message: "Throttled"}), expected: true},
		{name: "sentinel", err: ErrThrottled, expected: true},
		{name: "message only", err: errors.New("GraphQL Client: Throttled"), expected: true},
		{name: "rate limit message", err: errors.New("Exceeded rate limit for shop"), expected: true},
		{name: "unrelated", err: errors.New("connection refused"), expected: false},
		{name: "query error", err: &QueryError{Errors: []GraphQLError{{Message: "Field 'x' doesn't exist"}}}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsThrottled(tt.err); got != tt.expected {
				t.Errorf("IsThrottled(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{name: "throttled", err: &ThrottledError{Message: "Throttled"}, expected: ErrorClassThrottled},
		{name: "query", err: fmt.Errorf("markets: %w", &QueryError{}), expected: ErrorClassQuery},
		{name: "api", err: &APIError{StatusCode: 500, Message: "Internal Server Error"}, expected: ErrorClassTransport},
		{name: "network", err: errors.New("dial tcp: i/o timeout"), expected: ErrorClassTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.expected {
				t.Errorf("Classify() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestQueryError_Error(t *testing.T) {
	err := &QueryError{Errors: []GraphQLError{
		{Message: "Field 'foo' doesn't exist on type 'Product'"},
		{Message: "Variable $cursor is invalid"},
	}}

	expected := "graphql errors: Field 'foo' doesn't exist on type 'Product'; Variable $cursor is invalid"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				StatusCode: 502,
				Message:    "Bad Gateway",
				Err:        errors.New("upstream closed"),
			},
			expected: "graphql endpoint error (status 502): Bad Gateway: upstream closed",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				StatusCode: 401,
				Message:    "Unauthorized",
			},
			expected: "graphql endpoint error (status 401): Unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.apiError.Error() != tt.expected {
				t.Errorf("Error() = %q, want %q", tt.apiError.Error(), tt.expected)
			}
		})
	}
}

func TestAPIError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &APIError{StatusCode: 500, Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestGraphQLError_Code(t *testing.T) {
	withCode := GraphQLError{Extensions: map[string]any{"code": "THROTTLED"}}
	if withCode.Code() != "THROTTLED" {
		t.Errorf("Code() = %q, want THROTTLED", withCode.Code())
	}

	if (GraphQLError{}).Code() != "" {
		t.Error("Code() without extensions should be empty")
	}
}
