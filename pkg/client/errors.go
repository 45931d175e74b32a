package client

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrThrottled marks a throttling signal from the remote API.
	ErrThrottled = errors.New("throttled")

	// ErrRetryExhausted is returned when throttling persisted through all attempts.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during backoff.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of fetch errors.
type ErrorClass string

const (
	// ErrorClassThrottled represents rate limiting (HTTP 429 or THROTTLED).
	ErrorClassThrottled ErrorClass = "throttled"

	// ErrorClassQuery represents a response that carried a GraphQL error list.
	ErrorClassQuery ErrorClass = "query"

	// ErrorClassTransport represents network and HTTP status errors.
	ErrorClassTransport ErrorClass = "transport"
)

// throttleMarkers are message fragments that identify a throttling signal
// raised by a transport that does not return a *ThrottledError.
var throttleMarkers = []string{"throttled", "rate limit", "too many requests"}

// ThrottledError is a throttling signal from the remote API.
type ThrottledError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ThrottledError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("throttled (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("throttled: %s", e.Message)
}

// Is makes errors.Is(err, ErrThrottled) match.
func (e *ThrottledError) Is(target error) bool {
	return target == ErrThrottled
}

// GraphQLError is one entry of a response's error list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code returns extensions.code, or "" when absent.
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// QueryError is a response that carried a GraphQL error list. It is never retried.
type QueryError struct {
	Errors []GraphQLError
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	messages := make([]string, 0, len(e.Errors))
	for _, gqlErr := range e.Errors {
		messages = append(messages, gqlErr.Message)
	}
	return "graphql errors: " + strings.Join(messages, "; ")
}

// APIError is an HTTP-level failure of the GraphQL endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graphql endpoint error (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("graphql endpoint error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsThrottled reports whether err is a throttling signal, either typed or
// recognisable by its message.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrThrottled) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range throttleMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Classify returns the error class of err.
func Classify(err error) ErrorClass {
	var queryErr *QueryError
	switch {
	case IsThrottled(err):
		return ErrorClassThrottled
	case errors.As(err, &queryErr):
		return ErrorClassQuery
	default:
		return ErrorClassTransport
	}
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	return errorClass == ErrorClassThrottled
}
