package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeMessengerError = "MESSENGER_ERROR"
	CodeAPIError       = "API_ERROR"
	CodeValidation     = "VALIDATION_ERROR"
	CodeCache          = "CACHE_ERROR"
	CodeStore          = "STORE_ERROR"
)

// Kind classifies why an API call failed so callers can tell a timeout from a
// refused connection or a server rejection.
type Kind string

const (
	KindNetwork     Kind = "network"
	KindTimeout     Kind = "timeout"
	KindServer      Kind = "server"
	KindClient      Kind = "client"
	KindEncode      Kind = "encode"
	KindDecode      Kind = "decode"
	KindCircuitOpen Kind = "circuit_open"
)

func (k Kind) String() string {
	return string(k)
}

type MessengerError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *MessengerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MessengerError) Unwrap() error {
	return e.Cause
}

func NewMessengerError(message, code string, statusCode int, context map[string]any) *MessengerError {
	return &MessengerError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *MessengerError) WithCause(cause error) *MessengerError {
	e.Cause = cause
	return e
}

type APIError struct {
	*MessengerError
	Kind Kind
}

func NewAPIError(message string, kind Kind, statusCode int, context map[string]any) *APIError {
	return &APIError{
		MessengerError: &MessengerError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
		Kind: kind,
	}
}

// WithCause returns the APIError itself so the result can still be matched
// with errors.As(err, **APIError).
func (e *APIError) WithCause(cause error) *APIError {
	e.Cause = cause
	return e
}

// Temporary reports whether retrying the same request later may succeed.
func (e *APIError) Temporary() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindServer, KindCircuitOpen:
		return true
	default:
		return false
	}
}

// KindOf returns the Kind of the first APIError in err's chain, or "" when
// err is not an API failure.
func KindOf(err error) Kind {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

type ValidationError struct {
	*MessengerError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		MessengerError: &MessengerError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*MessengerError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		MessengerError: &MessengerError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type StoreError struct {
	*MessengerError
	Table     string
	Operation string
}

func NewStoreError(message, table, operation string, cause error) *StoreError {
	return &StoreError{
		MessengerError: &MessengerError{
			Message:    message,
			Code:       CodeStore,
			StatusCode: 500,
			Context: map[string]any{
				"table":     table,
				"operation": operation,
			},
			Cause: cause,
		},
		Table:     table,
		Operation: operation,
	}
}
