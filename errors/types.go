package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Transport errors
	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"

	// Coordination errors
	ErrCodeStaleScope   ErrorCode = "STALE_SCOPE"
	ErrCodeItemNotFound ErrorCode = "ITEM_NOT_FOUND"

	// Durable state errors
	ErrCodeStateUnavailable ErrorCode = "STATE_UNAVAILABLE"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// DashboardError represents a structured error with context
type DashboardError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *DashboardError) WithDetail(key string, value interface{}) *DashboardError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *DashboardError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new DashboardError
func New(code ErrorCode, message string) *DashboardError {
	return &DashboardError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a DashboardError
func Wrap(err error, code ErrorCode, message string) *DashboardError {
	return &DashboardError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific DashboardError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	dashErr, ok := err.(*DashboardError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return dashErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	dashErr, ok := err.(*DashboardError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return dashErr.Code
}

// As returns the first DashboardError in err's chain.
func As(err error) (*DashboardError, bool) {
	for err != nil {
		if dashErr, ok := err.(*DashboardError); ok {
			return dashErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
