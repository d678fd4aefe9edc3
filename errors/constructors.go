package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *DashboardError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *DashboardError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// TransportFailed creates a transport failure error for a resource fetch or
// mutation. status is the HTTP status code, or 0 when no response arrived.
func TransportFailed(kind, scope string, status int, err error) *DashboardError {
	msg := fmt.Sprintf("request for %s failed", kind)
	if scope != "" {
		msg = fmt.Sprintf("request for %s in scope '%s' failed", kind, scope)
	}
	dashErr := Wrap(err, ErrCodeTransportFailed, msg).
		WithDetail("kind", kind).
		WithDetail("scope", scope)
	if status != 0 {
		dashErr = dashErr.WithDetail("status", status)
	}
	return dashErr
}

// StaleScope creates an error describing a result that settled after the
// current scope moved on.
func StaleScope(kind, requested, current string) *DashboardError {
	return New(ErrCodeStaleScope,
		fmt.Sprintf("%s loaded for scope '%s' but current scope is '%s'", kind, requested, current)).
		WithDetail("kind", kind).
		WithDetail("requested", requested).
		WithDetail("current", current)
}

// ItemNotFound creates an error for a lookup that missed the current collection
func ItemNotFound(kind, id string) *DashboardError {
	return New(ErrCodeItemNotFound, fmt.Sprintf("%s '%s' not found", kind, id)).
		WithDetail("kind", kind).
		WithDetail("id", id)
}

// StateUnavailable creates an error for an unreadable or unwritable durable store
func StateUnavailable(path string, err error) *DashboardError {
	return Wrap(err, ErrCodeStateUnavailable, fmt.Sprintf("state store unavailable: %s", path)).
		WithDetail("path", path)
}
