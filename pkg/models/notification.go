package models

import (
	"fmt"
	"time"
)

// ToastKind is the severity of a transient notification.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastWarning ToastKind = "warning"
	ToastError   ToastKind = "error"
)

// ParseToastKind parses a kind name, accepting "warn" as an alias for warning.
func ParseToastKind(s string) (ToastKind, error) {
	switch s {
	case "info", "":
		return ToastInfo, nil
	case "success":
		return ToastSuccess, nil
	case "warning", "warn":
		return ToastWarning, nil
	case "error":
		return ToastError, nil
	}
	return "", fmt.Errorf("unknown toast kind %q", s)
}

// Toast is a transient, auto-dismissing user notification. A zero or
// negative Duration means the toast stays until dismissed.
type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Kind      ToastKind     `json:"kind"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// AutoDismiss reports whether the toast expires on its own.
func (t Toast) AutoDismiss() bool {
	return t.Duration > 0
}
