// Package store provides the central in-memory state store shared by every
// dashboard surface: cached resource collections and the active toast list.
package store

import (
	"time"

	"github.com/grovetools/dashboard/pkg/models"
)

// Entry is the stored result of the last successful load of a resource
// collection for one scope.
type Entry struct {
	Kind        string       `json:"kind"`
	Scope       models.Scope `json:"scope"`
	Fingerprint string       `json:"fingerprint,omitempty"` // Filters the collection was fetched with
	Items       any          `json:"items"`                 // Typed slice, e.g. []models.Project
	LoadedAt    time.Time    `json:"loaded_at"`
}

// UpdateType defines what kind of data changed.
type UpdateType string

const (
	UpdateCache  UpdateType = "cache"
	UpdateToasts UpdateType = "toasts"
)

// Update represents a change to the state.
type Update struct {
	Type   UpdateType
	Kind   string         // Resource kind for cache updates
	Scope  models.Scope   // Scope for cache updates
	Toasts []models.Toast // Snapshot of the toast list for toast updates
}

type entryKey struct {
	kind  string
	scope models.Scope
}
