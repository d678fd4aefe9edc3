package models

import (
	"fmt"
	"net/url"
	"time"
)

// Constants for validation limits
const (
	MaxFilterCount    = 20
	MaxFilterValueLen = 256
)

// PageParam is the query parameter used for pagination. It cannot be used
// as a filter name.
const PageParam = "page"

// Timestamps provides common time tracking fields
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Item is anything a resource collection can hold.
type Item interface {
	GetID() string
}

// Scope partitions a resource collection, e.g. "which project's data is this".
// The empty scope is the null scope used by global collections.
type Scope string

// NoScope is the null scope.
const NoScope Scope = ""

// String returns the scope identifier.
func (s Scope) String() string {
	return string(s)
}

// IsNull reports whether s is the null scope.
func (s Scope) IsNull() bool {
	return s == NoScope
}

// Page represents paginated results
type Page[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
	HasPrev  bool `json:"has_prev"`
}

// Filters are the query parameters a collection was fetched with.
type Filters map[string]string

// Fingerprint returns a stable, order-independent identity for the filter set.
// Names and values are query-escaped, so distinct sets never collide.
// Empty and nil filters share the empty fingerprint.
func (f Filters) Fingerprint() string {
	if len(f) == 0 {
		return ""
	}
	v := make(url.Values, len(f))
	for k, val := range f {
		v.Set(k, val)
	}
	return v.Encode()
}

// Clone returns an independent copy of the filter set.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Validate validates the filter constraints
func (f Filters) Validate() error {
	if len(f) > MaxFilterCount {
		return fmt.Errorf("too many filters: %d, maximum allowed: %d", len(f), MaxFilterCount)
	}
	for k, v := range f {
		if k == "" {
			return fmt.Errorf("filter name cannot be empty")
		}
		if k == PageParam {
			return fmt.Errorf("filter name %q is reserved for pagination", k)
		}
		if len(v) > MaxFilterValueLen {
			return fmt.Errorf("filter %q value too long: %d, maximum allowed: %d", k, len(v), MaxFilterValueLen)
		}
	}
	return nil
}
