package store

import (
	"sync"

	"github.com/grovetools/dashboard/pkg/models"
)

// Store is the in-memory state store for the dashboard.
// It is thread-safe and supports pub/sub for real-time updates.
type Store struct {
	mu          sync.RWMutex
	entries     map[entryKey]Entry
	toasts      []models.Toast
	subscribers map[chan Update]struct{}
}

// New creates a new Store instance.
func New() *Store {
	return &Store{
		entries:     make(map[entryKey]Entry),
		subscribers: make(map[chan Update]struct{}),
	}
}

// Entry returns the cache entry for a resource kind and scope.
func (s *Store) Entry(kind string, scope models.Scope) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[entryKey{kind, scope}]
	return e, ok
}

// SetEntry creates or replaces the cache entry for e.Kind and e.Scope.
func (s *Store) SetEntry(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryKey{e.Kind, e.Scope}] = e
	s.broadcast(Update{Type: UpdateCache, Kind: e.Kind, Scope: e.Scope})
}

// MutateEntry applies fn to the items of an existing entry and stores the
// result. It returns false and does nothing when no entry exists.
// fn runs under the store lock and must not call back into the store.
func (s *Store) MutateEntry(kind string, scope models.Scope, fn func(items any) any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entryKey{kind, scope}
	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.Items = fn(e.Items)
	s.entries[key] = e
	s.broadcast(Update{Type: UpdateCache, Kind: kind, Scope: scope})
	return true
}

// DropEntry removes the cache entry for a resource kind and scope.
func (s *Store) DropEntry(kind string, scope models.Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entryKey{kind, scope}
	if _, ok := s.entries[key]; !ok {
		return
	}
	delete(s.entries, key)
	s.broadcast(Update{Type: UpdateCache, Kind: kind, Scope: scope})
}

// Toasts returns a copy of the active toast list.
func (s *Store) Toasts() []models.Toast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toastsLocked()
}

// AddToast appends a toast to the active list.
func (s *Store) AddToast(t models.Toast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toasts = append(s.toasts, t)
	s.broadcast(Update{Type: UpdateToasts, Toasts: s.toastsLocked()})
}

// RemoveToast removes a toast by id. Removing an absent toast is a no-op
// that returns false.
func (s *Store) RemoveToast(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.toasts {
		if t.ID == id {
			s.toasts = append(s.toasts[:i], s.toasts[i+1:]...)
			s.broadcast(Update{Type: UpdateToasts, Toasts: s.toastsLocked()})
			return true
		}
	}
	return false
}

// Subscribe creates a new subscription channel for state updates.
func (s *Store) Subscribe() chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 100) // Buffered
	s.subscribers[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store) Unsubscribe(ch chan Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

func (s *Store) toastsLocked() []models.Toast {
	out := make([]models.Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}

// broadcast must be called with s.mu held.
func (s *Store) broadcast(u Update) {
	for ch := range s.subscribers {
		select {
		case ch <- u:
		default:
			// Non-blocking send to prevent slow subscribers from stalling writers
		}
	}
}
