// Package toast owns the auto-dismiss timers for transient notifications.
package toast

import (
	"sync"
	"time"

	"github.com/grovetools/dashboard/pkg/models"
	"github.com/sirupsen/logrus"
)

// Registry keeps at most one dismissal timer per visible toast.
type Registry struct {
	remove func(id string)
	logger *logrus.Entry

	mu     sync.Mutex
	timers map[string]timerEntry
	seq    uint64
	closed bool
}

type timerEntry struct {
	timer *time.Timer
	// token identifies this scheduling; a fired timer only clears the
	// entry if it still owns it.
	token uint64
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger.
func WithRegistryLogger(l *logrus.Entry) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates a registry whose timers call remove when they fire.
// remove must tolerate ids that are already gone.
func NewRegistry(remove func(id string), opts ...RegistryOption) *Registry {
	r := &Registry{
		remove: remove,
		timers: make(map[string]timerEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return r
}

// OnToastListChanged reconciles timers with the current toast list. Stale
// timers are swept before new ones are scheduled.
func (r *Registry) OnToastListChanged(toasts []models.Toast) {
	active := make(map[string]struct{}, len(toasts))
	for _, t := range toasts {
		active[t.ID] = struct{}{}
	}
	r.Sweep(active)

	for _, t := range toasts {
		if t.AutoDismiss() {
			r.Schedule(t.ID, t.Duration)
		}
	}
}

// Schedule starts a dismissal timer for id unless one already exists, the
// duration is not positive, or the registry is closed. It reports whether
// a timer was started.
func (r *Registry) Schedule(id string, d time.Duration) bool {
	if d <= 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	if _, exists := r.timers[id]; exists {
		return false
	}

	r.seq++
	token := r.seq
	r.timers[id] = timerEntry{
		token: token,
		timer: time.AfterFunc(d, func() { r.fire(id, token) }),
	}
	r.logger.WithFields(logrus.Fields{"toast": id, "after": d}).Debug("Scheduled toast dismissal")
	return true
}

func (r *Registry) fire(id string, token uint64) {
	r.mu.Lock()
	e, ok := r.timers[id]
	if !ok || e.token != token {
		// Swept, cancelled, or superseded while firing.
		r.mu.Unlock()
		return
	}
	delete(r.timers, id)
	r.mu.Unlock()

	r.logger.WithField("toast", id).Debug("Dismissing toast")
	r.remove(id)
}

// Cancel stops and forgets the timer for id.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.timers[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(r.timers, id)
	return true
}

// Sweep cancels every timer whose toast is not in active and returns how
// many were cancelled.
func (r *Registry) Sweep(active map[string]struct{}) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.timers {
		if _, ok := active[id]; ok {
			continue
		}
		e.timer.Stop()
		delete(r.timers, id)
		n++
	}
	return n
}

// Len returns the number of pending timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Has reports whether id has a pending timer.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[id]
	return ok
}

// Close cancels every timer and rejects further scheduling.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.timers {
		e.timer.Stop()
		delete(r.timers, id)
	}
	r.closed = true
}
