// Package scope keeps a consumer-local copy of the shared "current scope"
// in sync with the durable state store. Consumers that never reference
// each other still converge, because each one watches the store itself.
package scope

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/grovetools/dashboard/logging"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/state"
	"github.com/sirupsen/logrus"
)

// ChangeFunc observes a scope transition.
type ChangeFunc func(prev, next models.Scope)

// Mirror is one consumer's view of the shared scope.
type Mirror struct {
	store    state.Store
	key      string
	interval time.Duration
	watcher  Watcher
	logger   *logrus.Entry

	// observeMu serializes compare-and-notify so callbacks see transitions
	// in order. Callbacks run under it and must not call Set.
	observeMu sync.Mutex

	mu        sync.Mutex
	current   models.Scope
	resets    map[int]ChangeFunc
	callbacks map[int]ChangeFunc
	nextID    int
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithInterval sets the poll interval used by the default watcher.
func WithInterval(d time.Duration) Option {
	return func(m *Mirror) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithWatcher replaces the default polling watcher.
func WithWatcher(w Watcher) Option {
	return func(m *Mirror) { m.watcher = w }
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(m *Mirror) { m.logger = l }
}

// New creates a mirror of key in store and reads its initial value. A
// read failure is logged and leaves the mirror at the null scope.
func New(store state.Store, key string, opts ...Option) *Mirror {
	m := &Mirror{
		store:     store,
		key:       key,
		interval:  DefaultInterval,
		resets:    make(map[int]ChangeFunc),
		callbacks: make(map[int]ChangeFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logging.NewLogger("scope")
	}
	m.logger = m.logger.WithField("key", key)
	if m.watcher == nil {
		m.watcher = PollWatcher{Interval: m.interval}
	}

	if s, err := m.read(); err != nil {
		m.logger.WithError(err).Warn("Failed to read initial scope")
	} else {
		m.current = s
	}
	return m
}

// Key returns the durable key this mirror follows.
func (m *Mirror) Key() string {
	return m.key
}

// Current returns the last observed scope.
func (m *Mirror) Current() models.Scope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Set writes scope to the durable store and applies it locally. The null
// scope deletes the key.
func (m *Mirror) Set(s models.Scope) error {
	var err error
	if s.IsNull() {
		err = m.store.Delete(m.key)
	} else {
		err = m.store.SetValue(m.key, s.String())
	}
	if err != nil {
		return err
	}
	m.observe(s)
	return nil
}

// OnChange registers fn to run after every observed transition. The
// returned function unregisters it.
func (m *Mirror) OnChange(fn ChangeFunc) (cancel func()) {
	return m.register(m.callbacks, fn)
}

// OnReset registers consumer-local state resets. Resets run before any
// OnChange callback for the same transition.
func (m *Mirror) OnReset(fn ChangeFunc) (cancel func()) {
	return m.register(m.resets, fn)
}

func (m *Mirror) register(set map[int]ChangeFunc, fn ChangeFunc) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	set[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(set, id)
			m.mu.Unlock()
		})
	}
}

// Check re-reads the durable value once and reports whether the scope
// changed.
func (m *Mirror) Check() (bool, error) {
	s, err := m.read()
	if err != nil {
		return false, err
	}
	return m.observe(s), nil
}

// Start launches the watch loop. Starting a running mirror is a no-op.
func (m *Mirror) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	signals := m.watcher.Signals(ctx)
	go func() {
		defer close(done)
		for range signals {
			if _, err := m.Check(); err != nil {
				m.logger.WithError(err).Debug("Scope check failed")
			}
		}
	}()
}

// Stop cancels the watch loop and waits for it to exit. It is safe to
// call more than once.
func (m *Mirror) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Mirror) read() (models.Scope, error) {
	v, ok, err := m.store.GetValue(m.key)
	if err != nil {
		return models.NoScope, err
	}
	if !ok {
		return models.NoScope, nil
	}
	return models.Scope(v), nil
}

// observe applies s if it differs from the current scope, running resets
// then callbacks. It reports whether anything changed.
func (m *Mirror) observe(s models.Scope) bool {
	m.observeMu.Lock()
	defer m.observeMu.Unlock()

	m.mu.Lock()
	old := m.current
	if old == s {
		m.mu.Unlock()
		return false
	}
	m.current = s
	resets := snapshot(m.resets)
	callbacks := snapshot(m.callbacks)
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{"old": old, "new": s}).Debug("Scope changed")
	for _, fn := range resets {
		fn(old, s)
	}
	for _, fn := range callbacks {
		fn(old, s)
	}
	return true
}

// snapshot returns the registered funcs in registration order.
func snapshot(set map[int]ChangeFunc) []ChangeFunc {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]ChangeFunc, 0, len(ids))
	for _, id := range ids {
		out = append(out, set[id])
	}
	return out
}
