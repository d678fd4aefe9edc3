package toast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/dashboard/config"
	"github.com/grovetools/dashboard/internal/store"
	"github.com/grovetools/dashboard/logging"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/sirupsen/logrus"
)

// UseDefault asks Notify to use the configured duration for the kind.
const UseDefault time.Duration = -1

// DefaultResyncInterval is how often the notifier re-reads the toast list
// in case a store update was dropped.
const DefaultResyncInterval = time.Second

// DurationFunc returns the auto-dismiss delay for a kind.
type DurationFunc func(kind models.ToastKind) time.Duration

// Notifier publishes toasts to the store and keeps the registry in sync
// with the store's toast list.
type Notifier struct {
	store    *store.Store
	registry *Registry
	duration DurationFunc
	resync   time.Duration
	logger   *logrus.Entry
	now      func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithDurations sets the per-kind default durations.
func WithDurations(fn DurationFunc) NotifierOption {
	return func(n *Notifier) { n.duration = fn }
}

// WithResyncInterval sets how often the full toast list is re-read.
func WithResyncInterval(d time.Duration) NotifierOption {
	return func(n *Notifier) {
		if d > 0 {
			n.resync = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) NotifierOption {
	return func(n *Notifier) { n.logger = l }
}

// NewNotifier creates a notifier backed by st.
func NewNotifier(st *store.Store, opts ...NotifierOption) *Notifier {
	n := &Notifier{
		store:  st,
		resync: DefaultResyncInterval,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = logging.NewLogger("toast")
	}
	if n.duration == nil {
		n.duration = config.ToastsConfig{}.DurationFor
	}
	n.registry = NewRegistry(n.remove, WithRegistryLogger(n.logger))
	return n
}

// Registry exposes the timer registry.
func (n *Notifier) Registry() *Registry {
	return n.registry
}

// Notify shows a toast and returns its id. A duration of UseDefault picks
// the configured delay for kind; zero keeps the toast until dismissed.
func (n *Notifier) Notify(message string, kind models.ToastKind, duration time.Duration) string {
	if kind == "" {
		kind = models.ToastInfo
	}
	if duration == UseDefault {
		duration = n.duration(kind)
	}
	t := models.Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		Duration:  duration,
		CreatedAt: n.now(),
	}
	n.store.AddToast(t)
	return t.ID
}

// Dismiss removes a toast. Its timer, if any, is swept on the next list
// change.
func (n *Notifier) Dismiss(id string) bool {
	return n.store.RemoveToast(id)
}

func (n *Notifier) remove(id string) {
	n.store.RemoveToast(id)
}

// Run feeds the registry from store updates until ctx is done, then
// cancels every pending timer.
func (n *Notifier) Run(ctx context.Context) {
	updates := n.store.Subscribe()
	defer n.store.Unsubscribe(updates)
	defer n.registry.Close()

	n.registry.OnToastListChanged(n.store.Toasts())

	ticker := time.NewTicker(n.resync)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Type != store.UpdateToasts {
				continue
			}
			// Updates can be dropped, so always read the current list.
			n.registry.OnToastListChanged(n.store.Toasts())
		case <-ticker.C:
			n.registry.OnToastListChanged(n.store.Toasts())
		}
	}
}

// Start runs the notifier in the background.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	n.cancel = cancel
	n.done = done
	go func() {
		defer close(done)
		n.Run(ctx)
	}()
}

// Close stops the background loop and cancels all timers. A closed
// notifier schedules no further timers.
func (n *Notifier) Close() {
	n.mu.Lock()
	cancel, done := n.cancel, n.done
	n.cancel, n.done = nil, nil
	n.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	n.registry.Close()
}
