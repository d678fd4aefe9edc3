// Package loader coalesces scoped collection loads. At most one fetch runs
// per request key; concurrent callers share its outcome; successful results
// are cached in the central store by (kind, scope).
package loader

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/internal/store"
	"github.com/grovetools/dashboard/logging"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// FetchFunc resolves a scope and filter set into a collection.
type FetchFunc[T models.Item] func(ctx context.Context, scope models.Scope, filters models.Filters) ([]T, error)

// LoadOptions tune a single Load call.
type LoadOptions struct {
	// ForceReload skips the cache and never joins an existing flight.
	ForceReload bool
}

// Key identifies one logical request.
type Key struct {
	Kind        string
	Scope       models.Scope
	Fingerprint string
}

// String returns the singleflight key. Fields are quoted so no scope or
// fingerprint can spell another key.
func (k Key) String() string {
	return strconv.Quote(k.Kind) + "|" + strconv.Quote(k.Scope.String()) + "|" + strconv.Quote(k.Fingerprint)
}

// Coordinator deduplicates and caches loads for one resource kind.
type Coordinator[T models.Item] struct {
	kind   string
	store  *store.Store
	group  singleflight.Group
	logger *logrus.Entry
	now    func() time.Time

	mu sync.Mutex
	// inflight counts running flights per key. A forced reload can overlap a
	// flight it refused to join, so the count may exceed one.
	inflight map[Key]int
	// issued and committed are per-scope generations. A flight only writes
	// the cache if no later-started flight has committed first.
	issued    map[models.Scope]uint64
	committed map[models.Scope]uint64
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	logger *logrus.Entry
	now    func() time.Time
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.logger = l }
}

// WithNow overrides the clock used to stamp cache entries.
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a coordinator for kind backed by st.
func New[T models.Item](kind string, st *store.Store, opts ...Option) *Coordinator[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewLogger("loader")
	}
	return &Coordinator[T]{
		kind:      kind,
		store:     st,
		logger:    o.logger.WithField("kind", kind),
		now:       o.now,
		inflight:  make(map[Key]int),
		issued:    make(map[models.Scope]uint64),
		committed: make(map[models.Scope]uint64),
	}
}

// Kind returns the resource kind this coordinator loads.
func (c *Coordinator[T]) Kind() string {
	return c.kind
}

// Key builds the request key for scope and filters.
func (c *Coordinator[T]) Key(scope models.Scope, filters models.Filters) Key {
	return Key{Kind: c.kind, Scope: scope, Fingerprint: filters.Fingerprint()}
}

// Load returns the collection for scope and filters.
//
// Without ForceReload a cached entry with the same filters is returned
// directly, and a matching in-flight request is joined. Otherwise a new
// fetch starts. A caller whose ctx ends stops waiting and gets ctx.Err();
// the fetch itself keeps running for the other callers.
func (c *Coordinator[T]) Load(ctx context.Context, scope models.Scope, filters models.Filters, fetch FetchFunc[T], opts LoadOptions) ([]T, error) {
	if err := filters.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid filters").
			WithDetail("kind", c.kind)
	}
	key := c.Key(scope, filters)

	if !opts.ForceReload {
		if items, ok := c.cached(key); ok {
			c.logger.WithField("scope", scope).Debug("Cache hit")
			return items, nil
		}
	} else {
		// Detach any existing flight so this call starts a fresh one.
		c.group.Forget(key.String())
	}

	filters = filters.Clone()
	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		return c.run(context.WithoutCancel(ctx), key, filters, fetch)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]T)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run executes one flight. It is only ever called by singleflight.
func (c *Coordinator[T]) run(ctx context.Context, key Key, filters models.Filters, fetch FetchFunc[T]) ([]T, error) {
	c.mu.Lock()
	c.issued[key.Scope]++
	gen := c.issued[key.Scope]
	c.inflight[key]++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.inflight[key] <= 1 {
			delete(c.inflight, key)
		} else {
			c.inflight[key]--
		}
		c.mu.Unlock()
	}()

	log := c.logger.WithFields(logrus.Fields{"scope": key.Scope, "filters": key.Fingerprint})
	log.Debug("Fetching collection")

	items, err := fetch(ctx, key.Scope, filters)
	if err != nil {
		if _, ok := errors.As(err); !ok {
			err = errors.TransportFailed(c.kind, key.Scope.String(), 0, err)
		}
		log.WithError(err).Warn("Load failed")
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	if gen > c.committed[key.Scope] {
		c.committed[key.Scope] = gen
		c.store.SetEntry(store.Entry{
			Kind:        c.kind,
			Scope:       key.Scope,
			Fingerprint: key.Fingerprint,
			Items:       slices.Clone(items),
			LoadedAt:    c.now(),
		})
		log.WithField("count", len(items)).Debug("Cached collection")
	} else {
		log.Debug("Discarding result superseded by a newer load")
	}
	c.mu.Unlock()

	return items, nil
}

func (c *Coordinator[T]) cached(key Key) ([]T, bool) {
	entry, ok := c.store.Entry(c.kind, key.Scope)
	if !ok || entry.Fingerprint != key.Fingerprint {
		return nil, false
	}
	items, ok := entry.Items.([]T)
	if !ok {
		return nil, false
	}
	return slices.Clone(items), true
}

// Cached returns the cached collection for scope and filters without
// fetching.
func (c *Coordinator[T]) Cached(scope models.Scope, filters models.Filters) ([]T, bool) {
	return c.cached(c.Key(scope, filters))
}

// InFlight reports whether a fetch for scope and filters is running.
func (c *Coordinator[T]) InFlight(scope models.Scope, filters models.Filters) bool {
	key := c.Key(scope, filters)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight[key] > 0
}

// Mutate rewrites the cached collection for scope in place. It is a no-op
// returning false when nothing is cached. Flights for scope that started
// before the mutation can no longer commit over it.
func (c *Coordinator[T]) Mutate(scope models.Scope, fn func([]T) []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed[scope] = c.issued[scope]
	return c.store.MutateEntry(c.kind, scope, func(items any) any {
		typed, ok := items.([]T)
		if !ok {
			return items
		}
		return fn(slices.Clone(typed))
	})
}

// Invalidate drops the cached collection for scope. Running flights are
// unaffected and may repopulate it.
func (c *Coordinator[T]) Invalidate(scope models.Scope) {
	c.store.DropEntry(c.kind, scope)
}
