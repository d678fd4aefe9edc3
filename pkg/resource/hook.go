// Package resource provides the per-consumer views over a resource
// collection. Consumers of the same kind share one load coordinator, so
// their loads coalesce, while each keeps its own scope, filters, selection
// and load state.
package resource

import (
	"context"
	"slices"
	"sync"

	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/internal/store"
	"github.com/grovetools/dashboard/logging"
	"github.com/grovetools/dashboard/pkg/loader"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/scope"
	"github.com/grovetools/dashboard/pkg/transport"
	"github.com/sirupsen/logrus"
)

// LoadState is the view state of a hook for its current scope.
type LoadState int

const (
	Empty LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return "empty"
	}
}

// Option configures a Hook.
type Option func(*options)

type options struct {
	logger       *logrus.Entry
	onError      func(error)
	requireScope bool
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.logger = l }
}

// WithErrorHandler receives failures of loads started in the background
// by a bound scope mirror.
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// WithRequireScope marks a collection that cannot be listed for the null
// scope. Scope changes to the null scope then clear the view without
// loading.
func WithRequireScope() Option {
	return func(o *options) { o.requireScope = true }
}

// Hook is one consumer's view of a resource collection.
type Hook[T models.Item] struct {
	api   transport.Resource[T]
	coord *loader.Coordinator[T]
	fetch loader.FetchFunc[T]
	opts  options
	log   *logrus.Entry

	mu       sync.Mutex
	scope    models.Scope
	filters  models.Filters
	items    []T
	state    LoadState
	err      error
	selected string
	// epoch changes whenever the view is reset; loads started under an
	// older epoch are not applied.
	epoch   uint64
	pending int
}

// New creates a hook for api backed by st.
func New[T models.Item](api transport.Resource[T], st *store.Store, opts ...Option) *Hook[T] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewLogger("resource")
	}
	coord := loader.New[T](api.Kind(), st, loader.WithLogger(o.logger.WithField("kind", api.Kind())))
	return newHook(api, coord, o)
}

func newHook[T models.Item](api transport.Resource[T], coord *loader.Coordinator[T], o options) *Hook[T] {
	return &Hook[T]{
		api:   api,
		coord: coord,
		fetch: transport.Fetcher(api),
		opts:  o,
		log:   o.logger.WithField("kind", api.Kind()),
	}
}

// NewProjects returns a hook over the global project collection.
func NewProjects(api transport.Resource[models.Project], st *store.Store, opts ...Option) *Hook[models.Project] {
	return New(api, st, opts...)
}

// NewProductVersions returns a hook over a project's product versions. The
// scope is the project id.
func NewProductVersions(api transport.Resource[models.ProductVersion], st *store.Store, opts ...Option) *Hook[models.ProductVersion] {
	return New(api, st, append([]Option{WithRequireScope()}, opts...)...)
}

// Share returns another consumer view over the same coordinator. Loads
// from either view coalesce. Options not given are inherited.
func (h *Hook[T]) Share(opts ...Option) *Hook[T] {
	o := h.opts
	for _, opt := range opts {
		opt(&o)
	}
	return newHook(h.api, h.coord, o)
}

// Kind returns the resource kind.
func (h *Hook[T]) Kind() string {
	return h.api.Kind()
}

// Coordinator returns the shared load coordinator.
func (h *Hook[T]) Coordinator() *loader.Coordinator[T] {
	return h.coord
}

// Load loads the collection for s and makes s the current scope of this
// view. A result that settles after the view moved to another scope stays
// cached under s but is not applied; Load still returns it.
func (h *Hook[T]) Load(ctx context.Context, s models.Scope, force bool) ([]T, error) {
	h.mu.Lock()
	if s != h.scope {
		h.resetLocked(s, false)
	}
	epoch, filters := h.beginLocked()
	h.mu.Unlock()

	items, _, err := h.settle(ctx, s, epoch, filters, force)
	return items, err
}

// follow loads s for a bound mirror. It never moves the view: when the view
// has already left s, or leaves it before the load settles, nothing is
// applied and no error is reported.
func (h *Hook[T]) follow(ctx context.Context, s models.Scope) error {
	h.mu.Lock()
	if s != h.scope {
		h.mu.Unlock()
		return nil
	}
	epoch, filters := h.beginLocked()
	h.mu.Unlock()

	_, applied, err := h.settle(ctx, s, epoch, filters, false)
	if !applied {
		return nil
	}
	return err
}

func (h *Hook[T]) beginLocked() (uint64, models.Filters) {
	h.pending++
	h.state = Loading
	return h.epoch, h.filters.Clone()
}

// settle runs the load and applies its outcome if the view is still at
// epoch.
func (h *Hook[T]) settle(ctx context.Context, s models.Scope, epoch uint64, filters models.Filters, force bool) ([]T, bool, error) {
	items, err := h.coord.Load(ctx, s, filters, h.fetch, loader.LoadOptions{ForceReload: force})

	h.mu.Lock()
	defer h.mu.Unlock()
	if epoch != h.epoch {
		h.log.WithError(errors.StaleScope(h.Kind(), s.String(), h.scope.String())).
			Debug("Discarding result for a scope no longer in view")
		if err != nil {
			return nil, false, err
		}
		return slices.Clone(items), false, nil
	}

	h.pending--
	if err != nil {
		h.err = err
	} else {
		h.err = nil
		// An older flight can settle after a newer one, and a CRUD change can
		// land while a flight runs; the cache holds the newest state.
		if cached, ok := h.coord.Cached(s, filters); ok {
			items = cached
		}
		h.items = items
	}
	if h.pending == 0 {
		if h.items != nil {
			h.state = Loaded
		} else {
			h.state = Empty
		}
	}
	if err != nil {
		return nil, true, err
	}
	return slices.Clone(items), true, nil
}

// Reload force-reloads the scope currently in view. Unlike Load it never
// moves the view.
func (h *Hook[T]) Reload(ctx context.Context) ([]T, error) {
	h.mu.Lock()
	s := h.scope
	if s.IsNull() && h.opts.requireScope {
		h.mu.Unlock()
		return nil, nil
	}
	epoch, filters := h.beginLocked()
	h.mu.Unlock()

	items, _, err := h.settle(ctx, s, epoch, filters, true)
	return items, err
}

// Get looks up id in the current scope's collection.
func (h *Hook[T]) Get(id string) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getLocked(id)
}

func (h *Hook[T]) getLocked(id string) (T, bool) {
	for _, item := range h.items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Items returns a copy of the current view.
func (h *Hook[T]) Items() []T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.items)
}

// State returns the load state of the current scope.
func (h *Hook[T]) State() LoadState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Scope returns the scope currently in view.
func (h *Hook[T]) Scope() models.Scope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scope
}

// Err returns the error of the last settled load for the current scope.
func (h *Hook[T]) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Select marks id as the selected item. An empty id clears the selection.
func (h *Hook[T]) Select(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id != "" {
		if _, ok := h.getLocked(id); !ok {
			return errors.ItemNotFound(h.Kind(), id)
		}
	}
	h.selected = id
	return nil
}

// Selected returns the selected item, if it is still in view.
func (h *Hook[T]) Selected() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.selected == "" {
		var zero T
		return zero, false
	}
	return h.getLocked(h.selected)
}

// SetFilters replaces the filters used by later loads. The current view is
// cleared when they differ.
func (h *Hook[T]) SetFilters(f models.Filters) error {
	if err := f.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid filters")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if f.Fingerprint() == h.filters.Fingerprint() {
		return nil
	}
	h.resetLocked(h.scope, false)
	h.filters = f.Clone()
	return nil
}

// Filters returns a copy of the active filters.
func (h *Hook[T]) Filters() models.Filters {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.filters.Clone()
}

// Create creates item in the current scope and inserts it into the cache.
func (h *Hook[T]) Create(ctx context.Context, item T) (T, error) {
	s, epoch := h.view()
	created, err := h.api.Create(ctx, s, item)
	if err != nil {
		return created, err
	}
	h.apply(s, epoch, func(items []T) []T { return upsert(items, created) })
	return created, nil
}

// Update replaces item in the current scope and in the cache.
func (h *Hook[T]) Update(ctx context.Context, item T) (T, error) {
	s, epoch := h.view()
	updated, err := h.api.Update(ctx, s, item)
	if err != nil {
		return updated, err
	}
	h.apply(s, epoch, func(items []T) []T { return upsert(items, updated) })
	return updated, nil
}

// Delete deletes id in the current scope and removes it from the cache.
func (h *Hook[T]) Delete(ctx context.Context, id string) error {
	s, epoch := h.view()
	if err := h.api.Delete(ctx, s, id); err != nil {
		return err
	}
	h.apply(s, epoch, func(items []T) []T {
		return slices.DeleteFunc(items, func(item T) bool { return item.GetID() == id })
	})

	h.mu.Lock()
	if h.selected == id {
		h.selected = ""
	}
	h.mu.Unlock()
	return nil
}

func (h *Hook[T]) view() (models.Scope, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scope, h.epoch
}

// apply mutates the cached collection for s and, if the view has not moved
// on, the current view as well.
func (h *Hook[T]) apply(s models.Scope, epoch uint64, fn func([]T) []T) {
	h.coord.Mutate(s, fn)

	h.mu.Lock()
	defer h.mu.Unlock()
	if epoch != h.epoch || h.items == nil {
		return
	}
	h.items = fn(slices.Clone(h.items))
}

func upsert[T models.Item](items []T, item T) []T {
	for i := range items {
		if items[i].GetID() == item.GetID() {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

// Bind follows m: the view moves to m's current scope and loads it, then
// each scope change clears the view, selection and filters and loads the
// new scope in the background. Background loads only ever fill the scope
// the mirror last reported, so rapid changes settle on the mirror's current
// scope. The returned function unbinds.
func (h *Hook[T]) Bind(ctx context.Context, m *scope.Mirror) (unbind func()) {
	h.mu.Lock()
	bound := h.epoch
	h.mu.Unlock()

	unreset := m.OnReset(func(prev, next models.Scope) {
		h.mu.Lock()
		h.resetLocked(next, true)
		h.mu.Unlock()
	})
	unchange := m.OnChange(func(prev, next models.Scope) {
		h.followAsync(ctx, next)
	})

	// A change observed since registration already moved the view.
	h.mu.Lock()
	current := m.Current()
	initial := h.epoch == bound
	if initial && current != h.scope {
		h.resetLocked(current, false)
	}
	h.mu.Unlock()
	if initial {
		h.followAsync(ctx, current)
	}

	return func() {
		unreset()
		unchange()
	}
}

func (h *Hook[T]) followAsync(ctx context.Context, s models.Scope) {
	if s.IsNull() && h.opts.requireScope {
		return
	}
	go func() {
		if err := h.follow(ctx, s); err != nil && h.opts.onError != nil {
			h.opts.onError(err)
		}
	}()
}

// resetLocked moves the view to s and clears everything derived from the
// previous scope. Filters survive unless clearFilters is set.
func (h *Hook[T]) resetLocked(s models.Scope, clearFilters bool) {
	h.scope = s
	h.items = nil
	h.err = nil
	h.state = Empty
	h.selected = ""
	h.pending = 0
	h.epoch++
	if clearFilters {
		h.filters = nil
	}
}
