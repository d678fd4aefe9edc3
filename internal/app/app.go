// Package app assembles the dashboard core for a single surface: durable
// scope, central store, REST transport, resource hooks and notifications.
package app

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/grovetools/dashboard/config"
	"github.com/grovetools/dashboard/errors"
	"github.com/grovetools/dashboard/internal/store"
	"github.com/grovetools/dashboard/logging"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/resource"
	"github.com/grovetools/dashboard/pkg/scope"
	"github.com/grovetools/dashboard/pkg/toast"
	"github.com/grovetools/dashboard/pkg/transport"
	"github.com/grovetools/dashboard/state"
	"github.com/sirupsen/logrus"
)

// App owns every long-lived component of one dashboard surface.
type App struct {
	cfg      *config.Config
	logger   *logrus.Entry
	durable  state.Store
	store    *store.Store
	client   *transport.Client
	mirror   *scope.Mirror
	projects *resource.Hook[models.Project]
	versions *resource.Hook[models.ProductVersion]
	notifier *toast.Notifier

	projectsAPI transport.Resource[models.Project]
	versionsAPI transport.Resource[models.ProductVersion]

	mu      sync.Mutex
	cancel  context.CancelFunc
	unbind  func()
	started bool
	closed  bool
}

// Option configures an App.
type Option func(*App)

// WithLogger routes every component's logs through l instead of the
// per-component file loggers.
func WithLogger(l *logrus.Entry) Option {
	return func(a *App) { a.logger = l }
}

// WithDurableStore replaces the file-backed scope store.
func WithDurableStore(s state.Store) Option {
	return func(a *App) { a.durable = s }
}

// WithProjectsAPI replaces the HTTP projects collection.
func WithProjectsAPI(r transport.Resource[models.Project]) Option {
	return func(a *App) { a.projectsAPI = r }
}

// WithVersionsAPI replaces the HTTP product versions collection.
func WithVersionsAPI(r transport.Resource[models.ProductVersion]) Option {
	return func(a *App) { a.versionsAPI = r }
}

// New builds an App from cfg. The HTTP transport is only created for
// collections not supplied through options, and then requires
// api.base_url.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &App{cfg: cfg, store: store.New()}
	for _, opt := range opts {
		opt(a)
	}

	if a.durable == nil {
		fs, err := state.NewFileStore(cfg.Scope.StateFile)
		if err != nil {
			return nil, err
		}
		a.durable = fs
	}

	if a.projectsAPI == nil || a.versionsAPI == nil {
		if cfg.API.BaseURL == "" {
			return nil, errors.ConfigInvalid("api.base_url is not set")
		}
		client, err := transport.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.TimeoutDuration(),
			transport.WithClientLogger(a.component("transport")))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid api configuration")
		}
		a.client = client
		if a.projectsAPI == nil {
			a.projectsAPI = transport.Projects(client)
		}
		if a.versionsAPI == nil {
			a.versionsAPI = transport.ProductVersions(client)
		}
	}

	interval := cfg.Scope.PollDuration()
	a.mirror = scope.New(a.durable, cfg.Scope.Key,
		scope.WithInterval(interval),
		scope.WithLogger(a.component("scope")),
		scope.WithWatcher(scope.Auto(a.durable, cfg.Scope.Key, interval, cfg.Scope.WatchEnabled(), a.component("scope"))))

	a.notifier = toast.NewNotifier(a.store,
		toast.WithDurations(cfg.Toasts.DurationFor),
		toast.WithLogger(a.component("toast")))

	a.projects = resource.NewProjects(a.projectsAPI, a.store,
		resource.WithLogger(a.component("resource")),
		resource.WithErrorHandler(func(err error) { a.ReportError(err) }))
	a.versions = resource.NewProductVersions(a.versionsAPI, a.store,
		resource.WithLogger(a.component("resource")),
		resource.WithErrorHandler(func(err error) { a.ReportError(err) }))

	return a, nil
}

func (a *App) component(name string) *logrus.Entry {
	if a.logger != nil {
		return a.logger.WithField("component", name)
	}
	return logging.NewLogger(name)
}

func (a *App) log() *logrus.Entry {
	return a.component("app")
}

// Start launches the scope watcher and notification loop, binds the
// product versions hook to the shared scope and loads the current scope.
func (a *App) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started || a.closed {
		return
	}
	a.started = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.notifier.Start(ctx)
	a.unbind = a.versions.Bind(ctx, a.mirror)
	a.mirror.Start(ctx)
	a.log().WithField("scope", a.mirror.Current()).Info("Dashboard started")
}

// Close stops every background loop and cancels pending toast timers.
// A closed App cannot be started again.
func (a *App) Close() {
	a.mu.Lock()
	cancel, unbind := a.cancel, a.unbind
	a.cancel, a.unbind = nil, nil
	a.closed = true
	a.mu.Unlock()

	if unbind != nil {
		unbind()
	}
	a.mirror.Stop()
	if cancel != nil {
		cancel()
	}
	a.notifier.Close()
}

// ReportError shows err as an error toast and returns the toast id.
// Cancellations are not reported.
func (a *App) ReportError(err error) string {
	if err == nil || stderrors.Is(err, context.Canceled) {
		return ""
	}
	msg := err.Error()
	if de, ok := errors.As(err); ok {
		msg = de.Message
	}
	a.log().WithError(err).Warn("Reporting error to user")
	return a.notifier.Notify(msg, models.ToastError, toast.UseDefault)
}

// SelectProject makes id the shared current scope.
func (a *App) SelectProject(id string) error {
	return a.mirror.Set(models.Scope(id))
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Store returns the central store.
func (a *App) Store() *store.Store { return a.store }

// Durable returns the durable scope store.
func (a *App) Durable() state.Store { return a.durable }

// Mirror returns this surface's view of the shared scope.
func (a *App) Mirror() *scope.Mirror { return a.mirror }

// Notifier returns the toast notifier.
func (a *App) Notifier() *toast.Notifier { return a.notifier }

// Client returns the HTTP client, or nil when every collection was
// supplied through options.
func (a *App) Client() *transport.Client { return a.client }

// Projects returns the projects hook.
func (a *App) Projects() *resource.Hook[models.Project] { return a.projects }

// Versions returns the product versions hook.
func (a *App) Versions() *resource.Hook[models.ProductVersion] { return a.versions }
