package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/cthstore/storefront/internal/config"
	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/internal/scene"
	"github.com/cthstore/storefront/pkg/adapters/file"
	httpAdapter "github.com/cthstore/storefront/pkg/adapters/http"
	"github.com/cthstore/storefront/pkg/adapters/memory"
	"github.com/cthstore/storefront/pkg/adapters/redis"
	"github.com/cthstore/storefront/pkg/adapters/sqlite"
	"github.com/cthstore/storefront/pkg/observability"
	"github.com/cthstore/storefront/pkg/persistence/middleware"
	"github.com/cthstore/storefront/pkg/ports"
	"github.com/cthstore/storefront/pkg/session"
)

// App holds the long-lived components shared by every transport.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Repo     *sqlite.Repository
	Sessions *session.Manager
	Metrics  *observability.Metrics

	checks  map[string]httpAdapter.Check
	closers []func() error
}

// Option configures an App.
type Option func(*App)

// WithLogger overrides the logger built from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// New opens the database, migrates it and connects the session store.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	app := &App{
		Config: cfg,
		checks: map[string]httpAdapter.Check{},
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.Logger == nil {
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		app.Logger = logging.NewWithWriter(os.Stderr, level, logging.Format(cfg.Log.Format))
	}

	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	app.Repo = repo
	app.closers = append(app.closers, repo.Close)
	app.checks["database"] = repo.Ping
	if err := repo.Migrate(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}

	store, locker, err := app.sessionStore(cfg.Store)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	sessionOpts := []session.Option{session.WithLogger(app.Logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, sessionOpts...)
	app.Metrics = observability.NewMetrics()

	app.Logger.Info("Storefront ready",
		"version", Version,
		"database", cfg.Database.Path,
		"store", cfg.Store.Driver,
		"encrypted", cfg.Store.EncryptionKey != "",
	)
	return app, nil
}

func (a *App) sessionStore(cfg config.Store) (ports.SessionStore, ports.DistributedLocker, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	switch cfg.Driver {
	case config.DriverRedis:
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		a.closers = append(a.closers, rs.Close)
		a.checks["sessions"] = rs.Ping
		store = rs
		locker = redis.NewLocker(rs.Client(), rs.Prefix())
	case config.DriverFile:
		store = file.New(cfg.Dir)
	case config.DriverMemory:
		store = memory.NewStore()
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}

	if cfg.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(cfg.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("store.encryption_key: %w", err)
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(keys))
	}
	return store, locker, nil
}

// Machine builds a scene machine rendering through renderer.
func (a *App) Machine(renderer ports.Renderer, opts ...scene.Option) *scene.Machine {
	base := []scene.Option{
		scene.WithPageSize(a.Config.Navigation.PageSize),
		scene.WithLoadTimeout(a.Config.Navigation.LoadTimeout),
		scene.WithCurrency(a.Config.Telegram.Currency),
		scene.WithLogger(a.Logger),
		scene.WithHooks(a.Metrics.Hooks(a.Logger.With("component", "events"))),
	}
	return scene.NewMachine(a.Sessions, a.Repo, renderer, append(base, opts...)...)
}

// HTTPHandler serves /healthz, /info and /metrics.
func (a *App) HTTPHandler() http.Handler {
	return httpAdapter.NewHandler(httpAdapter.Options{
		Version: Version,
		Checks:  a.checks,
		Metrics: a.Metrics.Handler(),
		Logger:  a.Logger.With("component", "http"),
	})
}

// Close releases the database and session store connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
