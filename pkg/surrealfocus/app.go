package surrealfocus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/logger"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/marker"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/observer"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/reconciler"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/scheduler"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/session"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/memory"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/postgres"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/surrealdb"
)

// Remote store backends.
const (
	RemoteSurreal  = "surreal"
	RemotePostgres = "postgres"
	RemoteMemory   = "memory"
)

// ErrNoSession is returned by operations that need a signed-in user.
var ErrNoSession = errors.New("no active session")

// Config holds application configuration.
type Config struct {
	// Remote selects the backend of both remote tables.
	Remote string

	PostgresDSN   string
	SurrealDBURL  string
	SurrealDBNS   string
	SurrealDBDB   string
	SurrealDBUser string
	SurrealDBPass string

	// CacheDir is the local cache directory. Empty keeps the cache in memory.
	CacheDir string
	// Origin scopes local cache keys.
	Origin string

	// ReadOnly rejects remote writes.
	ReadOnly bool

	CheckInterval    time.Duration
	MinCheckInterval time.Duration
	ThemedRoutes     []string

	LogLevel string
	LogFile  string
	Console  bool

	ServerPort      string
	ShutdownTimeout time.Duration
}

// App is one browsing context: its stores, its contexts and at most one
// signed-in user.
type App struct {
	config  *Config
	logData *logger.LogData
	log     zerolog.Logger

	primary   *store.ReadOnlyStore
	secondary *store.ReadOnlyStore
	cache     *localcache.Cache
	doc       *marker.Document
	marker    *marker.Marker

	session    *session.Session
	theme      *session.Theme
	onboarding *session.Onboarding
	user       *session.User

	bus        *events.Bus
	registry   *prometheus.Registry
	reconciler *reconciler.Reconciler
	checker    *scheduler.Checker
	panel      *observer.Panel
	notes      *notificationLog
	validate   *validator.Validate

	readOnly atomic.Bool

	// sessionMu serializes sign in and sign out.
	sessionMu sync.Mutex
	watchStop context.CancelFunc
	watchDone chan struct{}
}

// New creates an application, connecting the remote stores selected by
// config.Remote and opening the local cache.
func New(ctx context.Context, config *Config) (*App, error) {
	build := logger.New().WithLevel(config.LogLevel).Console(config.Console)
	if config.LogFile != "" {
		build = build.FromPath(config.LogFile)
	}
	logData, err := build.Make()
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	primary, secondary, err := openRemotes(ctx, config, logData.Logger)
	if err != nil {
		_ = logData.Close()
		return nil, err
	}

	cacheLog := logger.Component(logData.Logger, "localcache")
	cacheCfg := localcache.InMemoryConfig()
	if config.CacheDir != "" {
		cacheCfg = localcache.DefaultConfig(config.CacheDir)
	}
	if config.Origin != "" {
		cacheCfg.Origin = config.Origin
	}
	cacheCfg.Logger = &cacheLog
	cache, err := localcache.Open(cacheCfg)
	if err != nil {
		_ = primary.Close()
		_ = secondary.Close()
		_ = logData.Close()
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	return newApp(config, logData, primary, secondary, cache), nil
}

// NewWithStores creates an application on stores the caller opened. The
// application takes ownership of them.
func NewWithStores(config *Config, log zerolog.Logger, primary, secondary store.RemoteStore, cache *localcache.Cache) *App {
	return newApp(config, &logger.LogData{Logger: log}, primary, secondary, cache)
}

func newApp(config *Config, logData *logger.LogData, primary, secondary store.RemoteStore, cache *localcache.Cache) *App {
	a := &App{
		config:   config,
		logData:  logData,
		log:      logger.Component(logData.Logger, "app"),
		cache:    cache,
		doc:      marker.NewDocument(),
		session:  session.New(),
		bus:      events.NewBus(logger.Component(logData.Logger, "events")),
		registry: prometheus.NewRegistry(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	a.readOnly.Store(config.ReadOnly)
	a.primary = store.NewReadOnlyStore(primary, a.IsReadOnly)
	a.secondary = store.NewReadOnlyStore(secondary, a.IsReadOnly)
	a.marker = marker.New(a.doc, config.ThemedRoutes)

	a.theme = session.NewTheme(a.primary, logger.Component(logData.Logger, "theme"))
	a.onboarding = session.NewOnboarding(cache, a.secondary, a.session.UserID)
	a.user = session.NewUser(a.primary, a.session.UserID)

	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	cfg := reconciler.DefaultConfig()
	cfg.MinCheckInterval = config.MinCheckInterval
	a.reconciler = reconciler.New(reconciler.Dependencies{
		Primary:    a.primary,
		Secondary:  a.secondary,
		Cache:      cache,
		Marker:     a.marker,
		Theme:      a.theme,
		Onboarding: a.onboarding,
		User:       a.user,
		Bus:        a.bus,
		Metrics:    reconciler.NewMetrics(a.registry),
		Logger:     logData.Logger,
	}, cfg)

	a.checker = scheduler.New(a.reconciler.CheckAndFixEnvironment, a.session.UserID, config.CheckInterval, logData.Logger)
	a.notes = newNotificationLog(logger.Component(logData.Logger, "notify"))
	a.panel = observer.New(a.reconciler, a.session.UserID, a.notes, logData.Logger)
	return a
}

func openRemotes(ctx context.Context, config *Config, log zerolog.Logger) (store.RemoteStore, store.RemoteStore, error) {
	switch config.Remote {
	case RemoteSurreal:
		db, err := surrealdb.Connect(ctx, config.SurrealDBURL, config.SurrealDBNS, config.SurrealDBDB, config.SurrealDBUser, config.SurrealDBPass)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		log.Info().Str("url", config.SurrealDBURL).Msg("connected to SurrealDB")
		return surrealdb.NewRecordStore(db, models.ProfileTable).OwnsConnection(),
			surrealdb.NewRecordStore(db, models.OnboardingTable), nil

	case RemotePostgres:
		db, err := postgres.Open(config.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		log.Info().Msg("connected to PostgreSQL")
		return postgres.NewRecordStore(db, models.ProfileTable).OwnsConnection(),
			postgres.NewRecordStore(db, models.OnboardingTable), nil

	case RemoteMemory:
		log.Warn().Msg("using in-memory remote stores, nothing survives a restart")
		return memory.NewRecordStore(models.ProfileTable), memory.NewRecordStore(models.OnboardingTable), nil
	}
	return nil, nil, fmt.Errorf("unknown remote backend: %s", config.Remote)
}

// Close ends the session and releases every store.
func (a *App) Close() error {
	a.EndSession()
	a.bus.Close()

	var errs []error
	for _, c := range []interface{ Close() error }{a.primary, a.secondary, a.cache, a.logData} {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetReadOnly toggles rejection of remote writes at runtime.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly.Store(readOnly)
	a.log.Info().Bool("read_only", readOnly).Msg("read-only mode changed")
}

// IsReadOnly reports whether remote writes are rejected.
func (a *App) IsReadOnly() bool { return a.readOnly.Load() }

// Reconciler returns the reconciler (useful for testing).
func (a *App) Reconciler() *reconciler.Reconciler { return a.reconciler }

// Marker returns the visual marker (useful for testing).
func (a *App) Marker() *marker.Marker { return a.marker }

// UserID returns the signed-in user, zero without a session.
func (a *App) UserID() models.UserID { return a.session.UserID() }

// StartSession signs userID in, restores its environment, starts the
// checker and begins offering reloads on sync failures. An existing session
// for another user is ended first.
func (a *App) StartSession(ctx context.Context, userID models.UserID) (models.Environment, error) {
	if userID.IsZero() {
		return "", reconciler.ErrNoUserID
	}

	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	if cur := a.session.UserID(); !cur.IsZero() && cur != userID {
		a.endSessionLocked()
	}
	a.session.SignIn(userID)

	env := a.reconciler.Restore(ctx, userID)
	if err := a.user.RefreshUser(ctx); err != nil {
		a.log.Warn().Err(err).Msg("user profile not loaded")
	}

	if !a.checker.Running() {
		if err := a.checker.Start(context.Background()); err != nil {
			return env, err
		}
	}
	if a.watchStop == nil {
		watchCtx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		a.watchStop, a.watchDone = cancel, done
		go func() {
			defer close(done)
			a.panel.Watch(watchCtx, a.bus)
		}()
	}

	a.log.Info().Str("user_id", userID.String()).Str("environment", string(env)).Msg("session started")
	return env, nil
}

// EndSession signs the user out and stops the background work. Without a
// session it does nothing.
func (a *App) EndSession() {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	a.endSessionLocked()
}

func (a *App) endSessionLocked() {
	a.checker.Stop()
	if a.watchStop != nil {
		a.watchStop()
		<-a.watchDone
		a.watchStop, a.watchDone = nil, nil
	}
	if userID := a.session.UserID(); !userID.IsZero() {
		a.log.Info().Str("user_id", userID.String()).Msg("session ended")
	}
	a.reconciler.ResetPreview()
	a.session.SignOut()
	a.theme.Reset()
	a.onboarding.Reset()
}

// Navigate records the current view and returns whether it is themed.
// Entering a themed view shows the committed environment; leaving one ends
// any preview.
func (a *App) Navigate(path string) bool {
	a.marker.Navigate(path)
	if !a.marker.Themed() {
		a.reconciler.ResetPreview()
		return false
	}
	if !a.reconciler.HasPreviewedOnly() {
		if env := a.theme.Environment(); !env.IsZero() {
			a.marker.Apply(env)
		}
	}
	return true
}

// activeUser returns the signed-in user or ErrNoSession.
func (a *App) activeUser() (models.UserID, error) {
	userID := a.session.UserID()
	if userID.IsZero() {
		return userID, ErrNoSession
	}
	return userID, nil
}

// getEnv returns the environment variable key, or defaultValue when it is
// unset or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
