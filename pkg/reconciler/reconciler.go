package reconciler

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Config tunes the reconciler.
type Config struct {
	// MinCheckInterval is the least time between two automatic checks.
	// Zero disables debouncing.
	MinCheckInterval time.Duration

	// DefaultEnvironment is used by ForceSync when every store is empty.
	DefaultEnvironment models.Environment

	// MaxHealFailures is the number of consecutive failed self-heals after
	// which an environment-sync-failure event is broadcast. Zero disables it.
	MaxHealFailures int
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{
		MinCheckInterval:   10 * time.Second,
		DefaultEnvironment: models.DefaultEnvironment,
		MaxHealFailures:    3,
	}
}

// Dependencies are the stores and collaborators the reconciler drives.
// Metrics and Now are optional.
type Dependencies struct {
	Primary    store.RemoteStore
	Secondary  store.RemoteStore
	Cache      store.LocalCache
	Marker     store.VisualMarker
	Theme      store.ThemeContext
	Onboarding store.OnboardingContext
	User       store.UserContext
	Bus        *events.Bus
	Metrics    *Metrics
	Logger     zerolog.Logger
	Now        func() time.Time
}

// Reconciler owns the save path, the preview path and the consistency check
// for one browsing context.
type Reconciler struct {
	deps Dependencies
	cfg  Config
	log  zerolog.Logger

	limiter *rate.Limiter
	checks  singleflight.Group

	mu           sync.Mutex
	lastError    string
	previewing   bool
	healFailures int
}

// New creates a reconciler. Missing optional dependencies get defaults.
func New(deps Dependencies, cfg Config) *Reconciler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.DefaultEnvironment.IsZero() {
		cfg.DefaultEnvironment = models.DefaultEnvironment
	}
	return &Reconciler{
		deps:    deps,
		cfg:     cfg,
		log:     deps.Logger.With().Str("component", "reconciler").Logger(),
		limiter: rate.NewLimiter(rate.Every(cfg.MinCheckInterval), 1),
	}
}

// LastError is the detail of the most recent failed save, "" after a
// successful one.
func (r *Reconciler) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

func (r *Reconciler) recordResult(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		r.lastError = ""
		return
	}
	r.lastError = err.Error()
}

func (r *Reconciler) now() time.Time { return r.deps.Now() }

func (r *Reconciler) publish(e events.Event) {
	if r.deps.Bus == nil {
		return
	}
	if e.At.IsZero() {
		e.At = r.now()
	}
	r.deps.Bus.Publish(e)
}

// resultLabel maps a save error to its metrics label.
func resultLabel(err error) string {
	var dbErr *DatabaseError
	var unexpected *UnexpectedError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoUserID):
		return "no_user"
	case errors.Is(err, models.ErrInvalidEnvironment):
		return "invalid"
	case errors.As(err, &dbErr):
		return "database"
	case errors.As(err, &unexpected):
		return "unexpected"
	default:
		return "error"
	}
}
