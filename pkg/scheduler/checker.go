// Package scheduler runs the automatic environment check in the background.
//
// A [Checker] owns one goroutine per session. It calls the reconciler on a
// fixed interval and whenever the view becomes visible again. The reconciler
// debounces, so a tick that lands right after a visibility trigger is
// skipped there rather than here.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/reconciler"
)

// DefaultInterval is the time between two scheduled checks.
const DefaultInterval = 30 * time.Second

// ErrRunning is returned by Start when the checker already runs.
var ErrRunning = errors.New("checker already running")

// CheckFunc runs one automatic check for a user.
type CheckFunc func(ctx context.Context, userID models.UserID) reconciler.CheckResult

// Checker periodically checks the environment of the active user.
type Checker struct {
	check    CheckFunc
	userID   func() models.UserID
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	visible chan struct{}
}

// New creates a stopped checker. An interval of zero selects DefaultInterval.
func New(check CheckFunc, userID func() models.UserID, interval time.Duration, log zerolog.Logger) *Checker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Checker{
		check:    check,
		userID:   userID,
		interval: interval,
		log:      log.With().Str("component", "checker").Logger(),
	}
}

// Start launches the check loop. It stops when ctx is done or Stop is called.
func (c *Checker) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return ErrRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.visible = make(chan struct{}, 1)

	go c.loop(ctx, c.done, c.visible)
	c.log.Debug().Dur("interval", c.interval).Msg("checker started")
	return nil
}

// Stop ends the loop and waits for it to exit. Stopping a stopped checker
// does nothing.
func (c *Checker) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done, c.visible = nil, nil, nil
	c.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
	c.log.Debug().Msg("checker stopped")
}

// Running reports whether the loop is active.
func (c *Checker) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}

// VisibilityRegained asks for a check now. Requests made while one is
// already pending are merged.
func (c *Checker) VisibilityRegained() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.visible == nil {
		return
	}
	select {
	case c.visible <- struct{}{}:
	default:
	}
}

func (c *Checker) loop(ctx context.Context, done chan<- struct{}, visible <-chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.run(ctx, "interval")
		case <-visible:
			c.run(ctx, "visibility")
		}
	}
}

func (c *Checker) run(ctx context.Context, trigger string) {
	userID := c.userID()
	if userID.IsZero() {
		return
	}
	res := c.check(ctx, userID)
	ev := c.log.Debug()
	if res.Err != nil {
		ev = c.log.Warn().Err(res.Err)
	}
	ev.Str("trigger", trigger).
		Str("user_id", userID.String()).
		Str("outcome", string(res.Outcome)).
		Msg("environment check")
}
