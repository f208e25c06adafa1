// Package observer is the user-facing view of environment consistency: a
// debug panel showing what every store holds, a manual force-sync action and
// the reload offer raised when the stores cannot be reconciled.
package observer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// ErrSyncInFlight is returned by ForceSync while a previous call runs.
var ErrSyncInFlight = errors.New("environment sync already in progress")

// Reconciler is the part of the reconciler the panel drives.
type Reconciler interface {
	GetEnvironmentStatus(ctx context.Context, userID models.UserID) (models.SyncStatus, error)
	ForceSync(ctx context.Context, userID models.UserID) (models.Environment, error)
}

// Panel is the debug panel of one browsing context.
type Panel struct {
	rec      Reconciler
	userID   func() models.UserID
	notifier store.Notifier
	log      zerolog.Logger

	syncing atomic.Bool
}

// New creates a panel for the user returned by userID.
func New(rec Reconciler, userID func() models.UserID, notifier store.Notifier, log zerolog.Logger) *Panel {
	return &Panel{
		rec:      rec,
		userID:   userID,
		notifier: notifier,
		log:      log.With().Str("component", "observer").Logger(),
	}
}

// Status reads the current status of every store.
func (p *Panel) Status(ctx context.Context) (models.SyncStatus, error) {
	return p.rec.GetEnvironmentStatus(ctx, p.userID())
}

// Syncing reports whether a force sync is running.
func (p *Panel) Syncing() bool { return p.syncing.Load() }

// ForceSync reconciles every store on user request and notifies the outcome.
// A second call while one is running fails with ErrSyncInFlight and does
// nothing else.
func (p *Panel) ForceSync(ctx context.Context) (models.Environment, error) {
	if !p.syncing.CompareAndSwap(false, true) {
		return "", ErrSyncInFlight
	}
	defer p.syncing.Store(false)

	env, err := p.rec.ForceSync(ctx, p.userID())
	if err != nil {
		p.log.Error().Err(err).Msg("force sync failed")
		p.notifier.Notify(store.Notification{
			Level:   store.LevelError,
			Title:   "Sync failed",
			Message: err.Error(),
		})
		return env, err
	}

	p.notifier.Notify(store.Notification{
		Level:   store.LevelInfo,
		Title:   "Environment synced",
		Message: fmt.Sprintf("All stores now use %s.", env),
	})
	return env, nil
}

// Watch offers a reload for every environment-sync-failure event until ctx
// is done or the bus closes.
func (p *Panel) Watch(ctx context.Context, bus *events.Bus) {
	ch, cancel := bus.Subscribe(events.DefaultBuffer)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			if e.Type != events.TypeSyncFailure {
				continue
			}
			reason := ""
			if e.Detail != nil {
				reason = e.Detail.Reason
			}
			p.log.Warn().Str("reason", reason).Msg("environment sync failure, offering reload")
			p.notifier.Notify(store.Notification{
				Level:   store.LevelError,
				Title:   "Environment out of sync",
				Message: "Your environment could not be synchronized. Reload the page to recover.",
				Reload:  true,
			})
		}
	}
}

// Render writes status as text. When the stores disagree every reading is
// listed; a view that is not themed shows the marker as not applicable.
func Render(w io.Writer, status models.SyncStatus) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if status.AllInSync {
		value := "none"
		if d := status.Distinct(); len(d) > 0 {
			value = string(d[0])
		}
		fmt.Fprintf(tw, "Environment sync:\tOK (%s)\n", value)
	} else {
		fmt.Fprintf(tw, "Environment sync:\tOUT OF SYNC\n")
		fmt.Fprintf(tw, "\n")
		fmt.Fprintf(tw, "STORE\tVALUE\n")
		for _, src := range models.AllSources() {
			r, ok := status.Reading(src)
			switch {
			case !ok:
				fmt.Fprintf(tw, "%s\tn/a (view not themed)\n", src)
			case !r.Present():
				fmt.Fprintf(tw, "%s\t(empty)\n", src)
			default:
				fmt.Fprintf(tw, "%s\t%s\n", src, r.Value)
			}
		}
	}

	if status.ErrorDetail != "" {
		fmt.Fprintf(tw, "Last error:\t%s\n", status.ErrorDetail)
	}
	if !status.CheckedAt.IsZero() {
		fmt.Fprintf(tw, "Checked at:\t%s\n", status.CheckedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
