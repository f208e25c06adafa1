package reconciler

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"golang.org/x/sync/errgroup"
)

// GetEnvironmentStatus reads every store and reports whether they agree.
// The Visual Marker is read only while the view is themed.
//
// Reads run concurrently. When some fail, the status still holds the
// readings that succeeded, its ErrorDetail describes the failure and the
// first error is returned.
func (r *Reconciler) GetEnvironmentStatus(ctx context.Context, userID models.UserID) (models.SyncStatus, error) {
	if userID.IsZero() {
		return models.SyncStatus{ErrorDetail: ErrNoUserID.Error(), CheckedAt: r.now()}, ErrNoUserID
	}

	sources := models.AllSources()
	readings := make([]models.StoreReading, len(sources))
	skip := make([]bool, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			reading, include, err := r.read(ctx, src, userID)
			reading.ReadAt = r.now()
			readings[i] = reading
			skip[i] = !include
			return err
		})
	}
	readErr := g.Wait()

	kept := readings[:0]
	for i, rd := range readings {
		if !skip[i] {
			kept = append(kept, rd)
		}
	}

	status := models.NewSyncStatus(userID, kept, r.now())
	if readErr != nil {
		status.ErrorDetail = readErr.Error()
	} else {
		status.ErrorDetail = r.LastError()
	}
	r.deps.Metrics.distinct(len(status.Distinct()))
	return status, readErr
}

// read returns one store's reading and whether it belongs in the status.
func (r *Reconciler) read(ctx context.Context, src models.Source, userID models.UserID) (models.StoreReading, bool, error) {
	reading := models.StoreReading{Source: src}
	switch src {
	case models.SourcePrimaryRemote, models.SourceSecondaryRemote:
		remote := r.deps.Primary
		if src == models.SourceSecondaryRemote {
			remote = r.deps.Secondary
		}
		rec, err := remote.GetEnvironment(ctx, userID)
		if err != nil {
			return reading, true, &DatabaseError{Store: remote.Table().Store, Err: err}
		}
		if rec != nil {
			reading.Value = rec.Environment
			reading.UpdatedAt = rec.UpdatedAt
		}
		return reading, true, nil

	case models.SourceLocalCache:
		env, err := localcache.Environment(r.deps.Cache)
		if err != nil {
			return reading, true, fmt.Errorf("local cache: %w", err)
		}
		reading.Value = env
		return reading, true, nil

	case models.SourceVisualMarker:
		if !r.deps.Marker.Themed() {
			return reading, false, nil
		}
		reading.Value, _ = r.deps.Marker.Current()
		return reading, true, nil

	case models.SourceContext:
		reading.Value = r.deps.Theme.Environment()
		return reading, true, nil
	}
	return reading, false, fmt.Errorf("unknown source %q", src)
}

// Outcome classifies the result of an automatic check.
type Outcome string

const (
	OutcomeDebounced Outcome = "debounced"
	OutcomeNoUser    Outcome = "no_user"
	OutcomeReadError Outcome = "read_error"
	OutcomeInSync    Outcome = "in_sync"
	OutcomeNoAction  Outcome = "no_action"
	OutcomeHealed    Outcome = "healed"
	OutcomeFailed    Outcome = "heal_failed"
)

// CheckResult describes what an automatic check saw and did.
type CheckResult struct {
	Outcome Outcome
	Action  Action
	Status  models.SyncStatus
	// Err is the swallowed error, for logging and tests.
	Err error
}

// CheckAndFixEnvironment runs one automatic consistency check for userID.
//
// Calls closer together than MinCheckInterval are skipped and concurrent
// calls for the same user share one run. When the stores disagree and
// [PlanCheck] says so, the save path runs with the Remote Primary value.
// Nothing is surfaced to the user: errors are logged and returned only in
// the result.
func (r *Reconciler) CheckAndFixEnvironment(ctx context.Context, userID models.UserID) CheckResult {
	if userID.IsZero() {
		r.deps.Metrics.check(OutcomeNoUser)
		return CheckResult{Outcome: OutcomeNoUser, Err: ErrNoUserID}
	}

	v, _, _ := r.checks.Do(userID.String(), func() (any, error) {
		res := r.check(ctx, userID)
		r.deps.Metrics.check(res.Outcome)
		return res, nil
	})
	return v.(CheckResult)
}

func (r *Reconciler) check(ctx context.Context, userID models.UserID) CheckResult {
	if !r.limiter.AllowN(r.now(), 1) {
		return CheckResult{Outcome: OutcomeDebounced}
	}

	log := r.log.With().Str("user_id", userID.String()).Logger()

	status, err := r.GetEnvironmentStatus(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("environment check could not read every store")
		return CheckResult{Outcome: OutcomeReadError, Status: status, Err: err}
	}

	action := PlanCheck(status)
	res := CheckResult{Action: action, Status: status}
	switch {
	case status.AllInSync:
		res.Outcome = OutcomeInSync
		return res
	case !action.Heal:
		log.Debug().Str("reason", action.Reason).Msg("stores differ, nothing to heal automatically")
		res.Outcome = OutcomeNoAction
		return res
	}

	if err := r.commit(ctx, userID, action.Target, triggerHeal, status.LatestWrite()); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
		r.healFailed(err)
		return res
	}

	r.mu.Lock()
	r.healFailures = 0
	r.mu.Unlock()
	r.deps.Metrics.healed()
	log.Info().
		Str("environment", string(action.Target)).
		Str("reason", action.Reason).
		Msg("environment self-healed")
	res.Outcome = OutcomeHealed
	return res
}

// healFailed counts a failed self-heal and broadcasts a sync failure once
// the configured number of consecutive failures is reached.
func (r *Reconciler) healFailed(err error) {
	r.mu.Lock()
	r.healFailures++
	n := r.healFailures
	r.mu.Unlock()

	if r.cfg.MaxHealFailures > 0 && n == r.cfg.MaxHealFailures {
		r.log.Error().Err(err).Int("failures", n).Msg("environment stores could not be reconciled")
		r.publish(events.SyncFailure(err.Error()))
	}
}

// ForceSync re-saves the environment picked by [ResolveSourceOfTruth] from
// the current readings. Stores that cannot be read are treated as empty.
// The rewrite is stamped no earlier than the newest remote row it read, so a
// remote clock running ahead cannot reject it as stale.
func (r *Reconciler) ForceSync(ctx context.Context, userID models.UserID) (models.Environment, error) {
	if userID.IsZero() {
		r.recordResult(ErrNoUserID)
		return "", ErrNoUserID
	}

	status, err := r.GetEnvironmentStatus(ctx, userID)
	if err != nil {
		r.log.Warn().Err(err).Msg("force sync continues with partial readings")
	}

	target, src := ResolveSourceOfTruth(status, r.cfg.DefaultEnvironment)
	r.log.Info().
		Str("user_id", userID.String()).
		Str("environment", string(target)).
		Str("source", string(src)).
		Msg("force sync")
	return target, r.commit(ctx, userID, target, triggerForce, status.LatestWrite())
}
