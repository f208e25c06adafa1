package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

const (
	triggerUser  = "user"
	triggerHeal  = "self-heal"
	triggerForce = "force-sync"
)

// SaveEnvironment commits env for userID across every store.
//
// Remote Primary is written first, then Remote Secondary, then the Local
// Cache. A failure of any of those stops the save: remote failures come back
// as *DatabaseError, a failed cache write as *UnexpectedError. The remaining
// steps (preferences blob, theme context, onboarding and user refresh, Visual
// Marker, broadcast) log their failures and carry on.
//
// The error detail of the outcome is kept for GetEnvironmentStatus.
func (r *Reconciler) SaveEnvironment(ctx context.Context, userID models.UserID, env models.Environment) error {
	return r.commit(ctx, userID, env, triggerUser, time.Time{})
}

// commit runs the save path. Remote rows are stamped with the current time,
// or with notBefore when that is later.
func (r *Reconciler) commit(ctx context.Context, userID models.UserID, env models.Environment, trigger string, notBefore time.Time) error {
	err := r.save(ctx, userID, env, trigger, notBefore)
	r.recordResult(err)
	r.deps.Metrics.save(trigger, err)
	if err != nil {
		r.log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("environment", string(env)).
			Str("trigger", trigger).
			Msg("environment save failed")
	}
	return err
}

func (r *Reconciler) save(ctx context.Context, userID models.UserID, env models.Environment, trigger string, notBefore time.Time) (err error) {
	if userID.IsZero() {
		return ErrNoUserID
	}
	if !env.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidEnvironment, env)
	}

	defer func() {
		if p := recover(); p != nil {
			err = &UnexpectedError{Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	log := r.log.With().
		Str("user_id", userID.String()).
		Str("environment", string(env)).
		Str("trigger", trigger).
		Logger()

	at := r.now()
	if notBefore.After(at) {
		at = notBefore
	}
	for _, remote := range []struct {
		name  string
		write func(context.Context, *models.EnvironmentRecord) error
	}{
		{r.deps.Primary.Table().Store, r.deps.Primary.SetEnvironment},
		{r.deps.Secondary.Table().Store, r.deps.Secondary.SetEnvironment},
	} {
		rec := &models.EnvironmentRecord{UserID: userID, Environment: env, UpdatedAt: at}
		if err := remote.write(ctx, rec); err != nil {
			return &DatabaseError{Store: remote.name, Err: err}
		}
		log.Debug().Str("store", remote.name).Msg("remote environment written")
	}

	if err := r.deps.Cache.Set(models.CacheKeyEnvironment, string(env)); err != nil {
		return &UnexpectedError{Err: fmt.Errorf("local cache: %w", err)}
	}
	if err := localcache.SetPreferencesEnvironment(r.deps.Cache, env); err != nil {
		log.Warn().Err(err).Msg("preferences blob not updated")
	}

	r.deps.Theme.SetEnvironmentTheme(env)

	if err := r.deps.Onboarding.ForceEnvironmentSync(ctx); err != nil {
		log.Warn().Err(err).Msg("onboarding context not synced")
	}
	if err := r.deps.User.RefreshUser(ctx); err != nil {
		log.Warn().Err(err).Msg("user context not refreshed")
	}

	if r.deps.Marker.Apply(env) {
		r.endPreview()
	}

	r.publish(events.Storage(models.CacheKeyEnvironment, string(env)))
	r.publish(events.EnvironmentChanged(env))

	log.Info().Msg("environment saved")
	return nil
}
