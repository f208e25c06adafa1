package reconciler

import (
	"context"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

// Restore loads the committed environment into the session at sign in.
//
// The theme context is verified against Remote Primary; without a primary
// value the Local Cache is used. The onboarding copy is reloaded and the
// Visual Marker is applied on themed views. Failures are logged; the
// environment the session ended up with is returned.
func (r *Reconciler) Restore(ctx context.Context, userID models.UserID) models.Environment {
	log := r.log.With().Str("user_id", userID.String()).Logger()

	if err := r.deps.Theme.VerifyEnvironmentWithDatabase(ctx, userID); err != nil {
		log.Warn().Err(err).Msg("theme not verified against profile")
	}

	env := r.deps.Theme.Environment()
	if env.IsZero() {
		cached, err := localcache.Environment(r.deps.Cache)
		if err != nil {
			log.Warn().Err(err).Msg("cached environment unreadable")
		}
		if !cached.IsZero() {
			r.deps.Theme.SetEnvironmentTheme(cached)
			env = cached
		}
	}

	if err := r.deps.Onboarding.ForceEnvironmentSync(ctx); err != nil {
		log.Warn().Err(err).Msg("onboarding context not synced")
	}
	if !env.IsZero() {
		r.deps.Marker.Apply(env)
	}
	log.Debug().Str("environment", string(env)).Msg("session environment restored")
	return env
}
