package surrealfocus

import (
	"context"
	"fmt"
)

// Migrate prepares the profile and onboarding tables on the configured
// backend. It only creates what is missing, so it is safe to run repeatedly.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	a.log.Info().Str("remote", a.config.Remote).Msg("running database migrations")
	for _, s := range []interface {
		Migrate(context.Context) error
	}{a.primary, a.secondary} {
		if err := s.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	a.log.Info().Msg("migrations completed successfully")
	return nil
}
