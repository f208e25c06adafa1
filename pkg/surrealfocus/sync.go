package surrealfocus

import (
	"context"
	"fmt"
	"io"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/observer"
)

// openSession signs the command's user in on route without starting any
// background work.
func (a *App) openSession(ctx context.Context, user, route string) (models.UserID, error) {
	userID, err := models.ParseUserID(user)
	if err != nil {
		return userID, fmt.Errorf("invalid user id: %w", err)
	}
	a.session.SignIn(userID)
	if route != "" {
		a.marker.Navigate(route)
	}
	a.reconciler.Restore(ctx, userID)
	return userID, nil
}

// Status prints the debug panel for the command's user.
func (a *App) Status(ctx context.Context, cmd *StatusCommand, w io.Writer) error {
	if _, err := a.openSession(ctx, cmd.UserID, cmd.Route); err != nil {
		return err
	}
	status, err := a.panel.Status(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("status read incomplete")
	}
	return observer.Render(w, status)
}

// Sync reconciles every store for the command's user and prints the result.
func (a *App) Sync(ctx context.Context, cmd *SyncCommand, w io.Writer) error {
	if _, err := a.openSession(ctx, cmd.UserID, cmd.Route); err != nil {
		return err
	}
	env, err := a.panel.ForceSync(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Environment synced: %s\n", env)
	return err
}

// Save commits the command's environment for its user.
func (a *App) Save(ctx context.Context, cmd *SaveCommand, w io.Writer) error {
	env, err := models.ParseEnvironment(cmd.Environment)
	if err != nil {
		return err
	}
	userID, err := a.openSession(ctx, cmd.UserID, cmd.Route)
	if err != nil {
		return err
	}
	if err := a.reconciler.SaveEnvironment(ctx, userID, env); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Environment saved: %s\n", env)
	return err
}
