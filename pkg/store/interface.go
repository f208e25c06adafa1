// Package store defines the storage and collaborator interfaces the
// reconciler depends on.
//
// Every location that can hold a copy of the study environment is reached
// through one of these interfaces instead of through globals, so the
// reconciler can be exercised against fakes and against real backends alike.
//
// # Remote stores
//
// [RemoteStore] is one table row per user in a shared, multi-writer database.
// Two instances are wired at runtime, one for
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models.ProfileTable]
// (Remote Primary) and one for
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models.OnboardingTable]
// (Remote Secondary). Implementations:
//
//   - [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/surrealdb.RecordStore]: native SurrealQL
//   - [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/postgres.RecordStore]: GORM over PostgreSQL
//   - [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/memory.RecordStore]: in-process, for tests and demos
//
// Each write carries a last-writer timestamp. A write older than the stored
// row fails with [ErrStaleWrite]; an equal timestamp overwrites.
//
// # Browsing-context stores
//
// [LocalCache] and [VisualMarker] are private to one browsing context.
// [ThemeContext], [OnboardingContext] and [UserContext] are the in-memory
// contexts of the running session; the reconciler owns none of them and only
// calls the methods listed here.
package store

import (
	"context"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

// RemoteStore is a remote table holding one environment value per user.
type RemoteStore interface {
	// Table describes the table and field the value lives in.
	Table() models.Table

	// GetEnvironment returns the user's row, or nil without error when the
	// user has no row yet.
	GetEnvironment(ctx context.Context, userID models.UserID) (*models.EnvironmentRecord, error)

	// SetEnvironment creates or overwrites the user's row.
	// It returns ErrStaleWrite when the stored row has a newer UpdatedAt.
	SetEnvironment(ctx context.Context, record *models.EnvironmentRecord) error

	// Migrate prepares the schema. It is safe to call repeatedly.
	Migrate(ctx context.Context) error

	Close() error
}

// LocalCache is a durable key-value store scoped to one browsing context.
type LocalCache interface {
	// Get returns the value and whether the key exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// VisualMarker is the document-level marker reflecting the environment for
// styling. It may only change while the current view is themed.
type VisualMarker interface {
	// Themed reports whether the current view supports themed visuals.
	Themed() bool

	// Current returns the environment the marker shows, if any.
	Current() (models.Environment, bool)

	// Apply marks env on the document. On non-themed views it leaves the
	// document untouched and returns false.
	Apply(env models.Environment) bool
}

// ThemeContext is the in-memory theme state of the session.
type ThemeContext interface {
	Environment() models.Environment
	SetEnvironmentTheme(env models.Environment)
	// VerifyEnvironmentWithDatabase reloads the theme from Remote Primary.
	VerifyEnvironmentWithDatabase(ctx context.Context, userID models.UserID) error
}

// OnboardingContext is the onboarding state of the session.
type OnboardingContext interface {
	// ForceEnvironmentSync reloads the onboarding copy of the environment
	// from the local cache and the remote secondary table.
	ForceEnvironmentSync(ctx context.Context) error
}

// UserContext holds the cached profile of the signed-in user.
type UserContext interface {
	RefreshUser(ctx context.Context) error
}

// Level is the severity of a user-visible notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
	// Reload asks the user to reload the page to recover.
	Reload bool `json:"reload,omitempty"`
}

// Notifier shows transient notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
