package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// Theme is the theme context. It holds the environment the session renders.
type Theme struct {
	primary store.RemoteStore
	log     zerolog.Logger

	mu  sync.RWMutex
	env models.Environment
}

var _ store.ThemeContext = (*Theme)(nil)

// NewTheme creates a theme context that verifies against primary.
func NewTheme(primary store.RemoteStore, log zerolog.Logger) *Theme {
	return &Theme{primary: primary, log: log}
}

// Environment returns the current theme environment, "" when unset.
func (t *Theme) Environment() models.Environment {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.env
}

func (t *Theme) SetEnvironmentTheme(env models.Environment) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.env = env
}

// Reset clears the theme, as on sign out.
func (t *Theme) Reset() { t.SetEnvironmentTheme("") }

// VerifyEnvironmentWithDatabase loads the profile row and adopts its value
// when it differs from the theme. A missing row leaves the theme alone.
func (t *Theme) VerifyEnvironmentWithDatabase(ctx context.Context, userID models.UserID) error {
	rec, err := t.primary.GetEnvironment(ctx, userID)
	if err != nil {
		return fmt.Errorf("verify theme environment: %w", err)
	}
	if rec == nil {
		return nil
	}
	if cur := t.Environment(); cur != rec.Environment {
		t.log.Debug().
			Str("theme", string(cur)).
			Str("profile", string(rec.Environment)).
			Msg("theme environment replaced by profile value")
		t.SetEnvironmentTheme(rec.Environment)
	}
	return nil
}

// Onboarding is the onboarding context. It keeps its own copy of the
// environment, the learning environment picked during onboarding.
type Onboarding struct {
	cache     store.LocalCache
	secondary store.RemoteStore
	userID    func() models.UserID

	mu  sync.RWMutex
	env models.Environment
}

var _ store.OnboardingContext = (*Onboarding)(nil)

// NewOnboarding creates an onboarding context. userID returns the active user.
func NewOnboarding(cache store.LocalCache, secondary store.RemoteStore, userID func() models.UserID) *Onboarding {
	return &Onboarding{cache: cache, secondary: secondary, userID: userID}
}

// LearningEnvironment returns the onboarding copy, "" when never loaded.
func (o *Onboarding) LearningEnvironment() models.Environment {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.env
}

// ForceEnvironmentSync reloads the onboarding copy, preferring the local
// cache and falling back to the onboarding preferences table.
func (o *Onboarding) ForceEnvironmentSync(ctx context.Context) error {
	env, err := localcache.Environment(o.cache)
	if err != nil {
		return fmt.Errorf("onboarding sync: %w", err)
	}

	if env.IsZero() {
		userID := o.userID()
		if userID.IsZero() {
			return nil
		}
		rec, err := o.secondary.GetEnvironment(ctx, userID)
		if err != nil {
			return fmt.Errorf("onboarding sync: %w", err)
		}
		if rec == nil {
			return nil
		}
		env = rec.Environment
	}

	o.mu.Lock()
	o.env = env
	o.mu.Unlock()
	return nil
}

// Reset clears the onboarding copy.
func (o *Onboarding) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.env = ""
}

// User is the user context. It caches the signed-in user's profile row.
type User struct {
	primary store.RemoteStore
	userID  func() models.UserID

	mu      sync.RWMutex
	profile *models.EnvironmentRecord
}

var _ store.UserContext = (*User)(nil)

// NewUser creates a user context. userID returns the active user.
func NewUser(primary store.RemoteStore, userID func() models.UserID) *User {
	return &User{primary: primary, userID: userID}
}

// Profile returns the cached profile row, nil before the first refresh.
func (u *User) Profile() *models.EnvironmentRecord {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if u.profile == nil {
		return nil
	}
	p := *u.profile
	return &p
}

// RefreshUser reloads the profile row of the active user.
func (u *User) RefreshUser(ctx context.Context) error {
	userID := u.userID()
	if userID.IsZero() {
		u.mu.Lock()
		u.profile = nil
		u.mu.Unlock()
		return nil
	}

	rec, err := u.primary.GetEnvironment(ctx, userID)
	if err != nil {
		return fmt.Errorf("refresh user: %w", err)
	}

	u.mu.Lock()
	u.profile = rec
	u.mu.Unlock()
	return nil
}
