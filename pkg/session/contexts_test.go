package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/memory"
)

func TestSession(t *testing.T) {
	s := New()
	assert.False(t, s.Active())

	id := models.NewUserID()
	s.SignIn(id)
	assert.True(t, s.Active())
	assert.Equal(t, id, s.UserID())

	s.SignOut()
	assert.True(t, s.UserID().IsZero())
}

func TestThemeVerifyEnvironmentWithDatabase(t *testing.T) {
	ctx := context.Background()
	primary := memory.NewRecordStore(models.ProfileTable)
	theme := NewTheme(primary, zerolog.Nop())
	userID := models.NewUserID()

	theme.SetEnvironmentTheme(models.EnvironmentHome)
	require.NoError(t, theme.VerifyEnvironmentWithDatabase(ctx, userID))
	assert.Equal(t, models.EnvironmentHome, theme.Environment(), "missing row keeps the theme")

	primary.Put(models.EnvironmentRecord{UserID: userID, Environment: models.EnvironmentPark, UpdatedAt: time.Now()})
	require.NoError(t, theme.VerifyEnvironmentWithDatabase(ctx, userID))
	assert.Equal(t, models.EnvironmentPark, theme.Environment())

	primary.FailReads(errors.New("offline"))
	require.Error(t, theme.VerifyEnvironmentWithDatabase(ctx, userID))

	theme.Reset()
	assert.True(t, theme.Environment().IsZero())
}

func TestOnboardingForceEnvironmentSync(t *testing.T) {
	ctx := context.Background()
	cache, err := localcache.Open(localcache.InMemoryConfig())
	require.NoError(t, err)
	defer cache.Close()

	secondary := memory.NewRecordStore(models.OnboardingTable)
	s := New()
	onboarding := NewOnboarding(cache, secondary, s.UserID)

	// Signed out with an empty cache: nothing to load.
	require.NoError(t, onboarding.ForceEnvironmentSync(ctx))
	assert.True(t, onboarding.LearningEnvironment().IsZero())

	userID := models.NewUserID()
	s.SignIn(userID)
	secondary.Put(models.EnvironmentRecord{UserID: userID, Environment: models.EnvironmentCoffeeShop})
	require.NoError(t, onboarding.ForceEnvironmentSync(ctx))
	assert.Equal(t, models.EnvironmentCoffeeShop, onboarding.LearningEnvironment())

	// The cache wins over the table.
	require.NoError(t, cache.Set(models.CacheKeyEnvironment, "library"))
	require.NoError(t, onboarding.ForceEnvironmentSync(ctx))
	assert.Equal(t, models.EnvironmentLibrary, onboarding.LearningEnvironment())

	onboarding.Reset()
	assert.True(t, onboarding.LearningEnvironment().IsZero())
}

func TestUserRefresh(t *testing.T) {
	ctx := context.Background()
	primary := memory.NewRecordStore(models.ProfileTable)
	s := New()
	user := NewUser(primary, s.UserID)

	require.NoError(t, user.RefreshUser(ctx))
	assert.Nil(t, user.Profile())

	userID := models.NewUserID()
	s.SignIn(userID)
	primary.Put(models.EnvironmentRecord{UserID: userID, Environment: models.EnvironmentOffice})
	require.NoError(t, user.RefreshUser(ctx))
	require.NotNil(t, user.Profile())
	assert.Equal(t, models.EnvironmentOffice, user.Profile().Environment)

	primary.FailReads(errors.New("offline"))
	require.Error(t, user.RefreshUser(ctx))
}
