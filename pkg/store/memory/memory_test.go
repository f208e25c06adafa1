package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

func TestRecordStore(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore(models.ProfileTable)
	userID := models.NewUserID()

	got, err := s.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got, "missing rows are nil without error")

	now := time.Now()
	require.NoError(t, s.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentPark, UpdatedAt: now,
	}))

	got, err = s.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.EnvironmentPark, got.Environment)
	assert.Equal(t, 1, s.Writes())
}

func TestRecordStoreStaleWrite(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore(models.OnboardingTable)
	userID := models.NewUserID()
	now := time.Now()

	require.NoError(t, s.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentLibrary, UpdatedAt: now,
	}))

	err := s.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentHome, UpdatedAt: now.Add(-time.Second),
	})
	require.ErrorIs(t, err, store.ErrStaleWrite)

	got, err := s.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.EnvironmentLibrary, got.Environment)

	// Equal timestamps are not stale, so retries of the same write succeed.
	require.NoError(t, s.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentLibrary, UpdatedAt: now,
	}))
}

func TestRecordStoreFailureInjection(t *testing.T) {
	ctx := context.Background()
	s := NewRecordStore(models.ProfileTable)
	userID := models.NewUserID()
	boom := errors.New("network unreachable")

	s.FailWrites(boom)
	err := s.SetEnvironment(ctx, &models.EnvironmentRecord{UserID: userID, Environment: models.EnvironmentPark})
	require.ErrorIs(t, err, boom)

	s.FailReads(boom)
	_, err = s.GetEnvironment(ctx, userID)
	require.ErrorIs(t, err, boom)

	s.FailWrites(nil)
	s.FailReads(nil)
	require.NoError(t, s.SetEnvironment(ctx, &models.EnvironmentRecord{UserID: userID, Environment: models.EnvironmentPark}))
}

func TestReadOnlyStore(t *testing.T) {
	ctx := context.Background()
	readOnly := true
	s := store.NewReadOnlyStore(NewRecordStore(models.ProfileTable), func() bool { return readOnly })
	userID := models.NewUserID()

	err := s.SetEnvironment(ctx, &models.EnvironmentRecord{UserID: userID, Environment: models.EnvironmentHome})
	require.ErrorIs(t, err, store.ErrReadOnly)

	readOnly = false
	require.NoError(t, s.SetEnvironment(ctx, &models.EnvironmentRecord{UserID: userID, Environment: models.EnvironmentHome}))

	got, err := s.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.EnvironmentHome, got.Environment)
	assert.Equal(t, models.ProfileTable, s.Unwrap().Table())
}
