package surrealdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// newTestStores connects to the SurrealDB instance named by SURREALDB_URL.
// Tests are skipped when no instance is configured.
func newTestStores(t *testing.T) (*RecordStore, *RecordStore) {
	t.Helper()

	url := os.Getenv("SURREALDB_URL")
	if url == "" {
		t.Skip("SURREALDB_URL not set")
	}

	ctx := context.Background()
	db, err := Connect(ctx, url, "surrealfocus_test", "surrealfocus_test", "root", "root")
	require.NoError(t, err)

	primary := NewRecordStore(db, models.ProfileTable).OwnsConnection()
	secondary := NewRecordStore(db, models.OnboardingTable)
	require.NoError(t, primary.Migrate(ctx))
	require.NoError(t, secondary.Migrate(ctx))

	t.Cleanup(func() {
		_ = secondary.Close()
		_ = primary.Close()
	})
	return primary, secondary
}

func TestRecordStoreRoundTrip(t *testing.T) {
	primary, secondary := newTestStores(t)
	ctx := context.Background()
	userID := models.NewUserID()

	got, err := primary.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Now()
	require.NoError(t, primary.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentLibrary, UpdatedAt: now,
	}))
	require.NoError(t, secondary.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentPark, UpdatedAt: now,
	}))

	got, err = primary.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.EnvironmentLibrary, got.Environment)
	assert.Equal(t, now.UnixNano(), got.UpdatedAt.UnixNano())

	got, err = secondary.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.EnvironmentPark, got.Environment)
}

func TestRecordStoreRejectsStaleWrite(t *testing.T) {
	primary, _ := newTestStores(t)
	ctx := context.Background()
	userID := models.NewUserID()
	now := time.Now()

	require.NoError(t, primary.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentHome, UpdatedAt: now,
	}))

	err := primary.SetEnvironment(ctx, &models.EnvironmentRecord{
		UserID: userID, Environment: models.EnvironmentOffice, UpdatedAt: now.Add(-time.Minute),
	})
	require.ErrorIs(t, err, store.ErrStaleWrite)

	got, err := primary.GetEnvironment(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.EnvironmentHome, got.Environment)
}
