package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		in      string
		want    Environment
		wantErr bool
	}{
		{in: "office", want: EnvironmentOffice},
		{in: " Library ", want: EnvironmentLibrary},
		{in: "coffee-shop", want: EnvironmentCoffeeShop},
		{in: "beach", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnvironment(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidEnvironment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThemeClasses(t *testing.T) {
	assert.Equal(t, "theme-park", EnvironmentPark.ThemeClass())
	assert.Len(t, ThemeClasses(), len(AllEnvironments()))
	assert.Contains(t, ThemeClasses(), "theme-coffee-shop")
}

func TestAgree(t *testing.T) {
	now := time.Now()
	readings := []StoreReading{
		{Source: SourcePrimaryRemote, Value: EnvironmentPark, ReadAt: now},
		{Source: SourceSecondaryRemote, Value: EnvironmentPark, ReadAt: now},
		{Source: SourceVisualMarker, ReadAt: now},
	}
	assert.True(t, Agree(readings), "absent readings are not divergence")

	readings = append(readings, StoreReading{Source: SourceLocalCache, Value: EnvironmentHome, ReadAt: now})
	assert.False(t, Agree(readings))

	assert.True(t, Agree(nil))
}

func TestSyncStatus(t *testing.T) {
	userID := NewUserID()
	status := NewSyncStatus(userID, []StoreReading{
		{Source: SourcePrimaryRemote, Value: EnvironmentLibrary},
		{Source: SourceLocalCache, Value: EnvironmentOffice},
		{Source: SourceContext, Value: EnvironmentLibrary},
		{Source: SourceVisualMarker},
	}, time.Now())

	assert.False(t, status.AllInSync)
	assert.Equal(t, EnvironmentLibrary, status.Value(SourcePrimaryRemote))
	assert.Equal(t, Environment(""), status.Value(SourceSecondaryRemote))
	assert.Equal(t, []Environment{EnvironmentLibrary, EnvironmentOffice}, status.Distinct())

	_, ok := status.Reading(SourceSecondaryRemote)
	assert.False(t, ok)
}

func TestSyncStatusLatestWrite(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	status := NewSyncStatus(NewUserID(), []StoreReading{
		{Source: SourcePrimaryRemote, Value: EnvironmentPark, UpdatedAt: base},
		{Source: SourceSecondaryRemote, Value: EnvironmentHome, UpdatedAt: base.Add(time.Hour)},
		{Source: SourceLocalCache, Value: EnvironmentPark},
	}, base)
	assert.Equal(t, base.Add(time.Hour), status.LatestWrite())

	assert.True(t, NewSyncStatus(NewUserID(), nil, base).LatestWrite().IsZero())
}

func TestUserID(t *testing.T) {
	id := NewUserID()
	parsed, err := ParseUserID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseUserID("not-a-uuid")
	require.Error(t, err)

	assert.True(t, UserID{}.IsZero())

	rid := id.RecordID(ProfileTable.Name)
	assert.Equal(t, "profiles", rid.Table)
	assert.Equal(t, id.String(), rid.ID)
}

func TestUserIDEncoding(t *testing.T) {
	id := NewUserID()

	data, err := json.Marshal(id)
	require.NoError(t, err)
	var fromJSON UserID
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, id, fromJSON)

	data, err = id.MarshalCBOR()
	require.NoError(t, err)
	var fromCBOR UserID
	require.NoError(t, fromCBOR.UnmarshalCBOR(data))
	assert.Equal(t, id, fromCBOR)

	v, err := id.Value()
	require.NoError(t, err)
	var scanned UserID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, id, scanned)

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())
}
