package surrealfocus

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/client"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/events"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/localcache"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store/memory"
)

type testServer struct {
	app       *App
	srv       *httptest.Server
	client    *client.Client
	primary   *memory.RecordStore
	secondary *memory.RecordStore
	userID    models.UserID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cache, err := localcache.Open(localcache.InMemoryConfig())
	require.NoError(t, err)

	ts := &testServer{
		primary:   memory.NewRecordStore(models.ProfileTable),
		secondary: memory.NewRecordStore(models.OnboardingTable),
		userID:    models.NewUserID(),
	}
	ts.app = NewWithStores(&Config{
		Remote:        RemoteMemory,
		CheckInterval: time.Hour,
	}, zerolog.Nop(), ts.primary, ts.secondary, cache)
	t.Cleanup(func() { _ = ts.app.Close() })

	ts.srv = httptest.NewServer(ts.app.Router())
	t.Cleanup(ts.srv.Close)
	ts.client = client.NewClient(ts.srv.URL)
	return ts
}

func (ts *testServer) signIn(t *testing.T, route string) {
	t.Helper()
	ctx := context.Background()
	_, err := ts.client.StartSession(ctx, ts.userID)
	require.NoError(t, err)
	_, err = ts.client.Navigate(ctx, route)
	require.NoError(t, err)
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "expected API error, got %v", err)
	assert.Equal(t, code, apiErr.StatusCode, apiErr.Message)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	health, err := ts.client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, RemoteMemory, health["remote"])
	assert.Equal(t, false, health["session"])
}

func TestSaveAndStatus(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/dashboard")

	require.NoError(t, ts.client.SaveEnvironment(ctx, models.EnvironmentLibrary))

	status, err := ts.client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.AllInSync)
	assert.True(t, status.Themed)
	assert.Equal(t, "/dashboard", status.Route)
	assert.Len(t, status.Readings, 5)
	assert.Equal(t, []models.Environment{models.EnvironmentLibrary}, status.Distinct())

	current, ok := ts.app.Marker().Current()
	require.True(t, ok)
	assert.Equal(t, models.EnvironmentLibrary, current)

	panel, err := ts.client.DebugPanel(ctx)
	require.NoError(t, err)
	assert.Contains(t, panel, "OK (library)")
}

func TestSessionRestoresEnvironment(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.primary.Put(models.EnvironmentRecord{UserID: ts.userID, Environment: models.EnvironmentPark, UpdatedAt: time.Now()})

	env, err := ts.client.StartSession(ctx, ts.userID)
	require.NoError(t, err)
	assert.Equal(t, models.EnvironmentPark, env)

	themed, err := ts.client.Navigate(ctx, "/focus/session")
	require.NoError(t, err)
	assert.True(t, themed)
	current, _ := ts.app.Marker().Current()
	assert.Equal(t, models.EnvironmentPark, current)

	require.NoError(t, ts.client.EndSession(ctx))
	_, err = ts.client.Status(ctx)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestRequestValidation(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	_, err := ts.client.StartSession(ctx, models.UserID{})
	requireStatus(t, err, http.StatusBadRequest)

	err = ts.client.SaveEnvironment(ctx, models.EnvironmentHome)
	requireStatus(t, err, http.StatusUnauthorized)

	ts.signIn(t, "/dashboard")
	err = ts.client.SaveEnvironment(ctx, "beach")
	requireStatus(t, err, http.StatusBadRequest)
	err = ts.client.SaveEnvironment(ctx, "")
	requireStatus(t, err, http.StatusBadRequest)

	_, err = ts.client.Navigate(ctx, "dashboard")
	requireStatus(t, err, http.StatusBadRequest)

	resp, err := http.Post(ts.srv.URL+"/api/session", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/settings")
	require.NoError(t, ts.client.SaveEnvironment(ctx, models.EnvironmentOffice))

	err := ts.client.Preview(ctx, models.EnvironmentPark)
	requireStatus(t, err, http.StatusConflict)

	_, err = ts.client.Navigate(ctx, "/timer")
	require.NoError(t, err)
	require.NoError(t, ts.client.Preview(ctx, models.EnvironmentPark))

	status, err := ts.client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Previewing)
	assert.Equal(t, models.EnvironmentPark, status.Value(models.SourceVisualMarker))
	assert.Equal(t, models.EnvironmentOffice, status.Value(models.SourcePrimaryRemote))

	require.NoError(t, ts.client.ResetPreview(ctx))
	status, err = ts.client.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.Previewing)
	assert.True(t, status.AllInSync)
}

func TestCheckHeals(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/dashboard")
	require.NoError(t, ts.client.SaveEnvironment(ctx, models.EnvironmentPark))

	ts.primary.Put(models.EnvironmentRecord{UserID: ts.userID, Environment: models.EnvironmentLibrary, UpdatedAt: time.Now()})

	res, err := ts.client.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healed", res.Outcome)
	assert.Equal(t, models.EnvironmentLibrary, res.Target)

	status, err := ts.client.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.AllInSync)
	assert.Equal(t, models.EnvironmentLibrary, status.Value(models.SourceLocalCache))

	notes, err := ts.client.Notifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestForceSyncNotifies(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/dashboard")

	env, err := ts.client.ForceSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultEnvironment, env)

	notes, err := ts.client.Notifications(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "info", notes[0].Level)

	notes, err = ts.client.Notifications(ctx)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestReadOnly(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/dashboard")

	require.NoError(t, ts.client.SetReadOnly(ctx, true))
	err := ts.client.SaveEnvironment(ctx, models.EnvironmentHome)
	requireStatus(t, err, http.StatusServiceUnavailable)
	assert.Zero(t, ts.primary.Writes())

	status, err := ts.client.Status(ctx)
	require.NoError(t, err)
	assert.Contains(t, status.ErrorDetail, "read-only")

	require.NoError(t, ts.client.SetReadOnly(ctx, false))
	require.NoError(t, ts.client.SaveEnvironment(ctx, models.EnvironmentHome))
}

func TestSaveDatabaseFailure(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/dashboard")

	ts.secondary.FailWrites(errors.New("connection refused"))
	err := ts.client.SaveEnvironment(ctx, models.EnvironmentHome)
	requireStatus(t, err, http.StatusBadGateway)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "onboarding")
}

func TestEventStream(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/dashboard")

	wsURL := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// One subscriber belongs to the session's reload watcher.
	require.Eventually(t, func() bool { return ts.app.bus.Subscribers() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, ts.client.SaveEnvironment(ctx, models.EnvironmentCoffeeShop))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second events.Event
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, events.TypeStorage, first.Type)
	assert.Equal(t, "coffee-shop", first.NewValue)
	assert.Equal(t, events.TypeEnvironmentChanged, second.Type)
	assert.Equal(t, models.EnvironmentCoffeeShop, second.Detail.Environment)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	ts.signIn(t, "/dashboard")
	require.NoError(t, ts.client.SaveEnvironment(ctx, models.EnvironmentHome))

	resp, err := http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `surrealfocus_environment_saves_total{result="ok",trigger="user"} 1`)
}

func TestCommands(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	var out strings.Builder

	require.NoError(t, ts.app.Save(ctx, &SaveCommand{UserID: ts.userID.String(), Route: "/dashboard", Environment: "Library"}, &out))
	assert.Contains(t, out.String(), "Environment saved: library")

	out.Reset()
	require.NoError(t, ts.app.Status(ctx, &StatusCommand{UserID: ts.userID.String()}, &out))
	assert.Contains(t, out.String(), "OK (library)")

	out.Reset()
	require.NoError(t, ts.app.Sync(ctx, &SyncCommand{UserID: ts.userID.String()}, &out))
	assert.Contains(t, out.String(), "Environment synced: library")

	require.NoError(t, ts.app.Migrate(ctx, &MigrateCommand{}))

	err := ts.app.Save(ctx, &SaveCommand{UserID: "nope", Environment: "park"}, &out)
	require.Error(t, err)
}
