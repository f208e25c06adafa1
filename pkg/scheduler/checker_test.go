package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/reconciler"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type counter struct {
	calls atomic.Int32
	seen  chan models.UserID
}

func newCounter() *counter {
	return &counter{seen: make(chan models.UserID, 16)}
}

func (c *counter) check(ctx context.Context, userID models.UserID) reconciler.CheckResult {
	c.calls.Add(1)
	select {
	case c.seen <- userID:
	default:
	}
	return reconciler.CheckResult{Outcome: reconciler.OutcomeInSync}
}

func TestCheckerInterval(t *testing.T) {
	userID := models.NewUserID()
	c := newCounter()
	checker := New(c.check, func() models.UserID { return userID }, 10*time.Millisecond, zerolog.Nop())

	require.NoError(t, checker.Start(context.Background()))
	assert.True(t, checker.Running())

	select {
	case got := <-c.seen:
		assert.Equal(t, userID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no scheduled check")
	}

	checker.Stop()
	assert.False(t, checker.Running())
	calls := c.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, c.calls.Load())
}

func TestCheckerVisibility(t *testing.T) {
	userID := models.NewUserID()
	c := newCounter()
	checker := New(c.check, func() models.UserID { return userID }, time.Hour, zerolog.Nop())
	require.NoError(t, checker.Start(context.Background()))
	defer checker.Stop()

	checker.VisibilityRegained()
	select {
	case <-c.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("visibility did not trigger a check")
	}
}

func TestCheckerSkipsWithoutUser(t *testing.T) {
	c := newCounter()
	checker := New(c.check, func() models.UserID { return models.UserID{} }, time.Millisecond, zerolog.Nop())
	require.NoError(t, checker.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	checker.Stop()
	assert.Zero(t, c.calls.Load())
}

func TestCheckerLifecycle(t *testing.T) {
	checker := New(newCounter().check, models.NewUserID, 0, zerolog.Nop())
	assert.Equal(t, DefaultInterval, checker.interval)

	checker.Stop()
	checker.VisibilityRegained()

	require.NoError(t, checker.Start(context.Background()))
	assert.ErrorIs(t, checker.Start(context.Background()), ErrRunning)
	checker.Stop()
	checker.Stop()

	require.NoError(t, checker.Start(context.Background()))
	checker.Stop()
}

func TestCheckerStopsWithContext(t *testing.T) {
	checker := New(newCounter().check, models.NewUserID, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, checker.Start(ctx))
	cancel()
	checker.Stop()
}
