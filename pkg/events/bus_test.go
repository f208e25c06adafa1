package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

func TestBusPublish(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	a, cancelA := bus.Subscribe(4)
	b, cancelB := bus.Subscribe(4)
	defer cancelA()
	defer cancelB()

	bus.Publish(EnvironmentChanged(models.EnvironmentLibrary))

	for _, ch := range []<-chan Event{a, b} {
		e := <-ch
		assert.Equal(t, TypeEnvironmentChanged, e.Type)
		require.NotNil(t, e.Detail)
		assert.Equal(t, models.EnvironmentLibrary, e.Detail.Environment)
		assert.False(t, e.At.IsZero())
	}
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(Storage(models.CacheKeyEnvironment, "park"))
	bus.Publish(Storage(models.CacheKeyEnvironment, "home"))

	e := <-ch
	assert.Equal(t, "park", e.NewValue)
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestBusCancel(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	ch, cancel := bus.Subscribe(0)
	assert.Equal(t, 1, bus.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, bus.Subscribers())
	_, ok := <-ch
	assert.False(t, ok)

	bus.Publish(SyncFailure("boom"))
}

func TestBusClose(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	ch, cancel := bus.Subscribe(1)
	bus.Close()
	_, ok := <-ch
	assert.False(t, ok)
	cancel()

	late, _ := bus.Subscribe(1)
	_, ok = <-late
	assert.False(t, ok)
}

func TestEventMarshal(t *testing.T) {
	data, err := EnvironmentChanged(models.EnvironmentPark).Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"environment-changed"`)
	assert.Contains(t, string(data), `"detail":{"environment":"park"}`)

	data, err = Storage("environment", "park").Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"newValue":"park"`)
}
