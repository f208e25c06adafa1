package surrealfocus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/marker"
)

func TestParseRun(t *testing.T) {
	t.Setenv("SURREALDB_URL", "ws://surreal:8000/rpc")
	t.Setenv("SURREALFOCUS_CACHE_DIR", "")

	cmd, config, err := Parse([]string{"-remote", "postgres", "-port", "9000", "-check-interval", "1m", "run"})
	require.NoError(t, err)
	assert.IsType(t, &RunCommand{}, cmd)
	assert.Equal(t, RemotePostgres, config.Remote)
	assert.Equal(t, "9000", config.ServerPort)
	assert.Equal(t, time.Minute, config.CheckInterval)
	assert.Equal(t, 10*time.Second, config.MinCheckInterval)
	assert.Equal(t, "ws://surreal:8000/rpc", config.SurrealDBURL)
	assert.Equal(t, "surrealfocus", config.SurrealDBNS)
	assert.Equal(t, marker.DefaultThemedRoutes, config.ThemedRoutes)
	assert.Empty(t, config.CacheDir)
}

func TestParseCommands(t *testing.T) {
	cmd, _, err := Parse([]string{"migrate"})
	require.NoError(t, err)
	assert.Equal(t, "migrate", cmd.Name())

	cmd, _, err = Parse([]string{"-user", "6f1c2a4e-8d1b-4b4e-9d7e-3c1f0a2b5e77", "-route", "/focus", "status"})
	require.NoError(t, err)
	status, ok := cmd.(*StatusCommand)
	require.True(t, ok)
	assert.Equal(t, "/focus", status.Route)

	cmd, _, err = Parse([]string{"-user", "6f1c2a4e-8d1b-4b4e-9d7e-3c1f0a2b5e77", "save", "park"})
	require.NoError(t, err)
	save, ok := cmd.(*SaveCommand)
	require.True(t, ok)
	assert.Equal(t, "park", save.Environment)

	cmd, _, err = Parse([]string{"-user", "6f1c2a4e-8d1b-4b4e-9d7e-3c1f0a2b5e77", "sync"})
	require.NoError(t, err)
	assert.Equal(t, "sync", cmd.Name())
}

func TestParseThemedRoutes(t *testing.T) {
	_, config, err := Parse([]string{"-themed-routes", " /a, ,/b ", "run"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, config.ThemedRoutes)
}

func TestParseCacheDirFromEnv(t *testing.T) {
	t.Setenv("SURREALFOCUS_CACHE_DIR", "/var/cache/surrealfocus")
	_, config, err := Parse([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/surrealfocus", config.CacheDir)
}

func TestParseErrors(t *testing.T) {
	cases := map[string][]string{
		"no command":       {},
		"unknown command":  {"serve"},
		"bad remote":       {"-remote", "mysql", "run"},
		"bad interval":     {"-check-interval", "0s", "run"},
		"missing user":     {"status"},
		"save without env": {"-user", "6f1c2a4e-8d1b-4b4e-9d7e-3c1f0a2b5e77", "save"},
		"unknown flag":     {"-verbose", "run"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Parse(args)
			assert.Error(t, err)
		})
	}
}
