package localcache

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

const preferencesEnvironmentField = "environment"

// SetPreferencesEnvironment rewrites the environment field of the cached
// preferences blob, keeping every other field as it was. A missing blob is
// created as {"environment": env}.
func SetPreferencesEnvironment(cache store.LocalCache, env models.Environment) error {
	raw, ok, err := cache.Get(models.CacheKeyPreferences)
	if err != nil {
		return err
	}
	blob := []byte(raw)
	if !ok || len(blob) == 0 {
		blob = []byte("{}")
	}

	value, err := json.Marshal(string(env))
	if err != nil {
		return err
	}
	updated, err := jsonparser.Set(blob, value, preferencesEnvironmentField)
	if err != nil {
		return fmt.Errorf("update %s: %w", models.CacheKeyPreferences, err)
	}
	return cache.Set(models.CacheKeyPreferences, string(updated))
}

// PreferencesEnvironment returns the environment recorded in the cached
// preferences blob, or "" when the blob or the field is missing.
func PreferencesEnvironment(cache store.LocalCache) (models.Environment, error) {
	raw, ok, err := cache.Get(models.CacheKeyPreferences)
	if err != nil || !ok {
		return "", err
	}
	value, err := jsonparser.GetString([]byte(raw), preferencesEnvironmentField)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", models.CacheKeyPreferences, err)
	}
	return models.ParseEnvironment(value)
}

// Environment returns the environment stored under the environment key, or
// "" when absent. Unknown values are reported as errors.
func Environment(cache store.LocalCache) (models.Environment, error) {
	raw, ok, err := cache.Get(models.CacheKeyEnvironment)
	if err != nil || !ok || raw == "" {
		return "", err
	}
	return models.ParseEnvironment(raw)
}
