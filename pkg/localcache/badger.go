// Package localcache implements the Local Cache store on BadgerDB.
//
// The cache plays the role of a browser's origin-scoped persistent storage:
// values survive restarts, are private to one browsing context, and are
// addressed by plain string keys. Keys are namespaced by origin so several
// contexts may share a database directory without seeing each other's data.
//
// Two keys are used by the reconciler:
//
//   - "environment": the last-known environment, a bare string
//   - "userPreferences": a JSON blob cached by onboarding whose
//     "environment" field mirrors the same value
package localcache

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// DefaultOrigin scopes keys when Config.Origin is empty.
const DefaultOrigin = "surrealfocus"

// Config configures the cache database.
type Config struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string

	// InMemory keeps everything in memory. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// Origin namespaces every key.
	Origin string

	// Logger receives badger's internal logs. Zero value disables them.
	Logger *zerolog.Logger
}

// DefaultConfig returns a durable configuration rooted at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true, Origin: DefaultOrigin}
}

// InMemoryConfig returns a configuration that never touches disk.
func InMemoryConfig() Config {
	return Config{InMemory: true, Origin: DefaultOrigin}
}

type badgerLogger struct {
	logger zerolog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// Cache is a BadgerDB backed LocalCache.
type Cache struct {
	db     *badger.DB
	prefix string
}

var _ store.LocalCache = (*Cache)(nil)

// Open opens (or creates) the cache database.
func Open(cfg Config) (*Cache, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: *cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	origin := cfg.Origin
	if origin == "" {
		origin = DefaultOrigin
	}
	return &Cache{db: db, prefix: origin + "/"}, nil
}

func (c *Cache) key(k string) []byte {
	return []byte(c.prefix + k)
}

// Get returns the value stored under key and whether it exists.
func (c *Cache) Get(key string) (string, bool, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(value), true, nil
}

// Set stores value under key.
func (c *Cache) Set(key, value string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
