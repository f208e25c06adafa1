package surrealfocus

import (
	"context"
	"fmt"
	"os"
)

// Main is the entry point of the surrealfocus command. It can be called from
// tests without building the binary; cancelling ctx stops a running server.
//
// # Command Line Usage
//
//	surrealfocus run                           # serve the HTTP API (SurrealDB)
//	surrealfocus -remote postgres run          # PostgreSQL remote tables
//	surrealfocus -remote memory run            # no database
//	surrealfocus migrate                       # prepare both remote tables
//	surrealfocus -user <uuid> status           # print the debug panel
//	surrealfocus -user <uuid> sync             # force sync every store
//	surrealfocus -user <uuid> save library     # save an environment
//
// # Environment Variables
//
//	POSTGRES_DSN           - PostgreSQL connection string
//	SURREALDB_URL          - SurrealDB WebSocket URL (default: ws://localhost:8000/rpc)
//	SURREALDB_NS           - SurrealDB namespace (default: surrealfocus)
//	SURREALDB_DB           - SurrealDB database (default: surrealfocus)
//	SURREALDB_USER         - SurrealDB username (default: root)
//	SURREALDB_PASS         - SurrealDB password (default: root)
//	SURREALFOCUS_CACHE_DIR - local cache directory (default: in memory)
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	app, err := New(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *MigrateCommand:
		if err := app.Migrate(ctx, c); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case *RunCommand:
		if err := app.Run(ctx, c); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case *StatusCommand:
		if err := app.Status(ctx, c, os.Stdout); err != nil {
			return fmt.Errorf("status failed: %w", err)
		}
	case *SyncCommand:
		if err := app.Sync(ctx, c, os.Stdout); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
	case *SaveCommand:
		if err := app.Save(ctx, c, os.Stdout); err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}

	return nil
}
