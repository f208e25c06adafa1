// Package surrealdb provides the SurrealDB implementation of
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store.RemoteStore] using native SurrealQL.
//
// Each user owns one record per table, addressed as table:<user id>, for
// example profiles:9b2d...; the record carries the environment field of its
// table, a user_id RecordID pointing into the users table, and
// environment_updated_at, the last-writer timestamp in Unix nanoseconds.
// Integer timestamps keep the ordering comparison exact inside SurrealQL.
//
// # Last-writer rule
//
// SetEnvironment runs the comparison and the upsert in one transaction:
//
//	BEGIN TRANSACTION;
//	LET $current = (SELECT VALUE environment_updated_at FROM $record)[0];
//	IF $current != NONE AND $current > $updated_at { THROW "stale write" };
//	UPSERT $record MERGE $data;
//	COMMIT TRANSACTION;
//
// so two writers racing on the same user resolve to the newest timestamp
// regardless of which network response arrives last.
//
// # Query safety
//
// Values are always passed as parameters. The only identifiers formatted
// into query text are table and field names taken from
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models.Table], never user input.
//
// # Usage Example
//
//	db, err := surrealdb.Connect(ctx, "ws://localhost:8000/rpc", "surrealfocus", "surrealfocus", "root", "root")
//	if err != nil {
//		return err
//	}
//	primary := surrealdb.NewRecordStore(db, models.ProfileTable)
//	secondary := surrealdb.NewRecordStore(db, models.OnboardingTable)
package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

const staleWriteMessage = "stale write"

// Connect opens a SurrealDB connection, signs in when credentials are given
// and selects the namespace and database.
func Connect(ctx context.Context, wsURL, namespace, database, username, password string) (*surrealdb.DB, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, wsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if username != "" && password != "" {
		if _, err := db.SignIn(ctx, surrealdb.Auth{
			Username: username,
			Password: password,
		}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := db.Use(ctx, namespace, database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}
	return db, nil
}

// RecordStore is one remote table stored in SurrealDB.
//
// Several RecordStores may share a connection. Only the store created with
// OwnsConnection closes it.
type RecordStore struct {
	db        *surrealdb.DB
	table     models.Table
	ownsConn  bool
	selectSQL string
}

var _ store.RemoteStore = (*RecordStore)(nil)

// NewRecordStore creates a store for table on an open connection.
func NewRecordStore(db *surrealdb.DB, table models.Table) *RecordStore {
	return &RecordStore{
		db:    db,
		table: table,
		selectSQL: fmt.Sprintf(
			"SELECT %s AS environment, %s AS updated_at FROM $record",
			table.Field, models.UpdatedAtField,
		),
	}
}

// OwnsConnection makes Close close the underlying connection.
func (s *RecordStore) OwnsConnection() *RecordStore {
	s.ownsConn = true
	return s
}

func (s *RecordStore) Table() models.Table { return s.table }

type environmentRow struct {
	Environment string `json:"environment"`
	UpdatedAt   int64  `json:"updated_at"`
}

func (s *RecordStore) GetEnvironment(ctx context.Context, userID models.UserID) (*models.EnvironmentRecord, error) {
	params := map[string]any{
		"record": userID.RecordID(s.table.Name),
	}

	result, err := surrealdb.Query[[]environmentRow](ctx, s.db, s.selectSQL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s environment: %w", s.table.Store, err)
	}
	if result == nil || len(*result) == 0 || len((*result)[0].Result) == 0 {
		return nil, nil
	}

	row := (*result)[0].Result[0]
	if row.Environment == "" {
		return nil, nil
	}
	env, err := models.ParseEnvironment(row.Environment)
	if err != nil {
		return nil, fmt.Errorf("%s row for %s: %w", s.table.Store, userID, err)
	}

	rec := &models.EnvironmentRecord{
		UserID:      userID,
		Environment: env,
	}
	if row.UpdatedAt != 0 {
		rec.UpdatedAt = time.Unix(0, row.UpdatedAt)
	}
	return rec, nil
}

func (s *RecordStore) SetEnvironment(ctx context.Context, record *models.EnvironmentRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	query := fmt.Sprintf(`BEGIN TRANSACTION;
LET $current = (SELECT VALUE %[1]s FROM $record)[0];
IF $current != NONE AND $current > $updated_at { THROW "%[2]s" };
UPSERT $record MERGE $data;
COMMIT TRANSACTION;`, models.UpdatedAtField, staleWriteMessage)

	updatedAt := record.UpdatedAt.UnixNano()
	params := map[string]any{
		"record":     record.UserID.RecordID(s.table.Name),
		"updated_at": updatedAt,
		"data": map[string]any{
			"user_id":             record.UserID,
			s.table.Field:         string(record.Environment),
			models.UpdatedAtField: updatedAt,
		},
	}

	result, err := surrealdb.Query[any](ctx, s.db, query, params)
	if err == nil && result != nil {
		for _, r := range *result {
			if r.Status == "ERR" {
				err = fmt.Errorf("%v", r.Result)
				break
			}
		}
	}
	if err != nil {
		if strings.Contains(err.Error(), staleWriteMessage) {
			return store.ErrStaleWrite
		}
		return fmt.Errorf("failed to set %s environment: %w", s.table.Store, err)
	}
	return nil
}

// Migrate defines the table and an index on user_id. SurrealDB would create
// the table implicitly on first write; defining it up front keeps the schema
// visible to operators.
func (s *RecordStore) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`DEFINE TABLE IF NOT EXISTS %[1]s SCHEMALESS;
DEFINE INDEX IF NOT EXISTS %[1]s_user_id ON TABLE %[1]s FIELDS user_id UNIQUE;`, s.table.Name)
	if _, err := surrealdb.Query[any](ctx, s.db, query, nil); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.table.Name, err)
	}
	return nil
}

// Close closes the connection when this store owns it.
func (s *RecordStore) Close() error {
	if !s.ownsConn {
		return nil
	}
	return s.db.Close(context.Background())
}
