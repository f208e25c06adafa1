// Package postgres provides the PostgreSQL implementation of
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store.RemoteStore] using GORM.
//
// The environment lives in an existing per-user table (profiles or
// onboarding_preferences) keyed by user_id. Migrate only ensures the table,
// the environment column and the environment_updated_at column exist, so the
// store can be pointed at a database whose tables carry many other columns.
//
// Writes use a single INSERT ... ON CONFLICT (user_id) DO UPDATE ... WHERE
// statement. The WHERE clause keeps the newer environment_updated_at, which
// makes the last-writer rule atomic in PostgreSQL: when the conflicting row
// is newer, no row is affected and the write reports
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store.ErrStaleWrite].
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Open connects to PostgreSQL.
func Open(dsn string) (*gorm.DB, error) {
	// Should configure: MaxIdleConns, MaxOpenConns, ConnMaxLifetime, ConnMaxIdleTime
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// RecordStore is one remote table stored in PostgreSQL.
type RecordStore struct {
	db       *gorm.DB
	table    models.Table
	ownsConn bool
}

var _ store.RemoteStore = (*RecordStore)(nil)

// NewRecordStore creates a store for table on an open connection.
func NewRecordStore(db *gorm.DB, table models.Table) *RecordStore {
	return &RecordStore{db: db, table: table}
}

// OwnsConnection makes Close close the underlying connection pool.
func (s *RecordStore) OwnsConnection() *RecordStore {
	s.ownsConn = true
	return s
}

func (s *RecordStore) Table() models.Table { return s.table }

type environmentRow struct {
	Environment sql.NullString
	UpdatedAt   sql.NullTime
}

func (s *RecordStore) GetEnvironment(ctx context.Context, userID models.UserID) (*models.EnvironmentRecord, error) {
	var row environmentRow
	err := s.db.WithContext(ctx).
		Table(s.table.Name).
		Select(fmt.Sprintf("%s AS environment, %s AS updated_at", s.table.Field, models.UpdatedAtField)).
		Where("user_id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s environment: %w", s.table.Store, err)
	}
	if !row.Environment.Valid || row.Environment.String == "" {
		return nil, nil
	}

	env, err := models.ParseEnvironment(row.Environment.String)
	if err != nil {
		return nil, fmt.Errorf("%s row for %s: %w", s.table.Store, userID, err)
	}
	rec := &models.EnvironmentRecord{UserID: userID, Environment: env}
	if row.UpdatedAt.Valid {
		rec.UpdatedAt = row.UpdatedAt.Time
	}
	return rec, nil
}

func (s *RecordStore) SetEnvironment(ctx context.Context, record *models.EnvironmentRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now()
	}

	newer := fmt.Sprintf("%[1]s.%[2]s IS NULL OR %[1]s.%[2]s <= excluded.%[2]s", s.table.Name, models.UpdatedAtField)
	res := s.db.WithContext(ctx).
		Table(s.table.Name).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{s.table.Field, models.UpdatedAtField}),
			Where:     clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: newer}}},
		}).
		Create(map[string]any{
			"user_id":             record.UserID,
			s.table.Field:         string(record.Environment),
			models.UpdatedAtField: record.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to set %s environment: %w", s.table.Store, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrStaleWrite
	}
	return nil
}

// Migrate creates the table if needed and adds the environment columns.
func (s *RecordStore) Migrate(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (user_id uuid PRIMARY KEY)", s.table.Name),
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s text", s.table.Name, s.table.Field),
		fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s timestamptz", s.table.Name, models.UpdatedAtField),
	}
	db := s.db.WithContext(ctx)
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to migrate %s: %w", s.table.Name, err)
		}
	}
	return nil
}

// Close closes the connection pool when this store owns it.
func (s *RecordStore) Close() error {
	if !s.ownsConn {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
