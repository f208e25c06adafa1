// Package memory provides an in-process [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store.RemoteStore].
//
// RecordStore keeps rows in a map guarded by a mutex and applies the same
// last-writer rule as the database backends. It is used by tests and by the
// "-remote memory" mode of the command, and supports failure injection so
// tests can simulate network errors on reads or writes.
package memory

import (
	"context"
	"sync"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store"
)

// RecordStore is an in-memory remote table.
type RecordStore struct {
	table models.Table

	mu       sync.Mutex
	rows     map[models.UserID]models.EnvironmentRecord
	setErr   error
	getErr   error
	setCalls int
}

var _ store.RemoteStore = (*RecordStore)(nil)

// NewRecordStore creates an empty table.
func NewRecordStore(table models.Table) *RecordStore {
	return &RecordStore{
		table: table,
		rows:  make(map[models.UserID]models.EnvironmentRecord),
	}
}

func (s *RecordStore) Table() models.Table { return s.table }

func (s *RecordStore) GetEnvironment(ctx context.Context, userID models.UserID) (*models.EnvironmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	row, ok := s.rows[userID]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *RecordStore) SetEnvironment(ctx context.Context, record *models.EnvironmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	if cur, ok := s.rows[record.UserID]; ok && cur.UpdatedAt.After(record.UpdatedAt) {
		return store.ErrStaleWrite
	}
	s.rows[record.UserID] = *record
	return nil
}

func (s *RecordStore) Migrate(ctx context.Context) error { return nil }

func (s *RecordStore) Close() error { return nil }

// FailWrites makes every following SetEnvironment return err. Pass nil to
// stop failing.
func (s *RecordStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErr = err
}

// FailReads makes every following GetEnvironment return err. Pass nil to
// stop failing.
func (s *RecordStore) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// Put stores a row directly, bypassing the last-writer rule.
func (s *RecordStore) Put(record models.EnvironmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[record.UserID] = record
}

// Writes returns how many times SetEnvironment was called.
func (s *RecordStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setCalls
}
