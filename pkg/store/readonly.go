package store

import (
	"context"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

// ReadOnlyStore wraps a RemoteStore and rejects writes while read-only mode
// is on.
//
// The read-only state is read through isReadOnly on every write, so the
// application can enter and leave maintenance windows without rebuilding the
// store. Reads always pass through. While writes are rejected, saves fail at
// their first step with a database error and the background checker keeps
// retrying until the window closes.
type ReadOnlyStore struct {
	RemoteStore
	isReadOnly func() bool
}

// NewReadOnlyStore creates a new read-only wrapper for a store
func NewReadOnlyStore(store RemoteStore, isReadOnly func() bool) *ReadOnlyStore {
	return &ReadOnlyStore{
		RemoteStore: store,
		isReadOnly:  isReadOnly,
	}
}

// Unwrap returns the underlying store
func (r *ReadOnlyStore) Unwrap() RemoteStore {
	return r.RemoteStore
}

func (r *ReadOnlyStore) SetEnvironment(ctx context.Context, record *models.EnvironmentRecord) error {
	if r.isReadOnly() {
		return ErrReadOnly
	}
	return r.RemoteStore.SetEnvironment(ctx, record)
}
