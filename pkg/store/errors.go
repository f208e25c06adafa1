package store

import "errors"

var (
	// ErrStaleWrite is returned when a remote row already holds a newer write.
	ErrStaleWrite = errors.New("stale write: record holds a newer environment")

	// ErrReadOnly is returned by ReadOnlyStore while writes are disabled.
	ErrReadOnly = errors.New("operation denied: store is in read-only mode")
)
