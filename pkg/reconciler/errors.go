package reconciler

import (
	"errors"
	"fmt"
)

// ErrNoUserID is returned when an operation needs a signed-in user.
var ErrNoUserID = errors.New("no user id available")

// DatabaseError is a failed remote read or write.
type DatabaseError struct {
	// Store is the short store name, "profile" or "onboarding".
	Store string
	Err   error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error (%s): %v", e.Store, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// UnexpectedError is any other failure on the save path.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }
