// Package session holds the in-memory state of one signed-in browsing
// context: who is signed in, and the theme, onboarding and user contexts
// that mirror the environment setting.
//
// The contexts satisfy the collaborator interfaces of
// [github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/store]; the
// reconciler calls them but never owns their state.
package session

import (
	"sync"

	"github.com/surrealdb/surrealdb.go/contrib/surrealfocus/pkg/models"
)

// Session tracks the signed-in user.
type Session struct {
	mu     sync.RWMutex
	userID models.UserID
}

func New() *Session {
	return &Session{}
}

// SignIn makes userID the active user.
func (s *Session) SignIn(userID models.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
}

// SignOut clears the active user.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = models.UserID{}
}

// UserID returns the active user, or the zero UserID when signed out.
func (s *Session) UserID() models.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Active reports whether a user is signed in.
func (s *Session) Active() bool {
	return !s.UserID().IsZero()
}
