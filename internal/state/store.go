package state

import (
	"sync"
	"time"

	"bilitui/internal/credential"
)

// Session is the top-level login state visible to the UI.
type Session struct {
	Credentials credential.Credentials
	LoggedIn    bool
	LastError   error
	UpdatedAt   time.Time
}

// Store coordinates access to the single session slot. The slot is
// replaced wholesale on login and logout; readers get copies. Credentials
// themselves are never mutated in place.
type Store struct {
	mu      sync.RWMutex
	session Session
}

// SetCredentials installs a new identity, clearing any recorded error.
func (s *Store) SetCredentials(c credential.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{
		Credentials: c,
		LoggedIn:    true,
		UpdatedAt:   time.Now(),
	}
}

// Clear drops the identity (logout or corrupt credential file).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{UpdatedAt: time.Now()}
}

// SetError records the most recent transport failure for visibility
// without touching the identity.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.LastError = err
	s.session.UpdatedAt = time.Now()
}

// Session returns a copy of the current session slot.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Credentials returns the current identity, false when logged out.
func (s *Store) Credentials() (credential.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Credentials, s.session.LoggedIn
}
