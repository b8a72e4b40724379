// Package session owns the device's authentication state: one persisted
// bearer token and the user identity derived from its claims. The invariant
// is that a non-nil user exists iff a decodable token is currently stored.
package session

import (
	"log/slog"
	"sync"

	"qc-console/internal/model"
)

type Store struct {
	file *FileStore

	mu    sync.RWMutex
	token string
	user  *model.User
}

func NewStore(file *FileStore) *Store {
	return &Store{file: file}
}

// Restore loads the persisted token on startup. All failures are absorbed:
// a missing, unreadable or undecodable token leaves the store logged out
// and purges whatever was persisted. Restore never returns an error.
func (s *Store) Restore() {
	token, err := s.file.Read()
	if err != nil {
		slog.Warn("persisted token unreadable, purging", "error", err)
		s.Logout()
		return
	}

	if token == "" {
		return
	}

	user, err := decodeUser(token)
	if err != nil {
		slog.Warn("persisted token undecodable, purging", "error", err)
		s.Logout()
		return
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// Login accepts a freshly issued token, persists it and derives the user.
// On any failure the store behaves exactly like Logout: no partially
// authenticated state survives.
func (s *Store) Login(token string) error {
	user, err := decodeUser(token)
	if err != nil {
		s.Logout()
		return err
	}

	if err := s.file.Write(token); err != nil {
		s.Logout()
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	return nil
}

// Logout clears both the in-memory and the persisted token. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.file.Clear(); err != nil {
		slog.Warn("failed to clear persisted token", "error", err)
	}
}

// Token returns the current bearer token, or "" when logged out. Callers
// must not cache the value across requests.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current identity, or nil when logged out.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) Authenticated() bool {
	return s.User() != nil
}
