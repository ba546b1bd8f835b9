// Package authstore keeps the bearer token and account email of the
// logged-in user, persisted in a KV backend across runs.
package authstore

import (
	"fmt"
	"log/slog"
	"sync"
)

// Fixed storage keys.
const (
	TokenKey = "voiceover_token"
	EmailKey = "voiceover_email"
)

// State is a point-in-time copy of the auth state.
type State struct {
	Token string
	Email string
}

// IsAuthenticated reports whether a token is present.
func (s State) IsAuthenticated() bool {
	return s.Token != ""
}

// Store holds the current auth state and mirrors it into a KV.
type Store struct {
	kv    KV
	mu    sync.RWMutex
	state State
}

// New creates a logged-out store over kv. Call Load to hydrate it.
func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Load hydrates the in-memory state from the KV. The email is only taken
// when a token is present. Read failures leave the store logged out.
func (s *Store) Load() {
	token, ok, err := s.kv.Get(TokenKey)
	if err != nil {
		slog.Warn("failed to read stored token", "error", err)
		return
	}

	if !ok || token == "" {
		return
	}

	email, _, err := s.kv.Get(EmailKey)
	if err != nil {
		slog.Warn("failed to read stored email", "error", err)
	}

	s.mu.Lock()
	s.state = State{Token: token, Email: email}
	s.mu.Unlock()
}

// Token returns the bearer token, if any.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Token, s.state.Token != ""
}

// Email returns the account email, if any.
func (s *Store) Email() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Email, s.state.Email != ""
}

// IsAuthenticated reports whether a token is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.IsAuthenticated()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// SetAuth persists token and email, then updates the in-memory state.
func (s *Store) SetAuth(token, email string) error {
	if err := s.kv.Set(TokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	if err := s.kv.Set(EmailKey, email); err != nil {
		// a token must never be hydrated with another account's email
		_ = s.kv.Delete(TokenKey)
		return fmt.Errorf("failed to store email: %w", err)
	}

	s.mu.Lock()
	s.state = State{Token: token, Email: email}
	s.mu.Unlock()

	return nil
}

// ClearAuth removes both values from the KV and from memory. Memory is
// cleared even if the KV fails.
func (s *Store) ClearAuth() error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	if err := s.kv.Delete(TokenKey); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	if err := s.kv.Delete(EmailKey); err != nil {
		return fmt.Errorf("failed to remove email: %w", err)
	}

	return nil
}
