package session

import (
	"errors"
	"fmt"
)

// Keys held by the session store.
const (
	KeySessionID = "session_id"
	KeyToken     = "token"
)

// ErrNotFound is returned by a Store when a key has no value.
var ErrNotFound = errors.New("session value not found")

// Store is an opaque key-value holder for session credentials.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Session gives typed access to the values the client keeps between runs:
// the server session id and the provider access token.
type Session struct {
	store Store
}

// New wraps store.
func New(store Store) *Session {
	return &Session{store: store}
}

// SessionID returns the server session id, or "" if none is stored.
func (s *Session) SessionID() string {
	return s.get(KeySessionID)
}

// Token returns the provider access token, or "" if none is stored.
func (s *Session) Token() string {
	return s.get(KeyToken)
}

// SetSessionID stores the server session id.
func (s *Session) SetSessionID(id string) error {
	if err := s.store.Set(KeySessionID, id); err != nil {
		return fmt.Errorf("storing session id: %w", err)
	}
	return nil
}

// SetToken stores the provider access token.
func (s *Session) SetToken(token string) error {
	if err := s.store.Set(KeyToken, token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// Clear removes every session value. Missing values are not an error.
func (s *Session) Clear() error {
	var errs []error
	for _, key := range []string{KeySessionID, KeyToken} {
		if err := s.store.Delete(key); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("clearing %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Session) get(key string) string {
	v, err := s.store.Get(key)
	if err != nil {
		return ""
	}
	return v
}
