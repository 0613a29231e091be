package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/store"
)

// SQLStore keeps session values in the local SQLite database.
type SQLStore struct {
	db *store.SQLiteStore
}

// NewSQLStore wraps db.
func NewSQLStore(db *store.SQLiteStore) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(key string) (string, error) {
	v, err := s.db.GetValue(context.Background(), key)
	if errors.Is(err, store.ErrValueNotFound) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *SQLStore) Set(key, value string) error {
	return s.db.SetValue(context.Background(), key, value)
}

func (s *SQLStore) Delete(key string) error {
	err := s.db.DeleteValue(context.Background(), key)
	if errors.Is(err, store.ErrValueNotFound) {
		return ErrNotFound
	}
	return err
}

// FromConfig selects the backend named by cfg.Backend. db is only used
// by the "sqlite" backend.
func FromConfig(cfg model.SessionConfig, db *store.SQLiteStore) (Store, error) {
	switch cfg.Backend {
	case "", "keyring":
		return OpenKeyring()
	case "sqlite":
		if db == nil {
			return nil, errors.New("sqlite session backend requires a database")
		}
		return NewSQLStore(db), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}
