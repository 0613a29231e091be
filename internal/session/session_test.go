package session_test

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/session"
	"github.com/nhle/mailassist/tests/testutil"
)

func backends(t *testing.T) map[string]session.Store {
	return map[string]session.Store{
		"memory":  session.NewMemoryStore(),
		"keyring": session.NewKeyringStore(keyring.NewArrayKeyring(nil)),
		"sqlite":  session.NewSQLStore(testutil.NewTestStore(t)),
	}
}

func TestSession_RoundTripAndClear(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := session.New(st)
			assert.Empty(t, s.SessionID())
			assert.Empty(t, s.Token())

			require.NoError(t, s.SetSessionID("sess-1"))
			require.NoError(t, s.SetToken("ya29.token"))
			assert.Equal(t, "sess-1", s.SessionID())
			assert.Equal(t, "ya29.token", s.Token())

			require.NoError(t, s.Clear())
			assert.Empty(t, s.SessionID())
			assert.Empty(t, s.Token())

			// Clearing an empty store is fine.
			require.NoError(t, s.Clear())
		})
	}
}

func TestStore_MissingKeyIsErrNotFound(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(session.KeySessionID)
			assert.ErrorIs(t, err, session.ErrNotFound)
		})
	}
}

type failingStore struct{ session.MemoryStore }

func (f *failingStore) Delete(string) error { return errors.New("backend down") }

func TestSession_ClearReportsBackendErrors(t *testing.T) {
	s := session.New(&failingStore{})
	err := s.Clear()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestFromConfig(t *testing.T) {
	st, err := session.FromConfig(model.SessionConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &session.MemoryStore{}, st)

	st, err = session.FromConfig(model.SessionConfig{Backend: "sqlite"}, testutil.NewTestStore(t))
	require.NoError(t, err)
	assert.IsType(t, &session.SQLStore{}, st)

	_, err = session.FromConfig(model.SessionConfig{Backend: "sqlite"}, nil)
	assert.Error(t, err)

	_, err = session.FromConfig(model.SessionConfig{Backend: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}
