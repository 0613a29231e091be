package inbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorStack(t *testing.T) {
	var s CursorStack
	assert.Nil(t, s.Current())
	assert.True(t, s.AtTop())

	tok := s.Advance("t1")
	require.NotNil(t, tok)
	assert.Equal(t, "t1", *tok)
	assert.Equal(t, 1, s.Index())

	tok = s.Advance("t2")
	assert.Equal(t, "t2", *tok)
	assert.Equal(t, 2, s.Len())

	tok, ok := s.Retreat()
	require.True(t, ok)
	assert.Equal(t, "t1", *tok)

	// Below the top, Advance reuses the recorded token.
	tok = s.Advance("ignored")
	assert.Equal(t, "t2", *tok)
	assert.Equal(t, 2, s.Len())

	s.Retreat()
	tok, ok = s.Retreat()
	assert.True(t, ok)
	assert.Nil(t, tok)

	_, ok = s.Retreat()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Index())

	s.Reset()
	assert.Equal(t, 0, s.Len())
}

func TestCursorStackMoveToBounds(t *testing.T) {
	var s CursorStack
	s.Advance("t1")
	s.moveTo(5)
	assert.Equal(t, 1, s.Index())
	s.moveTo(-1)
	assert.Equal(t, 1, s.Index())
	s.moveTo(0)
	assert.Equal(t, 0, s.Index())
}
