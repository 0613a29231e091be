package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  CommandMsg
	}{
		{"inbox", CommandMsg{Name: Inbox}},
		{"  Chat ", CommandMsg{Name: Chat}},
		{"ai", CommandMsg{Name: Chat}},
		{"reload", CommandMsg{Name: Refresh}},
		{"limit 20", CommandMsg{Name: Limit, N: 20}},
		{"size 10", CommandMsg{Name: Limit, N: 10}},
		{"mode ai_summary", CommandMsg{Name: Mode, Mode: model.ViewAISummary}},
		{"replies 0", CommandMsg{Name: Replies, N: 0}},
		{"replies 3", CommandMsg{Name: Replies, N: 3}},
		{"config", CommandMsg{Name: Settings}},
		{"logout", CommandMsg{Name: SignOut}},
		{"q", CommandMsg{Name: Quit}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{
		"",
		"launch",
		"inbox now",
		"limit",
		"limit 7",
		"limit ten",
		"replies 4",
		"replies -1",
		"mode",
		"mode compact",
	} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestEnterEmitsParsedCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "limit 10" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg{Name: Limit, N: 10}, cmd())
	assert.Empty(t, m.input.Value())
}

func TestEnterShowsParseError(t *testing.T) {
	m := New(80, 24)
	for _, r := range "bogus" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), `unknown command "bogus"`)
	assert.Equal(t, "bogus", m.input.Value())
}
