package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/theme"
)

// Name identifies a palette command.
type Name string

const (
	Inbox    Name = "inbox"
	Chat     Name = "chat"
	Help     Name = "help"
	Refresh  Name = "refresh"
	Limit    Name = "limit"
	Mode     Name = "mode"
	Replies  Name = "replies"
	Settings Name = "settings"
	SignOut  Name = "signout"
	Quit     Name = "quit"
)

var aliases = map[string]Name{
	"mail":    Inbox,
	"ai":      Chat,
	"reload":  Refresh,
	"size":    Limit,
	"logout":  SignOut,
	"config":  Settings,
	"q":       Quit,
	"exit":    Quit,
	"refresh": Refresh,
}

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Name Name
	Mode model.ViewMode
	N    int
}

// Parse turns palette input into a command.
func Parse(input string) (CommandMsg, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return CommandMsg{}, fmt.Errorf("empty command")
	}

	name := Name(fields[0])
	if a, ok := aliases[fields[0]]; ok {
		name = a
	}
	args := fields[1:]

	switch name {
	case Inbox, Chat, Help, Refresh, Settings, SignOut, Quit:
		if len(args) != 0 {
			return CommandMsg{}, fmt.Errorf("%s takes no arguments", name)
		}
		return CommandMsg{Name: name}, nil

	case Limit:
		n, err := intArg(name, args)
		if err != nil {
			return CommandMsg{}, err
		}
		if !model.ValidPageLimit(n) {
			return CommandMsg{}, fmt.Errorf("limit must be one of %v", model.PageLimits)
		}
		return CommandMsg{Name: name, N: n}, nil

	case Replies:
		n, err := intArg(name, args)
		if err != nil {
			return CommandMsg{}, err
		}
		if n < 0 || n > model.MaxReplyCount {
			return CommandMsg{}, fmt.Errorf("replies must be between 0 and %d", model.MaxReplyCount)
		}
		return CommandMsg{Name: name, N: n}, nil

	case Mode:
		if len(args) != 1 {
			return CommandMsg{}, fmt.Errorf("usage: mode preview|ai_preview|ai_summary")
		}
		for _, v := range model.ViewModes {
			if string(v) == args[0] {
				return CommandMsg{Name: name, Mode: v}, nil
			}
		}
		return CommandMsg{}, fmt.Errorf("unknown mode %q", args[0])
	}

	return CommandMsg{}, fmt.Errorf("unknown command %q", fields[0])
}

func intArg(name Name, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: %s N", name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", name, args[0])
	}
	return n, nil
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	err    string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			return m, nil
		}
		c, err := Parse(raw)
		if err != nil {
			m.err = err.Error()
			return m, nil
		}
		m.err = ""
		m.input.Reset()
		return m, func() tea.Msg { return c }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections := []string{titleStyle.Render("Command Palette"), m.input.View()}
	if m.err != "" {
		sections = append(sections, "", theme.NoticeStyle(true).Render(m.err))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus clears the input and gives it keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.err = ""
	m.input.Reset()
	return m.input.Focus()
}
