package chat

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/ai"
	"github.com/nhle/mailassist/internal/keys"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/theme"
)

// chatTimeout bounds one chat exchange.
const chatTimeout = 90 * time.Second

// TranscriptLoadedMsg is sent once the stored transcript is read.
type TranscriptLoadedMsg struct {
	Err error
}

// ReplyMsg carries the assistant's answer to one message.
type ReplyMsg struct {
	Reply model.ChatMessage
	Err   error
}

// ClearedMsg is sent after the transcript has been cleared.
type ClearedMsg struct {
	Err error
}

// Model is the chat screen.
type Model struct {
	assistant *ai.Assistant
	input     textarea.Model
	viewport  viewport.Model
	sending   bool
	pending   string
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates a new chat model.
func New(assistant *ai.Assistant, k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about your emails..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.KeyMap.InsertNewline.SetKeys("alt+enter")

	vp := viewport.New(width-4, viewportHeight(height))
	vp.Style = lipgloss.NewStyle()

	m := Model{
		assistant: assistant,
		input:     ta,
		viewport:  vp,
		keys:      k,
		width:     width,
		height:    height,
	}
	m.refreshViewport()
	return m
}

func viewportHeight(height int) int {
	h := height - 8 // space for input area + borders
	if h < 4 {
		h = 4
	}
	return h
}

// Init loads the stored transcript.
func (m Model) Init() tea.Cmd {
	a := m.assistant
	return tea.Batch(textarea.Blink, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()
		return TranscriptLoadedMsg{Err: a.Load(ctx)}
	})
}

// Update handles messages for the chat screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TranscriptLoadedMsg:
		if msg.Err != nil {
			log.Printf("chat: %v", msg.Err)
		}
		m.refreshViewport()
		return m, nil

	case ClearedMsg:
		if msg.Err != nil {
			log.Printf("chat: %v", msg.Err)
		}
		m.refreshViewport()
		return m, nil

	case ReplyMsg:
		m.sending = false
		m.pending = ""
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd

	var taCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	cmds = append(cmds, taCmd)

	var vpCmd tea.Cmd
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ClearChat):
		if m.sending {
			return m, nil
		}
		a := m.assistant
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
			defer cancel()
			return ClearedMsg{Err: a.Reset(ctx)}
		}

	case key.Matches(msg, m.keys.Send):
		if m.sending {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.sending = true
		m.pending = text
		cmd := m.send(text)
		m.refreshViewport()
		return m, cmd

	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send returns a command that delivers text to the assistant.
func (m Model) send(text string) tea.Cmd {
	a := m.assistant
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
		defer cancel()

		reply, err := a.SendMessage(ctx, text)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

// Sending reports whether a message is awaiting its answer.
func (m Model) Sending() bool { return m.sending }

// refreshViewport re-renders the conversation and scrolls to the bottom.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	roleStyle := lipgloss.NewStyle().Bold(true)
	userStyle := roleStyle.Foreground(theme.ColorBlue)
	botStyle := roleStyle.Foreground(theme.ColorGreen)
	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite).Width(m.width - 6)

	sections := []string{
		botStyle.Render("Assistant:"),
		contentStyle.Render(ai.Welcome),
		"",
	}

	msgs := m.assistant.Messages()
	for _, msg := range msgs {
		label := botStyle.Render("Assistant:")
		text := render.AIText(msg.Text)
		if msg.Role == model.ChatRoleUser {
			label = userStyle.Render("You:")
			text = render.StripControl(msg.Text)
		}
		sections = append(sections, label, contentStyle.Render(text), "")
	}

	if m.sending {
		n := len(msgs)
		if m.pending != "" && (n == 0 || msgs[n-1].Role != model.ChatRoleUser || msgs[n-1].Text != m.pending) {
			sections = append(sections, userStyle.Render("You:"), contentStyle.Render(m.pending), "")
		}
		sections = append(sections, theme.HelpStyle.Render("..."))
	}

	return strings.Join(sections, "\n")
}

// View renders the chat screen.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", max(min(m.width-6, 80), 0)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("Assistant"),
		m.viewport.View(),
		separator,
		m.input.View(),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the chat dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.viewport.Width = width - 4
	m.viewport.Height = viewportHeight(height)
	m.refreshViewport()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Blur removes keyboard focus from the text input.
func (m *Model) Blur() {
	m.input.Blur()
}
