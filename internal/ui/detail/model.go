package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/keys"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/theme"
	"github.com/nhle/mailassist/internal/ui"
)

// Model is the email detail view.
type Model struct {
	email    *model.Email
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && m.email != nil {
		id := m.email.ID
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return ui.BackMsg{} }

		case key.Matches(msg, m.keys.UseReply):
			n := int(msg.String()[0] - '1')
			if n >= len(m.email.SuggestedReplies) || render.IsAIError(m.email.SuggestedReplies[n]) {
				return m, nil
			}
			seed := m.email.SuggestedReplies[n]
			return m, func() tea.Msg { return ui.ComposeRequestMsg{EmailID: id, Seed: seed} }

		case key.Matches(msg, m.keys.Reply):
			return m, func() tea.Msg { return ui.ComposeRequestMsg{EmailID: id} }
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the detail view.
func (m Model) View() string {
	if m.email == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No email selected")
	}
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(m.viewport.View())
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	e := m.email
	if e == nil {
		return ""
	}
	width := m.contentWidth()

	var sections []string

	subject := render.DecodeHeader(e.Subject)
	if subject == "" {
		subject = "(no subject)"
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Width(width).Render(subject))

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	sections = append(sections, fmt.Sprintf(
		"%s  %s",
		metaStyle.Render("From:"),
		valStyle.Render(render.DecodeHeader(e.From)),
	))

	separator := lipgloss.NewStyle().
		Foreground(theme.ColorSubtle).
		Render(strings.Repeat("─", min(width, 80)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	if e.HasSummary() {
		sections = append(sections, "", separator, "", headerStyle.Render("AI summary"))
		if render.IsAIError(e.SummaryText()) {
			sections = append(sections, theme.WarningStyle.Render(render.RateLimitNotice))
		} else {
			sections = append(sections, theme.SummaryStyle.Width(width).Render(render.StripControl(e.SummaryText())))
		}
	}

	sections = append(sections, "", separator, "")
	body := render.SanitizeBody(e.Body)
	if body == "" {
		body = render.SanitizeBody(e.Snippet)
	}
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No content")
	}
	sections = append(sections, lipgloss.NewStyle().Width(width).Render(body))

	if len(e.SuggestedReplies) > 0 {
		sections = append(sections, "", separator, "", headerStyle.Render("Suggested replies"))
		for i, r := range e.SuggestedReplies {
			if i >= model.MaxReplyCount {
				break
			}
			style := theme.ReplyStyle
			if render.IsAIError(r) {
				style = theme.WarningStyle
			}
			sections = append(sections, style.Width(width).Render(
				fmt.Sprintf("%d. %s", i+1, render.AIText(r))))
		}
		sections = append(sections, "", theme.HelpStyle.Render("1-3 reply with a suggestion · r write a reply"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetEmail updates the email being displayed. The scroll position is
// kept when the same email is shown again.
func (m *Model) SetEmail(e model.Email) {
	same := m.email != nil && m.email.ID == e.ID
	m.email = &e
	m.viewport.SetContent(m.renderContent())
	if !same {
		m.viewport.GotoTop()
	}
}

// EmailID returns the ID of the displayed email.
func (m Model) EmailID() string {
	if m.email == nil {
		return ""
	}
	return m.email.ID
}

// Clear removes the displayed email.
func (m *Model) Clear() {
	m.email = nil
	m.viewport.SetContent("")
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = m.contentWidth()
	m.viewport.Height = height - 4
	if m.email != nil {
		m.viewport.SetContent(m.renderContent())
	}
}

func (m Model) contentWidth() int {
	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return w
}
