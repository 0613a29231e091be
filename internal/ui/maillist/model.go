package maillist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/inbox"
	"github.com/nhle/mailassist/internal/keys"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/theme"
	"github.com/nhle/mailassist/internal/ui"
)

// Model is the inbox list view. It renders the controller state and turns
// keys into controller operations.
type Model struct {
	ctrl   *inbox.Controller
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new inbox list model.
func New(ctrl *inbox.Controller, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, EmailDelegate{Mode: ctrl.ViewMode()}, width, height-1)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return Model{
		ctrl:   ctrl,
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Update handles messages for the inbox list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if inbox.IsResult(msg) {
		cmd := m.ctrl.Update(msg)
		m.Sync()
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := m.handleKeys(msg); handled {
			m.Sync()
			return m, cmd
		}
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	c := m.ctrl
	c.ClearNotice()
	switch {
	case key.Matches(msg, m.keys.NextPage):
		return c.AdvancePage(), true
	case key.Matches(msg, m.keys.PrevPage):
		return c.RetreatPage(), true
	case key.Matches(msg, m.keys.Refresh):
		return c.Reload(), true
	case key.Matches(msg, m.keys.CycleSize):
		return c.SetLimit(c.NextLimit()), true
	case key.Matches(msg, m.keys.CycleMode):
		return c.CycleViewMode(), true
	case key.Matches(msg, m.keys.ReplyCount):
		n := int(msg.String()[0] - '0')
		return c.SetReplyCount(n), true
	}

	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return nil, false
	}
	id := item.Email.ID

	switch {
	case key.Matches(msg, m.keys.Delete):
		return c.DeleteEmail(id), true
	case key.Matches(msg, m.keys.Select):
		return func() tea.Msg { return ui.OpenEmailMsg{EmailID: id} }, true
	case key.Matches(msg, m.keys.Reply):
		return func() tea.Msg { return ui.ComposeRequestMsg{EmailID: id} }, true
	case key.Matches(msg, m.keys.ReplySuggest):
		seed := firstUsableReply(item.Email.SuggestedReplies)
		return func() tea.Msg { return ui.ComposeRequestMsg{EmailID: id, Seed: seed} }, true
	}
	return nil, false
}

func firstUsableReply(replies []string) string {
	if len(replies) == 0 || render.IsAIError(replies[0]) {
		return ""
	}
	return replies[0]
}

// Sync rebuilds the list items and delegate from the controller state.
func (m *Model) Sync() {
	emails := m.ctrl.Emails()
	items := make([]list.Item, len(emails))
	for i, e := range emails {
		items[i] = EmailItem{Email: e, Deleting: m.ctrl.Deleting(e.ID)}
	}

	idx := m.list.Index()
	m.list.SetDelegate(EmailDelegate{Mode: m.ctrl.ViewMode(), Replies: m.ctrl.ReplyCount()})
	m.list.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

// Reset moves the selection to the top.
func (m *Model) Reset() {
	m.list.ResetSelected()
	m.Sync()
}

// SelectedID returns the ID of the highlighted email.
func (m Model) SelectedID() (string, bool) {
	item, ok := m.list.SelectedItem().(EmailItem)
	if !ok {
		return "", false
	}
	return item.Email.ID, true
}

// Status summarizes paging and display state for the status line.
func (m Model) Status() string {
	c := m.ctrl
	parts := []string{
		fmt.Sprintf("page %d", c.PageIndex()+1),
		fmt.Sprintf("%d/page", c.Limit()),
		c.ViewMode().Label(),
	}
	if n := c.ReplyCount(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d replies", n))
	}
	switch {
	case c.Loading():
		parts = append(parts, "loading…")
	case c.Summarizing():
		parts = append(parts, "summarizing…")
	case c.Suggesting():
		parts = append(parts, "suggesting replies…")
	}
	return strings.Join(parts, " · ")
}

// View renders the inbox list view.
func (m Model) View() string {
	c := m.ctrl
	if len(c.Emails()) == 0 {
		return m.renderEmptyState()
	}

	nav := ""
	if c.HasPrev() {
		nav += "‹ p "
	}
	nav += fmt.Sprintf("page %d", c.PageIndex()+1)
	if c.HasNext() {
		nav += " n ›"
	}
	title := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.ModeBadgeStyle(string(c.ViewMode())).Render(c.ViewMode().Label()),
		theme.DimmedStyle.Render(nav),
	)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.list.View())
}

// renderEmptyState shows a loading or empty message.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.ctrl.Loading() {
		return style.Render("Loading emails…")
	}
	return style.Render("No emails on this page.\n\nPress g to refresh.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-1)
}
