package compose

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/theme"
)

// SubmitMsg is dispatched when the user confirms the draft.
type SubmitMsg struct {
	Draft model.Draft
}

// CancelMsg is dispatched when the user discards the draft.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	to      string
	subject string
	body    string
	confirm bool
}

// Model is the reply form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	sending bool
	width   int
	height  int
}

// New creates a new reply form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start fills the form from d and focuses it.
func (m *Model) Start(d model.Draft) tea.Cmd {
	m.fb.to = d.To
	m.fb.subject = d.Subject
	m.fb.body = d.Body
	m.fb.confirm = true
	m.sending = false
	m.form = m.buildForm()
	return m.form.Init()
}

// SetSending marks the draft as being sent; input is ignored meanwhile.
func (m *Model) SetSending(sending bool) {
	m.sending = sending
}

// Update handles messages for the reply form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.sending {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if !m.fb.confirm {
			m.form = nil
			return m, func() tea.Msg { return CancelMsg{} }
		}
		d := m.draft()
		return m, func() tea.Msg { return SubmitMsg{Draft: d} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

func (m Model) draft() model.Draft {
	return model.Draft{
		To:      strings.TrimSpace(m.fb.to),
		Subject: strings.TrimSpace(m.fb.subject),
		Body:    m.fb.body,
	}
}

// View renders the reply form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render("Reply") + "\n"
	if m.sending {
		content += theme.HelpStyle.Render("Sending…")
	} else {
		content += m.form.View()
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Value(&m.fb.to).
				Validate(validateAddress),
			huh.NewInput().
				Title("Subject").
				Value(&m.fb.subject).
				Validate(validateRequired("Subject")),
			huh.NewText().
				Title("Message").
				Placeholder("Write your reply...").
				Value(&m.fb.body).
				Validate(validateRequired("Message")),
			huh.NewConfirm().
				Title("Send this reply?").
				Affirmative("Send").
				Negative("Discard").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateAddress(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("To is required")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("%q is not an email address", s)
	}
	return nil
}
