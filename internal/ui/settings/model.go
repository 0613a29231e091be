package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/theme"
)

// SavedMsg is dispatched after the configuration file has been written.
type SavedMsg struct {
	Config model.AppConfig
}

// DoneMsg signals the settings view should close.
type DoneMsg struct{}

type savedInternalMsg struct {
	cfg model.AppConfig
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	baseURL      string
	aiRate       string
	timeout      string
	pageSize     int
	backend      string
	clientID     string
	redirectURL  string
	historyLimit string
}

// Model edits and saves the configuration file.
type Model struct {
	path   string
	cfg    model.AppConfig
	form   *huh.Form
	fb     *formBindings
	saving bool
	status string
	err    error
	width  int
	height int
}

// New creates a settings view for the file at path.
func New(path string, cfg model.AppConfig, width, height int) Model {
	return Model{
		path:   path,
		cfg:    cfg,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start fills the form from the current configuration.
func (m *Model) Start() tea.Cmd {
	c := m.cfg
	*m.fb = formBindings{
		baseURL:      c.Service.BaseURL,
		aiRate:       strconv.Itoa(c.Service.AIRequestsPerMinute),
		timeout:      strconv.Itoa(c.Service.TimeoutSec),
		pageSize:     c.Inbox.PageSize,
		backend:      c.Session.Backend,
		clientID:     c.Auth.ClientID,
		redirectURL:  c.Auth.RedirectURL,
		historyLimit: strconv.Itoa(c.Chat.HistoryLimit),
	}
	m.saving = false
	m.status = ""
	m.err = nil
	m.form = m.buildForm()
	return m.form.Init()
}

// Config returns the configuration as last saved.
func (m Model) Config() model.AppConfig { return m.cfg }

// Update handles messages for the settings view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedInternalMsg:
		m.saving = false
		if msg.err != nil {
			m.err = msg.err
			return m, m.restart()
		}
		m.cfg = msg.cfg
		m.status = "Saved to " + m.path + ". Service and session changes apply on next start."
		cfg := msg.cfg
		return m, func() tea.Msg { return SavedMsg{Config: cfg} }

	case tea.KeyMsg:
		if msg.String() == "esc" && !m.saving {
			m.form = nil
			return m, func() tea.Msg { return DoneMsg{} }
		}
	}

	if m.form == nil || m.saving {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "enter" && m.form == nil {
			return m, func() tea.Msg { return DoneMsg{} }
		}
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		m.saving = true
		return m, m.save()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return DoneMsg{} }
	}
	return m, cmd
}

// restart reopens the form with the values last entered.
func (m *Model) restart() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

// save applies the form values to a copy of the configuration and
// writes it.
func (m Model) save() tea.Cmd {
	cfg := m.cfg
	fb := *m.fb
	path := m.path
	return func() tea.Msg {
		cfg.Service.BaseURL = strings.TrimRight(strings.TrimSpace(fb.baseURL), "/")
		cfg.Service.AIRequestsPerMinute = atoi(fb.aiRate)
		cfg.Service.TimeoutSec = atoi(fb.timeout)
		cfg.Inbox.PageSize = fb.pageSize
		cfg.Session.Backend = fb.backend
		cfg.Auth.ClientID = strings.TrimSpace(fb.clientID)
		cfg.Auth.RedirectURL = strings.TrimSpace(fb.redirectURL)
		cfg.Chat.HistoryLimit = atoi(fb.historyLimit)

		err := model.SaveConfig(path, &cfg)
		return savedInternalMsg{cfg: cfg, err: err}
	}
}

func (m *Model) buildForm() *huh.Form {
	sizes := make([]huh.Option[int], len(model.PageLimits))
	for i, n := range model.PageLimits {
		sizes[i] = huh.NewOption(strconv.Itoa(n), n)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Service URL").
				Description("Email and AI backend (e.g., http://localhost:8000)").
				Value(&m.fb.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&m.fb.timeout).
				Validate(validateNumber("Timeout", 1)),
			huh.NewInput().
				Title("AI requests per minute").
				Description("0 disables pacing").
				Value(&m.fb.aiRate).
				Validate(validateNumber("AI requests per minute", 0)),
		),
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Emails per page").
				Options(sizes...).
				Value(&m.fb.pageSize),
			huh.NewSelect[string]().
				Title("Session storage").
				Options(
					huh.NewOption("System keyring", "keyring"),
					huh.NewOption("Local database", "sqlite"),
					huh.NewOption("Memory (signed out on exit)", "memory"),
				).
				Value(&m.fb.backend),
			huh.NewInput().
				Title("Chat history limit").
				Value(&m.fb.historyLimit).
				Validate(validateNumber("Chat history limit", 1)),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("OAuth client ID").
				Value(&m.fb.clientID),
			huh.NewInput().
				Title("Redirect URL").
				Description("Must be registered with the provider").
				Value(&m.fb.redirectURL).
				Validate(validateURL),
		),
	).WithWidth(m.formWidth())
}

// View renders the settings view.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sections := []string{titleStyle.Render("Settings")}
	switch {
	case m.saving:
		sections = append(sections, theme.HelpStyle.Render("Saving…"))
	case m.form != nil:
		sections = append(sections, m.form.View())
	default:
		sections = append(sections, theme.HelpStyle.Render("enter/esc to close"))
	}
	if m.status != "" {
		sections = append(sections, "", theme.NoticeStyle(false).Render(m.status))
	}
	if m.err != nil {
		sections = append(sections, "", theme.NoticeStyle(true).Render(fmt.Sprintf("Error saving settings: %v", m.err)))
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the settings view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
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

// atoi parses a value the form has already validated.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func validateURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}

func validateNumber(fieldName string, lowest int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", fieldName)
		}
		if n < lowest {
			return fmt.Errorf("%s must be at least %d", fieldName, lowest)
		}
		return nil
	}
}
