package login

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/auth"
	"github.com/nhle/mailassist/internal/theme"
)

// signInTimeout bounds the wait for the browser redirect.
const signInTimeout = 10 * time.Minute

// exchangeTimeout bounds the code exchange with the service.
const exchangeTimeout = 30 * time.Second

// SignedInMsg is sent once a session has been established.
type SignedInMsg struct{}

type callbackMsg struct {
	gen      int
	redirect auth.Redirect
	err      error
}

type completedMsg struct {
	signedIn bool
	err      error
}

// Model is the sign-in screen. It waits for the provider redirect on the
// loopback address and also accepts a pasted redirect URL.
type Model struct {
	provider      *auth.Provider
	authenticator *auth.Authenticator
	input         textinput.Model

	authURL string
	state   string
	gen     int
	cancel  context.CancelFunc
	waiting bool
	busy    bool
	status  string
	err     string

	width  int
	height int
}

// New creates a new sign-in model.
func New(p *auth.Provider, a *auth.Authenticator, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "or paste the redirect URL here"
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Width = width - 8

	return Model{
		provider:      p,
		authenticator: a,
		input:         ti,
		width:         width,
		height:        height,
	}
}

// Start builds a fresh authorize URL and starts listening for the
// redirect. A failure to listen leaves the paste field as the only way in.
func (m *Model) Start() tea.Cmd {
	m.Stop()
	m.gen++
	m.err = ""
	m.status = ""
	m.busy = false
	m.authURL, m.state = m.provider.AuthURL()
	m.input.Reset()
	focus := m.input.Focus()

	if !m.provider.Configured() {
		m.err = "No OAuth client ID configured (set GOOGLE_CLIENT_ID or auth.client_id)."
		return focus
	}

	srv, err := auth.Listen(m.provider.RedirectURL(), m.state)
	if err != nil {
		log.Printf("auth: %v", err)
		m.status = "Could not listen for the redirect; paste it below once signed in."
		return focus
	}

	ctx, cancel := context.WithTimeout(context.Background(), signInTimeout)
	m.cancel = cancel
	m.waiting = true
	gen := m.gen
	return tea.Batch(focus, func() tea.Msg {
		defer srv.Close()
		r, err := srv.Wait(ctx)
		return callbackMsg{gen: gen, redirect: r, err: err}
	})
}

// Stop abandons any pending wait for the redirect.
func (m *Model) Stop() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.waiting = false
}

// Update handles messages for the sign-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callbackMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.waiting = false
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				m.err = fmt.Sprintf("Sign-in failed: %v", msg.err)
			}
			return m, nil
		}
		return m, m.complete(msg.redirect)

	case completedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = fmt.Sprintf("Sign-in failed: %v", msg.err)
			return m, nil
		}
		if !msg.signedIn {
			m.status = "Token saved. Paste the redirect that carries a code to finish signing in."
			return m, nil
		}
		m.Stop()
		return m, func() tea.Msg { return SignedInMsg{} }

	case tea.KeyMsg:
		if msg.String() == "enter" {
			return m.submitPasted()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitPasted() (Model, tea.Cmd) {
	if m.busy || m.input.Value() == "" {
		return m, nil
	}
	r, err := auth.ParseRedirect(m.input.Value())
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	if r.State != "" && r.State != m.state {
		m.err = auth.ErrStateMismatch.Error()
		return m, nil
	}
	m.input.Reset()
	return m, m.complete(r)
}

func (m *Model) complete(r auth.Redirect) tea.Cmd {
	m.busy = true
	m.err = ""
	m.status = "Signing in…"
	a := m.authenticator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
		defer cancel()

		err := a.Complete(ctx, r)
		return completedMsg{signedIn: err == nil && a.SignedIn(), err: err}
	}
}

// View renders the sign-in screen.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	urlStyle := lipgloss.NewStyle().
		Foreground(theme.ColorBlue).
		Width(m.width - 8)

	sections := []string{
		titleStyle.Render("Sign in with Google"),
		"Open this link in your browser and grant access:",
		"",
		urlStyle.Render(m.authURL),
		"",
	}
	if m.waiting {
		sections = append(sections, theme.HelpStyle.Render("Waiting for the redirect on "+m.provider.RedirectURL()+" …"))
	}
	if m.status != "" {
		sections = append(sections, theme.HelpStyle.Render(m.status))
	}
	if m.err != "" {
		sections = append(sections, theme.NoticeStyle(true).Render(m.err))
	}
	sections = append(sections, "", m.input.View())

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the sign-in screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 8
}
