package app

import (
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailassist/internal/ai"
	"github.com/nhle/mailassist/internal/auth"
	"github.com/nhle/mailassist/internal/inbox"
	"github.com/nhle/mailassist/internal/keys"
	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/ui"
	"github.com/nhle/mailassist/internal/ui/chat"
	"github.com/nhle/mailassist/internal/ui/command"
	"github.com/nhle/mailassist/internal/ui/compose"
	"github.com/nhle/mailassist/internal/ui/detail"
	helpview "github.com/nhle/mailassist/internal/ui/help"
	"github.com/nhle/mailassist/internal/ui/login"
	"github.com/nhle/mailassist/internal/ui/maillist"
	"github.com/nhle/mailassist/internal/ui/settings"
)

const appTitle = "Mail Assistant"

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewChecking ViewState = iota
	ViewLogin
	ViewInbox
	ViewDetail
	ViewCompose
	ViewChat
	ViewHelp
	ViewCommand
	ViewSettings
)

// Deps are the services the root model routes between.
type Deps struct {
	Controller    *inbox.Controller
	Assistant     *ai.Assistant
	Authenticator *auth.Authenticator
	Provider      *auth.Provider

	Config     *model.AppConfig
	ConfigPath string

	// PendingRedirect is a provider redirect URL passed on the command
	// line. It is applied before the session is checked.
	PendingRedirect string
}

// Model is the root Bubble Tea model. It owns screen routing and the
// signed-in state; the inbox controller owns the mail state.
type Model struct {
	currentView  ViewState
	previousView ViewState
	// screen is the top-level screen under any modal: ViewInbox or ViewChat.
	screen ViewState

	layout ui.Layout
	keys   *keys.KeyMap
	ready  bool

	ctrl     *inbox.Controller
	authn    *auth.Authenticator
	redirect string

	user       *model.User
	chatLoaded bool

	login       login.Model
	inbox       maillist.Model
	detail      detail.Model
	compose     compose.Model
	chat        chat.Model
	helpView    helpview.Model
	commandView command.Model
	settings    settings.Model
}

// New creates the root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	cfg := d.Config
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return Model{
		currentView: ViewChecking,
		screen:      ViewInbox,
		keys:        k,
		ctrl:        d.Controller,
		authn:       d.Authenticator,
		redirect:    d.PendingRedirect,
		login:       login.New(d.Provider, d.Authenticator, 80, 24),
		inbox:       maillist.New(d.Controller, k, 80, 24),
		detail:      detail.New(k, 80, 24),
		compose:     compose.New(80, 24),
		chat:        chat.New(d.Assistant, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		settings:    settings.New(d.ConfigPath, *cfg, 80, 24),
	}
}

// Init checks for an existing session.
func (m Model) Init() tea.Cmd {
	return m.checkAuth(m.redirect)
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// User returns the signed-in user, or nil.
func (m Model) User() *model.User { return m.user }

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.login.SetSize(w, h)
		m.inbox.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.compose.SetSize(w, h)
		m.chat.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.settings.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case authCheckedMsg:
		m.redirect = ""
		if msg.user == nil {
			return m, m.showLogin()
		}
		m.user = msg.user
		return m, m.enterScreen(m.screen)

	case login.SignedInMsg:
		m.currentView = ViewChecking
		return m, m.checkAuth("")

	case inbox.AuthFailedMsg:
		if m.currentView == ViewLogin || m.currentView == ViewChecking {
			return m, nil
		}
		m.signOut()
		return m, m.showLogin()

	case ui.OpenEmailMsg:
		e, ok := m.ctrl.Email(msg.EmailID)
		if !ok {
			return m, nil
		}
		m.detail.SetEmail(e)
		m.currentView = ViewDetail
		return m, nil

	case ui.BackMsg:
		m.detail.Clear()
		m.currentView = m.screen
		return m, nil

	case ui.ComposeRequestMsg:
		d, ok := m.ctrl.Compose(msg.EmailID, msg.Seed)
		if !ok {
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.compose.Start(d)

	case compose.SubmitMsg:
		cmd := m.ctrl.SendDraft(msg.Draft)
		if cmd == nil {
			return m, m.compose.Start(msg.Draft)
		}
		m.compose.SetSending(true)
		return m, cmd

	case compose.CancelMsg:
		m.ctrl.CancelDraft()
		m.currentView = m.previousView
		return m, nil

	case settings.SavedMsg:
		if n := msg.Config.Inbox.PageSize; m.ctrl.Mounted() && n != m.ctrl.Limit() {
			cmd := m.ctrl.SetLimit(n)
			m.inbox.Sync()
			return m, cmd
		}
		return m, nil

	case settings.DoneMsg:
		m.currentView = m.previousView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case chat.TranscriptLoadedMsg, chat.ReplyMsg, chat.ClearedMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if next, cmd, handled := m.handleGlobalKey(msg); handled {
			return next, cmd
		}
	}

	// Inbox results are merged whatever screen is showing.
	if inbox.IsResult(msg) {
		return m.handleInboxResult(msg)
	}

	return m.updateActiveView(msg)
}

func (m Model) handleInboxResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.inbox, cmd = m.inbox.Update(msg)

	if m.currentView == ViewDetail || (m.currentView == ViewCompose && m.previousView == ViewDetail) {
		if e, ok := m.ctrl.Email(m.detail.EmailID()); ok {
			m.detail.SetEmail(e)
		} else if m.currentView == ViewDetail {
			m.detail.Clear()
			m.currentView = m.screen
		} else {
			m.previousView = m.screen
		}
	}

	if _, ok := msg.(inbox.DraftSentMsg); ok && m.currentView == ViewCompose && !m.ctrl.Sending() {
		m.compose.SetSending(false)
		if d, open := m.ctrl.Draft(); open {
			return m, tea.Batch(cmd, m.compose.Start(d))
		}
		m.currentView = m.previousView
	}
	return m, cmd
}

// handleGlobalKey handles keys that work regardless of the active view.
// Text-entry views only see ctrl+c here.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.ctrl.Unmount()
		m.login.Stop()
		return m, tea.Quit, true
	}

	switch m.currentView {
	case ViewChat:
		switch {
		case key.Matches(msg, m.keys.SwitchScreen):
			return m, m.enterScreen(ViewInbox), true
		case key.Matches(msg, m.keys.Back):
			if !m.chat.Sending() {
				return m, m.enterScreen(ViewInbox), true
			}
		}
		return m, nil, false

	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Quit) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, true

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return m, nil, true
		}
		return m, nil, false

	case ViewInbox, ViewDetail:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.ctrl.Unmount()
			return m, tea.Quit, true
		case key.Matches(msg, m.keys.Help):
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil, true
		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus(), true
		case key.Matches(msg, m.keys.SwitchScreen):
			return m, m.enterScreen(ViewChat), true
		case key.Matches(msg, m.keys.Settings):
			return m, m.openSettings(), true
		case key.Matches(msg, m.keys.SignOut):
			m.signOut()
			return m, m.showLogin(), true
		}
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.login, cmd = m.login.Update(msg)
	case ViewInbox:
		m.inbox, cmd = m.inbox.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCompose:
		m.compose, cmd = m.compose.Update(msg)
	case ViewChat:
		m.chat, cmd = m.chat.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	}

	return m, cmd
}

// enterScreen switches the top-level screen. The inbox is mounted only
// while it is the active screen.
func (m *Model) enterScreen(screen ViewState) tea.Cmd {
	m.screen = screen
	m.currentView = screen

	switch screen {
	case ViewChat:
		m.ctrl.Unmount()
		m.inbox.Reset()
		m.detail.Clear()
		cmds := []tea.Cmd{m.chat.Focus()}
		if !m.chatLoaded {
			m.chatLoaded = true
			cmds = append(cmds, m.chat.Init())
		}
		return tea.Batch(cmds...)
	default:
		m.chat.Blur()
		if m.ctrl.Mounted() {
			return nil
		}
		m.inbox.Reset()
		return m.ctrl.Mount()
	}
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settings.Start()
}

func (m *Model) showLogin() tea.Cmd {
	m.currentView = ViewLogin
	m.screen = ViewInbox
	m.detail.Clear()
	return m.login.Start()
}

func (m *Model) signOut() {
	m.ctrl.Unmount()
	m.inbox.Reset()
	m.user = nil
	if err := m.authn.SignOut(); err != nil {
		log.Printf("auth: signing out: %v", err)
	}
}

// executeCommand runs a command from the palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case command.Inbox:
		return m.enterScreen(ViewInbox)
	case command.Chat:
		return m.enterScreen(ViewChat)
	case command.Help:
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil
	case command.Settings:
		return m.openSettings()
	case command.Quit:
		m.ctrl.Unmount()
		return tea.Quit
	case command.SignOut:
		m.signOut()
		return m.showLogin()
	}

	if !m.ctrl.Mounted() {
		return nil
	}
	var cmd tea.Cmd
	switch c.Name {
	case command.Refresh:
		cmd = m.ctrl.Reload()
	case command.Limit:
		cmd = m.ctrl.SetLimit(c.N)
	case command.Mode:
		cmd = m.ctrl.SetViewMode(c.Mode)
	case command.Replies:
		cmd = m.ctrl.SetReplyCount(c.N)
	}
	m.inbox.Sync()
	return cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader(appTitle, m.userLabel())
	content := m.renderContent()
	notice := m.notice()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), notice.Text, notice.Kind == inbox.NoticeError)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewChecking:
		return "Checking session..."
	case ViewLogin:
		return m.login.View()
	case ViewInbox:
		return m.inbox.View()
	case ViewDetail:
		return m.detail.View()
	case ViewCompose:
		return m.compose.View()
	case ViewChat:
		return m.chat.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewSettings:
		return m.settings.View()
	default:
		return ""
	}
}

func (m Model) userLabel() string {
	if m.user == nil {
		return "signed out"
	}
	if m.user.Name == "" {
		return m.user.Email
	}
	return fmt.Sprintf("%s <%s>", m.user.Name, m.user.Email)
}

// notice returns the inbox notice shown in the status bar, if any.
func (m Model) notice() inbox.Notice {
	if m.currentView == ViewLogin || m.currentView == ViewChecking {
		return inbox.Notice{}
	}
	return m.ctrl.Notice()
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewChecking:
		return "ctrl+c quit"
	case ViewLogin:
		return "enter submit pasted URL | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | r reply | 1-3 use suggestion | j/k scroll"
	case ViewCompose, ViewSettings:
		return "tab next field | enter confirm | esc discard"
	case ViewChat:
		return "enter send | alt+enter newline | ctrl+l clear | tab inbox"
	default:
		return m.inbox.Status() + " | n/p page | v mode | 0-3 replies | ? help"
	}
}
