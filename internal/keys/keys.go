package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Screens
	SwitchScreen key.Binding
	Command      key.Binding
	Help         key.Binding

	// Paging
	NextPage  key.Binding
	PrevPage  key.Binding
	Refresh   key.Binding
	CycleSize key.Binding

	// AI display
	CycleMode  key.Binding
	ReplyCount key.Binding

	// Actions
	Delete       key.Binding
	Reply        key.Binding
	ReplySuggest key.Binding
	UseReply     key.Binding

	// Chat
	Send      key.Binding
	ClearChat key.Binding

	// Session
	Settings key.Binding
	SignOut  key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open email"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		SwitchScreen: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "inbox/chat"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "previous page"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "refresh"),
		),
		CycleSize: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "page size"),
		),
		CycleMode: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "preview/AI preview/AI summary"),
		),
		ReplyCount: key.NewBinding(
			key.WithKeys("0", "1", "2", "3"),
			key.WithHelp("0-3", "suggested replies"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reply"),
		),
		ReplySuggest: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reply with first suggestion"),
		),
		UseReply: key.NewBinding(
			key.WithKeys("1", "2", "3"),
			key.WithHelp("1-3", "reply with suggestion"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		ClearChat: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear chat"),
		),
		Settings: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "settings"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sign out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.NextPage, k.PrevPage,
		k.CycleMode, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.NextPage, k.PrevPage, k.CycleSize, k.Refresh},
		{k.CycleMode, k.ReplyCount, k.UseReply},
		{k.Delete, k.Reply, k.ReplySuggest},
		{k.SwitchScreen, k.Command, k.Help, k.ClearChat, k.Settings, k.SignOut},
	}
}
