package inbox

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailassist/internal/model"
)

// PageLoadedMsg carries the result of a page fetch.
type PageLoadedMsg struct {
	epoch uint64
	index int
	Token *string
	Page  *model.EmailPage
	Err   error
}

// SummariesLoadedMsg carries summaries for IDs, in the same order.
type SummariesLoadedMsg struct {
	epoch     uint64
	IDs       []string
	Summaries []string
	Err       error
}

// RepliesLoadedMsg carries suggested replies for IDs, in the same order.
type RepliesLoadedMsg struct {
	epoch   uint64
	IDs     []string
	Count   int
	Replies [][]string
	Err     error
}

// EmailDeletedMsg reports the outcome of a removal.
type EmailDeletedMsg struct {
	epoch uint64
	ID    string
	Err   error
}

// DraftSentMsg reports the outcome of sending a reply.
type DraftSentMsg struct {
	epoch uint64
	Draft model.Draft
	Err   error
}

// AuthFailedMsg is emitted when the service rejects the session. The
// receiver should clear the session and return to sign-in.
type AuthFailedMsg struct {
	Err error
}

// IsResult reports whether msg is a result the Controller merges.
func IsResult(msg tea.Msg) bool {
	switch msg.(type) {
	case PageLoadedMsg, SummariesLoadedMsg, RepliesLoadedMsg, EmailDeletedMsg, DraftSentMsg:
		return true
	}
	return false
}
