package app

import (
	"context"
	"errors"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailassist/internal/auth"
	"github.com/nhle/mailassist/internal/model"
)

const authCheckTimeout = 30 * time.Second

// authCheckedMsg carries the outcome of the startup session check. A nil
// user means the sign-in screen should be shown.
type authCheckedMsg struct {
	user *model.User
}

// checkAuth applies a pending redirect, if any, and then loads the
// signed-in user.
func (m Model) checkAuth(redirect string) tea.Cmd {
	a := m.authn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authCheckTimeout)
		defer cancel()

		if redirect != "" {
			r, err := auth.ParseRedirect(redirect)
			if err == nil {
				err = a.Complete(ctx, r)
			}
			if err != nil {
				log.Printf("auth: applying redirect: %v", err)
			}
		}

		user, err := a.CurrentUser(ctx)
		if err != nil {
			if !errors.Is(err, auth.ErrNoSession) {
				log.Printf("auth: %v", err)
			}
			return authCheckedMsg{}
		}
		return authCheckedMsg{user: user}
	}
}
