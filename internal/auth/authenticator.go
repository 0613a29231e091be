package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/session"
)

// ErrNoSession is returned when no session has been established.
var ErrNoSession = errors.New("not signed in")

// Service is the part of the remote service used for sign-in.
type Service interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	Me(ctx context.Context, sessionID string) (*model.User, error)
}

// Authenticator establishes and checks the persisted session.
type Authenticator struct {
	svc     Service
	session *session.Session
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(svc Service, sess *session.Session) *Authenticator {
	return &Authenticator{svc: svc, session: sess}
}

// Exchange trades an authorization code for a service session and stores
// its identifier.
func (a *Authenticator) Exchange(ctx context.Context, code string) error {
	id, err := a.svc.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging code: %w", err)
	}
	if err := a.session.SetSessionID(id); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// CaptureToken stores an access token delivered in a redirect fragment.
func (a *Authenticator) CaptureToken(token string) error {
	if err := a.session.SetToken(token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}
	return nil
}

// Complete applies a redirect: the token is stored if present, and the
// code, if present, is exchanged for a session.
func (a *Authenticator) Complete(ctx context.Context, r Redirect) error {
	if r.AccessToken != "" {
		if err := a.CaptureToken(r.AccessToken); err != nil {
			return err
		}
	}
	if r.Code != "" {
		return a.Exchange(ctx, r.Code)
	}
	return nil
}

// SignedIn reports whether a session identifier is stored.
func (a *Authenticator) SignedIn() bool {
	return a.session.SessionID() != ""
}

// CurrentUser loads the signed-in user. Any failure clears the stored
// session.
func (a *Authenticator) CurrentUser(ctx context.Context) (*model.User, error) {
	id := a.session.SessionID()
	if id == "" {
		a.clear()
		return nil, ErrNoSession
	}

	user, err := a.svc.Me(ctx, id)
	if err != nil {
		a.clear()
		return nil, fmt.Errorf("loading current user: %w", err)
	}
	return user, nil
}

// SignOut forgets the stored session and token.
func (a *Authenticator) SignOut() error {
	return a.session.Clear()
}

func (a *Authenticator) clear() {
	if err := a.session.Clear(); err != nil {
		log.Printf("auth: clearing session: %v", err)
	}
}
