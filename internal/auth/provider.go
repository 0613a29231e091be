// Package auth signs the user in through the mail provider's OAuth consent
// screen and turns the resulting code or token into a service session.
package auth

import (
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nhle/mailassist/internal/model"
)

// Provider builds authorize URLs for the Google consent screen.
type Provider struct {
	conf *oauth2.Config
}

// NewProvider creates a Provider from the auth configuration.
func NewProvider(cfg model.AuthConfig) *Provider {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = model.DefaultScopes
	}
	return &Provider{conf: &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURL,
		Scopes:      scopes,
		Endpoint:    google.Endpoint,
	}}
}

// AuthURL returns the URL to open in a browser along with the random
// state it carries.
func (p *Provider) AuthURL() (authURL, state string) {
	state = uuid.NewString()
	authURL = p.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return authURL, state
}

// RedirectURL returns the configured redirect target.
func (p *Provider) RedirectURL() string {
	return p.conf.RedirectURL
}

// Configured reports whether a client ID is set.
func (p *Provider) Configured() bool {
	return p.conf.ClientID != ""
}
