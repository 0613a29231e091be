package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoCredentials is returned when a redirect carries neither a code nor
// an access token.
var ErrNoCredentials = errors.New("redirect has no code or access token")

// Redirect is what the provider hands back on the redirect URL.
type Redirect struct {
	Code        string
	AccessToken string
	State       string
}

// ParseRedirect reads a pasted redirect URL. The authorization code comes
// from the query string and an access token, if any, from the fragment.
func ParseRedirect(rawURL string) (Redirect, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Redirect{}, fmt.Errorf("parsing redirect URL: %w", err)
	}

	q := u.Query()
	if msg := q.Get("error"); msg != "" {
		return Redirect{}, fmt.Errorf("provider denied access: %s", msg)
	}
	frag, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return Redirect{}, fmt.Errorf("parsing redirect fragment: %w", err)
	}

	r := Redirect{
		Code:        q.Get("code"),
		AccessToken: frag.Get("access_token"),
		State:       q.Get("state"),
	}
	if r.State == "" {
		r.State = frag.Get("state")
	}
	if r.Code == "" && r.AccessToken == "" {
		return Redirect{}, ErrNoCredentials
	}
	return r, nil
}
