package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrStateMismatch is returned when the callback state differs from the
// one sent in the authorize URL.
var ErrStateMismatch = errors.New("oauth state mismatch")

const shutdownTimeout = 5 * time.Second

const (
	successPage = `<html><body><h2>Signed in</h2><p>You can close this window and return to the terminal.</p></body></html>`
	failurePage = `<html><body><h2>Sign-in failed</h2><p>%s</p></body></html>`
)

type callbackResult struct {
	redirect Redirect
	err      error
}

// CallbackServer receives the provider redirect on the loopback address.
// It accepts a single result.
type CallbackServer struct {
	state   string
	path    string
	ln      net.Listener
	srv     *http.Server
	results chan callbackResult
}

// Listen binds the host and port of redirectURL and prepares to serve its
// path. state is the value the callback must echo back.
func Listen(redirectURL, state string) (*CallbackServer, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redirect URL: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("redirect URL %q has no host", redirectURL)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	ln, err := net.Listen("tcp", u.Host)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", u.Host, err)
	}

	s := &CallbackServer{
		state:   state,
		path:    path,
		ln:      ln,
		results: make(chan callbackResult, 1),
	}
	s.srv = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Addr returns the bound address.
func (s *CallbackServer) Addr() string {
	return s.ln.Addr().String()
}

// URL returns the callback URL on the bound address.
func (s *CallbackServer) URL() string {
	return "http://" + s.Addr() + s.path
}

func (s *CallbackServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(s.path, s.handleCallback)
	return r
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var res callbackResult
	switch {
	case q.Get("error") != "":
		res.err = fmt.Errorf("provider denied access: %s", q.Get("error"))
	case s.state != "" && q.Get("state") != s.state:
		res.err = ErrStateMismatch
	case q.Get("code") == "":
		res.err = ErrNoCredentials
	default:
		res.redirect = Redirect{Code: q.Get("code"), State: q.Get("state")}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if res.err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprintf(w, failurePage, html.EscapeString(res.err.Error()))
	} else {
		_, _ = w.Write([]byte(successPage))
	}

	select {
	case s.results <- res:
	default:
		// A result was already delivered; later hits only get the page.
	}
}

// Wait serves until the first callback arrives or ctx is done, then shuts
// the server down. It returns the received redirect.
func (s *CallbackServer) Wait(ctx context.Context) (Redirect, error) {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.srv.Serve(s.ln)
	}()

	var res callbackResult
	select {
	case res = <-s.results:
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return Redirect{}, fmt.Errorf("callback server: %w", err)
		}
		return Redirect{}, errors.New("callback server stopped")
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("auth: shutting down callback server: %v", err)
	}
	<-serveErr

	return res.redirect, res.err
}

// Close releases the listener. It is safe to call after Wait.
func (s *CallbackServer) Close() error {
	if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
