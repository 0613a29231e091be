package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nhle/mailassist/internal/model"
)

// Request records one call made against the FakeService.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
}

// FakeService is an in-process stand-in for the email/AI backend. Page
// tokens are the decimal offset of the first email on the page.
type FakeService struct {
	Server *httptest.Server

	mu        sync.Mutex
	emails    []model.Email
	requests  []Request
	sessionID string
	user      model.User

	// Fail maps a route pattern (e.g. "DELETE /emails/{id}") to an HTTP
	// status to return instead of handling the call.
	Fail map[string]int

	// SummaryPrefix is prepended to each input text to form its summary.
	SummaryPrefix string
}

// NewFakeService starts a FakeService holding emails. It is closed when
// the test completes.
func NewFakeService(t *testing.T, emails []model.Email) *FakeService {
	t.Helper()

	f := &FakeService{
		emails:        append([]model.Email(nil), emails...),
		sessionID:     "sess-1",
		user:          model.User{Name: "Jane Doe", Email: "jane@example.com"},
		Fail:          make(map[string]int),
		SummaryPrefix: "summary: ",
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Get("/emails", f.guard("GET /emails", f.listEmails))
	r.Delete("/emails/{id}", f.guard("DELETE /emails/{id}", f.deleteEmail))
	r.Post("/emails/send", f.guard("POST /emails/send", f.ok))
	r.Post("/ai/summarize", f.guard("POST /ai/summarize", f.summarize))
	r.Post("/ai/replies", f.guard("POST /ai/replies", f.replies))
	r.Post("/chat", f.guard("POST /chat", f.chat))
	r.Post("/auth/google", f.guard("POST /auth/google", f.exchange))
	r.Post("/auth/me", f.guard("POST /auth/me", f.me))

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake service.
func (f *FakeService) URL() string {
	return f.Server.URL
}

// SessionID is the session issued by /auth/google and accepted by /auth/me.
func (f *FakeService) SessionID() string {
	return f.sessionID
}

// SetFail makes route answer with status until cleared with status 0.
func (f *FakeService) SetFail(route string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.Fail, route)
		return
	}
	f.Fail[route] = status
}

// Requests returns the calls made so far, optionally filtered by method
// and path.
func (f *FakeService) Requests(method, path string) []Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Request
	for _, r := range f.requests {
		if (method == "" || r.Method == method) && (path == "" || r.Path == path) {
			out = append(out, r)
		}
	}
	return out
}

// Emails returns the emails the service still holds.
func (f *FakeService) Emails() []model.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Email(nil), f.emails...)
}

func (f *FakeService) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  make(map[string]string),
		}
		for k := range r.URL.Query() {
			req.Query[k] = r.URL.Query().Get(k)
		}
		if r.Body != nil && r.ContentLength != 0 {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				req.Body = body
			}
		}
		r = r.WithContext(withBody(r.Context(), req.Body))

		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (f *FakeService) guard(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status := f.Fail[route]
		f.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, map[string]string{"detail": fmt.Sprintf("forced %d", status)})
			return
		}
		h(w, r)
	}
}

func (f *FakeService) listEmails(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 5
	}
	offset := 0
	if tok := r.URL.Query().Get("page_token"); tok != "" {
		offset, _ = strconv.Atoi(tok)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if offset > len(f.emails) {
		offset = len(f.emails)
	}
	end := offset + limit
	if end > len(f.emails) {
		end = len(f.emails)
	}

	page := model.EmailPage{Emails: append([]model.Email{}, f.emails[offset:end]...)}
	if end < len(f.emails) {
		next := strconv.Itoa(end)
		page.NextPageToken = &next
	}
	writeJSON(w, http.StatusOK, page)
}

func (f *FakeService) deleteEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, e := range f.emails {
		if e.ID == id {
			f.emails = append(f.emails[:i], f.emails[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "no such email"})
}

func (f *FakeService) ok(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (f *FakeService) summarize(w http.ResponseWriter, r *http.Request) {
	texts := stringSlice(bodyFrom(r.Context())["texts"])
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = f.SummaryPrefix + t
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": out})
}

func (f *FakeService) replies(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	texts := stringSlice(body["texts"])
	count := 0
	if n, ok := body["count"].(float64); ok {
		count = int(n)
	}
	out := make([][]string, len(texts))
	for i, t := range texts {
		for j := 0; j < count; j++ {
			out[i] = append(out[i], fmt.Sprintf("reply %d to %s", j+1, t))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"replies": out})
}

func (f *FakeService) chat(w http.ResponseWriter, r *http.Request) {
	msg, _ := bodyFrom(r.Context())["message"].(string)
	writeJSON(w, http.StatusOK, map[string]string{"reply": "echo: " + msg})
}

func (f *FakeService) exchange(w http.ResponseWriter, r *http.Request) {
	code, _ := bodyFrom(r.Context())["code"].(string)
	if code == "" || code == "bad-code" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid code"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": f.sessionID})
}

func (f *FakeService) me(w http.ResponseWriter, r *http.Request) {
	sid, _ := bodyFrom(r.Context())["session_id"].(string)
	if sid != f.sessionID {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "invalid session"})
		return
	}
	writeJSON(w, http.StatusOK, f.user)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func stringSlice(v any) []string {
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, _ := item.(string)
		out = append(out, s)
	}
	return out
}
