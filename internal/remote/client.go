package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nhle/mailassist/internal/model"
)

// aiBurst lets a view-mode switch and a reply-count change go out
// back to back before pacing kicks in.
const aiBurst = 3

// Client is a thin HTTP client for the email/AI backend. It handles JSON
// (de)serialization and maps error statuses. Failed calls are never
// retried; the caller surfaces them to the user.
type Client struct {
	baseURL    string
	httpClient *http.Client
	aiLimiter  *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAIRate paces calls to the /ai endpoints to perMinute requests.
// Zero or negative disables pacing.
func WithAIRate(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.aiLimiter = nil
			return
		}
		c.aiLimiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60), aiBurst)
	}
}

// NewClient creates a client for the service rooted at baseURL
// (e.g., http://localhost:8000).
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a Client from the service section of the config.
func NewClientFromConfig(cfg model.ServiceConfig) *Client {
	return NewClient(
		cfg.BaseURL,
		time.Duration(cfg.TimeoutSec)*time.Second,
		WithAIRate(cfg.AIRequestsPerMinute),
	)
}

// ListEmails fetches one page of emails. A nil pageToken requests the
// first page.
func (c *Client) ListEmails(
	ctx context.Context,
	sessionID string,
	limit int,
	pageToken *string,
) (*model.EmailPage, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)
	q.Set("limit", strconv.Itoa(limit))
	if pageToken != nil {
		q.Set("page_token", *pageToken)
	}

	var page model.EmailPage
	if err := c.do(ctx, http.MethodGet, "/emails?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	// Treat an empty token as the last page.
	if page.NextPageToken != nil && *page.NextPageToken == "" {
		page.NextPageToken = nil
	}
	return &page, nil
}

// DeleteEmail removes a message on the provider side.
func (c *Client) DeleteEmail(ctx context.Context, sessionID, id string) error {
	q := url.Values{}
	q.Set("session_id", sessionID)
	path := "/emails/" + url.PathEscape(id) + "?" + q.Encode()
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// SendEmail sends a message through the user's mailbox.
func (c *Client) SendEmail(ctx context.Context, req SendRequest) error {
	return c.do(ctx, http.MethodPost, "/emails/send", req, nil)
}

// Summarize returns one summary per input text, in input order.
func (c *Client) Summarize(ctx context.Context, texts []string) ([]string, error) {
	if err := c.waitAI(ctx); err != nil {
		return nil, err
	}

	var resp summarizeResponse
	err := c.do(ctx, http.MethodPost, "/ai/summarize", summarizeRequest{Texts: texts}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Summaries) != len(texts) {
		return nil, fmt.Errorf(
			"summarize: got %d summaries for %d texts: %w",
			len(resp.Summaries), len(texts), ErrMismatchedResults,
		)
	}
	return resp.Summaries, nil
}

// SuggestReplies returns up to count reply suggestions per input text,
// in input order.
func (c *Client) SuggestReplies(
	ctx context.Context,
	texts []string,
	count int,
) ([][]string, error) {
	if err := c.waitAI(ctx); err != nil {
		return nil, err
	}

	var resp repliesResponse
	body := repliesRequest{Texts: texts, Count: count}
	if err := c.do(ctx, http.MethodPost, "/ai/replies", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Replies) != len(texts) {
		return nil, fmt.Errorf(
			"replies: got %d results for %d texts: %w",
			len(resp.Replies), len(texts), ErrMismatchedResults,
		)
	}
	for i := range resp.Replies {
		if len(resp.Replies[i]) > count {
			resp.Replies[i] = resp.Replies[i][:count]
		}
	}
	return resp.Replies, nil
}

// Chat sends a free-form message to the assistant.
func (c *Client) Chat(ctx context.Context, message, token string) (string, error) {
	var resp chatResponse
	err := c.do(ctx, http.MethodPost, "/chat", chatRequest{Message: message, Token: token}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// ExchangeCode trades an OAuth authorization code for a server session.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	var resp exchangeResponse
	if err := c.do(ctx, http.MethodPost, "/auth/google", exchangeRequest{Code: code}, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", &AuthError{Path: "/auth/google", Message: "no session_id in response"}
	}
	return resp.SessionID, nil
}

// Me returns the user that owns the session.
func (c *Client) Me(ctx context.Context, sessionID string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/auth/me", meRequest{SessionID: sessionID}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// waitAI blocks until the AI limiter admits another request.
func (c *Client) waitAI(ctx context.Context) error {
	if c.aiLimiter == nil {
		return nil
	}
	if err := c.aiLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for AI rate limit: %w", err)
	}
	return nil
}

// do builds the request, executes it once, and decodes the JSON response.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Keep query strings (session ids) out of error messages.
	route := path
	if i := strings.IndexByte(route, '?'); i >= 0 {
		route = route[:i]
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden {
		return &AuthError{Path: route, Message: errorDetail(respBody, resp.Status)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Code:   resp.StatusCode,
			Method: method,
			Path:   route,
			Body:   errorDetail(respBody, resp.Status),
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, route, err)
	}

	return nil
}

// maxErrorDetail caps, in runes, how much of a plain error body is kept.
const maxErrorDetail = 200

// errorDetail extracts a readable message from an error body, falling
// back to the HTTP status text.
func errorDetail(body []byte, status string) string {
	var er errorResponse
	if json.Unmarshal(body, &er) == nil && er.Detail != nil {
		if s, ok := er.Detail.(string); ok {
			return s
		}
		return fmt.Sprint(er.Detail)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return status
	}
	if r := []rune(text); len(r) > maxErrorDetail {
		text = string(r[:maxErrorDetail])
	}
	return text
}
