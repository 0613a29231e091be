package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/remote"
	"github.com/nhle/mailassist/tests/testutil"
)

func newClient(t *testing.T, f *testutil.FakeService) *remote.Client {
	t.Helper()
	return remote.NewClient(f.URL(), 5*time.Second)
}

func TestListEmails_FirstPageOmitsToken(t *testing.T) {
	f := testutil.NewFakeService(t, testutil.SampleEmails(7))
	c := newClient(t, f)

	page, err := c.ListEmails(context.Background(), "sess-1", 5, nil)
	require.NoError(t, err)

	assert.Len(t, page.Emails, 5)
	require.NotNil(t, page.NextPageToken)
	assert.Equal(t, "5", *page.NextPageToken)

	reqs := f.Requests(http.MethodGet, "/emails")
	require.Len(t, reqs, 1)
	assert.Equal(t, "sess-1", reqs[0].Query["session_id"])
	assert.Equal(t, "5", reqs[0].Query["limit"])
	_, hasToken := reqs[0].Query["page_token"]
	assert.False(t, hasToken)
}

func TestListEmails_LastPageHasNilToken(t *testing.T) {
	f := testutil.NewFakeService(t, testutil.SampleEmails(7))
	c := newClient(t, f)

	tok := "5"
	page, err := c.ListEmails(context.Background(), "sess-1", 5, &tok)
	require.NoError(t, err)

	assert.Len(t, page.Emails, 2)
	assert.Nil(t, page.NextPageToken)
	assert.Equal(t, "5", f.Requests(http.MethodGet, "/emails")[0].Query["page_token"])
}

func TestListEmails_EmptyTokenMeansLastPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"emails":[],"nextPageToken":""}`))
	}))
	defer srv.Close()

	page, err := remote.NewClient(srv.URL, time.Second).ListEmails(context.Background(), "s", 5, nil)
	require.NoError(t, err)
	assert.Nil(t, page.NextPageToken)
}

func TestDeleteEmail(t *testing.T) {
	f := testutil.NewFakeService(t, testutil.SampleEmails(3))
	c := newClient(t, f)

	require.NoError(t, c.DeleteEmail(context.Background(), "sess-1", "m2"))

	reqs := f.Requests(http.MethodDelete, "/emails/m2")
	require.Len(t, reqs, 1)
	assert.Equal(t, "sess-1", reqs[0].Query["session_id"])
	assert.Len(t, f.Emails(), 2)
}

func TestDeleteEmail_NotFoundIsStatusError(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := newClient(t, f)

	err := c.DeleteEmail(context.Background(), "sess-1", "missing")
	require.Error(t, err)

	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Equal(t, "/emails/missing", se.Path)
	assert.Equal(t, "no such email", se.Body)
	assert.NotContains(t, err.Error(), "session_id")
}

func TestSendEmail(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := newClient(t, f)

	err := c.SendEmail(context.Background(), remote.SendRequest{
		SessionID: "sess-1",
		To:        "bob@example.com",
		Subject:   "Re: Hi",
		Body:      "Thanks!",
	})
	require.NoError(t, err)

	reqs := f.Requests(http.MethodPost, "/emails/send")
	require.Len(t, reqs, 1)
	assert.Equal(t, "bob@example.com", reqs[0].Body["to"])
	assert.Equal(t, "Re: Hi", reqs[0].Body["subject"])
	assert.Equal(t, "sess-1", reqs[0].Body["session_id"])
}

func TestSummarize_PositionalResults(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := newClient(t, f)

	out, err := c.Summarize(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"summary: a", "summary: b"}, out)
}

func TestSummarize_MismatchedCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"summaries":["only one"]}`))
	}))
	defer srv.Close()

	_, err := remote.NewClient(srv.URL, time.Second).Summarize(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, remote.ErrMismatchedResults)
}

func TestSuggestReplies_TruncatesToCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"replies":[["1","2","3"]]}`))
	}))
	defer srv.Close()

	out, err := remote.NewClient(srv.URL, time.Second).SuggestReplies(context.Background(), []string{"a"}, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "2"}}, out)
}

func TestSuggestReplies_SendsCount(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := newClient(t, f)

	out, err := c.SuggestReplies(context.Background(), []string{"x"}, 3)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0], 3)

	reqs := f.Requests(http.MethodPost, "/ai/replies")
	require.Len(t, reqs, 1)
	assert.Equal(t, float64(3), reqs[0].Body["count"])
}

func TestChat(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := newClient(t, f)

	reply, err := c.Chat(context.Background(), "show emails", "tok")
	require.NoError(t, err)
	assert.Equal(t, "echo: show emails", reply)
	assert.Equal(t, "tok", f.Requests(http.MethodPost, "/chat")[0].Body["token"])
}

func TestExchangeCodeAndMe(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := newClient(t, f)

	sid, err := c.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, f.SessionID(), sid)

	user, err := c.Me(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestUnauthorizedIsAuthError(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := newClient(t, f)

	_, err := c.ExchangeCode(context.Background(), "bad-code")
	assert.True(t, remote.IsAuthError(err))

	_, err = c.Me(context.Background(), "stale")
	assert.True(t, remote.IsAuthError(err))

	f.SetFail("GET /emails", http.StatusForbidden)
	_, err = c.ListEmails(context.Background(), "sess-1", 5, nil)
	assert.True(t, remote.IsAuthError(err))
}

func TestServerErrorIsNotAuthError(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	f.SetFail("POST /ai/summarize", http.StatusInternalServerError)

	_, err := newClient(t, f).Summarize(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.False(t, remote.IsAuthError(err))

	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestStatusErrorBodyIsCutOnRunes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("x" + strings.Repeat("é", 300)))
	}))
	defer srv.Close()

	err := remote.NewClient(srv.URL, 5*time.Second).DeleteEmail(context.Background(), "sess-1", "m1")

	var se *remote.StatusError
	require.ErrorAs(t, err, &se)
	assert.True(t, utf8.ValidString(se.Body))
	assert.Equal(t, 200, utf8.RuneCountInString(se.Body))
}

func TestFailedCallsAreNotRetried(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	f.SetFail("POST /emails/send", http.StatusServiceUnavailable)

	err := newClient(t, f).SendEmail(context.Background(), remote.SendRequest{SessionID: "s"})
	require.Error(t, err)
	assert.Len(t, f.Requests(http.MethodPost, "/emails/send"), 1)
}

func TestAIRateLimit_RespectsContext(t *testing.T) {
	f := testutil.NewFakeService(t, nil)
	c := remote.NewClient(f.URL(), time.Second, remote.WithAIRate(1))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.Summarize(ctx, []string{"a"})
		require.NoError(t, err)
	}

	// Burst exhausted; at one request per minute the next call cannot
	// be admitted before the deadline.
	ctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := c.Summarize(ctx, []string{"a"})
	assert.Error(t, err)
	assert.Len(t, f.Requests(http.MethodPost, "/ai/summarize"), 3)
}
