package inbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/remote"
)

type staticSession string

func (s staticSession) SessionID() string { return string(s) }

type listCall struct {
	limit int
	token *string
}

type replyCall struct {
	texts []string
	count int
}

type fakeService struct {
	mu sync.Mutex

	// pages maps a token ("" for the first page) to the page returned.
	pages   map[string]*model.EmailPage
	listErr error

	listCalls      []listCall
	summarizeCalls [][]string
	replyCalls     []replyCall
	deleted        []string
	sent           []remote.SendRequest

	summarizeErr error
	shortResults bool
	repliesErr   error
	deleteErr    error
	sendErr      error
}

func (f *fakeService) ListEmails(_ context.Context, _ string, limit int, token *string) (*model.EmailPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, listCall{limit: limit, token: token})
	if f.listErr != nil {
		return nil, f.listErr
	}
	key := ""
	if token != nil {
		key = *token
	}
	page, ok := f.pages[key]
	if !ok {
		return &model.EmailPage{}, nil
	}
	cp := *page
	cp.Emails = append([]model.Email(nil), page.Emails...)
	return &cp, nil
}

func (f *fakeService) DeleteEmail(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeService) SendEmail(_ context.Context, req remote.SendRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, req)
	return f.sendErr
}

func (f *fakeService) Summarize(_ context.Context, texts []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summarizeCalls = append(f.summarizeCalls, texts)
	if f.summarizeErr != nil {
		return nil, f.summarizeErr
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = "sum:" + t
	}
	if f.shortResults && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeService) SuggestReplies(_ context.Context, texts []string, count int) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replyCalls = append(f.replyCalls, replyCall{texts: texts, count: count})
	if f.repliesErr != nil {
		return nil, f.repliesErr
	}
	out := make([][]string, len(texts))
	for i, t := range texts {
		for n := 1; n <= count; n++ {
			out[i] = append(out[i], fmt.Sprintf("r%d:%s", n, t))
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func emails(ids ...string) []model.Email {
	out := make([]model.Email, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Email{
			ID:      id,
			Subject: "Subject " + id,
			From:    "Sender <" + id + "@example.com>",
			Body:    "body " + id,
		})
	}
	return out
}

func threePages() *fakeService {
	return &fakeService{pages: map[string]*model.EmailPage{
		"":   {Emails: emails("a1", "a2"), NextPageToken: strPtr("t1")},
		"t1": {Emails: emails("b1", "b2"), NextPageToken: strPtr("t2")},
		"t2": {Emails: emails("c1")},
	}}
}

// run executes cmd and feeds its message back into c.
func run(t *testing.T, c *Controller, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	return c.Update(cmd())
}

func mounted(t *testing.T, svc *fakeService) *Controller {
	t.Helper()
	c := New(svc, staticSession("sess-1"), 5)
	run(t, c, c.Mount())
	return c
}

func ids(list []model.Email) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestMountLoadsFirstPage(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	require.Len(t, svc.listCalls, 1)
	assert.Nil(t, svc.listCalls[0].token)
	assert.Equal(t, 5, svc.listCalls[0].limit)
	assert.Equal(t, []string{"a1", "a2"}, ids(c.Emails()))
	assert.Equal(t, 0, c.PageIndex())
	assert.True(t, c.HasNext())
	assert.False(t, c.HasPrev())
	assert.False(t, c.Loading())
}

func TestNewFallsBackToSupportedLimit(t *testing.T) {
	c := New(&fakeService{}, staticSession("s"), 7)
	assert.Equal(t, 5, c.Limit())
}

func TestUnmountedControllerIssuesNothing(t *testing.T) {
	c := New(threePages(), staticSession("s"), 5)
	assert.Nil(t, c.FetchPage(nil))
	assert.Nil(t, c.SetLimit(10))
	assert.Nil(t, c.DeleteEmail("a1"))
}

func TestAdvanceAndRetreat(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	run(t, c, c.AdvancePage())
	assert.Equal(t, 1, c.PageIndex())
	assert.Equal(t, []string{"b1", "b2"}, ids(c.Emails()))
	require.NotNil(t, svc.listCalls[1].token)
	assert.Equal(t, "t1", *svc.listCalls[1].token)

	run(t, c, c.AdvancePage())
	assert.Equal(t, 2, c.PageIndex())
	assert.Equal(t, []string{"c1"}, ids(c.Emails()))
	assert.False(t, c.HasNext())

	assert.Nil(t, c.AdvancePage(), "no next token")

	run(t, c, c.RetreatPage())
	assert.Equal(t, 1, c.PageIndex())
	assert.Equal(t, "t1", *svc.listCalls[3].token)

	run(t, c, c.RetreatPage())
	assert.Equal(t, 0, c.PageIndex())
	assert.Nil(t, svc.listCalls[4].token)

	assert.Nil(t, c.RetreatPage(), "retreat on page 0")
	assert.Equal(t, 0, c.PageIndex())
	assert.Len(t, svc.listCalls, 5)
}

func TestAdvanceThenRetreatRequestsPreviousToken(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)
	run(t, c, c.AdvancePage())

	before := c.cursors.Current()
	c.AdvancePage()
	// Retreat is allowed while the advance is still loading.
	c.RetreatPage()
	assert.Equal(t, before, c.cursors.Current())
	assert.Equal(t, 1, c.PageIndex())
}

func TestAdvanceWhileLoadingIsIgnored(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	cmd := c.AdvancePage()
	require.NotNil(t, cmd)
	assert.True(t, c.Loading())
	assert.Nil(t, c.AdvancePage())
	assert.Equal(t, 1, c.PageIndex())

	c.Update(cmd())
	assert.False(t, c.Loading())
}

func TestRevisitedPageKeepsOriginalToken(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	run(t, c, c.AdvancePage())
	run(t, c, c.RetreatPage())

	// The service now announces a different token for page 1.
	svc.pages[""].NextPageToken = strPtr("other")
	run(t, c, c.FetchPage(nil))
	run(t, c, c.AdvancePage())

	last := svc.listCalls[len(svc.listCalls)-1]
	require.NotNil(t, last.token)
	assert.Equal(t, "t1", *last.token)
	assert.Equal(t, 1, c.cursors.Len())
}

func TestSetLimitResetsToFirstPage(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)
	run(t, c, c.AdvancePage())

	run(t, c, c.SetLimit(10))
	last := svc.listCalls[len(svc.listCalls)-1]
	assert.Nil(t, last.token)
	assert.Equal(t, 10, last.limit)
	assert.Equal(t, 10, c.Limit())
	assert.Equal(t, 0, c.PageIndex())
	assert.Equal(t, 0, c.cursors.Len())

	assert.Nil(t, c.SetLimit(15), "unsupported limit")
	assert.Equal(t, 10, c.Limit())
}

func TestNextLimitCycles(t *testing.T) {
	c := mounted(t, threePages())
	assert.Equal(t, 10, c.NextLimit())
	run(t, c, c.SetLimit(20))
	assert.Equal(t, 5, c.NextLimit())
}

func TestPageLoadResetsModeAndReplyCount(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	run(t, c, c.SetViewMode(model.ViewAISummary))
	run(t, c, c.SetReplyCount(2))
	require.Equal(t, model.ViewAISummary, c.ViewMode())
	require.Equal(t, 2, c.ReplyCount())

	run(t, c, c.AdvancePage())
	assert.Equal(t, model.ViewPreview, c.ViewMode())
	assert.Equal(t, 0, c.ReplyCount())
}

func TestPageLoadFailureKeepsState(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)
	run(t, c, c.SetViewMode(model.ViewAIPreview))

	svc.listErr = errors.New("boom")
	cmd := run(t, c, c.AdvancePage())

	assert.Nil(t, cmd, "plain failures are not auth failures")
	assert.Equal(t, []string{"a1", "a2"}, ids(c.Emails()))
	assert.Equal(t, 0, c.PageIndex())
	assert.Equal(t, model.ViewAIPreview, c.ViewMode())
	assert.False(t, c.Loading())
	assert.Equal(t, NoticeError, c.Notice().Kind)

	c.ClearNotice()
	assert.Equal(t, NoticeNone, c.Notice().Kind)
}

func TestSuccessfulReloadClearsErrorNotice(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	svc.listErr = errors.New("boom")
	run(t, c, c.Reload())
	require.Equal(t, Notice{Kind: NoticeError, Text: "Failed to load emails"}, c.Notice())

	svc.listErr = nil
	run(t, c, c.Reload())
	assert.Equal(t, []string{"a1", "a2"}, ids(c.Emails()))
	assert.Equal(t, Notice{}, c.Notice())
}

func TestSetViewModeSummarizesMissingOnly(t *testing.T) {
	svc := threePages()
	summary := "kept"
	svc.pages[""].Emails[0].Summary = &summary
	c := mounted(t, svc)

	assert.Nil(t, c.SetViewMode(model.ViewPreview))
	assert.Empty(t, svc.summarizeCalls)

	cmd := c.SetViewMode(model.ViewAIPreview)
	assert.True(t, c.Summarizing())
	run(t, c, cmd)
	assert.False(t, c.Summarizing())

	require.Len(t, svc.summarizeCalls, 1)
	assert.Equal(t, []string{"body a2"}, svc.summarizeCalls[0])
	assert.Equal(t, "kept", c.Emails()[0].SummaryText())
	assert.Equal(t, "sum:body a2", c.Emails()[1].SummaryText())

	// Everything is summarized now; switching modes issues nothing.
	assert.Nil(t, c.SetViewMode(model.ViewAISummary))
	assert.Len(t, svc.summarizeCalls, 1)
}

func TestSummaryIsNeverOverwritten(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	first := c.SetViewMode(model.ViewAIPreview)
	second := c.SetViewMode(model.ViewAISummary)
	require.NotNil(t, first)
	require.NotNil(t, second)

	c.Update(first())
	got := c.Emails()[0].SummaryText()

	c.Update(SummariesLoadedMsg{epoch: c.epoch, IDs: []string{"a1", "a2"}, Summaries: []string{"x", "y"}})
	c.Update(second())
	assert.Equal(t, got, c.Emails()[0].SummaryText())
	assert.False(t, c.Summarizing())
}

func TestSummaryFailuresAreQuiet(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	svc.summarizeErr = errors.New("ai down")
	run(t, c, c.SetViewMode(model.ViewAIPreview))
	assert.False(t, c.Emails()[0].HasSummary())
	assert.Equal(t, NoticeNone, c.Notice().Kind)
	assert.Equal(t, model.ViewAIPreview, c.ViewMode())

	svc.summarizeErr = nil
	svc.shortResults = true
	run(t, c, c.SetViewMode(model.ViewAISummary))
	assert.False(t, c.Emails()[0].HasSummary(), "mismatched batch is discarded")
}

func TestSetReplyCountRequestsExactCount(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	assert.Nil(t, c.SetReplyCount(0))
	assert.Nil(t, c.SetReplyCount(4))
	assert.Equal(t, 0, c.ReplyCount())

	run(t, c, c.SetReplyCount(2))
	require.Len(t, svc.replyCalls, 1)
	assert.Equal(t, 2, svc.replyCalls[0].count)
	assert.Equal(t, []string{"body a1", "body a2"}, svc.replyCalls[0].texts)
	assert.Equal(t, []string{"r1:body a1", "r2:body a1"}, c.Emails()[0].SuggestedReplies)

	// Two stored replies satisfy a count of one.
	assert.Nil(t, c.SetReplyCount(1))

	run(t, c, c.SetReplyCount(3))
	assert.Equal(t, 3, svc.replyCalls[1].count)
	assert.Len(t, c.Emails()[0].SuggestedReplies, 3)

	// Hiding replies keeps the stored ones.
	assert.Nil(t, c.SetReplyCount(0))
	assert.Len(t, c.Emails()[0].SuggestedReplies, 3)
}

func TestStaleSmallerRepliesDoNotShrink(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	two := c.SetReplyCount(2)
	three := c.SetReplyCount(3)
	require.NotNil(t, two)
	require.NotNil(t, three)

	c.Update(three())
	c.Update(two())

	for _, e := range c.Emails() {
		assert.Len(t, e.SuggestedReplies, 3, e.ID)
	}
	assert.Equal(t, 3, c.ReplyCount())
	assert.False(t, c.Suggesting())
}

func TestDeleteEmail(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	cmd := c.DeleteEmail("a1")
	require.NotNil(t, cmd)
	assert.True(t, c.Deleting("a1"))
	assert.Nil(t, c.DeleteEmail("a1"), "already in flight")
	assert.Nil(t, c.DeleteEmail("zz"), "unknown id")

	c.Update(cmd())
	assert.Equal(t, []string{"a1"}, svc.deleted)
	assert.Equal(t, []string{"a2"}, ids(c.Emails()))
	assert.False(t, c.Deleting("a1"))
	assert.Equal(t, NoticeInfo, c.Notice().Kind)
}

func TestDeleteEmailFailureKeepsEntry(t *testing.T) {
	svc := threePages()
	svc.deleteErr = &remote.StatusError{Code: 500, Method: "DELETE", Path: "/emails/a1"}
	c := mounted(t, svc)

	run(t, c, c.DeleteEmail("a1"))
	assert.Equal(t, []string{"a1", "a2"}, ids(c.Emails()))
	assert.Equal(t, Notice{Kind: NoticeError, Text: "Failed to delete email"}, c.Notice())
}

func TestAuthErrorReportsAuthFailed(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	svc.listErr = &remote.AuthError{Path: "/emails", Message: "expired"}
	next := run(t, c, c.FetchPage(nil))
	require.NotNil(t, next)

	msg, ok := next().(AuthFailedMsg)
	require.True(t, ok)
	assert.True(t, remote.IsAuthError(msg.Err))
}

func TestUnmountDiscardsLateResults(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	summaries := c.SetViewMode(model.ViewAIPreview)
	page := c.AdvancePage()
	del := c.DeleteEmail("a2")
	c.Unmount()

	assert.Nil(t, c.Update(summaries()))
	assert.Nil(t, c.Update(page()))
	assert.Nil(t, c.Update(del()))
	assert.Empty(t, c.Emails())
	assert.False(t, c.Mounted())

	// A remount does not accept results from the previous mount either.
	run(t, c, c.Mount())
	c.Update(page())
	assert.Equal(t, []string{"a1", "a2"}, ids(c.Emails()))
	assert.Equal(t, 0, c.PageIndex())
}

func TestComposeAndSend(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)

	d, ok := c.Compose("a1", "Sounds good")
	require.True(t, ok)
	assert.Equal(t, model.Draft{To: "a1@example.com", Subject: "Re: Subject a1", Body: "Sounds good"}, d)

	_, ok = c.Compose("missing", "")
	assert.False(t, ok)

	d.Body = "Sounds good, thanks"
	cmd := c.SendDraft(d)
	require.NotNil(t, cmd)
	assert.True(t, c.Sending())
	assert.Nil(t, c.SendDraft(d), "send already in flight")

	c.Update(cmd())
	require.Len(t, svc.sent, 1)
	assert.Equal(t, remote.SendRequest{
		SessionID: "sess-1",
		To:        "a1@example.com",
		Subject:   "Re: Subject a1",
		Body:      "Sounds good, thanks",
	}, svc.sent[0])
	_, open := c.Draft()
	assert.False(t, open)
	assert.Equal(t, Notice{Kind: NoticeInfo, Text: "Reply sent"}, c.Notice())
}

func TestSendFailureKeepsDraft(t *testing.T) {
	svc := threePages()
	svc.sendErr = errors.New("smtp down")
	c := mounted(t, svc)

	d, _ := c.Compose("a1", "")
	run(t, c, c.SendDraft(d))

	kept, open := c.Draft()
	require.True(t, open)
	assert.Equal(t, d, kept)
	assert.False(t, c.Sending())
	assert.Equal(t, NoticeError, c.Notice().Kind)

	c.CancelDraft()
	_, open = c.Draft()
	assert.False(t, open)
}

func TestCycleViewMode(t *testing.T) {
	c := mounted(t, threePages())
	var got []model.ViewMode
	for range model.ViewModes {
		if cmd := c.CycleViewMode(); cmd != nil {
			c.Update(cmd())
		}
		got = append(got, c.ViewMode())
	}
	assert.Equal(t, []model.ViewMode{model.ViewAIPreview, model.ViewAISummary, model.ViewPreview}, got)
}

func TestNeedsPredicates(t *testing.T) {
	s := "x"
	withSummary := model.Email{Summary: &s}
	bare := model.Email{}

	assert.False(t, NeedsSummary(bare, model.ViewPreview))
	assert.True(t, NeedsSummary(bare, model.ViewAIPreview))
	assert.True(t, NeedsSummary(bare, model.ViewAISummary))
	assert.False(t, NeedsSummary(withSummary, model.ViewAISummary))

	two := model.Email{SuggestedReplies: []string{"a", "b"}}
	assert.False(t, NeedsReplies(bare, 0))
	assert.True(t, NeedsReplies(bare, 1))
	assert.False(t, NeedsReplies(two, 2))
	assert.True(t, NeedsReplies(two, 3))
}

func TestReloadFetchesCurrentPage(t *testing.T) {
	svc := threePages()
	c := mounted(t, svc)
	run(t, c, c.AdvancePage())

	cmd := c.Reload()
	require.NotNil(t, cmd)
	msg := cmd()
	assert.True(t, IsResult(msg))
	c.Update(msg)

	last := svc.listCalls[len(svc.listCalls)-1]
	require.NotNil(t, last.token)
	assert.Equal(t, "t1", *last.token)
	assert.Equal(t, 1, c.PageIndex())
	assert.False(t, IsResult(AuthFailedMsg{}))
}
