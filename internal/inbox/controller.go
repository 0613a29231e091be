// Package inbox holds the state machine behind the inbox screen: paging,
// AI backfill of summaries and suggested replies, deletion and replies.
//
// Every operation returns a tea.Cmd that performs the service call off the
// UI goroutine; the result comes back as a message that Update merges.
package inbox

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/remote"
)

// requestTimeout bounds a single service call made by the controller.
const requestTimeout = 90 * time.Second

// Service is the part of the remote service the inbox needs.
type Service interface {
	ListEmails(ctx context.Context, sessionID string, limit int, pageToken *string) (*model.EmailPage, error)
	DeleteEmail(ctx context.Context, sessionID, id string) error
	SendEmail(ctx context.Context, req remote.SendRequest) error
	Summarize(ctx context.Context, texts []string) ([]string, error)
	SuggestReplies(ctx context.Context, texts []string, count int) ([][]string, error)
}

// SessionSource supplies the session identifier sent with mailbox calls.
type SessionSource interface {
	SessionID() string
}

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeInfo
	NoticeError
)

// Notice is a one-line message for the status bar.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Controller owns the inbox state. It is not safe for concurrent use; all
// methods run on the Bubble Tea update goroutine.
type Controller struct {
	svc     Service
	session SessionSource

	epoch   uint64
	mounted bool

	emails     []model.Email
	cursors    CursorStack
	shown      int
	nextToken  *string
	limit      int
	mode       model.ViewMode
	replyCount int

	pageFetches int
	summarizing int
	suggesting  int
	deleting    map[string]bool
	sending     bool

	draft  *model.Draft
	notice Notice
}

// New creates an unmounted controller. limit is the initial page size; an
// unsupported value falls back to the smallest one.
func New(svc Service, session SessionSource, limit int) *Controller {
	if !model.ValidPageLimit(limit) {
		limit = model.PageLimits[0]
	}
	return &Controller{
		svc:      svc,
		session:  session,
		limit:    limit,
		mode:     model.ViewPreview,
		deleting: make(map[string]bool),
	}
}

// Mount resets the controller and starts loading the first page.
func (c *Controller) Mount() tea.Cmd {
	c.epoch++
	c.mounted = true
	c.reset()
	return c.FetchPage(nil)
}

// Unmount drops all state. Results of requests still in flight are
// ignored when they arrive.
func (c *Controller) Unmount() {
	c.epoch++
	c.mounted = false
	c.reset()
}

// Mounted reports whether the controller is active.
func (c *Controller) Mounted() bool { return c.mounted }

func (c *Controller) reset() {
	c.emails = nil
	c.cursors.Reset()
	c.shown = 0
	c.nextToken = nil
	c.mode = model.ViewPreview
	c.replyCount = 0
	c.pageFetches = 0
	c.summarizing = 0
	c.suggesting = 0
	c.deleting = make(map[string]bool)
	c.sending = false
	c.draft = nil
	c.notice = Notice{}
}

// Emails returns the emails of the current page.
func (c *Controller) Emails() []model.Email { return c.emails }

// Email returns the email with id on the current page.
func (c *Controller) Email(id string) (model.Email, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.emails[i], true
	}
	return model.Email{}, false
}

// PageIndex returns the zero-based index of the current page.
func (c *Controller) PageIndex() int { return c.cursors.Index() }

// HasNext reports whether the service announced a further page.
func (c *Controller) HasNext() bool { return c.nextToken != nil }

// HasPrev reports whether there is a page before the current one.
func (c *Controller) HasPrev() bool { return c.cursors.Index() > 0 }

// Loading reports whether a page fetch is in flight.
func (c *Controller) Loading() bool { return c.pageFetches > 0 }

// Summarizing reports whether a summary batch is in flight.
func (c *Controller) Summarizing() bool { return c.summarizing > 0 }

// Suggesting reports whether a suggested-replies batch is in flight.
func (c *Controller) Suggesting() bool { return c.suggesting > 0 }

// Deleting reports whether a removal of id is in flight.
func (c *Controller) Deleting(id string) bool { return c.deleting[id] }

// Sending reports whether a draft is being sent.
func (c *Controller) Sending() bool { return c.sending }

func (c *Controller) ViewMode() model.ViewMode { return c.mode }
func (c *Controller) ReplyCount() int         { return c.replyCount }
func (c *Controller) Limit() int              { return c.limit }
func (c *Controller) Notice() Notice          { return c.notice }
func (c *Controller) ClearNotice()            { c.notice = Notice{} }

// Draft returns the open reply draft, if any.
func (c *Controller) Draft() (model.Draft, bool) {
	if c.draft == nil {
		return model.Draft{}, false
	}
	return *c.draft, true
}

// NeedsSummary reports whether email must be summarized to render in mode.
func NeedsSummary(email model.Email, mode model.ViewMode) bool {
	return mode.IsAI() && !email.HasSummary()
}

// NeedsReplies reports whether email lacks suggested replies for count.
func NeedsReplies(email model.Email, count int) bool {
	return count > 0 && len(email.SuggestedReplies) < count
}

// FetchPage loads the page for token. The current page stays on screen
// until the response arrives.
func (c *Controller) FetchPage(token *string) tea.Cmd {
	return c.fetch(token, c.cursors.Index())
}

func (c *Controller) fetch(token *string, index int) tea.Cmd {
	if !c.mounted {
		return nil
	}
	c.pageFetches++

	epoch := c.epoch
	svc := c.svc
	sessionID := c.session.SessionID()
	limit := c.limit
	var tok *string
	if token != nil {
		t := *token
		tok = &t
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		page, err := svc.ListEmails(ctx, sessionID, limit, tok)
		return PageLoadedMsg{epoch: epoch, index: index, Token: tok, Page: page, Err: err}
	}
}

// Reload fetches the current page again.
func (c *Controller) Reload() tea.Cmd {
	return c.FetchPage(c.cursors.Current())
}

// AdvancePage moves to the next page. It does nothing without a next
// token or while a page fetch is in flight.
func (c *Controller) AdvancePage() tea.Cmd {
	if !c.mounted || c.nextToken == nil || c.Loading() {
		return nil
	}
	tok := c.cursors.Advance(*c.nextToken)
	return c.fetch(tok, c.cursors.Index())
}

// RetreatPage moves to the previous page. It does nothing on page 0.
func (c *Controller) RetreatPage() tea.Cmd {
	if !c.mounted {
		return nil
	}
	tok, ok := c.cursors.Retreat()
	if !ok {
		return nil
	}
	return c.fetch(tok, c.cursors.Index())
}

// SetLimit changes the page size and reloads from the first page.
func (c *Controller) SetLimit(n int) tea.Cmd {
	if !c.mounted || !model.ValidPageLimit(n) {
		return nil
	}
	c.limit = n
	c.cursors.Reset()
	c.shown = 0
	c.nextToken = nil
	return c.fetch(nil, 0)
}

// NextLimit returns the page size after the current one, cycling.
func (c *Controller) NextLimit() int {
	for i, n := range model.PageLimits {
		if n == c.limit {
			return model.PageLimits[(i+1)%len(model.PageLimits)]
		}
	}
	return model.PageLimits[0]
}

// SetViewMode switches the list rendering. Entering an AI mode requests
// summaries for every visible email that lacks one, in one batch.
func (c *Controller) SetViewMode(mode model.ViewMode) tea.Cmd {
	if !c.mounted || !validMode(mode) {
		return nil
	}
	c.mode = mode
	if !mode.IsAI() {
		return nil
	}

	var ids, texts []string
	for _, e := range c.emails {
		if NeedsSummary(e, mode) {
			ids = append(ids, e.ID)
			texts = append(texts, e.Body)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	c.summarizing++

	epoch := c.epoch
	svc := c.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		summaries, err := svc.Summarize(ctx, texts)
		return SummariesLoadedMsg{epoch: epoch, IDs: ids, Summaries: summaries, Err: err}
	}
}

// CycleViewMode advances to the next view mode.
func (c *Controller) CycleViewMode() tea.Cmd {
	modes := model.ViewModes
	for i, m := range modes {
		if m == c.mode {
			return c.SetViewMode(modes[(i+1)%len(modes)])
		}
	}
	return c.SetViewMode(model.ViewPreview)
}

func validMode(mode model.ViewMode) bool {
	for _, m := range model.ViewModes {
		if m == mode {
			return true
		}
	}
	return false
}

// SetReplyCount sets how many suggested replies to show per email, from 0
// to model.MaxReplyCount. Emails with fewer stored replies than n are sent
// in one batch asking for exactly n.
func (c *Controller) SetReplyCount(n int) tea.Cmd {
	if !c.mounted || n < 0 || n > model.MaxReplyCount {
		return nil
	}
	c.replyCount = n

	var ids, texts []string
	for _, e := range c.emails {
		if NeedsReplies(e, n) {
			ids = append(ids, e.ID)
			texts = append(texts, e.Body)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	c.suggesting++

	epoch := c.epoch
	svc := c.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		replies, err := svc.SuggestReplies(ctx, texts, n)
		return RepliesLoadedMsg{epoch: epoch, IDs: ids, Count: n, Replies: replies, Err: err}
	}
}

// DeleteEmail removes id on the service, then from the page. A second
// request for an id already being removed does nothing.
func (c *Controller) DeleteEmail(id string) tea.Cmd {
	if !c.mounted || c.deleting[id] || c.indexOf(id) < 0 {
		return nil
	}
	c.deleting[id] = true

	epoch := c.epoch
	svc := c.svc
	sessionID := c.session.SessionID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := svc.DeleteEmail(ctx, sessionID, id)
		return EmailDeletedMsg{epoch: epoch, ID: id, Err: err}
	}
}

// Compose opens a reply draft for id seeded with seedBody.
func (c *Controller) Compose(id, seedBody string) (model.Draft, bool) {
	e, ok := c.Email(id)
	if !ok {
		return model.Draft{}, false
	}
	d := OpenCompose(e, seedBody)
	c.draft = &d
	return d, true
}

// CancelDraft discards the open draft.
func (c *Controller) CancelDraft() {
	if !c.sending {
		c.draft = nil
	}
}

// SendDraft sends d. The draft stays open until the send succeeds.
func (c *Controller) SendDraft(d model.Draft) tea.Cmd {
	if !c.mounted || c.sending {
		return nil
	}
	c.draft = &d
	c.sending = true

	epoch := c.epoch
	svc := c.svc
	req := remote.SendRequest{
		SessionID: c.session.SessionID(),
		To:        d.To,
		Subject:   d.Subject,
		Body:      d.Body,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		err := svc.SendEmail(ctx, req)
		return DraftSentMsg{epoch: epoch, Draft: d, Err: err}
	}
}

// Update merges a result message into the controller state. It returns a
// command only when a result needs to be reported further, such as an
// expired session.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PageLoadedMsg:
		if !c.current(msg.epoch) {
			return nil
		}
		return c.pageLoaded(msg)
	case SummariesLoadedMsg:
		if !c.current(msg.epoch) {
			return nil
		}
		return c.summariesLoaded(msg)
	case RepliesLoadedMsg:
		if !c.current(msg.epoch) {
			return nil
		}
		return c.repliesLoaded(msg)
	case EmailDeletedMsg:
		if !c.current(msg.epoch) {
			return nil
		}
		return c.emailDeleted(msg)
	case DraftSentMsg:
		if !c.current(msg.epoch) {
			return nil
		}
		return c.draftSent(msg)
	}
	return nil
}

func (c *Controller) current(epoch uint64) bool {
	return c.mounted && epoch == c.epoch
}

func (c *Controller) pageLoaded(msg PageLoadedMsg) tea.Cmd {
	if c.pageFetches > 0 {
		c.pageFetches--
	}
	if msg.Err != nil {
		log.Printf("inbox: loading page %d: %v", msg.index, msg.Err)
		c.cursors.moveTo(c.shown)
		c.notice = Notice{Kind: NoticeError, Text: "Failed to load emails"}
		return authFailed(msg.Err)
	}

	var page model.EmailPage
	if msg.Page != nil {
		page = *msg.Page
	}
	c.emails = page.Emails
	c.nextToken = page.NextPageToken
	c.cursors.moveTo(msg.index)
	c.shown = c.cursors.Index()
	c.mode = model.ViewPreview
	c.replyCount = 0
	c.notice = Notice{}
	return nil
}

func (c *Controller) summariesLoaded(msg SummariesLoadedMsg) tea.Cmd {
	if c.summarizing > 0 {
		c.summarizing--
	}
	if msg.Err != nil {
		log.Printf("inbox: summarizing %d emails: %v", len(msg.IDs), msg.Err)
		return authFailed(msg.Err)
	}
	if len(msg.Summaries) != len(msg.IDs) {
		log.Printf("inbox: summarize returned %d results for %d emails", len(msg.Summaries), len(msg.IDs))
		return nil
	}

	for k, id := range msg.IDs {
		i := c.indexOf(id)
		if i < 0 || c.emails[i].HasSummary() {
			continue
		}
		s := msg.Summaries[k]
		c.emails[i].Summary = &s
	}
	return nil
}

func (c *Controller) repliesLoaded(msg RepliesLoadedMsg) tea.Cmd {
	if c.suggesting > 0 {
		c.suggesting--
	}
	if msg.Err != nil {
		log.Printf("inbox: suggesting %d replies for %d emails: %v", msg.Count, len(msg.IDs), msg.Err)
		return authFailed(msg.Err)
	}
	if len(msg.Replies) != len(msg.IDs) {
		log.Printf("inbox: replies returned %d results for %d emails", len(msg.Replies), len(msg.IDs))
		return nil
	}

	for k, id := range msg.IDs {
		i := c.indexOf(id)
		if i < 0 {
			continue
		}
		// A slower response to an earlier, smaller request must not
		// shrink what a later one already stored.
		if len(msg.Replies[k]) < len(c.emails[i].SuggestedReplies) {
			continue
		}
		c.emails[i].SuggestedReplies = append([]string(nil), msg.Replies[k]...)
	}
	return nil
}

func (c *Controller) emailDeleted(msg EmailDeletedMsg) tea.Cmd {
	delete(c.deleting, msg.ID)
	if msg.Err != nil {
		log.Printf("inbox: deleting email %s: %v", msg.ID, msg.Err)
		c.notice = Notice{Kind: NoticeError, Text: "Failed to delete email"}
		return authFailed(msg.Err)
	}

	if i := c.indexOf(msg.ID); i >= 0 {
		c.emails = append(c.emails[:i:i], c.emails[i+1:]...)
	}
	c.notice = Notice{Kind: NoticeInfo, Text: "Email deleted"}
	return nil
}

func (c *Controller) draftSent(msg DraftSentMsg) tea.Cmd {
	c.sending = false
	if msg.Err != nil {
		log.Printf("inbox: sending reply to %s: %v", msg.Draft.To, msg.Err)
		c.notice = Notice{Kind: NoticeError, Text: "Failed to send reply"}
		return authFailed(msg.Err)
	}

	c.draft = nil
	c.notice = Notice{Kind: NoticeInfo, Text: "Reply sent"}
	return nil
}

func (c *Controller) indexOf(id string) int {
	for i, e := range c.emails {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func authFailed(err error) tea.Cmd {
	if !remote.IsAuthError(err) {
		return nil
	}
	return func() tea.Msg { return AuthFailedMsg{Err: err} }
}
