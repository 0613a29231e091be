package model

// Email is one inbound message as summarized by the remote service.
type Email struct {
	// ID is opaque and stable across re-fetches of the same message.
	ID string `json:"id"`

	Subject string `json:"subject"`
	From    string `json:"from"`
	Snippet string `json:"snippet"`

	// Body may contain markup; sanitize before rendering.
	Body string `json:"body"`

	// Summary is nil until fetched and never changes once set.
	Summary *string `json:"summary,omitempty"`

	// SuggestedReplies only ever grows for the lifetime of the value.
	SuggestedReplies []string `json:"suggestedReplies,omitempty"`
}

// HasSummary reports whether a summary has been attached.
func (e Email) HasSummary() bool {
	return e.Summary != nil
}

// SummaryText returns the summary or an empty string.
func (e Email) SummaryText() string {
	if e.Summary == nil {
		return ""
	}
	return *e.Summary
}

// EmailPage is one page of emails plus the continuation token for the
// next page. NextPageToken is nil on the last page.
type EmailPage struct {
	Emails        []Email `json:"emails"`
	NextPageToken *string `json:"nextPageToken"`
}

// Draft is transient compose state. It is never persisted.
type Draft struct {
	To      string
	Subject string
	Body    string
}

// User is the signed-in account as reported by the service.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ViewMode governs which derived text is shown for each email.
type ViewMode string

const (
	ViewPreview   ViewMode = "preview"
	ViewAIPreview ViewMode = "ai_preview"
	ViewAISummary ViewMode = "ai_summary"
)

// ViewModes lists the modes in cycle order.
var ViewModes = []ViewMode{ViewPreview, ViewAIPreview, ViewAISummary}

// IsAI reports whether the mode shows AI-derived text.
func (v ViewMode) IsAI() bool {
	return v == ViewAIPreview || v == ViewAISummary
}

// Label returns a short human-readable name for the mode.
func (v ViewMode) Label() string {
	switch v {
	case ViewAIPreview:
		return "AI preview"
	case ViewAISummary:
		return "AI summary"
	default:
		return "preview"
	}
}

// MaxReplyCount is the largest number of suggested replies per email.
const MaxReplyCount = 3

// PageLimits are the supported page sizes.
var PageLimits = []int{5, 10, 20}

// ValidPageLimit reports whether n is one of PageLimits.
func ValidPageLimit(n int) bool {
	for _, l := range PageLimits {
		if l == n {
			return true
		}
	}
	return false
}
