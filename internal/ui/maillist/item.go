package maillist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailassist/internal/model"
	"github.com/nhle/mailassist/internal/render"
	"github.com/nhle/mailassist/internal/theme"
)

// summaryLines is how many wrapped lines a full summary may take.
const summaryLines = 3

// EmailItem wraps a model.Email so it can be used in a bubbles/list.
type EmailItem struct {
	Email    model.Email
	Deleting bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i EmailItem) FilterValue() string { return i.Email.Subject }

// EmailDelegate renders an email according to the view mode and the
// number of suggested replies shown.
type EmailDelegate struct {
	Mode    model.ViewMode
	Replies int
}

// Height returns the number of lines each item takes.
func (d EmailDelegate) Height() int {
	return 1 + d.bodyLines() + d.Replies
}

// Spacing returns the number of blank lines between items.
func (d EmailDelegate) Spacing() int { return 1 }

// Update handles per-item messages (unused).
func (d EmailDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d EmailDelegate) bodyLines() int {
	if d.Mode == model.ViewAISummary {
		return summaryLines
	}
	return 1
}

// Render draws a single email.
func (d EmailDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(EmailItem)
	if !ok {
		return
	}
	width := m.Width() - 4
	if width < 20 {
		width = 20
	}

	lines := []string{d.headline(it, width)}
	lines = append(lines, d.body(it.Email, width)...)
	lines = append(lines, d.replies(it.Email, width)...)

	style := theme.ListItemStyle
	if index == m.Index() {
		style = theme.SelectedItemStyle
	}
	fmt.Fprint(w, style.Render(strings.Join(lines, "\n")))
}

func (d EmailDelegate) headline(it EmailItem, width int) string {
	sender := render.Truncate(render.SenderName(it.Email.From), 24)
	subject := render.OneLine(render.DecodeHeader(it.Email.Subject))
	if subject == "" {
		subject = "(no subject)"
	}

	line := theme.SenderStyle.Render(sender) + "  " +
		render.Truncate(subject, width-lipgloss.Width(sender)-2)
	if it.Deleting {
		line = theme.DimmedStyle.Render(sender+"  deleting…")
	}
	return line
}

func (d EmailDelegate) body(e model.Email, width int) []string {
	n := d.bodyLines()
	var lines []string

	switch {
	case !d.Mode.IsAI(), d.Mode == model.ViewAIPreview && !e.HasSummary():
		lines = []string{theme.DimmedStyle.Render(render.Truncate(render.OneLine(e.Snippet), width))}
	case !e.HasSummary():
		lines = []string{theme.DimmedStyle.Render("summarizing…")}
	case render.IsAIError(e.SummaryText()):
		lines = []string{theme.WarningStyle.Render(render.Truncate(render.RateLimitNotice, width))}
	case d.Mode == model.ViewAIPreview:
		lines = []string{theme.SummaryStyle.Render(render.Truncate(render.OneLine(e.SummaryText()), width))}
	default:
		wrapped := strings.Split(
			lipgloss.NewStyle().Width(width).Render(render.OneLine(e.SummaryText())), "\n")
		if len(wrapped) > n {
			wrapped = wrapped[:n]
			wrapped[n-1] = render.Truncate(strings.TrimRight(wrapped[n-1], " "), width-1) + "…"
		}
		for _, l := range wrapped {
			lines = append(lines, theme.SummaryStyle.Render(l))
		}
	}
	return pad(lines, n)
}

func (d EmailDelegate) replies(e model.Email, width int) []string {
	if d.Replies == 0 {
		return nil
	}
	var lines []string
	for i := 0; i < d.Replies && i < len(e.SuggestedReplies); i++ {
		text := render.AIText(e.SuggestedReplies[i])
		style := theme.ReplyStyle
		if render.IsAIError(e.SuggestedReplies[i]) {
			style = theme.WarningStyle
		}
		lines = append(lines, style.Render(render.Truncate(fmt.Sprintf("↳ %d. %s", i+1, render.OneLine(text)), width)))
	}
	if len(lines) < d.Replies {
		lines = append(lines, theme.DimmedStyle.Render("↳ generating replies…"))
	}
	return pad(lines, d.Replies)
}

func pad(lines []string, n int) []string {
	for len(lines) < n {
		lines = append(lines, "")
	}
	return lines[:n]
}
