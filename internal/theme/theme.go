package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps modal content such as the email detail.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle is used for secondary lines such as previews.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// SummaryStyle renders AI summaries.
var SummaryStyle = lipgloss.NewStyle().
	Foreground(ColorMagenta)

// ReplyStyle renders suggested replies.
var ReplyStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// WarningStyle renders AI error notices.
var WarningStyle = lipgloss.NewStyle().
	Foreground(ColorYellow).
	Italic(true)

// SenderStyle renders the sender column of the inbox.
var SenderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// NoticeStyle returns the style for a status bar notice.
func NoticeStyle(isError bool) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	if isError {
		return base.Foreground(ColorRed)
	}
	return base.Foreground(ColorGreen)
}

// ModeBadgeStyle returns a color-coded badge style for a view mode.
func ModeBadgeStyle(mode string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch mode {
	case "ai_preview":
		return base.Foreground(ColorMagenta)
	case "ai_summary":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
