// Package render turns service payloads into plain terminal text.
package render

import (
	"html"
	"mime"
	"regexp"
	"strings"
	"unicode"

	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/microcosm-cc/bluemonday"
)

// RateLimitNotice replaces AI output that carries an in-band error marker.
const RateLimitNotice = "AI is busy right now (rate limited). Try again in a moment."

// aiErrorPrefixes mark AI text that is an error report, not content.
var aiErrorPrefixes = []string{"AI Error", "AI ERROR", "Error:"}

var (
	// strictPolicy strips all markup; the terminal shows text only.
	strictPolicy = bluemonday.StrictPolicy()

	blockTags  = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/tr|/li|/h[1-6])\s*/?>`)
	blankLines = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)

	wordDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}
)

// SanitizeBody removes markup from an email body and returns readable text.
func SanitizeBody(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	text := blockTags.ReplaceAllString(body, "$0\n")
	text = strictPolicy.Sanitize(text)
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = StripControl(text)
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// DecodeHeader decodes RFC 2047 encoded words (e.g. "=?UTF-8?B?...?=").
// Undecodable input is returned unchanged.
func DecodeHeader(s string) string {
	if !strings.Contains(s, "=?") {
		return StripControl(s)
	}
	out, err := wordDecoder.DecodeHeader(s)
	if err != nil {
		return StripControl(s)
	}
	return StripControl(out)
}

// StripControl drops control characters other than newline and tab, so
// remote text cannot carry terminal escape sequences.
func StripControl(s string) string {
	clean := true
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SenderName returns the display name from a From header, or the address
// when there is no name, or the raw value when it does not parse.
func SenderName(from string) string {
	from = DecodeHeader(strings.TrimSpace(from))
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return from
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

// IsAIError reports whether text is an in-band AI error marker.
func IsAIError(text string) bool {
	for _, p := range aiErrorPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// AIText returns text, or RateLimitNotice if text is an error marker.
func AIText(text string) string {
	if IsAIError(text) {
		return RateLimitNotice
	}
	return StripControl(text)
}

// Truncate shortens s to at most width runes, adding an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = StripControl(s)
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// OneLine collapses whitespace so s fits on a single list row.
func OneLine(s string) string {
	return strings.Join(strings.Fields(StripControl(s)), " ")
}
