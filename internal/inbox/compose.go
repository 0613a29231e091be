package inbox

import (
	"regexp"
	"strings"

	"github.com/nhle/mailassist/internal/model"
)

const replyPrefix = "Re: "

var angleAddress = regexp.MustCompile(`<([^<>]+)>`)

// OpenCompose derives a reply draft from email. seedBody, usually one of
// the suggested replies, becomes the initial body.
func OpenCompose(email model.Email, seedBody string) model.Draft {
	return model.Draft{
		To:      ReplyAddress(email.From),
		Subject: ReplySubject(email.Subject),
		Body:    seedBody,
	}
}

// ReplyAddress returns the address inside angle brackets in from, or from
// itself when there are none.
func ReplyAddress(from string) string {
	if m := angleAddress.FindStringSubmatch(from); m != nil {
		if addr := strings.TrimSpace(m[1]); addr != "" {
			return addr
		}
	}
	return strings.TrimSpace(from)
}

// ReplySubject prefixes subject with "Re: " unless it already has it.
func ReplySubject(subject string) string {
	if strings.HasPrefix(subject, replyPrefix) {
		return subject
	}
	return replyPrefix + subject
}
