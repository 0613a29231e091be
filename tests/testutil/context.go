package testutil

import (
	"context"
	"strconv"

	"github.com/nhle/mailassist/internal/model"
)

type bodyKey struct{}

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) map[string]any {
	body, _ := ctx.Value(bodyKey{}).(map[string]any)
	if body == nil {
		return map[string]any{}
	}
	return body
}

// SampleEmails returns n emails with ids "m1".."mn".
func SampleEmails(n int) []model.Email {
	out := make([]model.Email, n)
	for i := range out {
		id := i + 1
		out[i] = model.Email{
			ID:      idFor(id),
			Subject: "Subject " + idFor(id),
			From:    "Sender " + idFor(id) + " <" + idFor(id) + "@example.com>",
			Snippet: "snippet " + idFor(id),
			Body:    "body " + idFor(id),
		}
	}
	return out
}

func idFor(n int) string {
	return "m" + strconv.Itoa(n)
}
