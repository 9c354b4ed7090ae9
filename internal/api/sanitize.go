package api

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"taskmate/internal/domain"
)

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup the backend may have stored with a task so it
// cannot reach the terminal as raw tags.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<>&") {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func cleanTask(t domain.Task) domain.Task {
	t.Title = plainText(t.Title)
	t.Description = plainText(t.Description)
	return t
}
