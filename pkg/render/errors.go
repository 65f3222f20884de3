package render

import (
	"slices"
	"strings"
)

// MergeFormErrors joins the bound form's non-field errors with errors the
// caller adds at render time, such as a rejected CSRF token. Messages are
// trimmed, blanks and repeats are dropped, and first-seen order is kept.
func MergeFormErrors(existing []string, extras ...string) []string {
	var out []string
	seen := make(map[string]bool, len(existing)+len(extras))
	for _, message := range slices.Concat(existing, extras) {
		message = strings.TrimSpace(message)
		if message == "" || seen[message] {
			continue
		}
		seen[message] = true
		out = append(out, message)
	}
	return out
}
