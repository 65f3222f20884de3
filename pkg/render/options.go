package render

import (
	"strings"

	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use without
// mutating the form model.
type RenderOptions struct {
	// Action is the URL the form submits to. Empty keeps the current URL.
	Action string
	// Method overrides the HTTP method declared by the form model. Renderers
	// translate verbs other than GET/POST into a POST plus a hidden _method
	// input.
	Method string
	// Hidden carries extra hidden inputs (CSRF token and similar), keyed by
	// input name.
	Hidden map[string]string
	// Errors adds form-level messages on top of the model's own errors.
	Errors []string
	// SubmitLabel overrides the submit button text.
	SubmitLabel string
	// Theme carries the resolved theme (partials, CSS variables, asset
	// URLs). Nil falls back to the renderer's own theme, if any.
	Theme *theme.RendererConfig
}

// ResolveMethod returns the browser method (GET or POST) and, when the
// requested verb is anything else, the value for a hidden _method override.
func ResolveMethod(declared, override string) (method, spoofed string) {
	verb := strings.ToUpper(strings.TrimSpace(override))
	if verb == "" {
		verb = strings.ToUpper(strings.TrimSpace(declared))
	}
	switch verb {
	case "", "POST":
		return "post", ""
	case "GET":
		return "get", ""
	default:
		return "post", verb
	}
}
