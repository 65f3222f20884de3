package formsite

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formsite/pkg/forms"
	"github.com/goliatone/go-formsite/pkg/orchestrator"
	"github.com/goliatone/go-formsite/pkg/render"
	"github.com/goliatone/go-formsite/pkg/themes"
)

// RenderOptions describes per-request render settings such as the action
// URL, hidden inputs and extra form-level errors.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders a bound or unbound form with the default vanilla
// renderer. It is the simplest entry point for callers that just want HTML.
func GenerateHTML(ctx context.Context, form *forms.BoundForm, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{
		Form:          form,
		RenderOptions: opts,
	})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// each render resolves its partials, CSS variables and asset URLs.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithBuiltinTheme selects the bundled theme with assets under staticURL.
// variant may be empty, "dark" or "stacked".
func WithBuiltinTheme(staticURL, variant string) []orchestrator.Option {
	return []orchestrator.Option{
		orchestrator.WithThemeSelector(themes.NewSelector(themes.Builtin(staticURL))),
		orchestrator.WithDefaultTheme(themes.BuiltinName, variant),
	}
}
