package orchestrator

import (
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formsite/pkg/render"
	"github.com/goliatone/go-formsite/pkg/themes"
)

// WithThemeSelector resolves a theme for every request that does not already
// carry one in RenderOptions.Theme.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithDefaultTheme names the theme and variant used when a request leaves
// ThemeName and ThemeVariant empty.
func WithDefaultTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.defaultTheme = strings.TrimSpace(name)
		o.defaultVariant = strings.TrimSpace(variant)
	}
}

func (o *Orchestrator) applyTheme(req Request) (render.RenderOptions, error) {
	opts := req.RenderOptions
	if opts.Theme != nil || o.themeSelector == nil {
		return opts, nil
	}

	name := strings.TrimSpace(req.ThemeName)
	if name == "" {
		name = o.defaultTheme
	}
	variant := strings.TrimSpace(req.ThemeVariant)
	if variant == "" {
		variant = o.defaultVariant
	}

	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return opts, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	opts.Theme = themes.RendererConfig(selection)
	return opts, nil
}
