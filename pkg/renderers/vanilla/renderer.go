package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/render"
	rendertemplate "github.com/goliatone/go-formsite/pkg/render/template"
	gotemplate "github.com/goliatone/go-formsite/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formsite/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formsite/pkg/templatetags"
	"github.com/goliatone/go-formsite/pkg/themes"
)

const (
	formTemplate       = "templates/form.tmpl"
	defaultSubmitLabel = "Submit"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	overrides        map[string]string
	stylesheets      []string
	inlineStyles     bool
	theme            *theme.RendererConfig
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithComponentOverride renders the named field with component instead of the
// one derived from its widget.
func WithComponentOverride(field, component string) Option {
	return func(cfg *config) {
		field = strings.TrimSpace(field)
		if field == "" || strings.TrimSpace(component) == "" {
			return
		}
		if cfg.overrides == nil {
			cfg.overrides = make(map[string]string)
		}
		cfg.overrides[field] = strings.TrimSpace(component)
	}
}

// WithStylesheet links an external stylesheet ahead of the form markup.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if href = strings.TrimSpace(href); href != "" {
			cfg.stylesheets = append(cfg.stylesheets, href)
		}
	}
}

// WithDefaultStyles inlines the bundled stylesheet in a <style> block.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithTheme sets the theme used when a request carries none. Its partials
// replace component templates, its CSS variables are set on the form element
// and its "vanilla.stylesheet" asset is linked ahead of the markup.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// Renderer produces server-rendered HTML forms from embedded pongo2 templates.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	overrides    map[string]string
	stylesheets  []string
	inlineStyles string
	theme        *theme.RendererConfig
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithFilters(templatetags.Filters()),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	} else if err := templatetags.Register(renderer); err != nil {
		return nil, fmt.Errorf("vanilla renderer: register template tags: %w", err)
	}

	registry := cfg.registry
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}

	out := &Renderer{
		templates:   renderer,
		registry:    registry,
		overrides:   maps.Clone(cfg.overrides),
		stylesheets: cfg.stylesheets,
		theme:       cfg.theme,
	}
	if cfg.inlineStyles {
		out.inlineStyles = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the form element with one chrome block per visible field,
// hidden inputs first and form-level errors above the fields.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	active := options.Theme
	if active == nil {
		active = r.theme
	}

	fields := newComponentRenderer(r.templates, r.registry, r.overrides)
	if active != nil {
		fields.partials = active.Partials
	}
	markup := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		rendered, err := fields.render(field)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		markup = append(markup, rendered)
	}

	method, spoofed := render.ResolveMethod(form.Method, options.Method)
	hidden := options.Hidden
	if spoofed != "" {
		hidden = render.MergeHiddenFields(hidden, render.Hidden("_method", spoofed))
	}
	hiddenFields := make([]map[string]any, 0, len(hidden))
	for _, field := range render.SortedHiddenFields(hidden) {
		hiddenFields = append(hiddenFields, map[string]any{"name": field.Name, "value": field.Value})
	}

	action := strings.TrimSpace(options.Action)
	if action == "" {
		action = form.Action
	}
	submit := strings.TrimSpace(options.SubmitLabel)
	if submit == "" {
		submit = defaultSubmitLabel
	}

	var stylesheets []string
	if href := themes.AssetURL(active, themes.AssetVanillaStylesheet); href != "" {
		stylesheets = append(stylesheets, href)
	}
	stylesheets = append(stylesheets, r.stylesheets...)
	stylesheets = append(stylesheets, fields.stylesheets()...)

	themeData := map[string]any{}
	if active != nil {
		themeData["name"] = active.Theme
		themeData["variant"] = active.Variant
		themeData["style"] = themes.CSSVarsStyle(active)
	}

	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form":          form,
		"fields":        markup,
		"method":        method,
		"action":        action,
		"hidden_fields": hiddenFields,
		"errors":        render.MergeFormErrors(form.Errors, options.Errors...),
		"submit_label":  submit,
		"stylesheets":   stylesheets,
		"inline_styles": r.inlineStyles,
		"classes":       chromeClasses(),
		"theme":         themeData,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
