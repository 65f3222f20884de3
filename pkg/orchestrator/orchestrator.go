package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formsite/pkg/forms"
	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/render"
	"github.com/goliatone/go-formsite/pkg/renderers/vanilla"
	"github.com/goliatone/go-formsite/pkg/widgets"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry. New sets its default to the
// orchestrator's default renderer.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithWidgetRegistry replaces the widget registry used to fill in missing
// widget kinds.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.widgets = registry
		}
	}
}

// WithTransformer registers a Transformer that can mutate form models after
// building but before decorators run.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithDecorators registers decorators that should run against the generated
// form model before rendering.
func WithDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		if len(decorators) == 0 {
			return
		}
		o.decorators = append(o.decorators, decorators...)
	}
}

// Orchestrator coordinates the pipeline from a bound form to rendered output.
// It applies sensible defaults (vanilla renderer, built-in widget matchers)
// while remaining open to dependency injection. Configure it once; Generate
// is safe for concurrent use afterwards.
type Orchestrator struct {
	registry        *render.Registry
	widgets         *widgets.Registry
	defaultRenderer string
	initialiseErr   error
	decorators      []model.Decorator
	transformer     Transformer
	themeSelector   theme.ThemeSelector
	defaultTheme    string
	defaultVariant  string
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers can
// start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one render.
type Request struct {
	// Form is the bound (or unbound) form to render.
	Form *forms.BoundForm

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request instructions such as the action URL,
	// hidden inputs or extra form-level errors.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant pick a theme through the configured selector.
	// Empty values use WithDefaultTheme.
	ThemeName    string
	ThemeVariant string
}

// Model builds the decorated form model without rendering it.
func (o *Orchestrator) Model(ctx context.Context, form *forms.BoundForm) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}
	if form == nil {
		return model.FormModel{}, errors.New("orchestrator: form is required")
	}

	out := form.Model()
	if err := o.applyTransformer(ctx, &out); err != nil {
		return model.FormModel{}, err
	}
	if err := o.applyDecorators(&out); err != nil {
		return model.FormModel{}, err
	}
	return out, nil
}

// Generate executes the form → model → decorators → renderer sequence and
// returns the rendered bytes (HTML for the default vanilla renderer).
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	form, err := o.Model(ctx, req.Form)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	options, err := o.applyTheme(req)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}

	return output, nil
}

// Renderer resolves a renderer by name, falling back to the default.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	return o.rendererFor(name)
}

// WidgetRegistry exposes the widget registry so callers can add matchers.
func (o *Orchestrator) WidgetRegistry() *widgets.Registry {
	return o.widgets
}

// RegisterWidget adds a widget matcher at runtime.
func (o *Orchestrator) RegisterWidget(name string, priority int, matcher widgets.Matcher) {
	o.widgets.Register(name, priority, matcher)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	renderer, err := o.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	for _, decorator := range o.decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	o.registry.SetDefault(o.defaultRenderer)
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	// Widget resolution runs first so later decorators see final widget kinds.
	o.decorators = append([]model.Decorator{o.widgets}, o.decorators...)
}
