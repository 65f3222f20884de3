package vanilla

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/render/template"
	"github.com/goliatone/go-formsite/pkg/renderers/vanilla/components"
)

const chromeTemplate = "templates/components/chrome/field.tmpl"

type componentRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	overrides map[string]string
	// partials are the active theme's template overrides.
	partials map[string]string

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, overrides map[string]string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		overrides:      overrides,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(field model.Field) (string, error) {
	componentName := r.overrides[field.Name]
	if componentName == "" {
		componentName = components.NameForWidget(field.Widget)
	}

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, field.Name)
	}

	data := components.ComponentData{
		Template:      r.templates,
		Attrs:         attrString(field.Attrs),
		ThemePartials: r.partials,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, field.Name, err)
	}

	r.usedComponents[componentName] = struct{}{}

	if componentName == components.NameHidden {
		return control.String(), nil
	}

	markup, err := r.templates.RenderTemplate(chromeTemplate, map[string]any{
		"field":     field,
		"component": componentName,
		"control":   strings.TrimSpace(control.String()),
		"help":      sanitizeHelp(field.HelpText),
		"grouped":   componentName == components.NameRadio,
		"classes":   chromeClasses(),
	})
	if err != nil {
		return "", fmt.Errorf("render chrome for field %q: %w", field.Name, err)
	}
	return markup, nil
}

func (r *componentRenderer) stylesheets() []string {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Stylesheets(names)
}
