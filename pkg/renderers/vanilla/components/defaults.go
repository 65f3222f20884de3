package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsite/pkg/model"
)

const (
	templatePrefix = "templates/components/"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: templateComponentRenderer("forms.input", templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(NameCheckbox, Descriptor{
		Renderer: templateComponentRenderer("forms.checkbox", templatePrefix+"checkbox.tmpl"),
	})
	registry.MustRegister(NameRadio, Descriptor{
		Renderer: templateComponentRenderer("forms.radio", templatePrefix+"radio.tmpl"),
	})
	registry.MustRegister(NameSelect, Descriptor{
		Renderer: templateComponentRenderer("forms.select", templatePrefix+"select.tmpl"),
	})
	registry.MustRegister(NameHidden, Descriptor{
		Renderer: templateComponentRenderer("forms.hidden", templatePrefix+"hidden.tmpl"),
	})

	return registry
}

// NameForWidget maps a model widget kind onto a component name. Unknown kinds
// are returned unchanged so custom components can be registered under them.
func NameForWidget(widget string) string {
	switch normalize(widget) {
	case "", model.WidgetText:
		return NameInput
	default:
		return normalize(widget)
	}
}

// templateComponentRenderer renders templateName unless the active theme maps
// partialKey onto another template.
func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if candidate := strings.TrimSpace(data.ThemePartials[partialKey]); candidate != "" {
			resolvedTemplate = candidate
		}

		payload := map[string]any{
			"field": field,
			"value": field.FirstValue(),
			"attrs": data.Attrs,
		}
		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", resolvedTemplate, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
