// Package templatetags provides the template filters the form templates use.
package templatetags

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formsite/pkg/forms"
	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/render/template"
)

// IsCheckboxFilter is the name templates use: `{% if field|is_checkbox %}`.
const IsCheckboxFilter = "is_checkbox"

// IsCheckbox reports whether value is a field rendered as a single checkbox.
// It accepts forms.BoundField, model.Field (or a pointer to one) and the map
// shape a field takes once template data has been normalised to JSON. Any
// other value reports false.
func IsCheckbox(value any) bool {
	switch field := value.(type) {
	case forms.BoundField:
		return field.IsCheckbox()
	case *forms.BoundField:
		return field != nil && field.IsCheckbox()
	case model.Field:
		return field.Widget == model.WidgetCheckbox
	case *model.Field:
		return field != nil && field.Widget == model.WidgetCheckbox
	case map[string]any:
		widget, _ := field["widget"].(string)
		return widget == model.WidgetCheckbox
	default:
		return false
	}
}

// Filters returns every filter in this package keyed by template name.
func Filters() map[string]func(input any, param any) (any, error) {
	return map[string]func(any, any) (any, error){
		IsCheckboxFilter: isCheckboxFilter,
	}
}

// Register installs the filters on engine. Filters already known to the
// engine are kept.
func Register(engine template.TemplateRenderer) error {
	if engine == nil {
		return errors.New("templatetags: engine is required")
	}
	for name, fn := range Filters() {
		if err := engine.RegisterFilter(name, fn); err != nil && !errors.Is(err, template.ErrFilterExists) {
			return fmt.Errorf("templatetags: register %q: %w", name, err)
		}
	}
	return nil
}

func isCheckboxFilter(input any, _ any) (any, error) {
	return IsCheckbox(input), nil
}
