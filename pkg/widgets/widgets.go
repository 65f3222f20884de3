package widgets

import (
	"fmt"
	"maps"
	"net/url"
	"strings"

	"github.com/goliatone/go-formsite/pkg/model"
)

// Widget describes how a field is presented and how its raw value is read
// back from submitted data.
type Widget interface {
	// Kind returns the component name (see the model.Widget* constants).
	Kind() string
	// InputType returns the HTML input type, or "" for non-input controls.
	InputType() string
	// ValueFromData extracts the raw value submitted for name. A nil result
	// means nothing was submitted.
	ValueFromData(data url.Values, name string) []string
	// Options returns the selectable options for choice widgets with the
	// entries matching value marked as checked. Other widgets return nil.
	Options(id string, value []string) []model.Choice
	// Attrs returns a copy of the extra HTML attributes.
	Attrs() map[string]string
}

// Choice pairs a submitted value with its human-readable label.
type Choice struct {
	Value string
	Label string
}

// TextInput renders a single-line text control.
type TextInput struct {
	Type       string
	ExtraAttrs map[string]string
}

func (w TextInput) Kind() string { return model.WidgetText }

func (w TextInput) InputType() string {
	if t := strings.TrimSpace(w.Type); t != "" {
		return t
	}
	return "text"
}

func (w TextInput) ValueFromData(data url.Values, name string) []string {
	return valuesFor(data, name)
}

func (w TextInput) Options(string, []string) []model.Choice { return nil }

func (w TextInput) Attrs() map[string]string { return maps.Clone(w.ExtraAttrs) }

// HiddenInput renders an input of type hidden.
type HiddenInput struct {
	ExtraAttrs map[string]string
}

func (w HiddenInput) Kind() string      { return model.WidgetHidden }
func (w HiddenInput) InputType() string { return "hidden" }

func (w HiddenInput) ValueFromData(data url.Values, name string) []string {
	return valuesFor(data, name)
}

func (w HiddenInput) Options(string, []string) []model.Choice { return nil }

func (w HiddenInput) Attrs() map[string]string { return maps.Clone(w.ExtraAttrs) }

// CheckboxInput renders a single checkbox. Browsers omit unchecked boxes from
// the payload, so a missing value reads as "false" rather than absent.
type CheckboxInput struct {
	ExtraAttrs map[string]string
}

func (w CheckboxInput) Kind() string      { return model.WidgetCheckbox }
func (w CheckboxInput) InputType() string { return "checkbox" }

func (w CheckboxInput) ValueFromData(data url.Values, name string) []string {
	values := valuesFor(data, name)
	if len(values) == 0 {
		return []string{"false"}
	}
	return values
}

func (w CheckboxInput) Options(string, []string) []model.Choice { return nil }

func (w CheckboxInput) Attrs() map[string]string { return maps.Clone(w.ExtraAttrs) }

// IsChecked reports whether the raw value represents a ticked box.
func (w CheckboxInput) IsChecked(value []string) bool {
	if len(value) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(value[0])) {
	case "", "false", "0", "off":
		return false
	default:
		return true
	}
}

// RadioSelect renders a group of mutually exclusive radio buttons. Nothing
// selected stays absent.
type RadioSelect struct {
	Choices    []Choice
	ExtraAttrs map[string]string
}

func (w RadioSelect) Kind() string      { return model.WidgetRadio }
func (w RadioSelect) InputType() string { return "radio" }

func (w RadioSelect) ValueFromData(data url.Values, name string) []string {
	return valuesFor(data, name)
}

func (w RadioSelect) Options(id string, value []string) []model.Choice {
	return buildOptions(w.Choices, id, value)
}

func (w RadioSelect) Attrs() map[string]string { return maps.Clone(w.ExtraAttrs) }

// Select renders a drop-down list.
type Select struct {
	Choices    []Choice
	ExtraAttrs map[string]string
}

func (w Select) Kind() string      { return model.WidgetSelect }
func (w Select) InputType() string { return "" }

func (w Select) ValueFromData(data url.Values, name string) []string {
	return valuesFor(data, name)
}

func (w Select) Options(id string, value []string) []model.Choice {
	return buildOptions(w.Choices, id, value)
}

func (w Select) Attrs() map[string]string { return maps.Clone(w.ExtraAttrs) }

// IsCheckbox reports whether the widget renders as a single checkbox.
func IsCheckbox(w Widget) bool {
	switch w.(type) {
	case CheckboxInput, *CheckboxInput:
		return true
	default:
		return false
	}
}

func valuesFor(data url.Values, name string) []string {
	if data == nil {
		return nil
	}
	values, ok := data[name]
	if !ok {
		return nil
	}
	return values
}

func buildOptions(choices []Choice, id string, value []string) []model.Choice {
	if len(choices) == 0 {
		return nil
	}
	selected := ""
	if len(value) > 0 {
		selected = value[0]
	}
	out := make([]model.Choice, 0, len(choices))
	for idx, choice := range choices {
		option := model.Choice{
			Value:   choice.Value,
			Label:   choice.Label,
			Checked: selected != "" && choice.Value == selected,
		}
		if id != "" {
			option.ID = fmt.Sprintf("%s_%d", id, idx)
		}
		out = append(out, option)
	}
	return out
}
