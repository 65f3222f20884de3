package forms

import (
	"maps"
	"strings"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/widgets"
)

const nullBooleanUnknown = "unknown"

// ParseNullBoolean coerces a raw submitted string into true, false or absent.
// It is the generic parsing step shared by NullBooleanField and
// BooleanChoiceField: "true", "1", "yes" and "on" (any case) read as true,
// "false", "0", "no" and "off" as false, anything else as absent.
func ParseNullBoolean(raw []string) (value bool, ok bool) {
	if len(raw) == 0 {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw[0])) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	default:
		return false, false
	}
}

// NullBooleanField accepts true, false or no answer. The cleaned value is a
// bool or nil.
type NullBooleanField struct {
	baseField
}

// NewNullBooleanField builds a tri-state field rendered as a select with
// Unknown/Yes/No options.
func NewNullBooleanField(opts Options) NullBooleanField {
	widget := widgets.Select{
		Choices: []widgets.Choice{
			{Value: nullBooleanUnknown, Label: "Unknown"},
			{Value: "true", Label: "Yes"},
			{Value: "false", Label: "No"},
		},
		ExtraAttrs: maps.Clone(opts.Attrs),
	}
	return NullBooleanField{baseField: newBaseField(opts, widget, model.FieldTypeBoolean)}
}

// Parse never fails: unrecognised input is treated as absent.
func (f NullBooleanField) Parse(raw []string) (any, error) {
	value, ok := ParseNullBoolean(raw)
	if !ok {
		return nil, nil
	}
	return value, nil
}

// Validate accepts every coerced value, including absent.
func (f NullBooleanField) Validate(any) error { return nil }

func (f NullBooleanField) Clean(raw []string) (any, error) { return cleanValue(f, raw) }

// DisplayValue maps the raw value onto the widget's option values.
func (f NullBooleanField) DisplayValue(raw []string) []string {
	value, ok := ParseNullBoolean(raw)
	if !ok {
		return []string{nullBooleanUnknown}
	}
	return formatValue(value)
}

// BooleanField is a single checkbox. An unchecked box cleans to false; when
// the field is required the box must be ticked.
type BooleanField struct {
	baseField
}

// NewBooleanField builds a checkbox field.
func NewBooleanField(opts Options) BooleanField {
	widget := widgets.CheckboxInput{ExtraAttrs: maps.Clone(opts.Attrs)}
	return BooleanField{baseField: newBaseField(opts, widget, model.FieldTypeBoolean)}
}

func (f BooleanField) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw[0])) {
	case "", "false", "0", "off":
		return false, nil
	default:
		return true, nil
	}
}

func (f BooleanField) Validate(value any) error {
	checked, _ := value.(bool)
	if f.opts.Required && !checked {
		return f.newError(CodeRequired, nil)
	}
	return nil
}

func (f BooleanField) Clean(raw []string) (any, error) { return cleanValue(f, raw) }

func (f BooleanField) DisplayValue(raw []string) []string {
	value, _ := f.Parse(raw)
	return formatValue(value)
}
