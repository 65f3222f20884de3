package forms

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/widgets"
)

// CharField cleans to a string. Surrounding whitespace is stripped unless
// KeepWhitespace is set; an empty value cleans to "".
type CharField struct {
	baseField
	maxLength      int
	minLength      int
	keepWhitespace bool
}

// CharOptions extends Options with length limits. Zero means unlimited.
type CharOptions struct {
	Options
	MaxLength      int
	MinLength      int
	KeepWhitespace bool
	// InputType overrides the HTML input type (email, url, tel...).
	InputType string
}

// NewCharField builds a text input field.
func NewCharField(opts CharOptions) CharField {
	attrs := maps.Clone(opts.Attrs)
	if opts.MaxLength > 0 {
		if attrs == nil {
			attrs = make(map[string]string, 1)
		}
		attrs["maxlength"] = itoa(opts.MaxLength)
	}
	widget := widgets.TextInput{Type: opts.InputType, ExtraAttrs: attrs}
	return CharField{
		baseField:      newBaseField(opts.Options, widget, model.FieldTypeString),
		maxLength:      opts.MaxLength,
		minLength:      opts.MinLength,
		keepWhitespace: opts.KeepWhitespace,
	}
}

// NewHiddenField builds a CharField rendered as a hidden input.
func NewHiddenField(opts Options) CharField {
	field := NewCharField(CharOptions{Options: opts})
	field.widget = widgets.HiddenInput{ExtraAttrs: maps.Clone(opts.Attrs)}
	return field
}

func (f CharField) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return "", nil
	}
	value := raw[0]
	if !f.keepWhitespace {
		value = strings.TrimSpace(value)
	}
	return value, nil
}

func (f CharField) Validate(value any) error {
	if err := f.validateRequired(value); err != nil {
		return err
	}
	text, _ := value.(string)
	if text == "" {
		return nil
	}
	length := utf8.RuneCountInString(text)
	if f.maxLength > 0 && length > f.maxLength {
		return f.newError(CodeMaxLength, map[string]any{"limit": f.maxLength, "show": length})
	}
	if f.minLength > 0 && length < f.minLength {
		return f.newError(CodeMinLength, map[string]any{"limit": f.minLength, "show": length})
	}
	return nil
}

func (f CharField) Clean(raw []string) (any, error) { return cleanValue(f, raw) }

// ChoiceField restricts a string value to a declared set of choices.
type ChoiceField struct {
	baseField
	choices []widgets.Choice
}

// NewChoiceField builds a select field. Use RadioSelect through
// NewRadioChoiceField for a radio group instead.
func NewChoiceField(opts Options, choices []widgets.Choice) ChoiceField {
	widget := widgets.Select{Choices: slices.Clone(choices), ExtraAttrs: maps.Clone(opts.Attrs)}
	return ChoiceField{
		baseField: newBaseField(opts, widget, model.FieldTypeString),
		choices:   slices.Clone(choices),
	}
}

// NewRadioChoiceField builds a ChoiceField rendered as radio buttons.
func NewRadioChoiceField(opts Options, choices []widgets.Choice) ChoiceField {
	field := NewChoiceField(opts, choices)
	field.widget = widgets.RadioSelect{Choices: slices.Clone(choices), ExtraAttrs: maps.Clone(opts.Attrs)}
	return field
}

func (f ChoiceField) Parse(raw []string) (any, error) {
	if len(raw) == 0 {
		return "", nil
	}
	return strings.TrimSpace(raw[0]), nil
}

func (f ChoiceField) Validate(value any) error {
	if err := f.validateRequired(value); err != nil {
		return err
	}
	text, _ := value.(string)
	if text == "" {
		return nil
	}
	for _, choice := range f.choices {
		if choice.Value == text {
			return nil
		}
	}
	return f.newError(CodeInvalidChoice, map[string]any{"value": text})
}

func (f ChoiceField) Clean(raw []string) (any, error) { return cleanValue(f, raw) }
