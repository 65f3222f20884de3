package forms

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/widgets"
)

// Field is the capability set every form field provides: coercion of the raw
// submitted strings, validation of the coerced value, and the widget used to
// present it. Field values are immutable after construction and may be shared
// by concurrent requests.
type Field interface {
	// Parse coerces raw submitted strings into the field's Go value. A nil
	// value means the field was left empty.
	Parse(raw []string) (any, error)
	// Validate checks a coerced value.
	Validate(value any) error
	// Clean runs Parse, Validate and the configured validators in order.
	Clean(raw []string) (any, error)
	Widget() widgets.Widget
	Options() Options
	Required() bool
	Type() model.FieldType
	// ErrorMessage resolves the message used for code, honouring per-field
	// overrides.
	ErrorMessage(code string) string
}

// displayer is implemented by fields that normalise raw values before they
// are handed back to a widget (for example mapping "Yes" to "true").
type displayer interface {
	DisplayValue(raw []string) []string
}

// Validator runs after Validate on non-empty values.
type Validator func(value any) error

// Options is the configuration surface shared by all fields.
type Options struct {
	Label         string
	HelpText      string
	Initial       any
	Required      bool
	Disabled      bool
	ErrorMessages map[string]string
	Validators    []Validator
	Attrs         map[string]string
}

func (o Options) clone() Options {
	o.ErrorMessages = maps.Clone(o.ErrorMessages)
	o.Validators = slices.Clone(o.Validators)
	o.Attrs = maps.Clone(o.Attrs)
	return o
}

type baseField struct {
	opts   Options
	widget widgets.Widget
	kind   model.FieldType
}

func newBaseField(opts Options, widget widgets.Widget, kind model.FieldType) baseField {
	return baseField{opts: opts.clone(), widget: widget, kind: kind}
}

func (f baseField) Options() Options       { return f.opts.clone() }
func (f baseField) Required() bool         { return f.opts.Required }
func (f baseField) Widget() widgets.Widget { return f.widget }
func (f baseField) Type() model.FieldType  { return f.kind }

func (f baseField) ErrorMessage(code string) string {
	if msg, ok := f.opts.ErrorMessages[code]; ok && msg != "" {
		return msg
	}
	if msg := defaultMessages[code]; msg != "" {
		return msg
	}
	return code
}

func (f baseField) newError(code string, params map[string]any) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: formatMessage(f.ErrorMessage(code), params),
		Params:  params,
	}
}

func (f baseField) validateRequired(value any) error {
	if f.opts.Required && isEmpty(value) {
		return f.newError(CodeRequired, nil)
	}
	return nil
}

func cleanValue(f Field, raw []string) (any, error) {
	value, err := f.Parse(raw)
	if err != nil {
		return nil, asValidationError(err)
	}
	if err := f.Validate(value); err != nil {
		return nil, asValidationError(err)
	}
	if isEmpty(value) {
		return value, nil
	}
	for _, validator := range f.Options().Validators {
		if validator == nil {
			continue
		}
		if err := validator(value); err != nil {
			return nil, asValidationError(err)
		}
	}
	return value, nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func formatValue(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case bool:
		return []string{strconv.FormatBool(v)}
	case *bool:
		if v == nil {
			return nil
		}
		return []string{strconv.FormatBool(*v)}
	case string:
		return []string{v}
	case []string:
		return slices.Clone(v)
	default:
		return []string{fmt.Sprint(v)}
	}
}
