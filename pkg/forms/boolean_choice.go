package forms

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/widgets"
)

// Default labels of the two Boolean-Choice options.
const (
	DefaultTrueLabel  = "Yes"
	DefaultFalseLabel = "No"
)

// ErrAmbiguousChoiceLabels is returned when both options would carry the same
// label.
var ErrAmbiguousChoiceLabels = errors.New("forms: boolean choice labels must differ")

// BooleanChoiceConfig lists everything a caller may configure on a
// BooleanChoiceField. Whether the field is required is not configurable: a
// Yes/No question always needs an answer.
type BooleanChoiceConfig struct {
	Label         string
	HelpText      string
	Initial       *bool
	Disabled      bool
	ErrorMessages map[string]string
	Validators    []Validator
	Attrs         map[string]string
	// TrueLabel and FalseLabel default to "Yes" and "No".
	TrueLabel  string
	FalseLabel string
}

func (c BooleanChoiceConfig) withDefaults() BooleanChoiceConfig {
	c.TrueLabel = strings.TrimSpace(c.TrueLabel)
	if c.TrueLabel == "" {
		c.TrueLabel = DefaultTrueLabel
	}
	c.FalseLabel = strings.TrimSpace(c.FalseLabel)
	if c.FalseLabel == "" {
		c.FalseLabel = DefaultFalseLabel
	}
	return c
}

func (c BooleanChoiceConfig) validate() error {
	if strings.EqualFold(c.TrueLabel, c.FalseLabel) {
		return fmt.Errorf("%w: both are %q", ErrAmbiguousChoiceLabels, c.TrueLabel)
	}
	for code := range c.ErrorMessages {
		if strings.TrimSpace(code) == "" {
			return errors.New("forms: error message code is required")
		}
	}
	return nil
}

// BooleanChoiceField asks an explicit Yes/No question rendered as two radio
// buttons. It reuses NullBooleanField coercion and only adds the check that an
// answer was given; an unanswered question fails with the standard required
// error so it reads like any other missing field.
type BooleanChoiceField struct {
	NullBooleanField
}

// NewBooleanChoiceField validates cfg and builds the field.
func NewBooleanChoiceField(cfg BooleanChoiceConfig) (BooleanChoiceField, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return BooleanChoiceField{}, err
	}

	var initial any
	if cfg.Initial != nil {
		initial = *cfg.Initial
	}
	opts := Options{
		Label:         cfg.Label,
		HelpText:      cfg.HelpText,
		Initial:       initial,
		Disabled:      cfg.Disabled,
		ErrorMessages: maps.Clone(cfg.ErrorMessages),
		Validators:    slices.Clone(cfg.Validators),
		Attrs:         maps.Clone(cfg.Attrs),
	}
	return newBooleanChoice(opts, cfg.TrueLabel, cfg.FalseLabel), nil
}

// MustBooleanChoiceField is NewBooleanChoiceField for package-level form
// definitions; it panics on an invalid config.
func MustBooleanChoiceField(cfg BooleanChoiceConfig) BooleanChoiceField {
	field, err := NewBooleanChoiceField(cfg)
	if err != nil {
		panic(err)
	}
	return field
}

// BooleanChoiceFromOptions builds the field from the generic option set.
// opts.Required is ignored and forced to true.
func BooleanChoiceFromOptions(opts Options) BooleanChoiceField {
	return newBooleanChoice(opts, DefaultTrueLabel, DefaultFalseLabel)
}

func newBooleanChoice(opts Options, trueLabel, falseLabel string) BooleanChoiceField {
	opts.Required = true
	widget := widgets.RadioSelect{
		Choices: []widgets.Choice{
			{Value: "true", Label: trueLabel},
			{Value: "false", Label: falseLabel},
		},
		ExtraAttrs: maps.Clone(opts.Attrs),
	}
	return BooleanChoiceField{
		NullBooleanField: NullBooleanField{baseField: newBaseField(opts, widget, model.FieldTypeBoolean)},
	}
}

// Validate rejects an absent answer with the required error. true and false
// both pass unchanged.
func (f BooleanChoiceField) Validate(value any) error {
	if value == nil {
		return f.newError(CodeRequired, nil)
	}
	if _, ok := value.(bool); !ok {
		return f.newError(CodeInvalid, nil)
	}
	return nil
}

func (f BooleanChoiceField) Clean(raw []string) (any, error) { return cleanValue(f, raw) }

// CleanBool is Clean with a typed result.
func (f BooleanChoiceField) CleanBool(raw []string) (bool, error) {
	value, err := f.Clean(raw)
	if err != nil {
		return false, err
	}
	answer, _ := value.(bool)
	return answer, nil
}

// DisplayValue leaves an unanswered question with nothing selected.
func (f BooleanChoiceField) DisplayValue(raw []string) []string {
	value, ok := ParseNullBoolean(raw)
	if !ok {
		return nil
	}
	return formatValue(value)
}
