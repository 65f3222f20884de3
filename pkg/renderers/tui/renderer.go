package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/render"
)

const maxChoiceAttempts = 3

// Renderer implements render.Renderer for terminal-driven sessions. Each
// visible field becomes one prompt and the answers are returned in the same
// shape a browser would submit them.
type Renderer struct {
	driver       PromptDriver
	out          io.Writer
	outputFormat OutputFormat
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, form-encoded
// output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatFormURLEncoded,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}

	switch r.outputFormat {
	case OutputFormatFormURLEncoded, OutputFormatJSON, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatJSON:
		return "application/json"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/x-www-form-urlencoded"
	}
}

// Render prompts for every field and serializes the answers.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(values)
}

// Collect prompts for every field and returns the answers keyed by input
// name, ready for forms.Form.Bind. Form-level and field errors carried by the
// model are shown before the relevant prompt.
func (r *Renderer) Collect(ctx context.Context, form model.FormModel, opts render.RenderOptions) (url.Values, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	for _, message := range render.MergeFormErrors(form.Errors, opts.Errors...) {
		if err := r.driver.Info(ctx, message); err != nil {
			return nil, err
		}
	}

	values := url.Values{}
	for name, value := range opts.Hidden {
		values.Set(name, value)
	}

	for _, field := range form.Fields {
		if err := r.promptField(ctx, field, values); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func (r *Renderer) promptField(ctx context.Context, field model.Field, values url.Values) error {
	name := inputName(field)
	if field.Widget == model.WidgetHidden || field.Disabled {
		if len(field.Value) > 0 {
			values[name] = slices.Clone(field.Value)
		}
		return nil
	}

	for _, message := range field.Errors {
		if err := r.driver.Info(ctx, fmt.Sprintf("%s: %s", displayLabel(field), message)); err != nil {
			return err
		}
	}

	switch field.Widget {
	case model.WidgetCheckbox:
		return r.promptCheckbox(ctx, field, name, values)
	case model.WidgetRadio, model.WidgetSelect:
		return r.promptChoice(ctx, field, name, values)
	default:
		return r.promptString(ctx, field, name, values)
	}
}

func (r *Renderer) promptString(ctx context.Context, field model.Field, name string, values url.Values) error {
	cfg := InputConfig{
		Message: displayLabel(field),
		Default: field.FirstValue(),
		Help:    field.HelpText,
	}
	if field.Required {
		cfg.Validator = func(answer string) error {
			if strings.TrimSpace(answer) == "" {
				return errors.New("an answer is required")
			}
			return nil
		}
	}

	response, err := r.driver.Input(ctx, cfg)
	if err != nil {
		return err
	}
	values.Set(name, response)
	return nil
}

// promptCheckbox mirrors a browser: an unticked box submits nothing.
func (r *Renderer) promptCheckbox(ctx context.Context, field model.Field, name string, values url.Values) error {
	checked, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: field.Checked,
		Help:    field.HelpText,
	})
	if err != nil {
		return err
	}
	if checked {
		values.Set(name, "on")
	}
	return nil
}

func (r *Renderer) promptChoice(ctx context.Context, field model.Field, name string, values url.Values) error {
	if len(field.Choices) == 0 {
		return fmt.Errorf("%w: %q", ErrNoChoices, field.Name)
	}
	options := make([]string, 0, len(field.Choices))
	defaultIdx := -1
	for idx, choice := range field.Choices {
		options = append(options, choice.Label)
		if choice.Checked {
			defaultIdx = idx
		}
	}

	for attempt := 1; ; attempt++ {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      displayLabel(field),
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         field.HelpText,
		})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(options) {
			values.Set(name, field.Choices[idx].Value)
			return nil
		}
		if attempt >= maxChoiceAttempts {
			return fmt.Errorf("%w: %q after %d attempts", ErrInvalidChoice, field.Name, attempt)
		}
		if err := r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", field.Name)); err != nil {
			return err
		}
	}
}

func (r *Renderer) serialize(values url.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatJSON:
		return json.Marshal(values)
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return []byte(values.Encode()), nil
	}
}

func inputName(field model.Field) string {
	if field.HTMLName != "" {
		return field.HTMLName
	}
	return field.Name
}

func displayLabel(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}

func prettyPrint(values url.Values) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, key := range keys {
		for _, value := range values[key] {
			fmt.Fprintf(&b, "%s=%s\n", key, value)
		}
	}
	return b.String()
}
