package forms

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/goliatone/go-formsite/pkg/model"
	"github.com/goliatone/go-formsite/pkg/widgets"
)

// CleanFunc is a form-level validation hook. It runs after every field has
// been cleaned and may report problems with BoundForm.AddError.
type CleanFunc func(b *BoundForm) error

// FormOption configures a Form at construction.
type FormOption func(*Form)

// WithPrefix namespaces every input name as "<prefix>-<name>" so several
// forms can share one page.
func WithPrefix(prefix string) FormOption {
	return func(f *Form) {
		f.prefix = strings.TrimSpace(prefix)
	}
}

// WithClean registers a form-level validation hook.
func WithClean(fn CleanFunc) FormOption {
	return func(f *Form) {
		if fn != nil {
			f.cleaners = append(f.cleaners, fn)
		}
	}
}

// WithMethod sets the HTTP method reported in the render model (default POST).
func WithMethod(method string) FormOption {
	return func(f *Form) {
		if m := strings.ToUpper(strings.TrimSpace(method)); m != "" {
			f.method = m
		}
	}
}

type namedField struct {
	name  string
	field Field
}

// Form is an ordered, named set of fields. Definitions are built once and are
// safe to share; every request binds its own BoundForm.
type Form struct {
	name     string
	prefix   string
	method   string
	fields   []namedField
	index    map[string]int
	cleaners []CleanFunc
}

// NewForm creates an empty form definition.
func NewForm(name string, options ...FormOption) *Form {
	form := &Form{
		name:   strings.TrimSpace(name),
		method: http.MethodPost,
		index:  make(map[string]int),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(form)
	}
	return form
}

// Add appends a field under name.
func (f *Form) Add(name string, field Field) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrFieldNameRequired
	}
	if field == nil {
		return fmt.Errorf("%w: %q", ErrFieldRequired, name)
	}
	if _, exists := f.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	f.index[name] = len(f.fields)
	f.fields = append(f.fields, namedField{name: name, field: field})
	return nil
}

// MustAdd mirrors Add but panics on error, simplifying form definitions.
func (f *Form) MustAdd(name string, field Field) *Form {
	if err := f.Add(name, field); err != nil {
		panic(err)
	}
	return f
}

// Name returns the form name.
func (f *Form) Name() string { return f.name }

// FieldNames returns field names in declaration order.
func (f *Form) FieldNames() []string {
	names := make([]string, 0, len(f.fields))
	for _, entry := range f.fields {
		names = append(names, entry.name)
	}
	return names
}

// Field returns the field registered under name.
func (f *Form) Field(name string) (Field, bool) {
	idx, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.fields[idx].field, true
}

// HTMLName returns the input name used for the field, including the prefix.
func (f *Form) HTMLName(name string) string {
	if f.prefix == "" {
		return name
	}
	return f.prefix + "-" + name
}

// Bind attaches submitted data to the form. Validation runs lazily on the
// first call to IsValid, Errors or CleanedData.
func (f *Form) Bind(data url.Values) *BoundForm {
	return &BoundForm{form: f, data: data, bound: true}
}

// Unbound returns a BoundForm carrying only initial values, used to render
// an empty form.
func (f *Form) Unbound() *BoundForm {
	return &BoundForm{form: f}
}

// BoundForm is the request-scoped pairing of a Form and submitted data. It is
// not safe for concurrent use.
type BoundForm struct {
	form    *Form
	data    url.Values
	bound   bool
	cleaned bool
	errors  ErrorDict
	values  map[string]any
}

// Form returns the underlying definition.
func (b *BoundForm) Form() *Form { return b.form }

// IsBound reports whether data was supplied.
func (b *BoundForm) IsBound() bool { return b.bound }

// IsValid reports whether the bound data passed validation. Unbound forms are
// never valid.
func (b *BoundForm) IsValid() bool {
	if !b.bound {
		return false
	}
	b.fullClean()
	return len(b.errors) == 0
}

// Errors returns the collected validation errors.
func (b *BoundForm) Errors() ErrorDict {
	if !b.bound {
		return nil
	}
	b.fullClean()
	return b.errors
}

// NonFieldErrors returns form-level error messages.
func (b *BoundForm) NonFieldErrors() []string {
	return b.Errors().Messages()[NonFieldErrors]
}

// CleanedData returns the cleaned values of every field that validated.
func (b *BoundForm) CleanedData() map[string]any {
	if !b.bound {
		return nil
	}
	b.fullClean()
	return maps.Clone(b.values)
}

// AddError records err against field (or NonFieldErrors) and drops the
// field's cleaned value. Intended for CleanFunc hooks.
func (b *BoundForm) AddError(field string, err error) {
	if err == nil {
		return
	}
	if b.errors == nil {
		b.errors = make(ErrorDict)
	}
	if field == "" {
		field = NonFieldErrors
	}
	b.errors.Add(field, err)
	delete(b.values, field)
}

func (b *BoundForm) fullClean() {
	if b.cleaned {
		return
	}
	b.cleaned = true
	b.errors = make(ErrorDict)
	b.values = make(map[string]any, len(b.form.fields))

	for _, entry := range b.form.fields {
		raw := b.rawValue(entry.name, entry.field)
		value, err := entry.field.Clean(raw)
		if err != nil {
			b.errors.Add(entry.name, err)
			continue
		}
		b.values[entry.name] = value
	}

	for _, clean := range b.form.cleaners {
		if err := clean(b); err != nil {
			b.AddError(NonFieldErrors, err)
		}
	}
}

func (b *BoundForm) rawValue(name string, field Field) []string {
	opts := field.Options()
	if !b.bound || opts.Disabled {
		return formatValue(opts.Initial)
	}
	widget := field.Widget()
	if widget == nil {
		return b.data[b.form.HTMLName(name)]
	}
	return widget.ValueFromData(b.data, b.form.HTMLName(name))
}

// BoundField is a field paired with its request-scoped value and errors.
type BoundField struct {
	Name     string
	HTMLName string
	ID       string
	Label    string
	HelpText string
	Value    []string
	Errors   []string
	Field    Field
}

// Widget returns the field's widget.
func (bf BoundField) Widget() widgets.Widget {
	if bf.Field == nil {
		return nil
	}
	return bf.Field.Widget()
}

// IsCheckbox reports whether the field renders as a single checkbox.
func (bf BoundField) IsCheckbox() bool {
	return widgets.IsCheckbox(bf.Widget())
}

// Model converts the bound field into the renderer-facing model.
func (bf BoundField) Model() model.Field {
	out := model.Field{
		Name:     bf.Name,
		HTMLName: bf.HTMLName,
		ID:       bf.ID,
		Label:    bf.Label,
		HelpText: bf.HelpText,
		Value:    slices.Clone(bf.Value),
		Errors:   slices.Clone(bf.Errors),
	}
	if bf.Field == nil {
		return out
	}
	opts := bf.Field.Options()
	out.Type = bf.Field.Type()
	out.Required = bf.Field.Required()
	out.Disabled = opts.Disabled
	if widget := bf.Field.Widget(); widget != nil {
		out.Widget = widget.Kind()
		out.InputType = widget.InputType()
		out.Attrs = widget.Attrs()
		out.Choices = widget.Options(bf.ID, bf.Value)
		if checkbox, ok := widget.(widgets.CheckboxInput); ok {
			out.Checked = checkbox.IsChecked(bf.Value)
		}
	}
	return out
}

// Fields returns every field in declaration order.
func (b *BoundForm) Fields() []BoundField {
	out := make([]BoundField, 0, len(b.form.fields))
	for _, entry := range b.form.fields {
		out = append(out, b.boundField(entry))
	}
	return out
}

// Field returns a single bound field.
func (b *BoundForm) Field(name string) (BoundField, bool) {
	idx, ok := b.form.index[name]
	if !ok {
		return BoundField{}, false
	}
	return b.boundField(b.form.fields[idx]), true
}

func (b *BoundForm) boundField(entry namedField) BoundField {
	opts := entry.field.Options()
	htmlName := b.form.HTMLName(entry.name)
	label := strings.TrimSpace(opts.Label)
	if label == "" {
		label = PrettyName(entry.name)
	}

	raw := b.rawValue(entry.name, entry.field)
	if d, ok := entry.field.(displayer); ok {
		raw = d.DisplayValue(raw)
	}

	var messages []string
	if b.bound {
		for _, err := range b.Errors()[entry.name] {
			messages = append(messages, err.Error())
		}
	}

	return BoundField{
		Name:     entry.name,
		HTMLName: htmlName,
		ID:       "id_" + htmlName,
		Label:    label,
		HelpText: opts.HelpText,
		Value:    raw,
		Errors:   messages,
		Field:    entry.field,
	}
}

// Model converts the form into the renderer-facing model.
func (b *BoundForm) Model() model.FormModel {
	fields := b.Fields()
	out := model.FormModel{
		Name:   b.form.name,
		Method: b.form.method,
		Bound:  b.bound,
		Fields: make([]model.Field, 0, len(fields)),
	}
	for _, field := range fields {
		out.Fields = append(out.Fields, field.Model())
	}
	if b.bound {
		out.Errors = b.NonFieldErrors()
	}
	return out
}
