package model

// Widget kinds understood by the renderers. A field's Widget is one of these
// unless a caller registers a custom component under another name.
const (
	WidgetText     = "text"
	WidgetHidden   = "hidden"
	WidgetCheckbox = "checkbox"
	WidgetRadio    = "radio"
	WidgetSelect   = "select"
)

// FieldType is the simplified enum for the cleaned value a field produces.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeBoolean FieldType = "boolean"
)

// Choice is a single selectable option of a radio or select widget.
type Choice struct {
	ID      string `json:"id,omitempty"`
	Value   string `json:"value"`
	Label   string `json:"label"`
	Checked bool   `json:"checked,omitempty"`
}

// Field models an individual input inside a rendered form. Struct fields are
// annotated so renderers and templates can serialise them directly.
type Field struct {
	Name      string            `json:"name"`
	HTMLName  string            `json:"htmlName"`
	ID        string            `json:"id"`
	Type      FieldType         `json:"type"`
	Widget    string            `json:"widget,omitempty"`
	InputType string            `json:"inputType,omitempty"`
	Required  bool              `json:"required"`
	Disabled  bool              `json:"disabled,omitempty"`
	Label     string            `json:"label,omitempty"`
	HelpText  string            `json:"helpText,omitempty"`
	Value     []string          `json:"value,omitempty"`
	Checked   bool              `json:"checked,omitempty"`
	Choices   []Choice          `json:"choices,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
	Attrs     map[string]string `json:"attrs,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// FirstValue returns the first raw value bound to the field, or "".
func (f Field) FirstValue() string {
	if len(f.Value) == 0 {
		return ""
	}
	return f.Value[0]
}

// FormModel is the top-level representation renderers consume. Bound forms
// carry submitted values and errors; unbound forms carry initial values.
type FormModel struct {
	Name     string            `json:"name"`
	Action   string            `json:"action,omitempty"`
	Method   string            `json:"method"`
	Bound    bool              `json:"bound"`
	Fields   []Field           `json:"fields"`
	Errors   []string          `json:"errors,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Field returns the named field and whether it exists.
func (m FormModel) Field(name string) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}
