package components

// Canonical component names used by the vanilla renderer and default registry.
// They match the widget kinds in pkg/model, except text inputs which render
// through "input".
const (
	NameInput    = "input"
	NameCheckbox = "checkbox"
	NameRadio    = "radio"
	NameSelect   = "select"
	NameHidden   = "hidden"
)
