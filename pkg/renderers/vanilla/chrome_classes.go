package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm       ChromeClass = "formsite-form"
	ClassField      ChromeClass = "formsite-field"
	ClassFieldError ChromeClass = "formsite-field--error"
	ClassHelp       ChromeClass = "formsite-help"
	ClassError      ChromeClass = "formsite-error"
	ClassErrors     ChromeClass = "formsite-errors"
	ClassActions    ChromeClass = "formsite-actions"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":       string(ClassForm),
		"field":      string(ClassField),
		"fieldError": string(ClassFieldError),
		"help":       string(ClassHelp),
		"error":      string(ClassError),
		"errors":     string(ClassErrors),
		"actions":    string(ClassActions),
	}
}
