package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes shared by every field type. Callers can override the message of
// any code per field through Options.ErrorMessages.
const (
	CodeRequired      = "required"
	CodeInvalid       = "invalid"
	CodeInvalidChoice = "invalid_choice"
	CodeMaxLength     = "max_length"
	CodeMinLength     = "min_length"
)

// NonFieldErrors is the ErrorDict key used for form-level errors.
const NonFieldErrors = "__all__"

var defaultMessages = map[string]string{
	CodeRequired:      "This field is required.",
	CodeInvalid:       "Enter a valid value.",
	CodeInvalidChoice: "Select a valid choice. {value} is not one of the available choices.",
	CodeMaxLength:     "Ensure this value has at most {limit} characters (it has {show}).",
	CodeMinLength:     "Ensure this value has at least {limit} characters (it has {show}).",
}

// DefaultMessage returns the built-in message for code, or "" when unknown.
func DefaultMessage(code string) string {
	return defaultMessages[code]
}

// ValidationError is the single error type produced by field and form
// validation. Two ValidationErrors match under errors.Is when their codes are
// equal, so callers can test for a kind without caring about the message.
type ValidationError struct {
	Code    string
	Message string
	Params  map[string]any
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Is reports whether target is a ValidationError with the same code.
func (e *ValidationError) Is(target error) bool {
	var other *ValidationError
	if !errors.As(target, &other) || e == nil || other == nil {
		return false
	}
	return e.Code == other.Code
}

var (
	// ErrRequiredValueMissing matches any required-field failure, including
	// an unanswered Boolean-Choice field.
	ErrRequiredValueMissing = &ValidationError{Code: CodeRequired, Message: defaultMessages[CodeRequired]}
	// ErrInvalidValue matches coercion failures.
	ErrInvalidValue = &ValidationError{Code: CodeInvalid, Message: defaultMessages[CodeInvalid]}

	// ErrFieldNameRequired is returned when a field is added without a name.
	ErrFieldNameRequired = errors.New("forms: field name is required")
	// ErrFieldRequired is returned when a nil field is added.
	ErrFieldRequired = errors.New("forms: field is required")
	// ErrDuplicateField is returned when a name is added twice.
	ErrDuplicateField = errors.New("forms: duplicate field")
)

func formatMessage(message string, params map[string]any) string {
	if len(params) == 0 || !strings.Contains(message, "{") {
		return message
	}
	pairs := make([]string, 0, len(params)*2)
	for key, value := range params {
		pairs = append(pairs, "{"+key+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(message)
}

// ErrorDict collects validation errors keyed by field name. Form-level errors
// live under NonFieldErrors.
type ErrorDict map[string][]*ValidationError

// Add appends err under field. Non-ValidationError values are wrapped with the
// invalid code so their message is preserved.
func (d ErrorDict) Add(field string, err error) {
	if d == nil || err == nil {
		return
	}
	d[field] = append(d[field], asValidationError(err))
}

// Has reports whether field has an error with the given code. An empty code
// matches any error.
func (d ErrorDict) Has(field, code string) bool {
	for _, err := range d[field] {
		if code == "" || err.Code == code {
			return true
		}
	}
	return false
}

// Messages flattens the dictionary into plain strings.
func (d ErrorDict) Messages() map[string][]string {
	if len(d) == 0 {
		return nil
	}
	out := make(map[string][]string, len(d))
	for field, errs := range d {
		for _, err := range errs {
			out[field] = append(out[field], err.Error())
		}
	}
	return out
}

// Fields returns the names carrying errors in sorted order.
func (d ErrorDict) Fields() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d ErrorDict) Error() string {
	if len(d) == 0 {
		return ""
	}
	parts := make([]string, 0, len(d))
	for _, name := range d.Fields() {
		msgs := make([]string, 0, len(d[name]))
		for _, err := range d[name] {
			msgs = append(msgs, err.Error())
		}
		parts = append(parts, name+": "+strings.Join(msgs, " "))
	}
	return "forms: " + strings.Join(parts, "; ")
}

func asValidationError(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) && verr != nil {
		return verr
	}
	return &ValidationError{Code: CodeInvalid, Message: err.Error()}
}
