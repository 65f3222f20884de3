package template

import (
	"errors"
	"io"
)

// ErrFilterExists is returned by RegisterFilter when a filter with the same
// name is already registered.
var ErrFilterExists = errors.New("template: filter already exists")

// TemplateRenderer is the seam renderers and template tags rely on. The
// default implementation lives in the gotemplate subpackage.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
