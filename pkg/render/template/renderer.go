package template

import (
	"io"
)

// TemplateRenderer is the seam page renderers depend on. The pongo2-backed
// engine in the gotemplate subpackage satisfies it; tests can swap in stubs.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
