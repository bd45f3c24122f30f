// Package template defines the seam between page rendering and the template
// engine that executes the chrome.
package template

import "io"

// TemplateRenderer mirrors the github.com/goliatone/go-template engine
// contract. Render accepts either a template name or inline template
// content; the other two methods are the explicit forms.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
