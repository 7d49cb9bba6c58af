package mailer

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Renderer renders email bodies from the embedded HTML templates. It is
// constructed once at startup and passed to the Builder; there is no
// package-level template cache.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{templates: templates}, nil
}

// Render executes the named template with the given event data.
func (r *Renderer) Render(name string, data interface{}) (string, error) {
	var buf strings.Builder
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
