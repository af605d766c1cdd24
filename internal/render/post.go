package render

import (
	"embed"
	"html/template"
	"io"

	"blog-backend/internal/models"
)

//go:embed templates/*.html
var templates embed.FS

const postDetailTemplate = "post-detail.html"

type PostRenderer interface {
	Render(w io.Writer, post *models.Post) error
}

// TemplateRenderer renders the post detail page. Field values are escaped
// for their HTML context by html/template.
type TemplateRenderer struct {
	tmpl *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

func (r *TemplateRenderer) Render(w io.Writer, post *models.Post) error {
	return r.tmpl.ExecuteTemplate(w, postDetailTemplate, post)
}
