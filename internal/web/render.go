package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/jmadden/clubhouse/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns a view name plus data into an HTML response.
type Renderer interface {
	Render(w http.ResponseWriter, status int, view string, data map[string]any)
}

// TemplateRenderer renders the embedded html/template views.
type TemplateRenderer struct {
	tmpl *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render executes the named view into a buffer first so a template
// failure produces a clean 500 instead of a half-written page.
func (t *TemplateRenderer) Render(w http.ResponseWriter, status int, view string, data map[string]any) {
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, view+".html", data); err != nil {
		logger.Logger.Error().Err(err).Str("view", view).Msg("template execution failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
