package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var pageTemplateFS embed.FS

type pageRenderer struct {
	templates *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}
	tmpl, err := template.New("pages").Funcs(funcMap).ParseFS(pageTemplateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &pageRenderer{templates: tmpl}, nil
}

func (p *pageRenderer) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderPage executes the template fully before writing so a template
// failure still produces a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data any) {
	body, err := s.pages.render(name, data)
	if err != nil {
		s.logger.Error("Template render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
