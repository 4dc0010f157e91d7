package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/scribeapp/scribe-web/pkg/upstream"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "login", "register", "dashboard", "account"}

// views holds one parsed template set per page, each sharing the
// layout.
type views struct {
	pages map[string]*template.Template
}

func parseViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v.pages[name] = tmpl
	}
	return v, nil
}

// pageData is what every template receives.
type pageData struct {
	User       *upstream.User
	Error      string
	Username   string
	RedirectTo string
	Notes      []upstream.Note
	Folders    []upstream.Folder
	NotesErr   string
	FoldersErr string
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := s.views.pages[page]
	if !ok {
		s.logger.Error("unknown template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("render failed", "page", page, "err", err)
	}
}
