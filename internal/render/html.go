package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/Mohd-ismail0/paper-deckle-matcher/internal/planning"
	"github.com/Mohd-ismail0/paper-deckle-matcher/web"
)

// ReportView is the data rendered by the upload page. Plan and Error are
// both optional; an empty view renders just the upload form.
type ReportView struct {
	Capacity string
	Plan     *planning.Plan
	Error    string
}

// HTMLRenderer renders the upload page and batch report.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTML parses the embedded page templates.
func NewHTML() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(web.Templates(), "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render writes the page for view to w.
func (r *HTMLRenderer) Render(w io.Writer, view ReportView) error {
	if err := r.tmpl.ExecuteTemplate(w, "index.html", view); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
