// Package views renders the dashboard's server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/upb/studio-dashboard/session"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names
const (
	PageLogin          = "login"
	PageDashboard      = "dashboard"
	PageDesignerFlow   = "designer_flow"
	PagePriceStructure = "price_structure"
	PageComingSoon     = "coming_soon"
	PageForbidden      = "forbidden"
	PageNotFound       = "not_found"
	PageError          = "error"
)

var pages = []string{
	PageLogin,
	PageDashboard,
	PageDesignerFlow,
	PagePriceStructure,
	PageComingSoon,
	PageForbidden,
	PageNotFound,
	PageError,
}

// NavItem is one entry of the top navigation
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// Page is the data every template receives
type Page struct {
	Title   string
	Session *session.Session
	Nav     []NavItem
	Flash   string
	Data    interface{}
}

// Renderer executes the embedded page templates
type Renderer struct {
	templates map[string]*template.Template
	logger    *zap.Logger
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2 Jan 2006")
	},
}

// NewRenderer parses all page templates
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template, len(pages)),
		logger:    logger,
	}
	for _, name := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render writes page with status. Output is buffered so a template error
// never leaves a half-written page behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("unknown page template", zap.String("page", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		r.logger.Error("failed to render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("failed to write page", zap.String("page", name), zap.Error(err))
	}
}

// StaticHandler serves the embedded stylesheet and images under prefix
func StaticHandler(prefix string) http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
