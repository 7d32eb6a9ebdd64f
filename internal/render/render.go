// Package render draws the public HTML pages.  Templates are embedded in
// the binary and executed through echo's Renderer interface.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-catalog/internal/model"
	"github.com/iliyamo/game-catalog/internal/service"
)

//go:embed templates/*.html
var files embed.FS

// Page names accepted by Renderer.Render.
const (
	PageHome     = "home"
	PageCategory = "category"
	PageGame     = "game"
	PageNotFound = "404"
	PageError    = "500"
)

var pages = []string{PageHome, PageCategory, PageGame, PageNotFound, PageError}

// HomePage lists every category and the most recent games.
type HomePage struct {
	Categories []*model.Category
	Games      []*model.Game
}

// CategoryPage lists the games of one category.
type CategoryPage struct {
	Categories []*model.Category
	Category   *model.Category
	Games      []*model.Game
}

// GamePage shows a game, its comments and the comment form.  Errors is
// empty for a fresh form.
type GamePage struct {
	Categories []*model.Category
	Game       *model.Game
	Comments   []*model.Comment
	Form       service.CommentForm
	Errors     service.FieldErrors
}

// ErrorPage is shown for 404 and 500 responses.
type ErrorPage struct {
	Status  int
	Message string
}

// URLFunc maps a stored cover reference to a URL.
type URLFunc func(ref string) string

// Renderer holds one parsed template set per page.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses the embedded templates.  coverURL resolves cover image
// references; nil leaves them unchanged.
func New(coverURL URLFunc) (*Renderer, error) {
	if coverURL == nil {
		coverURL = func(ref string) string { return ref }
	}
	funcs := template.FuncMap{
		"markdown": Markdown,
		"cover":    func(ref string) string { return coverURL(ref) },
		"date":     func(t time.Time) string { return t.Format("January 2, 2006") },
		"datetime": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006 15:04") },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(files, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("render: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
