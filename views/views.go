// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/media"
	"github.com/danielhkuo/ballotbox/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

const layoutFile = "templates/layout.html"

// Page is what every template receives.
type Page struct {
	Title    string
	Identity auth.Identity
	Flash    *models.Flash
	Data     any
}

// Renderer executes the embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"ago": func(t time.Time) string {
		return humanize.Time(t)
	},
	"comma": func(n int) string {
		return humanize.Comma(int64(n))
	},
	"ordinal": humanize.Ordinal,
	"media":   media.URL,
	"percent": func(part, total int) int {
		if total <= 0 {
			return 0
		}
		return part * 100 / total
	},
	"isID": func(p *int64, id int64) bool {
		return p != nil && *p == id
	},
}

// NewRenderer parses every page template. Page names are file names
// without the .html extension.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")

		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFiles, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Has reports whether a page exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render writes a page with the given status. The page is rendered to a
// buffer first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
