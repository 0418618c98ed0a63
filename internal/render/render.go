// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the admin interface
// and the public site. Admin pages support full-page and HTMX partial
// rendering, detected via the HX-Request header. Public pages render into
// a buffer so the result can be stored in the page cache.
package render

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

	"riseup/internal/markdown"
	"riseup/internal/middleware"
	"riseup/internal/session"
)

//go:embed templates/admin/*.html templates/public/*.html
var templateFS embed.FS

// PageData holds all data passed to admin templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active nav section (e.g., "dashboard", "sponsors")
	Session   *session.Data  // Current user session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms and HTMX headers
	Data      map[string]any // Page-specific data
	Flashes   []Flash        // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	public    map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists admin templates that render as full HTML
// pages without the base layout.
var standaloneTemplates = map[string]bool{
	"login": true,
}

// New creates a Renderer by parsing the embedded admin and public
// templates. Admin pages are paired with base.html and public pages with
// layout.html. When devMode is true, pages load assets from CDN.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		public:    make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "nav-active"
				}
				return ""
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			"isDev": func() bool {
				return devMode
			},
			"markdown": markdown.Inline,
			"date": func(t time.Time) string {
				return t.Format("Jan 2, 2006 15:04")
			},
			"title": func(s string) string {
				if s == "" {
					return s
				}
				return strings.ToUpper(s[:1]) + s[1:]
			},
		},
	}

	if err := r.parse("templates/admin", "base.html", r.templates); err != nil {
		return nil, err
	}
	if err := r.parse("templates/public", "layout.html", r.public); err != nil {
		return nil, err
	}
	return r, nil
}

// parse pairs every page in dir with the layout file and stores the result
// under the page name without extension.
func (rn *Renderer) parse(dir, layout string, into map[string]*template.Template) error {
	pages, err := fs.Glob(templateFS, dir+"/*.html")
	if err != nil {
		return fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := path.Base(page)
		if name == layout {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		var tmpl *template.Template
		if standaloneTemplates[tmplName] && layout == "base.html" {
			tmpl, err = template.New(name).Funcs(rn.funcMap).ParseFS(templateFS, page)
		} else {
			tmpl, err = template.New(layout).Funcs(rn.funcMap).ParseFS(templateFS, dir+"/"+layout, page)
		}
		if err != nil {
			return fmt.Errorf("parse template %s: %w", page, err)
		}
		into[tmplName] = tmpl
	}
	return nil
}

// Page renders a full admin page or an HTMX partial, depending on the
// request headers. For HTMX requests, only the "content" block is sent.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code, used to re-render forms
// with a validation error.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if isHTMX(r) {
		execName = "content"
	} else if standaloneTemplates[name] {
		execName = name + ".html"
	}

	// Buffer so a template error never leaves a half-written page.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Public renders a public page to HTML bytes suitable for caching.
func (rn *Renderer) Public(name string, data *PublicData) ([]byte, error) {
	tmpl, ok := rn.public[name]
	if !ok {
		return nil, fmt.Errorf("public template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
