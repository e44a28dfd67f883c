// Package views composes HTML pages from a base layout, reusable components,
// parameterized macros and page templates.
//
// A template root looks like:
//
//	base.html          layout declaring the title, head, content and scripts blocks
//	components/*.html  named fragments included with {{template "navbar" .}}
//	macros/*.html      fragments taking arguments, called with {{template "macro.field" dict ...}}
//	pages/*.html       pages overriding the layout blocks
//
// Every page is parsed into its own set together with the layout, all components and
// all macros, and is looked up by its path relative to the root ("pages/home.html").
package views

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	layoutFile   = "base.html"
	layoutName   = "base"
	componentDir = "components"
	macroDir     = "macros"
	pageDir      = "pages"
)

// ErrTemplateNotFound is returned when no page is registered under the requested name.
var ErrTemplateNotFound = errors.New("template not found")

// Engine holds the parsed page templates.
type Engine struct {
	fsys   fs.FS
	reload bool

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// Option configures an Engine.
type Option func(*Engine)

// WithReload re-parses the template tree on every render. Meant for development
// against an on-disk template directory.
func WithReload(reload bool) Option {
	return func(e *Engine) { e.reload = reload }
}

// New parses every page under fsys and returns an Engine ready to render them.
func New(fsys fs.FS, opts ...Option) (*Engine, error) {
	e := &Engine{fsys: fsys}
	for _, opt := range opts {
		opt(e)
	}

	pages, err := parse(fsys)
	if err != nil {
		return nil, err
	}
	e.pages = pages
	return e, nil
}

func parse(fsys fs.FS) (map[string]*template.Template, error) {
	if _, err := fs.Stat(fsys, layoutFile); err != nil {
		return nil, fmt.Errorf("layout %s: %w", layoutFile, err)
	}

	components, err := fs.Glob(fsys, path.Join(componentDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("error globbing components: %w", err)
	}
	macros, err := fs.Glob(fsys, path.Join(macroDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("error globbing macros: %w", err)
	}
	pageFiles, err := fs.Glob(fsys, path.Join(pageDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("error globbing pages: %w", err)
	}

	shared := append([]string{layoutFile}, components...)
	shared = append(shared, macros...)

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		files := append(append([]string{}, shared...), page)

		// Executing a map context with a missing key fails instead of printing "<no value>".
		tmpl, err := template.New(page).
			Funcs(funcMap).
			Option("missingkey=error").
			ParseFS(fsys, files...)
		if err != nil {
			return nil, fmt.Errorf("error parsing page template %s: %w", page, err)
		}
		pages[page] = tmpl
	}
	return pages, nil
}

// Pages lists the registered page names in sorted order.
func (e *Engine) Pages() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.pages))
	for name := range e.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) lookup(name string) (*template.Template, error) {
	if e.reload {
		pages, err := parse(e.fsys)
		if err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.pages = pages
		e.mu.Unlock()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	tmpl, ok := e.pages[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrTemplateNotFound)
	}
	return tmpl, nil
}

// RenderBytes executes the named page with ctx and returns the produced HTML.
func (e *Engine) RenderBytes(name string, ctx Context) ([]byte, error) {
	tmpl, err := e.lookup(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutName, ctx); err != nil {
		return nil, fmt.Errorf("execute %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Render writes the named page with the given status. The page is rendered into a
// buffer first, so a failure yields a clean 500 rather than a half-written page.
func (e *Engine) Render(w http.ResponseWriter, status int, name string, ctx Context) {
	body, err := e.RenderBytes(name, ctx)
	if err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
