// Package theme renders tenant pages.  A Theme is one parsed template set;
// the tenant document picks it through site.template.
//
// Every theme is built from two layers, parsed in order so later
// definitions win:
//
//   - templates/shared/*.html  – section and detail templates all themes use.
//   - templates/<name>/*.html – the layout plus any section overrides.
//
// Each set must define "layout" (the full document) and "body" (the part a
// live-preview content event replaces).
package theme

import (
	"bytes"
	"html/template"
	"io"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/contentctx"
	"github.com/yanizio/sitehost/internal/head"
	"github.com/yanizio/sitehost/internal/prefs"
	"github.com/yanizio/sitehost/internal/requestinfo"
)

// Theme is returned by the Manager once all templates are parsed.
type Theme struct {
	Name     string
	Renderer *template.Template
}

// Page is the data every template receives.
type Page struct {
	ID       string
	Store    *contentctx.Store
	Sections []string
	Head     *head.Builder
	Prefs    prefs.Prefs
	Info     *requestinfo.RequestInfo

	// set on detail pages
	Program *content.Program
	Post    *content.BlogPost

	// schedule form: token for this render, outcome of the last post
	FormToken  string
	FormStatus string

	// live preview wiring, empty outside preview mode
	PreviewEvents string
	PreviewPost   string
}

// Render writes the full document.
func (t *Theme) Render(w io.Writer, p *Page) error {
	return t.Renderer.ExecuteTemplate(w, "layout", p)
}

// RenderBody returns the replaceable page body.
func (t *Theme) RenderBody(p *Page) (string, error) {
	var buf bytes.Buffer
	if err := t.Renderer.ExecuteTemplate(&buf, "body", p); err != nil {
		return "", err
	}
	return buf.String(), nil
}
