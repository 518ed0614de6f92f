// Package pages serves the tenant route tree mounted at /sites/{tenantKey}.
// The tenant rewrite has already mapped the visitor's host onto the key;
// everything below reads content through the request's contentctx.Store.
package pages

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/contentctx"
	"github.com/yanizio/sitehost/internal/form"
	"github.com/yanizio/sitehost/internal/head"
	"github.com/yanizio/sitehost/internal/preview"
	"github.com/yanizio/sitehost/internal/prefs"
	"github.com/yanizio/sitehost/internal/requestinfo"
	"github.com/yanizio/sitehost/internal/routing"
	"github.com/yanizio/sitehost/internal/theme"
)

// Page ids with a detail form: "programs/<slug>" and "blog/<slug>".
const (
	programPrefix = "programs/"
	postPrefix    = "blog/"
)

// Handler renders tenant pages.
type Handler struct {
	themes  *theme.Manager
	prefs   prefs.Port
	preview *preview.Handler
	forms   *form.Handler
}

// New builds a Handler.  hub may be nil for a build without live preview,
// forms nil for one without the schedule form.
func New(themes *theme.Manager, port prefs.Port, hub *preview.Hub, forms *form.Handler) *Handler {
	h := &Handler{themes: themes, prefs: port, forms: forms}
	if hub != nil {
		h.preview = preview.NewHandler(hub, h.renderBody)
	}
	return h
}

// Mount registers the tenant tree on root.  load fetches a tenant's
// document; a failed load renders the not-found page.
func (h *Handler) Mount(root chi.Router, load contentctx.Loader) {
	root.Route("/sites/{"+contentctx.URLParam+"}", func(r chi.Router) {
		r.Use(contentctx.Provide(load, http.HandlerFunc(NotFound)))

		r.Get("/", h.Page)
		r.Get("/llms.txt", h.LLMs)
		r.Get("/robots.txt", h.Robots)
		r.Get("/programs/{slug}", h.Program)
		r.Get("/blog/{slug}", h.Post)
		if h.forms != nil {
			r.Post("/schedule", h.forms.Schedule)
		}
		if h.preview != nil {
			h.preview.Routes(r)
		}
		r.Get("/{page}", h.Page)
		r.NotFound(NotFound)
	})
}

// Page serves a section page; "/" is the home page.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "page")
	switch {
	case id == "":
		id = "home"
	case id == "home" || !content.IsPage(id):
		NotFound(w, r)
		return
	}
	h.serve(w, r, id)
}

// Program serves /programs/{slug}.
func (h *Handler) Program(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, programPrefix+chi.URLParam(r, "slug"))
}

// Post serves /blog/{slug}.
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, postPrefix+chi.URLParam(r, "slug"))
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, id string) {
	store := contentctx.FromContext(r.Context())
	p, ok := buildPage(store, id)
	if !ok {
		NotFound(w, r)
		return
	}
	th, err := h.themes.Load(store.Site().Template)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	p.Head = pageHead(store, p, canonical(r, store))
	p.Prefs = prefs.FromQuery(h.prefs, w, r)
	p.Info = requestinfo.FromContext(r.Context())
	if h.forms != nil && hasSchedule(store, p) {
		p.FormToken = h.forms.Token(r)
		p.FormStatus = r.URL.Query().Get("schedule")
	}

	_, previewing := r.URL.Query()["preview"]
	if previewing && h.preview != nil {
		p.PreviewEvents = "/_preview/events?page=" + url.QueryEscape(id)
		p.PreviewPost = "/_preview/messages"
		p.Head.MetaName("robots", "noindex")
	}

	var buf bytes.Buffer
	if err := th.Render(&buf, p); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if previewing {
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "private, max-age=60")
	}
	_, _ = buf.WriteTo(w)
}

func hasSchedule(store *contentctx.Store, p *theme.Page) bool {
	if f := store.ScheduleForm(); f == nil || !f.Enabled {
		return false
	}
	for _, id := range p.Sections {
		if id == content.SectionSchedule {
			return true
		}
	}
	return false
}

// renderBody is the live-preview RenderFunc.
func (h *Handler) renderBody(_ context.Context, store *contentctx.Store, id string) (string, error) {
	p, ok := buildPage(store, id)
	if !ok {
		return "", fmt.Errorf("page %q not available", id)
	}
	th, err := h.themes.Load(store.Site().Template)
	if err != nil {
		return "", err
	}
	return th.RenderBody(p)
}

// buildPage resolves id against store.  Detail ids whose slug matches no
// program or post report false.
func buildPage(store *contentctx.Store, id string) (*theme.Page, bool) {
	p := &theme.Page{ID: id, Store: store}
	switch {
	case strings.HasPrefix(id, programPrefix):
		prog, ok := findProgram(store, strings.TrimPrefix(id, programPrefix))
		if !ok {
			return nil, false
		}
		p.Program = &prog
		p.Sections = store.Sections("programs")
	case strings.HasPrefix(id, postPrefix):
		post, ok := findPost(store, strings.TrimPrefix(id, postPrefix))
		if !ok {
			return nil, false
		}
		p.Post = &post
		p.Sections = store.Sections("blog")
	default:
		p.Sections = store.Sections(id)
	}
	return p, true
}

// findProgram matches the slug field first, then the address EntrySlug
// gives programs saved without one.
func findProgram(store *contentctx.Store, slug string) (content.Program, bool) {
	if slug == "" {
		return content.Program{}, false
	}
	if p, ok := store.ProgramBySlug(slug); ok {
		return p, true
	}
	for _, p := range store.Programs() {
		if routing.EntrySlug(p.Slug, p.Name) == slug {
			return p, true
		}
	}
	return content.Program{}, false
}

func findPost(store *contentctx.Store, slug string) (content.BlogPost, bool) {
	if slug == "" {
		return content.BlogPost{}, false
	}
	if p, ok := store.BlogPostBySlug(slug); ok {
		return p, true
	}
	for _, p := range store.BlogPosts() {
		if routing.EntrySlug(p.Slug, p.Title) == slug {
			return p, true
		}
	}
	return content.BlogPost{}, false
}

func pageHead(store *contentctx.Store, p *theme.Page, canonicalURL string) *head.Builder {
	doc := store.Content()
	switch {
	case p.Program != nil:
		b := head.ForPage(doc, "programs", canonicalURL)
		b.SetTitle(p.Program.Name + " | " + store.Site().Name)
		if p.Program.Description != "" {
			b.SetDescription(p.Program.Description)
		}
		return b
	case p.Post != nil:
		b := head.ForPage(doc, "blog", canonicalURL)
		b.SetTitle(p.Post.Title + " | " + store.Site().Name)
		if p.Post.Excerpt != "" {
			b.SetDescription(p.Post.Excerpt)
		}
		return b
	}
	return head.ForPage(doc, p.ID, canonicalURL)
}

// canonical returns the absolute public URL of the request: the configured
// canonical domain, else the tenant key, plus the visitor-facing path.
func canonical(r *http.Request, store *contentctx.Store) string {
	host := string(contentctx.Key(r))
	if t := store.TechnicalSEO(); t != nil && t.CanonicalDomain != "" {
		host = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(t.CanonicalDomain, "https://"), "http://"), "/")
	}
	return "https://" + host + visiblePath(r)
}

// visiblePath is the path the visitor requested, before the tenant
// rewrite.
func visiblePath(r *http.Request) string {
	if u, err := url.ParseRequestURI(r.RequestURI); err == nil && u.Path != "" {
		return u.Path
	}
	return strings.TrimPrefix(r.URL.Path, routing.SitesPrefix+string(contentctx.Key(r)))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("page render failed",
		zap.String("tenant", contentctx.Key(r).String()),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}
