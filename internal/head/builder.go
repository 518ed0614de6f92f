// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to a single render.  Page handlers seed it
// from the tenant's SEO data, then the theme layout decides where to emit
// each slice.
//
// Features
// --------
//   - SetTitle, SetDescription – single-value tags (last call wins).
//   - Meta, Link               – arbitrary tags with deduplication.
//   - JSONLD                   – structured data wrapped in
//     <script type="application/ld+json">…</script>.
//   - ForPage                  – seeds a Builder from a content document.
package head

import (
	"encoding/json"
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent writes; typical use is one goroutine per
// render.
type Builder struct {
	mu sync.Mutex

	title       string
	description string

	metas  []string
	links  []string
	jsonLD []string

	seen map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helpers
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// SetDescription overrides the meta description.
func (b *Builder) SetDescription(d string) {
	b.mu.Lock()
	b.description = d
	b.mu.Unlock()
}

// TitleText returns the raw title.
func (b *Builder) TitleText() string { return b.title }

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// Description returns the description meta tag or an empty string.
func (b *Builder) Description() template.HTML {
	if b.description == "" {
		return ""
	}
	return template.HTML(`<meta name="description" content="` +
		template.HTMLEscapeString(b.description) + `">`)
}

// ------------------------------------------------------------------
// Slice helpers with deduplication
// ------------------------------------------------------------------

// MetaProp adds <meta property=… content=…> with both values escaped.
func (b *Builder) MetaProp(prop, value string) {
	if value == "" {
		return
	}
	b.Meta(`<meta property="` + template.HTMLEscapeString(prop) +
		`" content="` + template.HTMLEscapeString(value) + `">`)
}

// MetaName adds <meta name=… content=…> with both values escaped.
func (b *Builder) MetaName(name, value string) {
	if value == "" {
		return
	}
	b.Meta(`<meta name="` + template.HTMLEscapeString(name) +
		`" content="` + template.HTMLEscapeString(value) + `">`)
}

func (b *Builder) Meta(tag string) { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string) { b.add("link:"+tag, &b.links, tag) }

// JSONLD marshals v and queues it as a structured-data block.
func (b *Builder) JSONLD(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	js := string(raw)
	b.add("jsonld:"+js, &b.jsonLD, js)
	return nil
}

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Rendering helpers called from theme templates
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML { return concat(b.metas) }
func (b *Builder) Links() template.HTML { return concat(b.links) }

// JSON returns all JSON-LD blocks wrapped in <script> tags.  json.Marshal
// escapes <, >, and & so the payload cannot close the script element.
func (b *Builder) JSON() template.HTML {
	if len(b.jsonLD) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

func concat(sl []string) template.HTML {
	return template.HTML(strings.Join(sl, ""))
}
