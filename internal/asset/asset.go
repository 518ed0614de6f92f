// Package asset maps the image references stored in content documents onto
// servable URLs.
//
// A reference whose filename matches a bundled image resolves to that
// image's fingerprinted URL.  Any other non-empty reference is returned
// untouched; it is assumed to be a full URL or a public path, possibly the
// signed-URL proxy served by Redirect.  Only an empty reference falls back to
// the placeholder.
package asset

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

//go:embed static
var bundled embed.FS

// StaticPrefix is the public mount point of the bundled files.
const StaticPrefix = "/static/"

// DefaultImage is the bundled placeholder used for empty references.
const DefaultImage = "placeholder.svg"

// Ref is a displayable image reference.
type Ref struct {
	URL     string
	Bundled bool
}

func (r Ref) String() string { return r.URL }

// Resolver resolves references against a fixed filename manifest.
type Resolver struct {
	manifest map[string]Ref
	fallback Ref
}

// NewResolver builds a Resolver over the bundled images.
func NewResolver() (*Resolver, error) {
	m, err := buildManifest(bundled, "static/images")
	if err != nil {
		return nil, err
	}
	return &Resolver{manifest: m, fallback: m[DefaultImage]}, nil
}

// Resolve returns a usable Ref for ref, which may be a Ref, a *Ref, a
// string, or nil.
func (r *Resolver) Resolve(ref any) Ref {
	switch v := ref.(type) {
	case Ref:
		return v
	case *Ref:
		if v != nil {
			return *v
		}
	case string:
		return r.ResolveString(v)
	}
	return r.fallback
}

// ResolveString is Resolve for the common string case.  Only the empty
// string gets the placeholder; anything else that is not bundled comes
// back exactly as given.
func (r *Resolver) ResolveString(s string) Ref {
	if s == "" {
		return r.fallback
	}
	if b, ok := r.manifest[filename(strings.TrimSpace(s))]; ok {
		return b
	}
	return Ref{URL: s}
}

// Bundled reports whether name is in the manifest.
func (r *Resolver) Bundled(name string) bool {
	_, ok := r.manifest[name]
	return ok
}

// filename extracts the last path element, ignoring any query or fragment.
func filename(s string) string {
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		s = u.Path
	}
	return path.Base(s)
}

func buildManifest(fsys fs.FS, dir string) (map[string]Ref, error) {
	m := make(map[string]Ref)
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(b)
		rel := strings.TrimPrefix(p, "static/")
		m[d.Name()] = Ref{
			URL:     StaticPrefix + rel + "?v=" + hex.EncodeToString(sum[:4]),
			Bundled: true,
		}
		return nil
	})
	return m, err
}

// StaticURL returns the fingerprinted URL of a bundled file such as
// "css/site.css".  Missing files get the plain path.
func StaticURL(name string) string {
	b, err := fs.ReadFile(bundled, "static/"+name)
	if err != nil {
		return StaticPrefix + name
	}
	sum := sha256.Sum256(b)
	return StaticPrefix + name + "?v=" + hex.EncodeToString(sum[:4])
}
