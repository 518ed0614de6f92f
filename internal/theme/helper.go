//
//  internal/theme/helper.go
//
//  Template functions.  Content helpers resolve images and icons; request
//  helpers expose RequestInfo fields with short, ergonomic names so HTML
//  authors do not poke through nested structs.
//

package theme

import (
	"html/template"
	"strings"

	"github.com/yanizio/sitehost/internal/asset"
	"github.com/yanizio/sitehost/internal/icon"
	"github.com/yanizio/sitehost/internal/routing"
)

// FuncMap returns the template function map.  assets may be nil, in which
// case image references are emitted unchanged.
func FuncMap(assets *asset.Resolver) template.FuncMap {
	return template.FuncMap{
		// Content helpers
		"image": func(ref string) string {
			if assets == nil {
				return ref
			}
			return assets.ResolveString(ref).URL
		},
		"static":     asset.StaticURL,
		"icon":       icon.SVG,
		"detailPath": routing.DetailPath,
		"paragraphs": func(s string) []string {
			var out []string
			for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		},
		"stars": func(n int) []struct{} {
			if n < 0 {
				n = 0
			}
			if n > 5 {
				n = 5
			}
			return make([]struct{}, n)
		},
		"dict":     dict,
		"pagePath": pagePath,

		// Request helpers
		"isBot": func(p *Page) bool {
			return p != nil && p.Info != nil && p.Info.UA.IsBot
		},
		"country": func(p *Page) string {
			if p == nil || p.Info == nil {
				return ""
			}
			return p.Info.Geo.CountryISO
		},
	}
}

// pagePath is the visitor-facing path of a page id.
func pagePath(id string) string {
	if id == "" || id == "home" {
		return "/"
	}
	return "/" + id
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
