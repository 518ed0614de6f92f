// internal/routing/rewrite.go
//
// Host-based tenant rewrite middleware.
//
// Context
// -------
// Every tenant page lives under one internal route tree, /sites/{tenantKey}.
// Visitors never see that prefix: the request host picks the tenant and this
// middleware rewrites the path before chi matches routes.  Shared endpoints
// (API, static files, metrics, admin) are excluded and pass through as is.
//
// Workflow
// --------
//   1. Excluded path?  Pass through untouched.
//   2. Path already under /sites/?  404, a visitor may not address a tenant
//      directly.
//   3. Resolve the host to a tenant key; an empty key is a 404.
//   4. r.URL.Path = /sites/<key><path>, query untouched, RequestURI kept as
//      the visitor sent it.
//
// Notes
// -----
// • Idempotent for a given (host, path) pair.
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.

package routing

import (
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/tenant"
)

// SitesPrefix is the internal mount point of the tenant route tree.
const SitesPrefix = "/sites/"

// HostResolver maps a request host onto a tenant key.
type HostResolver interface {
	Resolve(host string) tenant.Key
}

// -----------------------------------------------------------------------------
// Excluder
// -----------------------------------------------------------------------------

// DefaultPrefixes are shared endpoints that never belong to a tenant.  An
// entry with a trailing "/" covers the bare directory and everything below
// it; one without matches that path and its subpaths only, so "/metrics"
// leaves a tenant page "/metrics-class" alone.
var DefaultPrefixes = []string{
	"/api/", "/_internal/", "/static/", "/metrics", "/healthz", "/admin/",
}

// DefaultAllow lists tenant documents that carry a file extension.
var DefaultAllow = []string{"/llms.txt", "/robots.txt"}

var extPattern = regexp.MustCompile(`\.[a-zA-Z0-9]{1,8}$`)

// Excluder decides which paths skip the tenant rewrite.
type Excluder struct {
	prefixes []string
	allow    map[string]struct{}
}

// NewExcluder builds an Excluder.  Nil slices select the defaults.
func NewExcluder(prefixes, allow []string) *Excluder {
	if prefixes == nil {
		prefixes = DefaultPrefixes
	}
	if allow == nil {
		allow = DefaultAllow
	}
	e := &Excluder{prefixes: prefixes, allow: make(map[string]struct{}, len(allow))}
	for _, p := range allow {
		e.allow[p] = struct{}{}
	}
	return e
}

// Excluded reports whether path is served outside the tenant tree.
func (e *Excluder) Excluded(path string) bool {
	for _, p := range e.prefixes {
		dir := strings.TrimSuffix(p, "/")
		if path == dir || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}
	if _, ok := e.allow[path]; ok {
		return false
	}
	return extPattern.MatchString(path)
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

// Rewrite returns middleware that maps tenant requests onto /sites/<key>.
// Mount it on the root mux with Use so it runs before route matching.
func Rewrite(res HostResolver, ex *Excluder) func(http.Handler) http.Handler {
	if ex == nil {
		ex = NewExcluder(nil, nil)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "" {
				path = "/"
			}

			if ex.Excluded(path) {
				next.ServeHTTP(w, r)
				return
			}
			if path == strings.TrimSuffix(SitesPrefix, "/") || strings.HasPrefix(path, SitesPrefix) {
				http.NotFound(w, r)
				return
			}

			key := res.Resolve(r.Host)
			if key == "" {
				http.NotFound(w, r)
				return
			}

			r.URL.Path = SitePath(key, path)
			r.URL.RawPath = ""
			zap.L().Debug("tenant rewrite",
				zap.String("host", r.Host),
				zap.String("from", path),
				zap.String("to", r.URL.Path))

			next.ServeHTTP(w, r)
		})
	}
}

// SitePath returns the internal path of path on tenant key.
func SitePath(key tenant.Key, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return SitesPrefix + string(key) + path
}
