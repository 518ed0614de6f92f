// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/yanizio/sitehost/internal/tenant"
)

// ForceHTTPS wraps h.  A plain-HTTP request for a public host gets a 308
// Permanent Redirect to the HTTPS version of the same URL.  Local hosts,
// requests a TLS-terminating proxy already marked as HTTPS, and health
// checks pass through unchanged.
func ForceHTTPS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil ||
			strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") ||
			isLocal(tenant.StripPort(r.Host)) ||
			r.URL.Path == "/healthz" {
			h.ServeHTTP(w, r)
			return
		}

		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// isLocal reports development hosts that never have a certificate.
func isLocal(host string) bool {
	host = strings.ToLower(strings.Trim(host, "[]"))
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		host == "127.0.0.1" ||
		host == "::1"
}
