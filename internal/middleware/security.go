// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects industry-standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  self-only policy, images from any HTTPS
//     origin (tenant uploads are served from presigned object-store URLs)
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Pages must be embeddable by the content editor for live preview.  When
//   an editor origin is configured, frame-ancestors names it and
//   X-Frame-Options is omitted (it cannot express an allow list).
// • Headers are set before next.ServeHTTP so they reach streamed responses;
//   handlers may still override any of them.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

const (
	hsts  = "max-age=63072000; includeSubDomains; preload"
	nosn  = "nosniff"
	refer = "strict-origin-when-cross-origin"
	perm  = "geolocation=(), microphone=(), camera=()"
	csp   = "default-src 'self'; img-src 'self' data: https:; object-src 'none'; " +
		"base-uri 'self'; form-action 'self' https:; frame-ancestors "
)

// Security returns middleware that sets security headers.  editorOrigin is
// the origin allowed to frame tenant pages, or empty to forbid framing.
func Security(editorOrigin string) func(http.Handler) http.Handler {
	policy := csp + "'none'"
	if editorOrigin != "" {
		policy = csp + "'self' " + editorOrigin
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Strict-Transport-Security", hsts)
			h.Set("Content-Security-Policy", policy)
			if editorOrigin == "" {
				h.Set("X-Frame-Options", "DENY")
			}
			h.Set("X-Content-Type-Options", nosn)
			h.Set("Referrer-Policy", refer)
			h.Set("Permissions-Policy", perm)

			next.ServeHTTP(w, r)
		})
	}
}
