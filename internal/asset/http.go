package asset

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/sitehost/internal/tenant"
)

// SignedURLTTL bounds the lifetime of redirect targets.
const SignedURLTTL = 15 * time.Minute

// URLSigner issues short-lived URLs for tenant assets.
type URLSigner interface {
	AssetURL(ctx context.Context, key tenant.Key, filename string, ttl time.Duration) (string, error)
}

// Redirect serves GET /api/assets/{tenant}/{filename} with a 302 to a
// signed object-store URL.
func Redirect(signer URLSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := tenant.Key(chi.URLParam(r, "tenant"))
		name := chi.URLParam(r, "filename")
		target, err := signer.AssetURL(r.Context(), key, name, SignedURLTTL)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "private, max-age=300")
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// ProxyPath is the public path Redirect answers for a tenant asset.
func ProxyPath(key tenant.Key, filename string) string {
	return "/api/assets/" + string(key) + "/" + filename
}

// Static serves the bundled files below StaticPrefix.  Fingerprinted URLs
// are immutable.
func Static() http.Handler {
	sub, _ := fs.Sub(bundled, "static")
	files := http.StripPrefix(StaticPrefix, http.FileServer(http.FS(sub)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("v") != "" {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		files.ServeHTTP(w, r)
	})
}
