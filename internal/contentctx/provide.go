package contentctx

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/tenant"
)

// URLParam is the chi route parameter carrying the tenant key.
const URLParam = "tenantKey"

// Loader fetches the document for a tenant.  Any error is treated as
// not-found.
type Loader func(ctx context.Context, key tenant.Key) (*content.Document, error)

// Provide returns middleware that loads the tenant's document once and
// attaches a fresh Store.  Requests for a tenant without content are handed
// to notFound.
func Provide(load Loader, notFound http.Handler) func(http.Handler) http.Handler {
	if notFound == nil {
		notFound = http.NotFoundHandler()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := tenant.Key(chi.URLParam(r, URLParam))
			doc, err := load(r.Context(), key)
			if err != nil || doc == nil {
				zap.L().Debug("tenant content unavailable",
					zap.String("tenant", key.String()), zap.Error(err))
				notFound.ServeHTTP(w, r)
				return
			}
			ctx := WithStore(r.Context(), New(doc))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Key returns the tenant key of the current request.
func Key(r *http.Request) tenant.Key {
	return tenant.Key(chi.URLParam(r, URLParam))
}
