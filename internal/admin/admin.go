// internal/admin/admin.go
//
// Content API used by the admin UI.
//
// Context
// -------
// The admin UI edits one tenant document at a time.  It reads the document
// with its ETag, writes the whole document back with If-Match, and lists the
// tenant's uploaded assets.  Every route sits behind a shared bearer token.
//
// Routes (mounted under /admin/api)
// ---------------------------------
//   GET  /sites                          known tenant keys
//   GET  /sites/{tenantKey}/content      document, ETag header
//   PUT  /sites/{tenantKey}/content      store document, honours If-Match
//   GET  /sites/{tenantKey}/assets       asset object keys
//
// Notes
// -----
// • Documents travel as raw JSON.  Fields this build does not model, at any
//   depth, survive a read-modify-write.
// • Storage detail is logged, never returned.  A failed save answers
//   {"error":"failed to save content"}.
// • A successful save drops the tenant from the read cache and pushes the
//   new document to open preview sessions.
// • Oxford commas, two spaces after periods.

package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/contentctx"
	"github.com/yanizio/sitehost/internal/preview"
	"github.com/yanizio/sitehost/internal/site"
	"github.com/yanizio/sitehost/internal/storage"
	"github.com/yanizio/sitehost/internal/tenant"
)

// Prefix is where Routes mounts the API.
const Prefix = "/admin/api"

const maxBody = 4 << 20

// ContentStore is the slice of storage.Gateway the API needs.
type ContentStore interface {
	GetRaw(ctx context.Context, k tenant.Key) ([]byte, string, error)
	PutRaw(ctx context.Context, k tenant.Key, raw []byte, opts storage.PutOptions) (string, error)
	ListAssets(ctx context.Context, k tenant.Key) ([]string, error)
}

// Invalidator drops a tenant from a read cache.
type Invalidator interface {
	Invalidate(k tenant.Key)
}

// Options wires the API.  Cache and Hub are optional.
type Options struct {
	Token     string
	Origin    string
	Store     ContentStore
	Directory *site.Directory
	Cache     Invalidator
	Hub       *preview.Hub
}

// API serves the admin routes.
type API struct {
	opts Options
}

func New(opts Options) *API {
	if opts.Directory == nil {
		opts.Directory = site.NewDirectory(nil, nil)
	}
	return &API{opts: opts}
}

// Routes mounts the API on r.  Nothing is mounted without a token.
func (a *API) Routes(r chi.Router) {
	if a.opts.Token == "" {
		zap.L().Info("admin api disabled, no token configured")
		return
	}
	r.Route(Prefix, func(r chi.Router) {
		r.Use(a.cors, a.authenticate)
		r.Get("/sites", a.listSites)
		r.Route("/sites/{"+contentctx.URLParam+"}", func(r chi.Router) {
			r.Use(a.knownTenant)
			r.Get("/content", a.getContent)
			r.Put("/content", a.putContent)
			r.Get("/assets", a.listAssets)
		})
	})
}

// ------------------------------------------------------------------
// Middleware
// ------------------------------------------------------------------

func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.opts.Origin != "" && r.Header.Get("Origin") == a.opts.Origin {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", a.opts.Origin)
			h.Set("Access-Control-Allow-Methods", "GET, PUT, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, If-Match")
			h.Set("Access-Control-Expose-Headers", "ETag")
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) authenticate(next http.Handler) http.Handler {
	want := []byte(a.opts.Token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) knownTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		k := key(r)
		if k == "" || !a.opts.Directory.Contains(r.Context(), k) {
			writeError(w, http.StatusNotFound, "unknown site")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------------------------------------------
// Handlers
// ------------------------------------------------------------------

func (a *API) listSites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sites": a.opts.Directory.List(r.Context())})
}

func (a *API) getContent(w http.ResponseWriter, r *http.Request) {
	raw, version, err := a.opts.Store.GetRaw(r.Context(), key(r))
	if err != nil {
		writeError(w, http.StatusNotFound, "content not found")
		return
	}
	if version != "" {
		w.Header().Set("ETag", version)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(raw)
}

func (a *API) putContent(w http.ResponseWriter, r *http.Request) {
	k := key(r)
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		return
	}
	doc, err := content.Decode(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	etag, err := a.opts.Store.PutRaw(r.Context(), k, raw, storage.PutOptions{IfMatch: r.Header.Get("If-Match")})
	switch {
	case errors.Is(err, storage.ErrInvalidContent):
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	case errors.Is(err, storage.ErrConflict):
		writeError(w, http.StatusConflict, storage.ErrConflict.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, storage.ErrSaveFailed.Error())
		return
	}

	if a.opts.Cache != nil {
		a.opts.Cache.Invalidate(k)
	}
	a.broadcast(r.Context(), k, doc)

	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "etag": etag})
}

func (a *API) listAssets(w http.ResponseWriter, r *http.Request) {
	keys, err := a.opts.Store.ListAssets(r.Context(), key(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, storage.ErrListFailed.Error())
		return
	}
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": keys})
}

// broadcast pushes a saved document to open preview sessions.  Failures are
// logged by the hub and do not fail the save.
func (a *API) broadcast(ctx context.Context, k tenant.Key, doc *content.Document) {
	if a.opts.Hub == nil {
		return
	}
	raw, err := preview.Encode(preview.ContentUpdate{Content: doc})
	if err != nil {
		zap.L().Warn("encode preview update", zap.String("tenant", k.String()), zap.Error(err))
		return
	}
	_, _ = a.opts.Hub.Broadcast(ctx, k, raw)
}

// ------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------

func key(r *http.Request) tenant.Key {
	return tenant.Key(strings.ToLower(chi.URLParam(r, contentctx.URLParam)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write json response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
