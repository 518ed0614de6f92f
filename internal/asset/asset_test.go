package asset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/sitehost/internal/tenant"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestResolve(t *testing.T) {
	r := newResolver(t)

	got := r.Resolve("/uploads/2024/hero-dojo.svg")
	if !got.Bundled || !strings.HasPrefix(got.URL, "/static/images/hero-dojo.svg?v=") {
		t.Fatalf("bundled lookup = %+v", got)
	}

	ext := "https://cdn.example.com/apex/assets/team.jpg?w=400"
	if got := r.Resolve(ext); got.URL != ext || got.Bundled {
		t.Fatalf("unknown filename = %+v, want unchanged", got)
	}

	def := r.Resolve(DefaultImage)
	for _, in := range []any{"", nil, 42, (*Ref)(nil)} {
		if got := r.Resolve(in); got != def {
			t.Errorf("Resolve(%#v) = %+v, want placeholder", in, got)
		}
	}

	for _, in := range []string{"   ", " /uploads/unknown.png "} {
		if got := r.Resolve(in); got.URL != in || got.Bundled {
			t.Errorf("Resolve(%q) = %+v, want the input unchanged", in, got)
		}
	}
	if got := r.Resolve(" logo.svg "); !got.Bundled {
		t.Errorf("padded bundled name not found: %+v", got)
	}

	pre := Ref{URL: "/already/resolved.png"}
	if got := r.Resolve(pre); got != pre {
		t.Fatalf("pass-through = %+v", got)
	}
	if got := r.Resolve(&pre); got != pre {
		t.Fatalf("pointer pass-through = %+v", got)
	}
}

func TestResolve_QueryIgnoredForLookup(t *testing.T) {
	r := newResolver(t)
	if got := r.Resolve("logo.svg?size=2x"); !got.Bundled {
		t.Fatalf("got %+v", got)
	}
}

type fakeSigner struct{ err error }

func (f fakeSigner) AssetURL(_ context.Context, k tenant.Key, name string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://bucket.s3.amazonaws.com/" + string(k) + "/assets/" + name + "?X-Amz-Signature=abc", nil
}

func TestRedirect(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/assets/{tenant}/{filename}", Redirect(fakeSigner{}))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, ProxyPath("apex.apex-platform.io", "hero.jpg"), nil))
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rr.Code)
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "apex.apex-platform.io/assets/hero.jpg") {
		t.Fatalf("location = %q", loc)
	}

	r = chi.NewRouter()
	r.Get("/api/assets/{tenant}/{filename}", Redirect(fakeSigner{err: errors.New("nope")}))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/assets/a/b.jpg", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestStatic(t *testing.T) {
	ref := newResolver(t).Resolve("logo.svg")
	rr := httptest.NewRecorder()
	Static().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, ref.URL, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "immutable") {
		t.Fatal("fingerprinted asset should be immutable")
	}
}

func TestStaticURL(t *testing.T) {
	if u := StaticURL("js/preview.js"); !strings.HasPrefix(u, "/static/js/preview.js?v=") {
		t.Fatalf("url = %q", u)
	}
	if u := StaticURL("missing.css"); u != "/static/missing.css" {
		t.Fatalf("url = %q", u)
	}
}
