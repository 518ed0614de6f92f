// internal/routing/rewrite_test.go
//
// Unit-tests for the tenant rewrite middleware.
//
// These tests verify:
//
//   • Host + path map onto /sites/<key><path>, query kept      → 200
//   • Excluded prefixes and static files pass through untouched → 200
//   • /llms.txt is rewritten despite its extension               → 200
//   • Direct /sites/ addressing is refused                       → 404
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Lines ≤ 100 columns.

package routing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/sitehost/internal/tenant"
)

func newResolver() *tenant.Resolver {
	return tenant.NewResolver("apex-platform.io", ".localhost", ".vercel.app")
}

// capture records the path seen by the next handler.
func capture(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
}

func TestRewrite_TenantPaths(t *testing.T) {
	cases := []struct {
		host, target, want string
	}{
		{"www.apex.localhost:3000", "/about", "/sites/apex.apex-platform.io/about"},
		{"apex.localhost", "/", "/sites/apex.apex-platform.io/"},
		{"acme---git-main-a1b2.vercel.app", "/programs/kids", "/sites/acme.apex-platform.io/programs/kids"},
		{"www.customdojo.com", "/blog/first-class", "/sites/customdojo.com/blog/first-class"},
		{"apex.localhost", "/llms.txt", "/sites/apex.apex-platform.io/llms.txt"},
	}
	mw := Rewrite(newResolver(), nil)

	for _, tc := range cases {
		var got string
		req := httptest.NewRequest(http.MethodGet, tc.target+"?ref=nav", nil)
		req.Host = tc.host
		rr := httptest.NewRecorder()

		mw(capture(&got)).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s%s: status = %d", tc.host, tc.target, rr.Code)
		}
		if got != tc.want {
			t.Errorf("%s%s: path = %q, want %q", tc.host, tc.target, got, tc.want)
		}
		if req.URL.RawQuery != "ref=nav" {
			t.Errorf("query lost: %q", req.URL.RawQuery)
		}
		if req.RequestURI != tc.target+"?ref=nav" {
			t.Errorf("visible URL changed: %q", req.RequestURI)
		}
	}
}

func TestRewrite_Excluded(t *testing.T) {
	mw := Rewrite(newResolver(), nil)
	for _, p := range []string{
		"/api/assets/apex/logo.png", "/static/site.css", "/favicon.ico",
		"/metrics", "/healthz", "/admin/api/sites", "/_internal/objects/x",
	} {
		var got string
		req := httptest.NewRequest(http.MethodGet, p, nil)
		req.Host = "apex.localhost"
		mw(capture(&got)).ServeHTTP(httptest.NewRecorder(), req)
		if got != p {
			t.Errorf("%s rewritten to %q", p, got)
		}
	}
}

func TestRewrite_DirectSitesPathRefused(t *testing.T) {
	var got string
	req := httptest.NewRequest(http.MethodGet, "/sites/other.example.com/", nil)
	req.Host = "apex.localhost"
	rr := httptest.NewRecorder()

	Rewrite(newResolver(), nil)(capture(&got)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if got != "" {
		t.Fatal("next handler should not run")
	}
}

func TestRewrite_EmptyHostRefused(t *testing.T) {
	var got string
	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	req.Host = ""
	rr := httptest.NewRecorder()

	Rewrite(newResolver(), nil)(capture(&got)).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound || got != "" {
		t.Fatalf("status = %d, next saw %q; want 404 without dispatch", rr.Code, got)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	mw := Rewrite(newResolver(), nil)
	var first, second string
	for _, out := range []*string{&first, &second} {
		req := httptest.NewRequest(http.MethodGet, "/contact", nil)
		req.Host = "www.apex.localhost:3000"
		mw(capture(out)).ServeHTTP(httptest.NewRecorder(), req)
	}
	if first != second {
		t.Fatalf("not deterministic: %q vs %q", first, second)
	}
}

func TestExcluder(t *testing.T) {
	ex := NewExcluder(nil, nil)
	cases := map[string]bool{
		"/":               false,
		"/about":          false,
		"/blog/v1.2-news": false,
		"/llms.txt":       false,
		"/logo.svg":       true,
		"/img/hero.webp":  true,
		"/metrics":        true,
		"/metricsfoo":     false,
		"/metrics-class":  false,
		"/healthzone":     false,
		"/healthz":        true,
		"/metrics/extra":  true,
		"/api":            true,
		"/apiary":         false,
	}
	for p, want := range cases {
		if got := ex.Excluded(p); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", p, got, want)
		}
	}
}
