package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/tenant"
)

/* ------------------------------------------------------------------------- */
/* fakes                                                                     */
/* ------------------------------------------------------------------------- */

// memStore is an in-memory ObjectStore that can be told to fail.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failGet error
	failPut error
	puts    []string
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return Object{}, m.failGet
	}
	b, ok := m.objects[key]
	if !ok {
		return Object{}, ErrNotExist
	}
	return Object{Body: b, ETag: etagOf(b)}, nil
}

func (m *memStore) Put(_ context.Context, key string, body []byte, opts PutOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return "", m.failPut
	}
	if opts.IfMatch != "" && etagOf(m.objects[key]) != opts.IfMatch {
		return "", ErrPreconditionFailed
	}
	m.objects[key] = append([]byte(nil), body...)
	m.puts = append(m.puts, key)
	return etagOf(body), nil
}

func (m *memStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func sampleDoc() *content.Document {
	return &content.Document{
		SchemaVersion: content.CurrentSchema,
		Site:          content.Site{Name: "Apex Martial Arts", Tagline: "Train with purpose"},
		Programs: []content.Program{
			{Slug: "kids", Name: "Kids Karate", AgeRange: "5-12"},
		},
	}
}

// ignoreVersion drops the storage-assigned version before comparing.
var ignoreVersion = cmp.FilterPath(func(p cmp.Path) bool {
	return p.Last().String() == ".Version"
}, cmp.Ignore())

/* ------------------------------------------------------------------------- */
/* gateway                                                                   */
/* ------------------------------------------------------------------------- */

func TestGatewayRoundTrip(t *testing.T) {
	mem := newMemStore()
	g, err := NewGateway(mem)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	key := tenant.Key("apex.apex-platform.io")

	doc := sampleDoc()
	if _, err := g.Put(ctx, key, doc, PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := mem.puts[0]; got != "apex.apex-platform.io/content.json" {
		t.Fatalf("stored under %q", got)
	}
	raw := string(mem.objects["apex.apex-platform.io/content.json"])
	if !strings.Contains(raw, "\n  \"site\"") {
		t.Fatalf("expected 2-space indented JSON, got:\n%s", raw)
	}

	got, err := g.Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(doc, got, ignoreVersion); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.Version == "" {
		t.Fatal("expected version tag on read")
	}
}

func TestGatewayPutIdempotent(t *testing.T) {
	mem := newMemStore()
	g, _ := NewGateway(mem)
	ctx := context.Background()
	key := tenant.Key("apex.apex-platform.io")

	for i := 0; i < 2; i++ {
		if _, err := g.Put(ctx, key, sampleDoc(), PutOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := g.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sampleDoc(), got, ignoreVersion); diff != "" {
		t.Fatalf("mismatch after repeated put:\n%s", diff)
	}
}

func TestGatewayGetIdempotent(t *testing.T) {
	mem := newMemStore()
	g, _ := NewGateway(mem)
	ctx := context.Background()
	key := tenant.Key("apex.apex-platform.io")

	if _, err := g.Put(ctx, key, sampleDoc(), PutOptions{}); err != nil {
		t.Fatal(err)
	}
	first, err := g.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	second, err := g.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("consecutive reads differ (-first +second):\n%s", diff)
	}
}

// A save followed by an invalidation is visible to the next read through
// the tenant cache, even with a long retention.
func TestGatewayPutInvalidateGetThroughCache(t *testing.T) {
	mem := newMemStore()
	g, _ := NewGateway(mem)
	ctx := context.Background()
	key := tenant.Key("apex.apex-platform.io")

	if _, err := g.Put(ctx, key, sampleDoc(), PutOptions{}); err != nil {
		t.Fatal(err)
	}
	c := tenant.NewCache(g.Get, time.Hour, 10)
	defer c.Close()

	before, err := c.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := c.Get(ctx, key)
	if diff := cmp.Diff(before, again); diff != "" {
		t.Fatalf("cached reads differ:\n%s", diff)
	}

	next := sampleDoc()
	next.Site.Name = "Apex v2"
	if _, err := g.Put(ctx, key, next, PutOptions{IfMatch: before.Version}); err != nil {
		t.Fatal(err)
	}
	c.Invalidate(key)

	after, err := c.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(next, after, ignoreVersion); diff != "" {
		t.Fatalf("read after save (-want +got):\n%s", diff)
	}
	if after.Version == before.Version {
		t.Fatal("version not advanced")
	}
}

func TestGatewayRawRoundTrip(t *testing.T) {
	mem := newMemStore()
	g, _ := NewGateway(mem)
	ctx := context.Background()
	key := tenant.Key("apex.apex-platform.io")

	in := `{"site":{"name":"Apex","address":"1 Main St"},"hero":{"title":"Hi","badge":"New!"},"programs":[]}`
	etag, err := g.PutRaw(ctx, key, []byte(in), PutOptions{})
	if err != nil {
		t.Fatal(err)
	}
	raw, version, err := g.GetRaw(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if version != etag {
		t.Fatalf("version = %q, want %q", version, etag)
	}
	for _, want := range []string{`"address": "1 Main St"`, `"badge": "New!"`, `"programs": []`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("stored document lost %s:\n%s", want, raw)
		}
	}

	// the typed view still reads it
	doc, err := g.Get(ctx, key)
	if err != nil || doc.Hero == nil || doc.Hero.Title != "Hi" {
		t.Fatalf("Get = %+v, %v", doc, err)
	}

	if _, err := g.PutRaw(ctx, key, []byte(`{"site":`), PutOptions{}); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("invalid body err = %v, want ErrInvalidContent", err)
	}
	if got, _, _ := g.GetRaw(ctx, key); string(got) != string(raw) {
		t.Fatal("rejected write changed the stored document")
	}
}

func TestGatewayGetNotFound(t *testing.T) {
	mem := newMemStore()
	mem.objects["broken.example.com/content.json"] = []byte("{not json")
	g, _ := NewGateway(mem)
	ctx := context.Background()

	for _, k := range []tenant.Key{"unknown-tenant", "broken.example.com", ""} {
		if _, err := g.Get(ctx, k); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) err = %v, want ErrNotFound", k, err)
		}
	}

	mem.failGet = errors.New("connection reset")
	if _, err := g.Get(ctx, "apex.apex-platform.io"); !errors.Is(err, ErrNotFound) {
		t.Errorf("storage failure err = %v, want ErrNotFound", err)
	}
}

func TestGatewayPutFailures(t *testing.T) {
	mem := newMemStore()
	g, _ := NewGateway(mem)
	ctx := context.Background()
	key := tenant.Key("apex.apex-platform.io")

	mem.failPut = errors.New("AccessDenied: bucket policy")
	_, err := g.Put(ctx, key, sampleDoc(), PutOptions{})
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("err = %v, want ErrSaveFailed", err)
	}
	if strings.Contains(err.Error(), "AccessDenied") {
		t.Fatal("storage detail leaked through gateway error")
	}

	mem.failPut = nil
	etag, err := g.Put(ctx, key, sampleDoc(), PutOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Put(ctx, key, sampleDoc(), PutOptions{IfMatch: `"stale"`}); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale if-match err = %v, want ErrConflict", err)
	}
	if _, err := g.Put(ctx, key, sampleDoc(), PutOptions{IfMatch: etag}); err != nil {
		t.Fatalf("matching if-match: %v", err)
	}
}

func TestGatewayLocalFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "content.json")
	g, err := NewGateway(newMemStore(), WithLocalFile(file))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := g.Put(ctx, "one.example.com", sampleDoc(), PutOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Fatalf("local file not written: %v", err)
	}
	// every tenant reads the same file
	got, err := g.Get(ctx, "two.example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.Site.Name != "Apex Martial Arts" {
		t.Fatalf("site name = %q", got.Site.Name)
	}
}

func TestGatewayAssets(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "/_internal/objects")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{
		"apex.apex-platform.io/assets/hero.jpg",
		"apex.apex-platform.io/assets/logo.png",
		"apex.apex-platform.io/content.json",
		"other.example.com/assets/x.png",
	} {
		if _, err := fs.Put(ctx, k, []byte("x"), PutOptions{}); err != nil {
			t.Fatal(err)
		}
	}
	g, _ := NewGateway(fs)

	got, err := g.ListAssets(ctx, "apex.apex-platform.io")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"apex.apex-platform.io/assets/hero.jpg", "apex.apex-platform.io/assets/logo.png"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("assets (-want +got):\n%s", diff)
	}

	url, err := g.AssetURL(ctx, "apex.apex-platform.io", "../../other.example.com/assets/x.png", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if url != "/_internal/objects/apex.apex-platform.io/assets/x.png" {
		t.Fatalf("url = %q", url)
	}
}

/* ------------------------------------------------------------------------- */
/* file store                                                                */
/* ------------------------------------------------------------------------- */

func TestFileStore(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := fs.Get(ctx, "a/b.json"); !errors.Is(err, ErrNotExist) {
		t.Fatalf("missing err = %v", err)
	}
	if _, err := fs.Put(ctx, "../escape", []byte("x"), PutOptions{}); err == nil {
		t.Fatal("expected key outside root to be refused")
	}

	etag, err := fs.Put(ctx, "a/b.json", []byte(`{"a":1}`), PutOptions{})
	if err != nil {
		t.Fatal(err)
	}
	obj, err := fs.Get(ctx, "a/b.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(obj.Body) != `{"a":1}` || obj.ETag != etag {
		t.Fatalf("got %q %s", obj.Body, obj.ETag)
	}
	if _, err := fs.Put(ctx, "a/b.json", []byte("y"), PutOptions{IfMatch: `"nope"`}); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("if-match err = %v", err)
	}
}
