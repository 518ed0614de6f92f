package tenant

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yanizio/sitehost/internal/content"
)

var errMissing = errors.New("missing")

func countingLoader(calls *int32, delay time.Duration) Loader {
	return func(_ context.Context, key Key) (*content.Document, error) {
		atomic.AddInt32(calls, 1)
		time.Sleep(delay)
		if key == "unknown" {
			return nil, errMissing
		}
		return &content.Document{Site: content.Site{Name: string(key)}}, nil
	}
}

func TestCache_CoalescesConcurrentLoads(t *testing.T) {
	var calls int32
	c := NewCache(countingLoader(&calls, 100*time.Millisecond), 0, 0)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), "acme.example.com"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("loader called %d times, want 1", n)
	}
}

func TestCache_ZeroTTLAlwaysReloads(t *testing.T) {
	var calls int32
	c := NewCache(countingLoader(&calls, 0), 0, 0)
	defer c.Close()

	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), "a"); err != nil {
			t.Fatal(err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("loader called %d times, want 2", n)
	}
}

func TestCache_TTLHitAndInvalidate(t *testing.T) {
	var calls int32
	c := NewCache(countingLoader(&calls, 0), time.Hour, 10)
	defer c.Close()

	ctx := context.Background()
	first, _ := c.Get(ctx, "a")
	second, _ := c.Get(ctx, "a")
	if first != second || atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected cached document, calls=%d", calls)
	}

	c.Invalidate("a")
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("loader called %d times after invalidate, want 2", n)
	}
}

func TestCache_ErrorsNotCached(t *testing.T) {
	var calls int32
	c := NewCache(countingLoader(&calls, 0), time.Hour, 10)
	defer c.Close()

	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), "unknown"); !errors.Is(err, errMissing) {
			t.Fatalf("err = %v, want errMissing", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Fatalf("loader called %d times, want 2", n)
	}
}

func TestCache_EvictExpiredAndLRU(t *testing.T) {
	var calls int32
	c := NewCache(countingLoader(&calls, 0), time.Minute, 2)
	defer c.Close()

	ctx := context.Background()
	for _, k := range []Key{"a", "b", "c"} {
		if _, err := c.Get(ctx, k); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	// LRU pressure drops the oldest of three.
	c.evict(time.Now())
	if _, ok := c.m.Load(Key("a")); ok {
		t.Fatal("least recently used entry survived")
	}
	if _, ok := c.m.Load(Key("c")); !ok {
		t.Fatal("most recent entry evicted")
	}

	// Everything is stale an hour from now.
	c.evict(time.Now().Add(time.Hour))
	n := 0
	c.m.Range(func(_, _ any) bool { n++; return true })
	if n != 0 {
		t.Fatalf("%d entries survived expiry", n)
	}
}

func TestCache_InvalidateDuringLoadIsNotCached(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	load := func(_ context.Context, key Key) (*content.Document, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
			<-release
			return &content.Document{Site: content.Site{Name: "old"}}, nil
		}
		return &content.Document{Site: content.Site{Name: "new"}}, nil
	}
	c := NewCache(load, time.Hour, 10)
	defer c.Close()
	ctx := context.Background()

	first := make(chan *content.Document)
	go func() {
		doc, _ := c.Get(ctx, "a")
		first <- doc
	}()

	<-started
	// the save lands while the old read is still in flight
	c.Invalidate("a")
	close(release)

	if doc := <-first; doc.Site.Name != "old" {
		t.Fatalf("in-flight read = %q, want old", doc.Site.Name)
	}
	doc, err := c.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Site.Name != "new" {
		t.Fatalf("read after invalidate = %q, want new", doc.Site.Name)
	}
}
