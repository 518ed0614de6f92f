package tenant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/metrics"
)

// Static defaults.  Override through the cache section of the config.
const (
	DefaultMaxEntries = 500
	EvictInterval     = time.Minute
)

// Loader fetches a tenant's document from the backing store.
type Loader func(ctx context.Context, key Key) (*content.Document, error)

// Cache coalesces concurrent loads of the same tenant and, when ttl > 0,
// keeps the result for ttl.  Errors are never cached.
type Cache struct {
	load        Loader
	sfg         singleflight.Group
	m           sync.Map // Key → *entry
	ttl         time.Duration
	maxEntries  int
	evictTicker *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once

	// gens counts invalidations per key.  A load only stores its result if
	// no Invalidate ran since it started.
	genMu sync.Mutex
	gens  map[Key]uint64
}

// NewCache constructs a Cache and, when ttl > 0, starts the background
// evictor.
func NewCache(load Loader, ttl time.Duration, maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &Cache{
		load:       load,
		ttl:        ttl,
		maxEntries: maxEntries,
		done:       make(chan struct{}),
		gens:       make(map[Key]uint64),
	}
	if ttl > 0 {
		c.evictTicker = time.NewTicker(EvictInterval)
		go c.evictLoop()
	}
	return c
}

// Get returns the document for key, loading it on demand.
func (c *Cache) Get(ctx context.Context, key Key) (*content.Document, error) {
	if doc, ok := c.fresh(key); ok {
		metrics.ContentFetchTotal.WithLabelValues("hit").Inc()
		return doc, nil
	}

	v, err, _ := c.sfg.Do(string(key), func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if doc, ok := c.fresh(key); ok {
			return doc, nil
		}
		gen := c.generation(key)
		doc, err := c.load(context.WithoutCancel(ctx), key)
		if err != nil {
			metrics.ContentFetchTotal.WithLabelValues("not_found").Inc()
			return nil, err
		}
		metrics.ContentFetchTotal.WithLabelValues("miss").Inc()
		if c.ttl > 0 {
			c.store(key, gen, doc)
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*content.Document), nil
}

// Invalidate drops key so the next Get reloads it.  Called after a write.
// A load already in flight still answers its callers but is not kept.
func (c *Cache) Invalidate(key Key) {
	c.genMu.Lock()
	c.gens[key]++
	if _, ok := c.m.LoadAndDelete(key); ok {
		metrics.CachedDocuments.Dec()
	}
	c.genMu.Unlock()
	c.sfg.Forget(string(key))
}

func (c *Cache) generation(key Key) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.gens[key]
}

// store keeps doc unless key was invalidated after gen was read.
func (c *Cache) store(key Key, gen uint64, doc *content.Document) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if c.gens[key] != gen {
		return
	}
	now := time.Now().UnixNano()
	if _, loaded := c.m.Swap(key, &entry{doc: doc, loadedAt: now, lastSeen: now}); !loaded {
		metrics.CachedDocuments.Inc()
	}
}

// Close stops the evictor.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.evictTicker != nil {
			c.evictTicker.Stop()
		}
	})
}

func (c *Cache) fresh(key Key) (*content.Document, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	v, ok := c.m.Load(key)
	if !ok {
		return nil, false
	}
	ent := v.(*entry)
	now := time.Now().UnixNano()
	if time.Duration(now-ent.loadedAt) > c.ttl {
		return nil, false
	}
	atomic.StoreInt64(&ent.lastSeen, now)
	return ent.doc, true
}
