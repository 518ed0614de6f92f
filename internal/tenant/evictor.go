// evictor.go houses the eviction loop for Cache.  Every EvictInterval it
// scans the map and removes:
//
//   - documents older than ttl
//   - least-recently-used documents when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package tenant

import (
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/metrics"
)

func (c *Cache) evictLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.evictTicker.C:
			c.evict(time.Now())
		}
	}
}

// evict runs one idle and one LRU pass relative to now.
func (c *Cache) evict(now time.Time) {
	var count int
	nowNano := now.UnixNano()

	// ----------------------------------------------------------------
	// Expiry pass
	// ----------------------------------------------------------------
	c.m.Range(func(key, value any) bool {
		ent := value.(*entry)
		age := time.Duration(nowNano - ent.loadedAt)
		if age > c.ttl {
			if c.m.CompareAndDelete(key, value) {
				zap.L().Debug("content evicted",
					zap.String("tenant", string(key.(Key))),
					zap.Duration("age", age.Truncate(time.Second)))
				metrics.CacheEvictTotal.Inc()
				metrics.CachedDocuments.Dec()
			}
			return true
		}
		count++
		return true
	})

	// ----------------------------------------------------------------
	// LRU pass
	// ----------------------------------------------------------------
	if count <= c.maxEntries {
		return
	}
	type kv struct {
		key Key
		at  int64
	}
	all := make([]kv, 0, count)
	c.m.Range(func(key, value any) bool {
		all = append(all, kv{key: key.(Key), at: atomic.LoadInt64(&value.(*entry).lastSeen)})
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
	for i := 0; i < len(all)-c.maxEntries; i++ {
		if _, ok := c.m.LoadAndDelete(all[i].key); ok {
			zap.L().Debug("content evicted (LRU pressure)", zap.String("tenant", string(all[i].key)))
			metrics.CacheEvictTotal.Inc()
			metrics.CachedDocuments.Dec()
		}
	}
}
