// internal/tenant/types.go
//
// Content cache entry.
//
// The cache stores a pointer to an immutable content.Document inside
// `entry`, along with the load time (freshness) and a `lastSeen` UnixNano
// timestamp used by the evictor for LRU pressure.  Documents are shared
// read-only between requests; anything that wants a different document
// swaps the pointer, it never edits the value.
package tenant

import "github.com/yanizio/sitehost/internal/content"

type entry struct {
	doc      *content.Document
	loadedAt int64 // UnixNano
	lastSeen int64 // UnixNano
}
