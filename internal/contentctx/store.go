// internal/contentctx/store.go
//
// Per-request content holder and read-only selectors.
//
// Context
// -------
// Every tenant page render works against exactly one content document.  The
// Store carries it through the request (and, for a live-preview session,
// through the life of the event stream) so templates and handlers read the
// same snapshot.
//
// Workflow
// --------
//   1. Provide middleware loads the tenant document once per request.
//   2. A fresh *Store is attached to the request context.
//   3. Handlers call FromContext(ctx) and read through the selectors.
//   4. The preview channel may call Replace; readers see either the old or
//      the new document, never a mix.
//
// Notes
// -----
// • Every selector is nil-safe, both on a nil *Store and on absent fields.
// • Documents are shared read-only; Replace swaps the pointer, it never
//   mutates the document in place.
// • Oxford commas, two spaces after periods.

package contentctx

import (
	"context"
	"sync/atomic"

	"github.com/yanizio/sitehost/internal/content"
)

// Store holds the active document for one page session.
type Store struct {
	doc atomic.Pointer[content.Document]
}

// New returns a Store seeded with doc (which may be nil).
func New(doc *content.Document) *Store {
	s := &Store{}
	if doc != nil {
		s.doc.Store(doc)
	}
	return s
}

// Replace swaps the active document wholesale.  No field from the previous
// document survives.
func (s *Store) Replace(doc *content.Document) {
	if s == nil {
		return
	}
	s.doc.Store(doc)
}

// Content returns the active document or nil.
func (s *Store) Content() *content.Document {
	if s == nil {
		return nil
	}
	return s.doc.Load()
}

// Fork returns an independent Store seeded with the current document.
func (s *Store) Fork() *Store { return New(s.Content()) }

type ctxKey struct{}

// WithStore attaches s to ctx.
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's Store, or nil outside a tenant request.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(ctxKey{}).(*Store)
	return s
}
