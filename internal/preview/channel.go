package preview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/contentctx"
)

// SettleDelay is how long Mount waits before honouring a URL fragment, so
// the first render has laid out the target section.
const SettleDelay = 150 * time.Millisecond

var errUnknownMessage = errors.New("preview: unknown message")

// Sink receives the effects of applied messages.  Implementations must be
// safe for concurrent use; Mount delivers from a timer goroutine.
type Sink interface {
	ContentReplaced(doc *content.Document)
	ScrollTo(sectionID string)
}

// Channel applies preview messages to one page session.
type Channel struct {
	store  *contentctx.Store
	pageID string
	sink   Sink
	delay  time.Duration
}

// NewChannel binds a channel to the session's store and the page it shows.
func NewChannel(store *contentctx.Store, pageID string, sink Sink) *Channel {
	return &Channel{store: store, pageID: pageID, sink: sink, delay: SettleDelay}
}

// Apply handles one decoded message.
func (c *Channel) Apply(m Message) {
	switch v := m.(type) {
	case ContentUpdate:
		c.store.Replace(v.Content)
		c.sink.ContentReplaced(v.Content)
	case ScrollToSection:
		c.scroll(v.SectionID)
	}
}

// Run applies the messages of in, in queue order, until in is closed or
// ctx ends.  Each message is fully applied before the next is taken.
func (c *Channel) Run(ctx context.Context, in *Mailbox) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-in.ready:
			c.drain(in)
		case <-in.done:
			c.drain(in)
			return
		}
	}
}

func (c *Channel) drain(in *Mailbox) {
	for _, m := range in.take() {
		c.Apply(m)
	}
}

// Mount scrolls to the section named by fragment once the page has settled.
// An empty or unknown fragment does nothing.
func (c *Channel) Mount(ctx context.Context, fragment string) {
	id := strings.TrimPrefix(fragment, "#")
	if id == "" || !c.store.HasSection(c.pageID, id) {
		return
	}
	t := time.NewTimer(c.delay)
	go func() {
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			c.scroll(id)
		}
	}()
}

func (c *Channel) scroll(id string) {
	if !c.store.HasSection(c.pageID, id) {
		return
	}
	c.sink.ScrollTo(id)
}
