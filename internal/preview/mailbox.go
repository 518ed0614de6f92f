package preview

import (
	"slices"
	"sync"

	"go.uber.org/zap"
)

// maxQueuedScrolls bounds the scroll backlog of one session.
const maxQueuedScrolls = 16

// Mailbox is the inbound queue of one preview session.  Put never blocks.
// At most one content update is ever pending: a newer one takes the place
// of the queued one, so the last document sent is always the one applied.
// Only scrolls are dropped under pressure, oldest first.
type Mailbox struct {
	mu     sync.Mutex
	queue  []Message
	ready  chan struct{}
	done   chan struct{}
	closed sync.Once
}

func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1), done: make(chan struct{})}
}

// Deliver decodes raw and queues it.  Unrecognised messages are dropped.
func (m *Mailbox) Deliver(raw []byte) {
	msg, ok := Decode(raw)
	if !ok {
		zap.L().Debug("preview message ignored", zap.Int("bytes", len(raw)))
		return
	}
	m.Put(msg)
}

// Put queues msg.
func (m *Mailbox) Put(msg Message) {
	m.mu.Lock()
	switch msg.(type) {
	case ContentUpdate:
		if i := slices.IndexFunc(m.queue, isContentUpdate); i >= 0 {
			m.queue[i] = msg
			m.mu.Unlock()
			m.signal()
			return
		}
	case ScrollToSection:
		if m.count(isScroll) >= maxQueuedScrolls {
			i := slices.IndexFunc(m.queue, isScroll)
			m.queue = slices.Delete(m.queue, i, i+1)
			zap.L().Debug("preview scroll dropped, backlog full")
		}
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()
	m.signal()
}

// Close ends the stream.  Messages already queued are still handed out.
func (m *Mailbox) Close() {
	m.closed.Do(func() { close(m.done) })
}

func (m *Mailbox) take() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = nil
	return q
}

func (m *Mailbox) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *Mailbox) count(match func(Message) bool) int {
	n := 0
	for _, msg := range m.queue {
		if match(msg) {
			n++
		}
	}
	return n
}

func isContentUpdate(m Message) bool { _, ok := m.(ContentUpdate); return ok }
func isScroll(m Message) bool        { _, ok := m.(ScrollToSection); return ok }
