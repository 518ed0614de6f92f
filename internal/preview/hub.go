package preview

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/metrics"
	"github.com/yanizio/sitehost/internal/tenant"
)

// ErrNoSession reports a message addressed to a session no instance holds.
var ErrNoSession = errors.New("preview: no such session")

// Hub validates messages and routes them through a Broker, either to one
// preview session or to every session of a tenant.
type Hub struct {
	broker Broker
}

// NewHub wraps broker; nil selects a LocalBroker.
func NewHub(broker Broker) *Hub {
	if broker == nil {
		broker = NewLocalBroker()
	}
	return &Hub{broker: broker}
}

// Session is one open preview page.  ID is its address for Send.
type Session struct {
	ID    string
	Inbox *Mailbox

	cancel func()
}

// Close unsubscribes the session and closes its inbox.
func (s *Session) Close() {
	s.cancel()
	s.Inbox.Close()
}

// Open registers a preview session of key.  Its inbox receives the
// messages sent to its ID and the tenant-wide broadcasts.
func (h *Hub) Open(ctx context.Context, key tenant.Key) (*Session, error) {
	s := &Session{ID: uuid.NewString(), Inbox: NewMailbox()}
	cancel, err := h.broker.Subscribe(ctx, s.Inbox.Deliver, tenantTopic(key), sessionTopic(key, s.ID))
	if err != nil {
		return nil, err
	}
	s.cancel = cancel
	return s, nil
}

// Send decodes raw and, when it is a recognised message, delivers it to
// session id of key only.  It reports whether raw was recognised; an id
// nobody holds yields ErrNoSession.
func (h *Hub) Send(ctx context.Context, key tenant.Key, id string, raw []byte) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, ErrNoSession
	}
	ok, n, err := h.publish(ctx, key, sessionTopic(key, id), raw)
	if err == nil && ok && n == 0 {
		err = ErrNoSession
	}
	return ok, err
}

// Broadcast delivers raw to every open session of key.  The admin API uses
// it to show a saved document in the previews that are open.
func (h *Hub) Broadcast(ctx context.Context, key tenant.Key, raw []byte) (bool, error) {
	ok, _, err := h.publish(ctx, key, tenantTopic(key), raw)
	return ok, err
}

func (h *Hub) publish(ctx context.Context, key tenant.Key, topic string, raw []byte) (bool, int, error) {
	m, ok := Decode(raw)
	if !ok {
		metrics.PreviewMessagesTotal.WithLabelValues("ignored").Inc()
		return false, 0, nil
	}
	metrics.PreviewMessagesTotal.WithLabelValues(m.Kind()).Inc()
	n, err := h.broker.Publish(ctx, topic, raw)
	if err != nil {
		zap.L().Warn("preview publish failed", zap.String("tenant", key.String()), zap.Error(err))
		return true, 0, err
	}
	return true, n, nil
}
