package preview

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/yanizio/sitehost/internal/tenant"
)

// Broker relays raw preview messages by topic.  A topic is either a whole
// tenant or one preview session of it; see tenantTopic and sessionTopic.
type Broker interface {
	// Publish reports how many subscribers the message reached.
	Publish(ctx context.Context, topic string, raw []byte) (int, error)
	// Subscribe calls deliver with every message published to any of
	// topics until cancel is called or ctx ends.  deliver must not block.
	Subscribe(ctx context.Context, deliver func([]byte), topics ...string) (cancel func(), err error)
}

func tenantTopic(key tenant.Key) string { return "sitehost:preview:" + string(key) }

func sessionTopic(key tenant.Key, id string) string {
	return "sitehost:preview:" + string(key) + ":session:" + id
}

// -----------------------------------------------------------------------------
// In-process
// -----------------------------------------------------------------------------

type subscriber struct {
	deliver func([]byte)
}

// LocalBroker delivers within one process.
type LocalBroker struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[*subscriber]struct{})}
}

// Publish hands raw to every subscriber of topic under the broker lock, so
// concurrent publishers never interleave their deliveries.
func (b *LocalBroker) Publish(_ context.Context, topic string, raw []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[topic] {
		s.deliver(raw)
	}
	return len(b.subs[topic]), nil
}

func (b *LocalBroker) Subscribe(ctx context.Context, deliver func([]byte), topics ...string) (func(), error) {
	s := &subscriber{deliver: deliver}

	b.mu.Lock()
	for _, t := range topics {
		if b.subs[t] == nil {
			b.subs[t] = make(map[*subscriber]struct{})
		}
		b.subs[t][s] = struct{}{}
	}
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			for _, t := range topics {
				delete(b.subs[t], s)
				if len(b.subs[t]) == 0 {
					delete(b.subs, t)
				}
			}
			b.mu.Unlock()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return cancel, nil
}

// -----------------------------------------------------------------------------
// Redis pub/sub
// -----------------------------------------------------------------------------

// RedisBroker relays through Redis so a message posted to any web instance
// reaches the instance holding the session's event stream.
type RedisBroker struct {
	rdb *redis.Client
}

func NewRedisBroker(rdb *redis.Client) *RedisBroker { return &RedisBroker{rdb: rdb} }

func (b *RedisBroker) Publish(ctx context.Context, topic string, raw []byte) (int, error) {
	n, err := b.rdb.Publish(ctx, topic, raw).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish: %w", err)
	}
	return int(n), nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, deliver func([]byte), topics ...string) (func(), error) {
	ps := b.rdb.Subscribe(ctx, topics...)
	// one acknowledgement per channel
	for range topics {
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			return nil, fmt.Errorf("redis subscribe: %w", err)
		}
	}

	done := make(chan struct{})
	exited := make(chan struct{})
	var once sync.Once
	// cancel returns once deliver can no longer be called
	cancel := func() {
		once.Do(func() { close(done) })
		<-exited
	}

	go func() {
		defer close(exited)
		defer ps.Close()
		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				deliver([]byte(m.Payload))
			}
		}
	}()
	return cancel, nil
}
