package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-statuspage/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

const defaultSendTimeout = 5 * time.Second

// Encoder turns an event payload into the bytes written to every subscriber.
type Encoder func(payload any) ([]byte, error)

// Option customizes a Broadcaster.
type Option func(*Broadcaster)

// WithSendTimeout bounds each per-connection delivery attempt.
func WithSendTimeout(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d > 0 {
			b.sendTimeout = d
		}
	}
}

// WithEncoder replaces the default JSON encoder.
func WithEncoder(enc Encoder) Option {
	return func(b *Broadcaster) {
		if enc != nil {
			b.encode = enc
		}
	}
}

// WithLogger sets the broadcaster logger.
func WithLogger(lgr logger.Logger) Option {
	return func(b *Broadcaster) {
		if lgr != nil {
			b.logger = lgr
		}
	}
}

// Broadcaster delivers org-scoped events to the registry's live connections
// and evicts connections that fail to receive them.
type Broadcaster struct {
	registry    *Registry
	sendTimeout time.Duration
	encode      Encoder
	logger      logger.Logger
}

var _ broadcaster.Broadcaster = (*Broadcaster)(nil)

// NewBroadcaster builds a broadcaster over registry.
func NewBroadcaster(registry *Registry, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		registry:    registry,
		sendTimeout: defaultSendTimeout,
		encode:      json.Marshal,
		logger:      &logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Broadcast sends event.Payload once to every connection registered under
// event.OrgID at call time. Per-connection failures never escape: the failed
// connection is unregistered and closed before Broadcast returns. The only
// error returned is a payload that cannot be encoded.
func (b *Broadcaster) Broadcast(ctx context.Context, event broadcaster.Event) error {
	members := b.registry.MembersOf(event.OrgID)
	if len(members) == 0 {
		return nil
	}

	payload, err := b.encode(event.Payload)
	if err != nil {
		return fmt.Errorf("realtime: encode %s event: %w", event.Kind, err)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	for _, conn := range members {
		wg.Add(1)
		go func(conn Conn) {
			defer wg.Done()
			if err := b.deliver(ctx, conn, payload); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				b.evict(conn, event, err)
			}
		}(conn)
	}
	wg.Wait()

	b.logger.Debug("broadcast complete",
		logger.Field{Key: "org_id", Value: event.OrgID},
		logger.Field{Key: "kind", Value: event.Kind},
		logger.Field{Key: "recipients", Value: len(members)},
		logger.Field{Key: "failed", Value: failed},
	)
	return nil
}

func (b *Broadcaster) deliver(ctx context.Context, conn Conn, payload []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("realtime: send panicked: %v", r)
		}
	}()
	sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
	defer cancel()
	return conn.Send(sendCtx, payload)
}

func (b *Broadcaster) evict(conn Conn, event broadcaster.Event, cause error) {
	if !b.registry.Unregister(conn) {
		return
	}
	b.logger.Warn("dropping connection after failed delivery",
		logger.Field{Key: "conn", Value: conn.ID()},
		logger.Field{Key: "org_id", Value: event.OrgID},
		logger.Field{Key: "kind", Value: event.Kind},
		logger.Field{Key: "error", Value: cause},
	)
	if err := conn.Close(); err != nil {
		b.logger.Debug("close after failed delivery",
			logger.Field{Key: "conn", Value: conn.ID()},
			logger.Field{Key: "error", Value: err},
		)
	}
}
