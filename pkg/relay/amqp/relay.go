package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"github.com/goliatone/go-statuspage/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/retry"
)

var (
	ErrURLRequired       = errors.New("amqp relay: url is required")
	ErrPublisherRequired = errors.New("amqp relay: publisher is required")
)

// Publisher is the subset of *amqp091.Channel the relay needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// Config describes the broker connection.
type Config struct {
	URL           string
	Exchange      string
	DialAttempts  int
	DialBaseDelay time.Duration
}

// Message is the JSON body published for every event.
type Message struct {
	OrgID   string `json:"org_id"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// RoutingKey builds the topic key for an event: org.<org_id>.<kind>.
func RoutingKey(orgID, kind string) string {
	return "org." + orgID + "." + kind
}

// Relay republishes org events to a topic exchange so other processes can
// follow the same stream.
type Relay struct {
	mu        sync.Mutex
	publisher Publisher
	exchange  string
	logger    logger.Logger
	now       func() time.Time
	closers   []func() error
}

var _ broadcaster.Broadcaster = (*Relay)(nil)

// New wraps an already opened publisher.
func New(pub Publisher, exchange string, l logger.Logger) (*Relay, error) {
	if pub == nil {
		return nil, ErrPublisherRequired
	}
	if l == nil {
		l = &logger.Nop{}
	}
	if strings.TrimSpace(exchange) == "" {
		exchange = "statuspage.events"
	}
	return &Relay{publisher: pub, exchange: exchange, logger: l, now: time.Now}, nil
}

// Dial connects with exponential backoff, declares a durable topic exchange
// and returns a relay owning the connection.
func Dial(ctx context.Context, cfg Config, l logger.Logger) (*Relay, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, ErrURLRequired
	}
	if l == nil {
		l = &logger.Nop{}
	}
	if cfg.DialAttempts <= 0 {
		cfg.DialAttempts = 5
	}
	if cfg.DialBaseDelay <= 0 {
		cfg.DialBaseDelay = 500 * time.Millisecond
	}

	var conn *amqp091.Connection
	err := retry.Do(ctx, retry.Policy{
		Attempts: cfg.DialAttempts,
		Backoff:  retry.ExponentialBackoff{Base: cfg.DialBaseDelay, Max: 30 * time.Second},
		OnError: func(attempt int, err error) {
			l.Warn("amqp dial failed", logger.F("attempt", attempt), logger.F("error", err))
		},
	}, func(int) error {
		c, err := amqp091.Dial(cfg.URL)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("amqp relay: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp relay: channel: %w", err)
	}
	relay, err := New(ch, cfg.Exchange, l)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(relay.exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp relay: declare exchange: %w", err)
	}
	relay.closers = append(relay.closers, ch.Close, conn.Close)
	return relay, nil
}

// Broadcast publishes the event. Channels are not safe for concurrent
// publishing, so calls are serialised.
func (r *Relay) Broadcast(ctx context.Context, event broadcaster.Event) error {
	body, err := json.Marshal(Message{OrgID: event.OrgID, Kind: event.Kind, Payload: event.Payload})
	if err != nil {
		return fmt.Errorf("amqp relay: encode: %w", err)
	}
	key := RoutingKey(event.OrgID, event.Kind)

	r.mu.Lock()
	defer r.mu.Unlock()
	err = r.publisher.PublishWithContext(ctx, r.exchange, key, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    r.now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp relay: publish %s: %w", key, err)
	}
	r.logger.Debug("event relayed", logger.F("exchange", r.exchange), logger.F("key", key))
	return nil
}

// Close releases the channel and connection opened by Dial.
func (r *Relay) Close() error {
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.mu.Unlock()

	var errs []error
	for _, closeFn := range closers {
		if err := closeFn(); err != nil && !errors.Is(err, amqp091.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
