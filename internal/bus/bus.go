// Package bus carries broadcast events between processes over Redis
// pub/sub. Any producer (CLI trigger, queue worker, the AMI listener)
// publishes through Publisher; the broadcaster process runs a Listener
// that feeds arriving events into its local dispatcher.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
)

const (
	channelPrefix  = "broadcast:"
	channelPattern = channelPrefix + "*"

	// Reconnect backoff bounds for the subscribe loop.
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
)

// frame wraps the event envelope with transport metadata that is not
// part of the subscriber wire contract.
type frame struct {
	Originator string          `json:"originator,omitempty"`
	Event      json.RawMessage `json:"event"`
}

// EventPublisher is the single entry point producers use to publish a
// well-formed event. Delivery is fire-and-forget past this call.
type EventPublisher interface {
	Publish(ctx context.Context, ev *event.Event) error
}

// Publisher publishes events to Redis, one Redis channel per kind.
type Publisher struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewPublisher(rdb *redis.Client, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{rdb: rdb, log: log}
}

func (p *Publisher) Publish(ctx context.Context, ev *event.Event) error {
	if ev == nil || len(ev.Encoded()) == 0 {
		return errors.New("bus: nil event")
	}
	payload, err := json.Marshal(frame{Originator: ev.Originator(), Event: ev.Encoded()})
	if err != nil {
		return fmt.Errorf("bus: marshal frame: %w", err)
	}

	channel := channelPrefix + string(ev.Kind())
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("bus: publish %s: %w", channel, err)
	}
	p.log.Debug("event published", "kind", ev.Kind(), "id", ev.ID(), "channel", channel)
	return nil
}

// Sink accepts decoded events on the consuming side.
type Sink interface {
	Publish(ev *event.Event) error
}

// Listener subscribes to every broadcast channel and hands decoded
// events to the sink. Run blocks until ctx is done, reconnecting with
// backoff if the subscription drops.
type Listener struct {
	rdb  *redis.Client
	sink Sink
	log  *slog.Logger
}

func NewListener(rdb *redis.Client, sink Sink, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{rdb: rdb, sink: sink, log: log}
}

func (l *Listener) Run(ctx context.Context) error {
	backoff := minBackoff
	for {
		err := l.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Error("bus subscription dropped, reconnecting", "err", err, "backoff", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (l *Listener) consume(ctx context.Context) error {
	pubsub := l.rdb.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("bus: subscribe confirmation: %w", err)
	}
	l.log.Info("bus subscribed", "pattern", channelPattern)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("bus: pubsub channel closed")
			}
			l.handle(msg.Channel, []byte(msg.Payload))
		}
	}
}

func (l *Listener) handle(channel string, payload []byte) {
	ev, err := DecodeFrame(payload)
	if err != nil {
		l.log.Error("dropping malformed bus message", "channel", channel, "err", err)
		return
	}
	if err := l.sink.Publish(ev); err != nil {
		l.log.Error("sink rejected event", "kind", ev.Kind(), "id", ev.ID(), "err", err)
	}
}

// DecodeFrame parses a transport frame back into a validated event.
func DecodeFrame(payload []byte) (*event.Event, error) {
	var f frame
	if err := json.Unmarshal(payload, &f); err != nil {
		return nil, fmt.Errorf("bus: unmarshal frame: %w", err)
	}
	ev, err := event.Decode(f.Event, f.Originator)
	if err != nil {
		return nil, err
	}
	return ev, nil
}
