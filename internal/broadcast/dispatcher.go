package broadcast

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
)

// DefaultDeliveryTimeout bounds a single subscriber delivery. A stuck
// subscriber is disconnected rather than allowed to stall the fan-out.
const DefaultDeliveryTimeout = 250 * time.Millisecond

var errNilEvent = errors.New("broadcast: nil event")

// Stats are cumulative dispatcher counters.
type Stats struct {
	Published int64 `json:"published"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
	TimedOut  int64 `json:"timed_out"`
}

// Dispatcher fans published events out to channel members. Delivery is
// fire-and-forget: Publish returns once fan-out has been initiated and
// never reports individual subscriber failures to the producer.
type Dispatcher struct {
	registry *Registry
	log      *slog.Logger
	timeout  time.Duration

	published atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	timedOut  atomic.Int64
}

func NewDispatcher(registry *Registry, log *slog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{registry: registry, log: log, timeout: timeout}
}

// Publish routes the event, snapshots membership per target channel and
// delivers the event's serialized envelope to every member. The same
// byte slice is handed to each subscriber; it is never re-serialized,
// so every recipient on a channel sees bit-identical content.
func (d *Dispatcher) Publish(ev *event.Event) error {
	if ev == nil || len(ev.Encoded()) == 0 {
		return errNilEvent
	}
	d.published.Add(1)

	payload := ev.Encoded()
	for _, target := range Route(ev) {
		members := d.registry.MembersOf(target.Channel)
		if len(members) == 0 {
			continue
		}
		for _, sub := range members {
			if target.ExcludeOriginator && ev.Originator() != "" && sub.ID() == ev.Originator() {
				continue
			}
			d.send(sub, payload, target.Channel)
		}
	}
	return nil
}

// send delivers to one subscriber with a time bound. Failures are
// counted and the subscriber is disconnected; they never abort the
// remaining fan-out or surface to the producer.
func (d *Dispatcher) send(sub Subscriber, payload []byte, channel string) {
	done := make(chan error, 1)
	go func() { done <- sub.Deliver(payload) }()

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			d.dropped.Add(1)
			d.registry.Disconnect(sub.ID())
			d.log.Warn("delivery failed, dropping subscriber",
				"subscriber", sub.ID(), "channel", channel, "err", err)
			return
		}
		d.delivered.Add(1)
	case <-timer.C:
		d.timedOut.Add(1)
		d.registry.Disconnect(sub.ID())
		d.log.Warn("delivery timed out, dropping subscriber",
			"subscriber", sub.ID(), "channel", channel, "timeout", d.timeout)
	}
}

// Stats returns a snapshot of the cumulative counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Published: d.published.Load(),
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		TimedOut:  d.timedOut.Load(),
	}
}
