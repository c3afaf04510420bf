package broadcast

import "sync"

// Subscriber is an open delivery connection. Deliver must be safe for
// concurrent use and should return quickly; the dispatcher bounds each
// delivery with its own timeout and drops subscribers that exceed it.
type Subscriber interface {
	ID() string
	Deliver(payload []byte) error
}

// Registry exclusively owns the channel -> subscriber-set mapping.
// All operations are idempotent and safe to call concurrently with an
// in-flight fan-out: MembersOf hands out a snapshot, so a subscriber
// removed mid-broadcast simply stops receiving.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]map[string]Subscriber
	// reverse index so Disconnect does not scan every channel
	memberships map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		channels:    make(map[string]map[string]Subscriber),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Subscribe attaches a subscriber to a channel. Subscribing twice to
// the same channel is a no-op.
func (r *Registry) Subscribe(sub Subscriber, channel string) {
	if sub == nil || channel == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.channels[channel] == nil {
		r.channels[channel] = make(map[string]Subscriber)
	}
	r.channels[channel][sub.ID()] = sub

	if r.memberships[sub.ID()] == nil {
		r.memberships[sub.ID()] = make(map[string]struct{})
	}
	r.memberships[sub.ID()][channel] = struct{}{}
}

// Unsubscribe detaches a subscriber from one channel. Unsubscribing a
// non-member is a no-op.
func (r *Registry) Unsubscribe(subscriberID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(subscriberID, channel)
}

// Disconnect removes a subscriber from every channel it joined.
func (r *Registry) Disconnect(subscriberID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for channel := range r.memberships[subscriberID] {
		r.removeLocked(subscriberID, channel)
	}
}

func (r *Registry) removeLocked(subscriberID, channel string) {
	if subs, ok := r.channels[channel]; ok {
		delete(subs, subscriberID)
		if len(subs) == 0 {
			delete(r.channels, channel)
		}
	}
	if chans, ok := r.memberships[subscriberID]; ok {
		delete(chans, channel)
		if len(chans) == 0 {
			delete(r.memberships, subscriberID)
		}
	}
}

// MembersOf returns a snapshot of the channel's current subscribers.
// The fan-out iterates the snapshot without holding the registry lock.
func (r *Registry) MembersOf(channel string) []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := r.channels[channel]
	if len(subs) == 0 {
		return nil
	}
	out := make([]Subscriber, 0, len(subs))
	for _, s := range subs {
		out = append(out, s)
	}
	return out
}

// Channels returns the number of channels with at least one member.
func (r *Registry) Channels() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// Subscribers returns the number of distinct connected subscribers.
func (r *Registry) Subscribers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.memberships)
}
