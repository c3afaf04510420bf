package broadcast

import (
	"sync"
	"testing"
)

type fakeSubscriber struct {
	id string

	mu       sync.Mutex
	payloads [][]byte

	deliver func(payload []byte) error
}

func newFakeSubscriber(id string) *fakeSubscriber {
	return &fakeSubscriber{id: id}
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Deliver(payload []byte) error {
	if f.deliver != nil {
		return f.deliver(payload)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeSubscriber) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.payloads))
	copy(out, f.payloads)
	return out
}

func TestRegistry_SubscribeUnsubscribeIsIdempotentInverse(t *testing.T) {
	r := NewRegistry()
	a := newFakeSubscriber("a")

	r.Subscribe(a, "call-console")
	r.Subscribe(a, "call-console") // twice is a no-op
	if got := len(r.MembersOf("call-console")); got != 1 {
		t.Fatalf("expected 1 member, got %d", got)
	}

	r.Unsubscribe("a", "call-console")
	if got := len(r.MembersOf("call-console")); got != 0 {
		t.Fatalf("expected empty membership, got %d", got)
	}
	// non-member unsubscribe is a no-op
	r.Unsubscribe("a", "call-console")
	r.Unsubscribe("b", "never-existed")

	if r.Channels() != 0 || r.Subscribers() != 0 {
		t.Fatalf("expected empty registry, got channels=%d subscribers=%d", r.Channels(), r.Subscribers())
	}
}

func TestRegistry_DisconnectRemovesAllMemberships(t *testing.T) {
	r := NewRegistry()
	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")

	r.Subscribe(a, "call-console")
	r.Subscribe(a, "user.1")
	r.Subscribe(b, "call-console")

	r.Disconnect("a")

	if got := len(r.MembersOf("call-console")); got != 1 {
		t.Fatalf("expected b to remain, got %d members", got)
	}
	if got := len(r.MembersOf("user.1")); got != 0 {
		t.Fatalf("expected user.1 empty, got %d members", got)
	}
	if r.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", r.Subscribers())
	}
}

func TestRegistry_MembersOfReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")
	r.Subscribe(a, "call-console")
	r.Subscribe(b, "call-console")

	snapshot := r.MembersOf("call-console")
	r.Disconnect("a")
	r.Disconnect("b")

	// Snapshot taken before removal stays intact for the iterating fan-out.
	if len(snapshot) != 2 {
		t.Fatalf("expected snapshot of 2, got %d", len(snapshot))
	}
	if got := len(r.MembersOf("call-console")); got != 0 {
		t.Fatalf("expected live membership empty, got %d", got)
	}
}

func TestRegistry_ConcurrentChurn(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sub := newFakeSubscriber(string(rune('a' + n)))
			for j := 0; j < 200; j++ {
				r.Subscribe(sub, "call-console")
				_ = r.MembersOf("call-console")
				r.Disconnect(sub.ID())
			}
		}(i)
	}
	wg.Wait()

	if r.Subscribers() != 0 {
		t.Fatalf("expected empty registry after churn, got %d", r.Subscribers())
	}
}
