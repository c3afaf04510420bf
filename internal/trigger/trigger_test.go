package trigger

import (
	"context"
	"errors"
	"testing"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/directory"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
)

type capturePublisher struct {
	events []*event.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, ev *event.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, ev)
	return nil
}

func TestSendCustomerNotification_UnknownUserPublishesNothing(t *testing.T) {
	repo := directory.NewMemoryRepo()
	pub := &capturePublisher{}
	svc := NewService(repo, pub, nil)

	_, err := svc.SendCustomerNotification(context.Background(), "999", "")
	if !errors.Is(err, directory.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event must be published for unknown user, got %d", len(pub.events))
	}
}

func TestSendCustomerNotification_TargetsUserChannel(t *testing.T) {
	repo := directory.NewMemoryRepo()
	repo.Users["7"] = directory.User{ID: "7", Name: "Rahim", Email: "rahim@example.com"}
	pub := &capturePublisher{}
	svc := NewService(repo, pub, nil)

	user, err := svc.SendCustomerNotification(context.Background(), "7", "order #1234")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if user.ID != "7" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	n, ok := pub.events[0].Notification()
	if !ok || n.UserID != "7" || n.Message != "order #1234" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestSendTestFixtures_CarryOriginator(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewService(directory.NewMemoryRepo(), pub, nil)

	call, err := svc.SendTestCall(context.Background(), "conn-a")
	if err != nil {
		t.Fatalf("test call: %v", err)
	}
	if call.Originator() != "conn-a" || call.Kind() != event.KindCallUpdated {
		t.Fatalf("unexpected call event: kind=%s originator=%s", call.Kind(), call.Originator())
	}

	ext, err := svc.SendTestExtension(context.Background(), "conn-a")
	if err != nil {
		t.Fatalf("test extension: %v", err)
	}
	if ext.Kind() != event.KindExtensionStatusUpdated {
		t.Fatalf("unexpected kind: %s", ext.Kind())
	}
	st, _ := ext.Extension()
	if st.StatusCode != 2 || st.StatusText != "Busy" || st.Availability != event.AvailabilityBusy {
		t.Fatalf("fixture status pair inconsistent: %+v", st)
	}
	if len(pub.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(pub.events))
	}
}

func TestSendTestCall_PublisherErrorSurfaces(t *testing.T) {
	pub := &capturePublisher{err: errors.New("redis down")}
	svc := NewService(directory.NewMemoryRepo(), pub, nil)
	if _, err := svc.SendTestCall(context.Background(), ""); err == nil {
		t.Fatalf("expected publish error to surface to operator")
	}
}
