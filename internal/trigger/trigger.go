// Package trigger implements the upstream producers behind the operator
// CLI: the customer-notification trigger and the synthetic broadcast
// fixtures used to exercise the frontend console. Producers construct a
// well-formed event from their own state and hand it to the bus; they
// never wait for delivery confirmation.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/bus"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/directory"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
)

type Service struct {
	repo directory.Repository
	pub  bus.EventPublisher
	log  *slog.Logger
}

func NewService(repo directory.Repository, pub bus.EventPublisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, pub: pub, log: log}
}

// SendCustomerNotification looks the user up and publishes a
// notification to their private channel. A missing user surfaces as
// directory.ErrNotFound; nothing is published in that case.
func (s *Service) SendCustomerNotification(ctx context.Context, userID, message string) (directory.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return directory.User{}, err
	}

	if message == "" {
		message = fmt.Sprintf("Customer lookup ready for %s", user.Name)
	}
	ev, err := event.NewCustomerNotification(event.Notification{
		UserID:  user.ID,
		Title:   "Customer lookup",
		Message: message,
	})
	if err != nil {
		return directory.User{}, err
	}

	if err := s.pub.Publish(ctx, ev); err != nil {
		return directory.User{}, err
	}
	s.log.Info("customer notification published", "user", user.ID, "event", ev.ID())
	return user, nil
}

// SendTestCall publishes a synthetic call snapshot. The fixture is
// never persisted; it exists only so an operator can watch it arrive on
// the dashboard. The originator id mimics a connection triggering its
// own update.
func (s *Service) SendTestCall(ctx context.Context, originator string) (*event.Event, error) {
	if originator == "" {
		originator = uuid.NewString()
	}
	ev, err := event.NewCallUpdated(event.CallState{
		LinkedID:       fmt.Sprintf("test-call-%d", time.Now().Unix()),
		Direction:      event.DirectionInbound,
		OtherParty:     "+8801712345678",
		AgentExtension: "1001",
		StartedAt:      time.Now().UTC(),
		Disposition:    event.DispositionRinging,
	}, event.WithOriginator(originator))
	if err != nil {
		return nil, err
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		return nil, err
	}
	s.log.Info("test call published", "event", ev.ID(), "originator", originator)
	return ev, nil
}

// SendTestExtension publishes a synthetic extension status snapshot.
func (s *Service) SendTestExtension(ctx context.Context, originator string) (*event.Event, error) {
	if originator == "" {
		originator = uuid.NewString()
	}
	status, _ := event.StatusForCode(2)
	ev, err := event.NewExtensionStatusUpdated(event.ExtensionState{
		Extension:       "1001",
		AgentName:       "Test Agent",
		Availability:    status.Availability,
		StatusCode:      status.Code,
		StatusText:      status.Text,
		StatusChangedAt: time.Now().UTC(),
		IsActive:        true,
	}, event.WithOriginator(originator))
	if err != nil {
		return nil, err
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		return nil, err
	}
	s.log.Info("test extension status published", "event", ev.ID(), "originator", originator)
	return ev, nil
}
