package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ErrInvalidEvent is wrapped by every payload validation failure.
var ErrInvalidEvent = errors.New("event: invalid event")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEvent, fmt.Sprintf(format, args...))
}

type Kind string

const (
	KindCallUpdated            Kind = "call:updated"
	KindExtensionStatusUpdated Kind = "extension:status"
	KindCustomerNotification   Kind = "customer:notification"
)

// Notification is the payload of a customer-lookup push targeted at a
// single user's private channel.
type Notification struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (n Notification) validate() error {
	if n.UserID == "" {
		return invalidf("notification: user_id is required")
	}
	if n.Message == "" {
		return invalidf("notification: message is required")
	}
	return nil
}

// Envelope is the wire form delivered to subscribers. Field layout is
// part of the client contract; payload shape is versioned by Kind.
type Envelope struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Event is an immutable broadcast event. The payload is copied and
// serialized once at construction, so subscribers always see the
// snapshot taken at publish time even if the source record changes
// afterwards.
type Event struct {
	id         string
	kind       Kind
	originator string
	createdAt  time.Time

	call  *CallState
	ext   *ExtensionState
	notif *Notification

	encoded []byte
}

// Option configures optional event attributes.
type Option func(*Event)

// WithOriginator records the connection that caused the event, so
// routes flagged exclude-originator can skip it.
func WithOriginator(subscriberID string) Option {
	return func(e *Event) { e.originator = subscriberID }
}

func NewCallUpdated(state CallState, opts ...Option) (*Event, error) {
	if err := state.validate(); err != nil {
		return nil, err
	}
	e := &Event{kind: KindCallUpdated, call: &state}
	return e.finish(state, opts)
}

func NewExtensionStatusUpdated(state ExtensionState, opts ...Option) (*Event, error) {
	if err := state.validate(); err != nil {
		return nil, err
	}
	e := &Event{kind: KindExtensionStatusUpdated, ext: &state}
	return e.finish(state, opts)
}

func NewCustomerNotification(n Notification, opts ...Option) (*Event, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}
	e := &Event{kind: KindCustomerNotification, notif: &n}
	return e.finish(n, opts)
}

func (e *Event) finish(payload any, opts []Option) (*Event, error) {
	for _, opt := range opts {
		opt(e)
	}
	if e.id == "" {
		e.id = uuid.NewString()
	}
	if e.createdAt.IsZero() {
		e.createdAt = time.Now().UTC()
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, invalidf("marshal %s payload: %v", e.kind, err)
	}
	encoded, err := json.Marshal(Envelope{
		ID:        e.id,
		Kind:      e.kind,
		Timestamp: e.createdAt.UnixMilli(),
		Payload:   raw,
	})
	if err != nil {
		return nil, invalidf("marshal %s envelope: %v", e.kind, err)
	}
	e.encoded = encoded
	return e, nil
}

func (e *Event) ID() string           { return e.id }
func (e *Event) Kind() Kind           { return e.kind }
func (e *Event) Originator() string   { return e.originator }
func (e *Event) CreatedAt() time.Time { return e.createdAt }

// Encoded returns the serialized envelope. Callers must not mutate the
// returned slice; it is shared by every subscriber on a channel.
func (e *Event) Encoded() []byte { return e.encoded }

// Call returns the call snapshot for KindCallUpdated events.
func (e *Event) Call() (CallState, bool) {
	if e.call == nil {
		return CallState{}, false
	}
	return *e.call, true
}

// Extension returns the extension snapshot for KindExtensionStatusUpdated events.
func (e *Event) Extension() (ExtensionState, bool) {
	if e.ext == nil {
		return ExtensionState{}, false
	}
	return *e.ext, true
}

// Notification returns the payload for KindCustomerNotification events.
func (e *Event) Notification() (Notification, bool) {
	if e.notif == nil {
		return Notification{}, false
	}
	return *e.notif, true
}

// Decode reconstructs an Event from its wire envelope, re-validating
// the payload. Used by the bus listener when events arrive from another
// process.
func Decode(data []byte, originator string) (*Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, invalidf("decode envelope: %v", err)
	}

	e := &Event{
		id:         env.ID,
		kind:       env.Kind,
		originator: originator,
		createdAt:  time.UnixMilli(env.Timestamp).UTC(),
		encoded:    data,
	}

	switch env.Kind {
	case KindCallUpdated:
		var s CallState
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return nil, invalidf("decode %s payload: %v", env.Kind, err)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		e.call = &s
	case KindExtensionStatusUpdated:
		var s ExtensionState
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return nil, invalidf("decode %s payload: %v", env.Kind, err)
		}
		if err := s.validate(); err != nil {
			return nil, err
		}
		e.ext = &s
	case KindCustomerNotification:
		var n Notification
		if err := json.Unmarshal(env.Payload, &n); err != nil {
			return nil, invalidf("decode %s payload: %v", env.Kind, err)
		}
		if err := n.validate(); err != nil {
			return nil, err
		}
		e.notif = &n
	default:
		return nil, invalidf("unknown kind %q", env.Kind)
	}
	return e, nil
}
