package bus

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
)

func TestDecodeFrame_RoundTrip(t *testing.T) {
	ev, err := event.NewCallUpdated(event.CallState{
		LinkedID:    "lc-9",
		Direction:   event.DirectionOutbound,
		OtherParty:  "+8801000000000",
		Disposition: event.DispositionAnswered,
		StartedAt:   time.Unix(1700000000, 0).UTC(),
	}, event.WithOriginator("conn-1"))
	if err != nil {
		t.Fatalf("event: %v", err)
	}

	payload, err := json.Marshal(frame{Originator: ev.Originator(), Event: ev.Encoded()})
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}

	got, err := DecodeFrame(payload)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if got.Originator() != "conn-1" {
		t.Fatalf("originator lost in transport: %q", got.Originator())
	}
	if !bytes.Equal(got.Encoded(), ev.Encoded()) {
		t.Fatalf("wire envelope changed in transport")
	}
}

func TestDecodeFrame_RejectsMalformedPayload(t *testing.T) {
	if _, err := DecodeFrame([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed frame")
	}
	if _, err := DecodeFrame([]byte(`{"event":{"kind":"call:updated","payload":{"linked_id":""}}}`)); !errors.Is(err, event.ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent for invalid payload, got %v", err)
	}
}
