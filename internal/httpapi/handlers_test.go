package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/broadcast"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
)

type capturePublisher struct {
	events []*event.Event
}

func (c *capturePublisher) Publish(_ context.Context, ev *event.Event) error {
	c.events = append(c.events, ev)
	return nil
}

func postBroadcast(t *testing.T, pub *capturePublisher, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := BroadcastHandler{Publisher: pub}
	r.POST("/v1/broadcast", h.Publish)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/broadcast", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestPublish_AcceptsValidCallEvent(t *testing.T) {
	pub := &capturePublisher{}
	w := postBroadcast(t, pub, `{
		"kind": "call:updated",
		"originator": "conn-9",
		"payload": {
			"linked_id": "lc-55",
			"direction": "inbound",
			"other_party": "+123",
			"agent_extension": "1001",
			"started_at": "2023-11-14T22:13:20Z",
			"disposition": "answered"
		}
	}`)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	if pub.events[0].Originator() != "conn-9" {
		t.Fatalf("originator lost: %q", pub.events[0].Originator())
	}
}

func TestPublish_RejectsInvalidPayload(t *testing.T) {
	pub := &capturePublisher{}
	w := postBroadcast(t, pub, `{
		"kind": "call:updated",
		"payload": {"linked_id": "", "direction": "inbound", "disposition": "ringing"}
	}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if len(pub.events) != 0 {
		t.Fatalf("invalid event must never be published")
	}
}

func TestPublish_RejectsUnknownKind(t *testing.T) {
	pub := &capturePublisher{}
	w := postBroadcast(t, pub, `{"kind": "mystery", "payload": {}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestHealth_IncludesBroadcastCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := broadcast.NewRegistry()
	h := HealthHandler{Registry: registry, Dispatcher: broadcast.NewDispatcher(registry, nil, 0)}

	r := gin.New()
	r.GET("/healthz", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, key := range []string{"subscribers", "channels", "broadcast"} {
		if !strings.Contains(body, key) {
			t.Fatalf("health body missing %q: %s", key, body)
		}
	}
}
