package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/broadcast"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/bus"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/event"
	"github.com/tofabd/call-center-shajgoj-sub003/pkg/logger"
)

// BroadcastHandler accepts events over HTTP from producers that cannot
// speak Redis directly (the queue worker's PHP-era siblings, ops
// scripts). Publishing stays fire-and-forget: 202 means the event was
// accepted and handed to the bus, not that anyone received it.
type BroadcastHandler struct {
	Publisher bus.EventPublisher
}

// publishRequest mirrors the wire envelope plus transport metadata.
type publishRequest struct {
	Kind       event.Kind      `json:"kind"`
	Originator string          `json:"originator,omitempty"`
	Payload    json.RawMessage `json:"payload"`
}

func (h *BroadcastHandler) Publish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed body"})
		return
	}

	ev, err := buildEvent(req)
	if err != nil {
		if errors.Is(err, event.ErrInvalidEvent) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Publisher.Publish(ctx, ev); err != nil {
		logger.FromGin(c).Error("bus publish failed", "kind", ev.Kind(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "publish failed"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": ev.ID(), "kind": ev.Kind()})
}

func buildEvent(req publishRequest) (*event.Event, error) {
	opts := []event.Option{}
	if req.Originator != "" {
		opts = append(opts, event.WithOriginator(req.Originator))
	}

	switch req.Kind {
	case event.KindCallUpdated:
		var s event.CallState
		if err := json.Unmarshal(req.Payload, &s); err != nil {
			return nil, errors.New("malformed call payload")
		}
		return event.NewCallUpdated(s, opts...)
	case event.KindExtensionStatusUpdated:
		var s event.ExtensionState
		if err := json.Unmarshal(req.Payload, &s); err != nil {
			return nil, errors.New("malformed extension payload")
		}
		return event.NewExtensionStatusUpdated(s, opts...)
	case event.KindCustomerNotification:
		var n event.Notification
		if err := json.Unmarshal(req.Payload, &n); err != nil {
			return nil, errors.New("malformed notification payload")
		}
		return event.NewCustomerNotification(n, opts...)
	default:
		return nil, errors.New("unknown kind")
	}
}

// HealthHandler reports process liveness plus broadcast counters.
type HealthHandler struct {
	Registry   *broadcast.Registry
	Dispatcher *broadcast.Dispatcher
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.Registry != nil {
		resp["channels"] = h.Registry.Channels()
		resp["subscribers"] = h.Registry.Subscribers()
	}
	if h.Dispatcher != nil {
		resp["broadcast"] = h.Dispatcher.Stats()
	}
	c.JSON(http.StatusOK, resp)
}
