package ws

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/broadcast"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong.
	pongWait = 60 * time.Second

	// Ping period; must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024
)

// ErrSlowConsumer is returned by Deliver when the outbound buffer is
// full; the dispatcher responds by dropping the connection.
var ErrSlowConsumer = errors.New("ws: send buffer full")

var errClosed = errors.New("ws: client closed")

// Client is one connected dashboard/agent. It satisfies
// broadcast.Subscriber: Deliver pushes onto a buffered channel and
// never blocks the fan-out.
type Client struct {
	id     string
	userID string
	role   string

	conn     *websocket.Conn
	send     chan []byte
	registry *broadcast.Registry
	log      *slog.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func (c *Client) ID() string { return c.id }

// Deliver hands the serialized event to the write pump. Non-blocking:
// a full buffer means the consumer is too slow and gets dropped.
func (c *Client) Deliver(payload []byte) error {
	select {
	case <-c.closed:
		return errClosed
	default:
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSlowConsumer
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.registry.Disconnect(c.id)
		c.conn.Close()
	})
}

// controlMessage is the client->server frame for channel membership.
type controlMessage struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

// readPump consumes membership control messages until the connection
// drops, then detaches the client from every channel.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("unexpected close", "subscriber", c.id, "user", c.userID, "err", err)
			}
			return
		}
		c.handleControl(message)
	}
}

func (c *Client) handleControl(message []byte) {
	var msg controlMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.log.Warn("malformed control message", "subscriber", c.id, "err", err)
		return
	}

	switch msg.Action {
	case "subscribe":
		if err := c.join(msg.Channel); err != nil {
			c.log.Warn("subscribe refused", "subscriber", c.id, "channel", msg.Channel, "err", err)
		}
	case "unsubscribe":
		c.registry.Unsubscribe(c.id, msg.Channel)
	default:
		c.log.Warn("unknown control action", "subscriber", c.id, "action", msg.Action)
	}
}

// join enforces the private-channel contract: user.{id} requires the
// authenticated identity to match id.
func (c *Client) join(channel string) error {
	if channel == "" {
		return errors.New("channel required")
	}
	if owner, ok := broadcast.UserChannelID(channel); ok && owner != c.userID {
		return errors.New("identity does not match private channel")
	}
	c.registry.Subscribe(c, channel)
	c.log.Info("channel joined", "subscriber", c.id, "user", c.userID, "channel", channel)
	return nil
}

// writePump drains the send buffer to the connection and keeps the
// peer alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.closed:
			return
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("write failed", "subscriber", c.id, "err", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
