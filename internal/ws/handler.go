package ws

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/auth"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/broadcast"
)

const sendBufferSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin allow-listing is handled by the reverse proxy.
		return true
	},
}

// Handler upgrades authenticated connections and wires them into the
// subscriber registry.
type Handler struct {
	Registry *broadcast.Registry
	Auth     *auth.Manager
	Log      *slog.Logger
}

// Serve handles GET /ws. The token comes from the `token` query param
// (browser websockets cannot set headers) or the Authorization header.
// Initial channels may be passed as `?channels=call-console,user.7`;
// further joins arrive as control messages.
func (h *Handler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	claims, err := h.Auth.Verify(token, auth.TokenTypeAccess, time.Now())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Error("websocket upgrade failed", "user", claims.UserID, "err", err)
		return
	}

	client := &Client{
		id:       uuid.NewString(),
		userID:   claims.UserID,
		role:     claims.Role,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		registry: h.Registry,
		log:      h.Log,
		closed:   make(chan struct{}),
	}

	h.Log.Info("subscriber connected", "subscriber", client.id, "user", claims.UserID, "role", claims.Role, "remote", c.Request.RemoteAddr)

	for _, channel := range splitChannels(c.Query("channels")) {
		if err := client.join(channel); err != nil {
			h.Log.Warn("initial join refused", "subscriber", client.id, "channel", channel, "err", err)
		}
	}

	go client.writePump()
	go client.readPump()
}

func splitChannels(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
