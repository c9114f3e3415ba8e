package ws

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The worker serves LAN dashboards; origins are not restricted.
		return true
	},
}

// Handler upgrades HTTP requests on /ws/:topic into hub subscriptions.
type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Serve handles a WebSocket upgrade request for one topic.
func (h *Handler) Serve(c *gin.Context) {
	topic := c.Param("topic")
	if !ValidTopic(topic) {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown topic %q", topic)})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("WebSocket upgrade failed")
		return
	}

	cl := &client{
		topic: topic,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
	}
	h.hub.add(cl)
	log.Info().
		Str("topic", topic).
		Str("remote", c.Request.RemoteAddr).
		Int("clients", h.hub.ClientCount()).
		Msg("WebSocket client connected")

	go cl.writePump()
	go cl.readPump(h.hub)
}

// writePump is the sole writer on the connection. It forwards broadcasts
// and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

// readPump consumes client messages solely to detect disconnects and
// answer pings; subscribers are not expected to send anything.
func (c *client) readPump(hub *Hub) {
	defer func() {
		hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("topic", c.topic).Msg("WebSocket read error")
			}
			return
		}
	}
}
