package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// client is one subscribed connection. The write pump is the only writer
// on the underlying connection; broadcasts go through the send channel.
type client struct {
	topic string
	conn  *websocket.Conn
	send  chan []byte
}

// Hub fans broadcast messages out to the clients of each topic. Slow
// consumers drop messages rather than stall the sender.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*client]bool),
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.topic] == nil {
		h.clients[c.topic] = make(map[*client]bool)
	}
	h.clients[c.topic][c] = true
}

// remove drops the client and closes its send channel, which terminates
// the write pump. Safe to call more than once per client.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[c.topic]; ok && conns[c] {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clients, c.topic)
		}
		close(c.send)
	}
}

// HasClients reports whether anyone is subscribed to the topic.
func (h *Hub) HasClients(topic string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic]) > 0
}

// ClientCount returns the number of connected clients across all topics.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}

// Broadcast delivers the message to every client of the topic. A client
// whose send buffer is full misses this message.
func (h *Hub) Broadcast(topic string, msg Message) {
	h.mu.RLock()
	if len(h.clients[topic]) == 0 {
		h.mu.RUnlock()
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		h.mu.RUnlock()
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal broadcast message")
		return
	}

	for c := range h.clients[topic] {
		select {
		case c.send <- data:
		default:
			log.Debug().Str("topic", topic).Msg("Dropping message for slow WebSocket client")
		}
	}
	h.mu.RUnlock()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
		delete(h.clients, topic)
	}
}
