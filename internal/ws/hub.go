package ws

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"

	"github.com/xiabytes/chatX/internal/service"
)

// Hub tracks connected clients by external user id and pushes change events
// to them. It is the in-process half of the reactive subscription layer; the
// redis channel carries the same events between instances.
type Hub struct {
	mu      sync.RWMutex
	clients map[string][]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string][]*Client)}
}

func (h *Hub) AddClient(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = append(h.clients[userID], c)
}

func (h *Hub) RemoveClient(userID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.clients[userID]
	for i, cc := range conns {
		if cc == c {
			h.clients[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Notify implements service.Notifier: the event goes to every connection of
// every recipient currently attached to this instance.
func (h *Hub) Notify(_ context.Context, ev service.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, userID := range ev.Recipients {
		for _, c := range h.clients[userID] {
			c.Send(ev)
		}
	}
}

// Close disconnects everything, used during shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for _, c := range conns {
			c.Close()
		}
	}
	h.clients = make(map[string][]*Client)
}

// Client is one websocket connection.
type Client struct {
	UserID string
	conn   *websocket.Conn
	send   chan any
	once   sync.Once
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		conn:   conn,
		send:   make(chan any, 16),
	}
}

func (c *Client) Send(msg any) {
	select {
	case c.send <- msg:
	default:
		// slow consumer, drop
	}
}

func (c *Client) Close() {
	c.once.Do(func() { close(c.send) })
}

// WritePump drains the send channel onto the wire. Runs until Close or a
// write error.
func (c *Client) WritePump() {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}
