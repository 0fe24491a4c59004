package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chachabrian/ridehail-backend/internal/models"
	"github.com/chachabrian/ridehail-backend/internal/observability"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the REST surface
	},
}

// WebSocketMessage is the frame pushed to clients
type WebSocketMessage struct {
	Type string    `json:"type"`
	Data RideEvent `json:"data"`
}

type clientKey struct {
	role models.Role
	id   uint
}

// Client is one socket of a signed-in principal
type Client struct {
	key  clientKey
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

type delivery struct {
	to   func(clientKey) bool
	data []byte
}

// Hub keeps the open sockets and pushes ride events to the parties of
// each ride: its rider, its driver and every connected admin. Only Run
// mutates the client set. done is closed once Run has returned.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	done       chan struct{}
	mutex      sync.RWMutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = struct{}{}
			h.mutex.Unlock()
			h.log.Debug("websocket client connected", "role", client.key.role, "id", client.key.id)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Debug("websocket client disconnected", "role", client.key.role, "id", client.key.id)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) deliver(msg delivery) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if !msg.to(client.key) {
			continue
		}
		select {
		case client.send <- msg.data:
		default:
			// slow consumer
			close(client.send)
			delete(h.clients, client)
			observability.NotificationFailuresTotal.WithLabelValues("websocket").Inc()
		}
	}
}

// RideChanged queues the event for the ride's rider, driver and admins.
// A driver replaced by a reassignment gets the event too.
// A full queue drops the event.
func (h *Hub) RideChanged(ctx context.Context, ev RideEvent) {
	data, err := json.Marshal(WebSocketMessage{Type: ev.Type, Data: ev})
	if err != nil {
		h.log.ErrorContext(ctx, "failed to encode ride event", "error", err)
		return
	}

	to := func(k clientKey) bool {
		switch k.role {
		case models.RoleAdmin:
			return true
		case models.RoleRider:
			return k.id == ev.RiderID
		case models.RoleDriver:
			return (ev.DriverID != nil && k.id == *ev.DriverID) ||
				(ev.PreviousDriverID != nil && k.id == *ev.PreviousDriverID)
		}
		return false
	}

	select {
	case h.broadcast <- delivery{to: to, data: data}:
	default:
		observability.NotificationFailuresTotal.WithLabelValues("websocket").Inc()
		h.log.WarnContext(ctx, "websocket queue full, ride event dropped", "rideId", ev.RideID, "type", ev.Type)
	}
}

// ConnectedClients returns the number of open sockets
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) attach(conn *websocket.Conn, p Principal) *Client {
	client := &Client{
		key:  clientKey{role: p.Role, id: p.ID},
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}
	select {
	case h.register <- client:
	case <-h.done:
		// hub is gone; writePump sees the closed channel and says goodbye
		close(client.send)
	}
	return client
}

func (h *Hub) detach(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ServeWS upgrades the request and streams ride events to p until the
// socket closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, p Principal) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := h.attach(conn, p)
	go client.writePump()
	go client.readPump()
}

// readPump only watches for close and pong frames; clients do not send
// commands.
func (c *Client) readPump() {
	defer func() {
		c.hub.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read error", "role", c.key.role, "id", c.key.id, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Warn("websocket write error", "role", c.key.role, "id", c.key.id, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
