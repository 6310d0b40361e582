package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/chepyr/taskflow/internal/logging"
	"github.com/chepyr/taskflow/internal/models"
	"github.com/gorilla/websocket"
)

const (
	EventTaskCreated = "task_created"
	EventTaskUpdated = "task_updated"

	wsWriteTimeout = 5 * time.Second
	wsSendBuffer   = 16
)

// WSHub fans task events out to every connected activity-stream client.
// Each client has its own writer goroutine, so a slow client never holds up
// the request that produced the event.
type WSHub struct {
	clients map[*wsClient]bool
	mutex   sync.Mutex
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[*wsClient]bool)}
}

func (h *WSHub) register(c *wsClient) {
	h.mutex.Lock()
	h.clients[c] = true
	h.mutex.Unlock()
}

// unregister drops c and closes its send queue, which stops its writer.
func (h *WSHub) unregister(c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropLocked(c)
}

func (h *WSHub) dropLocked(c *wsClient) {
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

// Count reports the number of connected clients.
func (h *WSHub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// writeLoop drains the send queue onto the connection and closes the
// connection once the queue is closed or a write fails.
func (c *wsClient) writeLoop() {
	defer c.conn.Close()
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

type taskEvent struct {
	Event  string            `json:"event"`
	TaskID string            `json:"task_id"`
	Owner  string            `json:"owner_id"`
	Title  string            `json:"title"`
	Status models.TaskStatus `json:"status"`
}

// BroadcastTaskEvent queues a task event for every client without blocking.
// Clients whose queue is full are dropped.
func (h *WSHub) BroadcastTaskEvent(event string, task *models.Task) {
	if h == nil {
		return
	}
	message, err := json.Marshal(taskEvent{
		Event:  event,
		TaskID: task.ID.String(),
		Owner:  task.OwnerID.String(),
		Title:  task.Title,
		Status: task.Status,
	})
	if err != nil {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			// queue full: the client is not keeping up
			h.dropLocked(c)
		}
	}
}

// GET /ws - activity stream of task events
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.WSHub.register(client)
	go client.writeLoop()
	log.Debug("websocket connected")

	// the stream is one-way; reading only detects disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.WSHub.unregister(client)
			log.Debug("websocket closed", "err", err)
			return
		}
	}
}

// checkOrigin accepts requests without an Origin header, origins listed in
// AllowedOrigins ("*" allows all), and otherwise only the request's own host.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(h.AllowedOrigins) > 0 {
		return slices.Contains(h.AllowedOrigins, "*") || slices.Contains(h.AllowedOrigins, origin)
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
