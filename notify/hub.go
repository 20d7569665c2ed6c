package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one connected websocket subscriber.
type Client struct {
	Conn   *websocket.Conn
	UserID uint
}

// Hub tracks connected clients by user so targeted notifications can be
// pushed the moment they are persisted. Delivery is best-effort; the
// persisted row is the source of truth.
type Hub struct {
	mu      sync.Mutex
	clients map[uint]map[*Client]bool
	logger  *zap.Logger
}

const writeDeadline = 10 * time.Second

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]bool),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[client.UserID], client)
	if len(h.clients[client.UserID]) == 0 {
		delete(h.clients, client.UserID)
	}
}

// Push sends a payload to every connection a user holds. Write failures are
// logged and the dead connection dropped.
func (h *Hub) Push(userID uint, payload interface{}) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode notification payload", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients[userID] {
		client.Conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := client.Conn.WriteMessage(websocket.TextMessage, encoded); err != nil {
			h.logger.Warn("Failed to push notification",
				zap.Uint("to", userID),
				zap.Error(err),
			)
			client.Conn.Close()
			delete(h.clients[userID], client)
		}
	}
}
