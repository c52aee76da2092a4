package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/NicklasAaStadler/booking/pkg/logging"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeState          MessageType = "state"
	MessageTypeBookingCreated MessageType = "booking_created"
	MessageTypeBookingFailed  MessageType = "booking_failed"
	MessageTypeSessionClosed  MessageType = "session_closed"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	SessionID uuid.UUID   `json:"sessionId"`
	State     any         `json:"state,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID uuid.UUID
}

// Hub fans booking session updates out to the connections watching them
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	logger     *logging.Logger
}

// NewHub creates a new Hub; call Run to start it
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[*Client]bool)
			}
			h.clients[client.sessionID][client] = true
			n := len(h.clients[client.sessionID])
			h.mu.Unlock()
			h.logger.Debug("websocket client registered", "session_id", client.sessionID, "total", n)

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.logger.Error("websocket marshal failed", "error", err)
				continue
			}

			h.mu.Lock()
			for client := range h.clients[message.SessionID] {
				select {
				case client.send <- data:
				default:
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}
	h.logger.Debug("websocket client unregistered", "session_id", client.sessionID, "remaining", len(clients))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// Publish queues a message for every client of the session. It never
// blocks; messages are dropped when the queue is full.
func (h *Hub) Publish(sessionID uuid.UUID, typ MessageType, state any, text string) {
	msg := &Message{
		Type:      typ,
		SessionID: sessionID,
		State:     state,
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message", "session_id", sessionID, "type", typ)
	}
}

// ClientCount returns the number of clients watching a session
func (h *Hub) ClientCount(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}
