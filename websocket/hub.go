package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventRegistrationSubmitted = "registration_submitted"
	EventRegistrationReviewed  = "registration_reviewed"
)

// Notification is the envelope pushed to connected admin clients.
type Notification struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client is a single admin websocket connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the set of connected admin clients and fans out notifications.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	mu         sync.RWMutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		logger:     logger,
	}
}

// Run processes register/unregister/broadcast events. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Printf("Admin websocket client connected (%d total)", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Printf("Admin websocket client disconnected (%d total)", h.ClientCount())

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastToAdmins serializes the notification and queues it for all clients.
func (h *Hub) BroadcastToAdmins(event string, data interface{}) {
	payload, err := json.Marshal(Notification{
		Event:     event,
		Data:      data,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Printf("Failed to marshal websocket notification: %v", err)
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Printf("Websocket broadcast channel full, dropping %s event", event)
	}
}

// NotifyRegistrationSubmitted announces a newly submitted registration.
func (h *Hub) NotifyRegistrationSubmitted(registrationID, role, name string) {
	h.BroadcastToAdmins(EventRegistrationSubmitted, map[string]string{
		"registrationId": registrationID,
		"role":           role,
		"name":           name,
	})
}

// NotifyRegistrationReviewed announces an admin review decision.
func (h *Hub) NotifyRegistrationReviewed(registrationID, status string) {
	h.BroadcastToAdmins(EventRegistrationReviewed, map[string]string{
		"registrationId": registrationID,
		"status":         status,
	})
}
