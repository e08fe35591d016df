package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	EventResultSaved    = "result_saved"
	EventResultsCleared = "results_cleared"

	writeWait = 10 * time.Second
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans out events to every open connection of a user.
type Hub struct {
	Clients map[string]map[*websocket.Conn]*Client
	Mutex   sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{Clients: make(map[string]map[*websocket.Conn]*Client)}
}

var H = NewHub()

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func (h *Hub) Register(userID string, conn *websocket.Conn) *Client {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if _, ok := h.Clients[userID]; !ok {
		h.Clients[userID] = make(map[*websocket.Conn]*Client)
	}
	client := &Client{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Clients[userID][conn] = client
	return client
}

func (h *Hub) Unregister(userID string, conn *websocket.Conn) {
	h.Mutex.Lock()
	defer h.Mutex.Unlock()

	if clients, ok := h.Clients[userID]; ok {
		if client, ok := clients[conn]; ok {
			close(client.Send)
			delete(clients, conn)
		}
		if len(clients) == 0 {
			delete(h.Clients, userID)
		}
	}
}

// Broadcast drops the message for clients whose buffer is full.
func (h *Hub) Broadcast(userID string, data []byte) int {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	sent := 0
	for _, client := range h.Clients[userID] {
		select {
		case client.Send <- data:
			sent++
		default:
		}
	}
	return sent
}

func (h *Hub) Publish(userID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("ws: marshal event:", err)
		return
	}
	h.Broadcast(userID, data)
}

type Stats struct {
	Users       int `json:"users"`
	Connections int `json:"connections"`
}

func (h *Hub) Stats() Stats {
	h.Mutex.RLock()
	defer h.Mutex.RUnlock()

	s := Stats{Users: len(h.Clients)}
	for _, clients := range h.Clients {
		s.Connections += len(clients)
	}
	return s
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for msg := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func NotifyResultSaved(userID string, result interface{}) {
	H.Publish(userID, Event{Type: EventResultSaved, Data: result})
}

func NotifyResultsCleared(userID string, removed int64) {
	H.Publish(userID, Event{Type: EventResultsCleared, Data: map[string]int64{"removed": removed}})
}
