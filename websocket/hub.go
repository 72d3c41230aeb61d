// Package websocket fans stats snapshots out to connected dashboard sockets.
package websocket

import (
	"log"
	"sync/atomic"

	"github.com/anjiri1684/tutor_hunt/models"
	"github.com/google/uuid"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	ID   uuid.UUID
	Conn Conn
}

func NewClient(conn Conn) *Client {
	return &Client{ID: uuid.New(), Conn: conn}
}

// StatsMessage is the frame pushed to every client.
type StatsMessage struct {
	Type  string       `json:"type"`
	Stats models.Stats `json:"stats"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan models.Stats

	clients map[uuid.UUID]*Client
	count   atomic.Int64
	done    chan struct{}
	stopped chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan models.Stats, 16),
		clients:    make(map[uuid.UUID]*Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Run owns the client set until Stop is called.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case client := <-h.Register:
			h.clients[client.ID] = client
			h.count.Store(int64(len(h.clients)))
			log.Printf("Stats client registered: %s", client.ID)
		case client := <-h.Unregister:
			h.remove(client.ID)
		case stats := <-h.Broadcast:
			msg := StatsMessage{Type: "stats", Stats: stats}
			for id, client := range h.clients {
				if err := client.Conn.WriteJSON(msg); err != nil {
					log.Printf("Error sending stats to client %s: %v", id, err)
					client.Conn.Close()
					h.remove(id)
				}
			}
		case <-h.done:
			for id, client := range h.clients {
				client.Conn.Close()
				delete(h.clients, id)
			}
			h.count.Store(0)
			return
		}
	}
}

func (h *Hub) remove(id uuid.UUID) {
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		h.count.Store(int64(len(h.clients)))
		log.Printf("Stats client unregistered: %s", id)
	}
}

// Publish queues a snapshot; it drops the snapshot when the queue is full or the hub stopped.
func (h *Hub) Publish(stats models.Stats) {
	select {
	case h.Broadcast <- stats:
	case <-h.done:
	default:
		log.Println("Stats broadcast queue full, dropping snapshot")
	}
}

// Join registers c unless the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Leave(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

func (h *Hub) Stop() {
	select {
	case <-h.done:
	default:
		close(h.done)
	}
	<-h.stopped
}
