package notify

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/xelth-com/orderflowgo/internal/models"
)

// EventOrderStatus is pushed whenever an order's status changes, whether the
// pipeline or an operator caused it.
const EventOrderStatus = "ORDER_STATUS"

// Event is the wire format for hub broadcasts
type Event struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// Hub maintains the set of connected review UIs and broadcasts order
// status events to all of them.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			log.Printf("🔔 Review client connected: %s", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
				log.Printf("🔕 Review client disconnected: %s", client.id)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for id, client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Buffer full or client dead; drop, the pump will reap it
					log.Printf("⚠️  Dropping event for slow client %s", id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastOrder pushes the updated order to every connected client.
// Callers pass the order exactly as persisted; the hub never mutates it.
func (h *Hub) BroadcastOrder(order models.Order) {
	msg, err := json.Marshal(Event{Type: EventOrderStatus, Order: order})
	if err != nil {
		log.Printf("Error marshaling order event: %v", err)
		return
	}
	h.broadcast <- msg
}
