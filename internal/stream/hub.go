package stream

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/salespoint/pos-backend/internal/cart"
	"github.com/salespoint/pos-backend/internal/obs"
)

// Event is one framed message pushed to subscribed terminals.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EventTypeCart carries the recomputed cart view after a mutation.
const EventTypeCart = "cart"

type cartEvent struct {
	CartID uuid.UUID
	Event  Event
}

// Hub maintains the set of connected terminals grouped by cart and fans
// mutation events out to them. It implements cart.Publisher, so every cart
// mutation pushes fresh totals before the mutating call returns to its
// caller.
type Hub struct {
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *cartEvent

	mu sync.RWMutex
}

// NewHub creates an empty hub. Run must be started in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *cartEvent, 256),
	}
}

// Run drives registration and fan-out until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.cartID] == nil {
				h.rooms[client.cartID] = make(map[*Client]bool)
			}
			h.rooms[client.cartID][client] = true
			h.mu.Unlock()
			obs.AddStreamClients(1)

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.cartID]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					client.teardown()
					obs.AddStreamClients(-1)
					if len(clients) == 0 {
						delete(h.rooms, client.cartID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			clients := h.rooms[event.CartID]
			for client := range clients {
				select {
				case client.send <- message:
				default:
					// slow consumer, drop the connection
					close(client.send)
					client.teardown()
					delete(h.rooms[event.CartID], client)
					obs.AddStreamClients(-1)
					if len(h.rooms[event.CartID]) == 0 {
						delete(h.rooms, event.CartID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishCart pushes the recomputed view to every terminal watching the cart.
func (h *Hub) PublishCart(id uuid.UUID, view cart.View) {
	payload, err := json.Marshal(view)
	if err != nil {
		return
	}
	h.broadcast <- &cartEvent{
		CartID: id,
		Event:  Event{Type: EventTypeCart, Payload: payload},
	}
}
