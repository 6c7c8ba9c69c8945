package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"CallService/bot/chat/flow"
	"CallService/internal/lib/sl"
)

// Hub maintains the set of connected dashboard clients and fans the
// transaction lifecycle stream out to them. It implements
// flow.EventSink.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan flow.Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan flow.Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log.With(sl.Module("ws.hub")),
	}
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues a lifecycle event for broadcast. It never blocks the
// conversation flow; when the hub is saturated the event is dropped.
func (h *Hub) Publish(event flow.Event) {
	select {
	case h.broadcast <- event:
	default:
		h.log.Warn("event dropped, hub saturated",
			slog.String("type", event.Type),
			slog.Int64("transaction_id", event.Transaction.TransactionID))
	}
}
