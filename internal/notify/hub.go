package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"creator-platform/internal/callrequest"

	"github.com/gorilla/websocket"
)

// Event names pushed over the ring socket.
const (
	EventIncomingRequest = "incoming_request"
	EventRequestExpired  = "request_expired"
	EventRequestResolved = "request_resolved"
)

type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	CreatorID string
}

// RingEvent is the payload pushed to a creator's open ring socket. The UI
// starts or stops ringing based on Event.
type RingEvent struct {
	TargetCreatorID string `json:"-"`

	Event   string                   `json:"event"`
	Request *callrequest.CallRequest `json:"request,omitempty"`
	Reason  string                   `json:"reason,omitempty"`
}

// Hub fans ring events out to connected creators. One socket per creator;
// a newer connection replaces the older one.
type Hub struct {
	clients map[string]*Client

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan RingEvent

	log *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan RingEvent),
		log:        log,
	}
}

// Run owns the clients map; all mutation happens on this goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, client := range h.clients {
				close(client.Send)
			}
			h.clients = make(map[string]*Client)
			return

		case client := <-h.Register:
			if old, ok := h.clients[client.CreatorID]; ok {
				close(old.Send)
			}
			h.clients[client.CreatorID] = client
			h.log.Debug("ring socket registered", "creator_id", client.CreatorID)

		case client := <-h.Unregister:
			if cur, ok := h.clients[client.CreatorID]; ok && cur == client {
				delete(h.clients, client.CreatorID)
				close(client.Send)
				h.log.Debug("ring socket unregistered", "creator_id", client.CreatorID)
			}

		case ev := <-h.Broadcast:
			client, ok := h.clients[ev.TargetCreatorID]
			if !ok {
				continue
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				h.log.Error("marshal ring event", "error", err)
				continue
			}
			select {
			case client.Send <- payload:
			default:
				// Slow consumer; drop the socket rather than block the hub.
				close(client.Send)
				delete(h.clients, client.CreatorID)
				h.log.Warn("ring socket dropped, send buffer full", "creator_id", client.CreatorID)
			}
		}
	}
}

// Notify pushes an event without blocking hub shutdown.
func (h *Hub) Notify(ctx context.Context, ev RingEvent) {
	select {
	case h.Broadcast <- ev:
	case <-ctx.Done():
	}
}
