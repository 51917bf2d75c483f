package notify

import (
	"log/slog"
	"net/http"

	"creator-platform/internal/auth"
	"creator-platform/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from the app origin; token auth is the gate.
		return true
	},
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// Serve upgrades an authenticated creator connection to a ring socket.
// Identity comes from the access token, never from the request path.
func (h *Handler) Serve(c *gin.Context) {
	creatorID, err := auth.UserID(c.Request.Context())
	if err != nil || creatorID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	log := logger.FromGin(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		Hub:       h.hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		CreatorID: creatorID,
	}
	h.hub.Register <- client

	go writePump(client)
	go readPump(client, log)
}

func writePump(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func readPump(client *Client, log *slog.Logger) {
	defer func() {
		client.Hub.Unregister <- client
		client.Conn.Close()
	}()

	// The ring socket is push-only; reads exist to detect disconnects.
	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug("ring socket read ended", "error", err)
			}
			return
		}
	}
}
