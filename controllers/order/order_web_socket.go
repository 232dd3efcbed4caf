package orderControllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/creditbazaar/marketplace-api/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHub streams newly placed orders to connected back-office dashboards.
// It is fed by the event bus rather than by the checkout handler directly.
type WSHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewWSHub(bus *events.Bus) *WSHub {
	h := &WSHub{clients: make(map[*websocket.Conn]bool)}
	bus.Subscribe(events.TopicOrderPlaced, func(payload any) {
		h.broadcast(payload)
	})
	return h
}

// GET /api/admin/orders/ws
func (h *WSHub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		h.mu.Lock()
		h.clients[conn] = true
		h.mu.Unlock()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.clients, conn)
				h.mu.Unlock()
				break
			}
		}
	}
}

func (h *WSHub) broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			delete(h.clients, client)
		}
	}
}
