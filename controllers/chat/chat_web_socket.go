package chatControllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/creditbazaar/marketplace-api/events"
	"github.com/creditbazaar/marketplace-api/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MessageEvent is the chat.message bus payload: the stored message plus the
// id of the customer who owns the conversation, so the stream can route
// each message to its owner only.
type MessageEvent struct {
	Message            models.ChatMessage
	ConversationUserID string
}

type wsClient struct {
	userID         string
	admin          bool
	conversationID string // optional filter, empty means all visible threads
}

// WSHub pushes new chat messages to connected clients. Customer connections
// only ever receive messages from their own conversations; admin dashboards
// connect through AdminHandler and receive everything. An optional
// ?conversation_id= narrows either stream to one thread.
type WSHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]wsClient
}

func NewWSHub(bus *events.Bus) *WSHub {
	h := &WSHub{clients: make(map[*websocket.Conn]wsClient)}
	bus.Subscribe(events.TopicChatMessage, func(payload any) {
		if ev, ok := payload.(MessageEvent); ok {
			h.broadcast(ev)
		}
	})
	return h
}

// GET /api/chat/ws
func (h *WSHub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.serve(c, wsClient{
			userID:         c.GetString("user_id"),
			conversationID: c.Query("conversation_id"),
		})
	}
}

// GET /api/admin/chat/ws
func (h *WSHub) AdminHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.serve(c, wsClient{
			userID:         c.GetString("user_id"),
			admin:          true,
			conversationID: c.Query("conversation_id"),
		})
	}
}

func (h *WSHub) serve(c *gin.Context, client wsClient) {
	if client.userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = client
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

func (h *WSHub) broadcast(ev MessageEvent) {
	data, err := json.Marshal(ev.Message)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, client := range h.clients {
		if !client.admin && client.userID != ev.ConversationUserID {
			continue
		}
		if client.conversationID != "" && client.conversationID != ev.Message.ConversationID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
