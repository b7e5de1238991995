package handlers

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/calderon/shopdesk-api/internal/middleware"
)

// Event types sent over WebSocket
const (
	EventAppointmentCreated = "appointment_created"
	EventAppointmentUpdated = "appointment_updated"
	EventAppointmentMoved   = "appointment_moved"
	EventAppointmentDeleted = "appointment_deleted"
	EventMessageAdded       = "message_added"
)

// WSEvent is the JSON message sent to connected consoles
type WSEvent struct {
	Type   string      `json:"type"`
	UserID string      `json:"userId,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// connection wraps a websocket connection with its staff user ID
type connection struct {
	conn   *websocket.Conn
	userID uuid.UUID
}

// Hub manages the consoles subscribed to the live board feed
type Hub struct {
	mu    sync.RWMutex
	conns map[*connection]bool
}

// Global board hub instance
var Board = &Hub{
	conns: make(map[*connection]bool),
}

func (h *Hub) register(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	log.Debugf("WS register: user %s joined the board feed (total: %d)", conn.userID, len(h.conns))
}

func (h *Hub) unregister(conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	log.Debugf("WS unregister: user %s left the board feed (remaining: %d)", conn.userID, len(h.conns))
}

// Broadcast sends an event to every connected console except the actor's,
// which already applied the change optimistically.
func (h *Hub) Broadcast(excludeUserID uuid.UUID, event WSEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.conns) == 0 {
		return
	}
	if excludeUserID != uuid.Nil {
		event.UserID = excludeUserID.String()
	}

	msg, err := json.Marshal(event)
	if err != nil {
		log.Errorf("WS broadcast marshal error: %v", err)
		return
	}

	for c := range h.conns {
		if c.userID == excludeUserID {
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Warnf("WS write error: %v", err)
		}
	}
}

// WebSocketUpgrade is the middleware that checks the upgrade request and validates JWT
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Authenticate via query param: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			// Also check Authorization header for non-browser clients
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := middleware.ParseToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals("userId", claims.UserID)
		return c.Next()
	}
}

// HandleBoardSocket handles a console's live board subscription
func HandleBoardSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	conn := &connection{conn: c, userID: userID}
	Board.register(conn)
	defer Board.unregister(conn)

	// Keep connection alive — read messages (client sends pings/keepalives)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
