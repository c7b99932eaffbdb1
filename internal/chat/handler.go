package chat

import (
	"encoding/json"
	"net/http"
	"time"

	"healthsync-server/internal/middleware"
	"healthsync-server/internal/models"
	"healthsync-server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the router; the token gates access.
	},
}

// ClientEvent is an inbound websocket frame. Event names mirror the web
// client's socket events.
type ClientEvent struct {
	Event         string `json:"event"` // join_room, leave_room, send_message
	AppointmentID string `json:"appointmentId"`
	Text          string `json:"text,omitempty"`
}

// ServerEvent is an outbound websocket frame.
type ServerEvent struct {
	Event         string              `json:"event"` // receive_message, joined, error
	AppointmentID string              `json:"appointmentId,omitempty"`
	Message       *models.ChatMessage `json:"message,omitempty"`
	Error         string              `json:"error,omitempty"`
}

// Handler upgrades authenticated connections and routes room events. The
// chat gate (confirmed status, time window, participant identity) is
// re-validated on every join and every send; nothing is trusted from the
// client beyond its authenticated id.
type Handler struct {
	Hub    *Hub
	Chats  *services.ChatService
	Logger *zap.Logger
	// Now is swappable for tests; defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a chat Handler.
func NewHandler(hub *Hub, chats *services.ChatService, logger *zap.Logger) *Handler {
	return &Handler{Hub: hub, Chats: chats, Logger: logger, Now: time.Now}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Serve handles GET /api/chat/ws.
func (h *Handler) Serve(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(userID)
	go h.writePump(client, conn)
	h.readPump(client, conn)
}

func (h *Handler) readPump(client *Client, conn *websocket.Conn) {
	defer func() {
		h.Hub.Remove(client)
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event ClientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			continue // Ignore malformed frames.
		}
		h.handleEvent(client, event)
	}
}

func (h *Handler) writePump(client *Client, conn *websocket.Conn) {
	defer conn.Close()

	for payload := range client.Send {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (h *Handler) handleEvent(client *Client, event ClientEvent) {
	switch event.Event {
	case "join_room":
		h.join(client, event.AppointmentID)
	case "leave_room":
		h.Hub.Leave(client, event.AppointmentID)
	case "send_message":
		h.send(client, event.AppointmentID, event.Text)
	}
}

func (h *Handler) join(client *Client, appointmentID string) {
	appointment, err := h.Chats.Appointment(appointmentID)
	if err == nil {
		err = h.Chats.CanChat(appointment, client.UserID, h.now())
	}
	if err != nil {
		h.reply(client, ServerEvent{Event: "error", AppointmentID: appointmentID, Error: err.Error()})
		return
	}

	h.Hub.Join(client, appointmentID)
	h.reply(client, ServerEvent{Event: "joined", AppointmentID: appointmentID})
}

func (h *Handler) send(client *Client, appointmentID, text string) {
	err := h.Hub.Publish(appointmentID, func() ([]byte, error) {
		message, err := h.Chats.SaveMessage(client.UserID, appointmentID, text, h.now())
		if err != nil {
			return nil, err
		}
		return json.Marshal(ServerEvent{
			Event:         "receive_message",
			AppointmentID: appointmentID,
			Message:       message,
		})
	})
	if err != nil {
		h.reply(client, ServerEvent{Event: "error", AppointmentID: appointmentID, Error: err.Error()})
	}
}

// reply delivers an event to one client only, dropping it if the client's
// buffer is full.
func (h *Handler) reply(client *Client, event ServerEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.Logger.Error("marshal server event", zap.Error(err))
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}
