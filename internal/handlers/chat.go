package handlers

import (
	"time"

	"healthsync-server/internal/middleware"
	"healthsync-server/internal/services"
	"healthsync-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves chat history over REST. The realtime side lives in the
// chat package; both paths run the same gate.
type ChatHandler struct {
	Chats *services.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{Chats: chats}
}

// GetHistory handles GET /api/chat/:appointmentId. Reads are rejected
// outside the chat window just like sends.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	messages, err := h.Chats.History(userID, c.Param("appointmentId"), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Chat history fetched successfully", messages)
}
