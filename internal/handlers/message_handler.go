package handlers

import (
	"net/http"

	"github.com/ayase/tomodachi/internal/services/activity"
	"github.com/ayase/tomodachi/internal/services/message"
	"github.com/ayase/tomodachi/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// MessageHandler handles direct-message requests
type MessageHandler struct {
	messageService message.ServiceInterface
	sessions       *activity.Manager
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(messageService message.ServiceInterface, sessions *activity.Manager) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		sessions:       sessions,
	}
}

type sendMessageBody struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

// Send handles POST /messages
func (h *MessageHandler) Send(c *gin.Context) {
	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, apperrors.InvalidArgument("invalid request body"))
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), currentUserID(c), body.ReceiverID, body.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	h.sessions.Trigger(body.ReceiverID)

	c.JSON(http.StatusCreated, gin.H{
		"id":          msg.ID,
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
		"content":     msg.Content,
		"sent_at":     formatTime(msg.SentAt),
	})
}

// Conversation handles GET /messages/:userID
func (h *MessageHandler) Conversation(c *gin.Context) {
	msgs, err := h.messageService.Conversation(c.Request.Context(), currentUserID(c), c.Param("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(msgs))
	for _, msg := range msgs {
		resp = append(resp, gin.H{
			"id":          msg.ID,
			"sender_id":   msg.SenderID,
			"receiver_id": msg.ReceiverID,
			"content":     msg.Content,
			"sent_at":     formatTime(msg.SentAt),
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// Conversations handles GET /messages
func (h *MessageHandler) Conversations(c *gin.Context) {
	previews, err := h.messageService.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gin.H, 0, len(previews))
	for _, p := range previews {
		resp = append(resp, gin.H{
			"friend":        toUserResponse(p.Friend),
			"last_activity": formatTime(p.LastActivity),
			"unread_count":  p.UnreadCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"conversations": resp})
}
