package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GuideNet/GuideNet/internal/domain"
	"github.com/GuideNet/GuideNet/internal/store/postgres"
)

type ChatHandler struct {
	Chats *postgres.ChatRepo
}

func (h *ChatHandler) List(c *gin.Context) {
	chats, err := h.Chats.ListForUser(c.Request.Context(), currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	c.JSON(http.StatusOK, chats)
}

// Create opens (or returns) the 1:1 chat with another user.
func (h *ChatHandler) Create(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participantId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat payload"})
		return
	}
	me := currentUser(c)
	if req.ParticipantID == string(me) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot chat with yourself"})
		return
	}
	chat, err := h.Chats.CreateBetween(c.Request.Context(), me, domain.UserID(req.ParticipantID))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) Messages(c *gin.Context) {
	chatID := domain.ChatID(c.Param("id"))
	if ok, err := h.Chats.IsParticipant(c.Request.Context(), chatID, currentUser(c)); err != nil {
		respondErr(c, err)
		return
	} else if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}
	msgs, err := h.Chats.ListMessages(c.Request.Context(), chatID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	c.JSON(http.StatusOK, msgs)
}

// SendMessage persists the message and returns the stored record with the
// server timestamp. The client then emits it over the socket for relay.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message payload"})
		return
	}
	chatID := domain.ChatID(c.Param("id"))
	me := currentUser(c)
	if ok, err := h.Chats.IsParticipant(c.Request.Context(), chatID, me); err != nil {
		respondErr(c, err)
		return
	} else if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}
	msg, err := h.Chats.AppendMessage(c.Request.Context(), chatID, me, req.Content)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
