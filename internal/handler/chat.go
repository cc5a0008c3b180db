package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
)

type continueRequest struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversationId"`
}

type continueResponse struct {
	Chats            []model.Message `json:"chats"`
	ConversationID   uuid.UUID       `json:"conversationId"`
	ConversationName string          `json:"conversationName"`
}

type conversationsResponse struct {
	Message       string               `json:"message"`
	Conversations []model.Conversation `json:"conversations"`
}

func (h *Handler) ContinueConversation(c *gin.Context) {
	var req continueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": textEmptyMessage.Text(language(c))})
		return
	}

	res, err := h.Chat.ContinueConversation(c.Request.Context(), currentUserID(c), req.Message, req.ConversationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(
		http.StatusOK, continueResponse{
			Chats:            res.Messages,
			ConversationID:   res.ConversationID,
			ConversationName: res.ConversationName,
		},
	)
}

func (h *Handler) ListConversations(c *gin.Context) {
	conversations, err := h.Chat.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(
		http.StatusOK, conversationsResponse{
			Message:       textOK,
			Conversations: conversations,
		},
	)
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	conversationID := c.Param("conversationId")
	if _, err := uuid.Parse(conversationID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": textInvalidConversationID.Text(language(c))})
		return
	}
	if err := h.Chat.DeleteConversation(c.Request.Context(), currentUserID(c), conversationID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": textOK})
}

func (h *Handler) DeleteAllConversations(c *gin.Context) {
	if err := h.Chat.DeleteAllConversations(c.Request.Context(), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": textOK})
}
