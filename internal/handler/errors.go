package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/iamvkosarev/ai-chat-web/internal/usecase"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// writeError maps usecase errors onto status codes. Only the generation failure
// carries more than a message.
func writeError(c *gin.Context, err error) {
	lang := language(c)

	var genErr *usecase.GenerationError
	switch {
	case errors.As(err, &genErr):
		log.Error().Err(err).
			Str("conversation_id", genErr.ConversationID.String()).
			Bool("user_turn_persisted", genErr.UserTurnPersisted).
			Msg("generation failed")
		c.JSON(
			http.StatusInternalServerError, gin.H{
				"message":           textGenerationFailed.Text(lang),
				"conversationId":    genErr.ConversationID,
				"userTurnPersisted": genErr.UserTurnPersisted,
			},
		)
	case errors.Is(err, usecase.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"message": textEmptyMessage.Text(lang)})
	case errors.Is(err, usecase.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": textMissingCredentials.Text(lang)})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": textInvalidCredentials.Text(lang)})
	case errors.Is(err, model.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": textUserNotFound.Text(lang)})
	case errors.Is(err, model.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": textConversationNotFound.Text(lang)})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": textInternal.Text(lang)})
	}
}
