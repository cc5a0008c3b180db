// Package handler exposes the chat and account usecases over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/config"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/iamvkosarev/ai-chat-web/internal/usecase"
)

const (
	AuthCookieName = "auth-token"
	userIDKey      = "user_id"
)

type ChatService interface {
	ContinueConversation(ctx context.Context, userID uuid.UUID, text string, conversationID string) (usecase.TurnResult, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error)
	DeleteConversation(ctx context.Context, userID uuid.UUID, conversationID string) error
	DeleteAllConversations(ctx context.Context, userID uuid.UUID) error
}

type AccountService interface {
	SignUp(ctx context.Context, name, email, password string) (model.User, error)
	LogIn(ctx context.Context, email, password string) (model.User, error)
	GetUserInfo(ctx context.Context, userID uuid.UUID) (model.User, error)
}

type Authenticator interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(token string) (uuid.UUID, error)
	TTL() time.Duration
}

type HandlerDeps struct {
	Chat     ChatService
	Accounts AccountService
	Tokens   Authenticator
}

type Handler struct {
	HandlerDeps
	cfg config.HTTP
}

func NewHandler(deps HandlerDeps, cfg config.HTTP) *Handler {
	return &Handler{
		HandlerDeps: deps,
		cfg:         cfg,
	}
}

// Router builds the gin engine with every route mounted.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(), cors(h.cfg.AllowOrigin))

	api := router.Group("/api")
	{
		user := api.Group("/user")
		user.POST("/signup", h.SignUp)
		user.POST("/login", h.LogIn)
		user.GET("/logout", h.LogOut)
		user.GET("/auth-status", h.requireAuth, h.AuthStatus)

		chat := api.Group("/chat", h.requireAuth)
		chat.POST("/new", h.ContinueConversation)
		chat.GET("/all-chats", h.ListConversations)
		chat.DELETE("/conversation/:conversationId", h.DeleteConversation)
		chat.DELETE("/delete", h.DeleteAllConversations)
	}

	router.GET(
		"/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		},
	)
	return router
}
