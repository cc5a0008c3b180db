package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iamvkosarev/ai-chat-web/pkg/local"
	"github.com/rs/zerolog/log"
)

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}

func cors(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := allowOrigin
		if origin == "*" {
			if reqOrigin := c.GetHeader("Origin"); reqOrigin != "" {
				origin = reqOrigin
			}
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requireAuth accepts the token from the auth cookie or a bearer header. A cookie
// that fails verification does not hide a valid bearer token.
func (h *Handler) requireAuth(c *gin.Context) {
	var candidates []string
	if token, err := c.Cookie(AuthCookieName); err == nil && token != "" {
		candidates = append(candidates, token)
	}
	if token := bearerToken(c.GetHeader("Authorization")); token != "" {
		candidates = append(candidates, token)
	}

	for _, token := range candidates {
		userID, err := h.Tokens.Verify(token)
		if err != nil {
			log.Debug().Err(err).Msg("token rejected")
			continue
		}
		c.Set(userIDKey, userID)
		c.Next()
		return
	}
	abortUnauthorized(c)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(
		http.StatusUnauthorized, gin.H{"message": textUnauthorized.Text(language(c))},
	)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentUserID(c *gin.Context) uuid.UUID {
	return c.MustGet(userIDKey).(uuid.UUID)
}

func language(c *gin.Context) local.Language {
	return local.ParseLanguage(c.GetHeader("Accept-Language"))
}
