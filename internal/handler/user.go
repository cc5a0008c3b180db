package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamvkosarev/ai-chat-web/internal/model"
	"github.com/pkg/errors"
)

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type authResponse struct {
	Message string   `json:"message"`
	User    userInfo `json:"user"`
	Token   string   `json:"token,omitempty"`
}

func (h *Handler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": textInvalidRequest.Text(language(c))})
		return
	}
	user, err := h.Accounts.SignUp(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			c.JSON(
				http.StatusBadRequest, gin.H{"message": textUserAlreadyExists.Format(language(c), req.Email)},
			)
			return
		}
		writeError(c, err)
		return
	}
	h.startSession(c, http.StatusCreated, user)
}

func (h *Handler) LogIn(c *gin.Context) {
	var req logInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": textInvalidRequest.Text(language(c))})
		return
	}
	user, err := h.Accounts.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	h.startSession(c, http.StatusOK, user)
}

func (h *Handler) AuthStatus(c *gin.Context) {
	user, err := h.Accounts.GetUserInfo(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(
		http.StatusOK, authResponse{
			Message: textOK,
			User:    userInfo{Name: user.Name, Email: user.Email},
		},
	)
}

func (h *Handler) LogOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", h.cfg.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": textOK})
}

func (h *Handler) startSession(c *gin.Context, status int, user model.User) {
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AuthCookieName, token, int(h.Tokens.TTL().Seconds()), "/", "", h.cfg.SecureCookie, true)
	c.JSON(
		status, authResponse{
			Message: textOK,
			User:    userInfo{Name: user.Name, Email: user.Email},
			Token:   token,
		},
	)
}
