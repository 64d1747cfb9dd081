package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/chat"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/prefs"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// GetOrders lists orders placed in this session, newest first. The account's
// earlier orders follow while someone is signed in.
func (h *Handler) GetOrders(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, global.SuccessResponse(s.Orders.List(s.Auth.Session().IsAuthenticated)))
}

func (h *Handler) GetAuth(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(currentSession(c).Auth.Session()))
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := currentSession(c).Auth.Login(c.Request.Context(), req.Email, req.Password)
	h.authResult(c, session, err)
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := currentSession(c).Auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	h.authResult(c, session, err)
}

func (h *Handler) authResult(c *gin.Context, session models.AuthSession, err error) {
	if err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse(auth.FailureMessage, nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(session))
}

func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(currentSession(c).Auth.Logout()))
}

func (h *Handler) UpdatePreferences(c *gin.Context) {
	var req models.Preferences
	if !bindJSON(c, &req) {
		return
	}

	session, err := currentSession(c).Auth.UpdatePreferences(req)
	switch {
	case errors.Is(err, auth.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Sign in to change preferences", nil))
	case errors.Is(err, auth.ErrInvalidSettings):
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid preferences", []global.ValidationError{
			{Field: "preferences", Message: err.Error(), Code: "invalid"},
		}))
	case err != nil:
		h.log.Error("failed to update preferences", "error", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update preferences", nil))
	default:
		c.JSON(http.StatusOK, global.SuccessResponse(session))
	}
}

func (h *Handler) GetTheme(c *gin.Context) {
	s := currentSession(c)
	c.JSON(http.StatusOK, global.SuccessResponse(prefs.Load(c.Request.Context(), s.Storage)))
}

func (h *Handler) UpdateTheme(c *gin.Context) {
	var req prefs.Prefs
	if !bindJSON(c, &req) {
		return
	}

	s := currentSession(c)
	if err := prefs.Save(c.Request.Context(), s.Storage, req); err != nil {
		if errors.Is(err, prefs.ErrInvalidTheme) {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid theme", []global.ValidationError{
				{Field: "theme", Message: err.Error(), Code: "oneof"},
			}))
			return
		}
		h.log.Error("failed to save theme", "session_id", s.ID, "error", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to save theme", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(prefs.Load(c.Request.Context(), s.Storage)))
}

func (h *Handler) GetChat(c *gin.Context) {
	c.JSON(http.StatusOK, global.SuccessResponse(currentSession(c).Chat.Messages()))
}

// SendChatMessage waits for the bot's reply before answering
func (h *Handler) SendChatMessage(c *gin.Context) {
	var req chatRequest
	if !bindJSON(c, &req) {
		return
	}

	messages, err := currentSession(c).Chat.Send(c.Request.Context(), req.Message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Message is empty", []global.ValidationError{
			{Field: "message", Message: "message is required", Code: "required"},
		}))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(messages))
}
