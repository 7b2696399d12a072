package api

import (
	"net/http"
	"strings"

	"pazaryeri/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type loginRequest struct {
	Phone string `json:"phone" binding:"required"`
	PIN   string `json:"pin" binding:"required"`
}

type verifyRequest struct {
	SessionToken string `json:"session_token"`
}

func (h *APIHandler) Register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, eris.Wrap(errBadRequest, err.Error()), zap.String("action", "register"))
		return
	}

	user, session, err := h.deps.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, zap.String("action", "register"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user, "session": session})
}

func (h *APIHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, eris.Wrap(errBadRequest, err.Error()), zap.String("action", "login"))
		return
	}

	user, session, err := h.deps.Accounts.Login(c.Request.Context(), req.Phone, req.PIN)
	if err != nil {
		h.fail(c, err, zap.String("action", "login"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "session": session})
}

// Verify accepts the token in the body or as a bearer header.
func (h *APIHandler) Verify(c *gin.Context) {
	var req verifyRequest
	_ = c.ShouldBindJSON(&req)

	token := strings.TrimSpace(req.SessionToken)
	if token == "" {
		token = strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
	}
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Session token gerekli"})
		return
	}

	user, err := h.deps.Accounts.Verify(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err, zap.String("action", "verify"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *APIHandler) Logout(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	if err := h.deps.Accounts.Logout(c.Request.Context(), user.ID); err != nil {
		h.fail(c, err, zap.String("action", "logout"), zap.String("user_id", user.ID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *APIHandler) GetCurrentUser(c *gin.Context) {
	user, _ := auth.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
