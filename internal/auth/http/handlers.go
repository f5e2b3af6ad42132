package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/auth"
	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

// LoginAdmin signs in against the stored admin record.
func (h *Handler) LoginAdmin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email and password are required"})
		return
	}

	s, err := h.gate.LoginAdmin(c.Request.Context(), auth.ClientKey(c), req.Email, req.Password)
	if err != nil {
		writeLoginError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": s})
}

// LoginWithEmail signs in through the identity provider.
func (h *Handler) LoginWithEmail(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "email and password are required"})
		return
	}

	s, err := h.gate.LoginWithEmail(c.Request.Context(), auth.ClientKey(c), req.Email, req.Password)
	if err != nil {
		writeLoginError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": s})
}

// Session reports the resolved view for the client.
func (h *Handler) Session(c *gin.Context) {
	view := auth.View(c)
	c.JSON(http.StatusOK, gin.H{
		"ok":            view.State != domain.StateUnknown,
		"state":         view.State,
		"user":          view.Session,
		"authenticated": view.Authenticated(),
	})
}

// Logout ends every session held by the client.
func (h *Handler) Logout(c *gin.Context) {
	if !h.gate.Logout(c.Request.Context(), auth.ClientKey(c)) {
		c.JSON(http.StatusOK, gin.H{"ok": false, "error": "signed out locally, identity provider sign-out failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func writeLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid email or password"})
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many login attempts, try again later"})
	case errors.Is(err, domain.ErrNoClient):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "missing client key"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "login is unavailable, please try again"})
	}
}
