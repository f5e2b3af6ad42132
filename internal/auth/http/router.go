package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/login", h.LoginAdmin)
	rg.POST("/login/email", h.LoginWithEmail)
	rg.GET("/session", h.Session)
	rg.POST("/logout", h.Logout)
	rg.GET("/events", h.Events)
}
