package http

import "github.com/gin-gonic/gin"

// Register attaches collection routes to the given router group. Mutations
// run behind guard.
func (h *Handler) Register(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.POST("", guard, h.create)
	rg.DELETE("/:id", guard, h.delete)
}
