package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/auth"
	"github.com/portfolio-site/portfolio-backend/internal/auth/domain"
)

const keepAliveInterval = 15 * time.Second

// Events streams the client's view: once on connect, then on every change.
func (h *Handler) Events(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming not supported"})
		return
	}

	client := auth.ClientKey(c)
	updates := make(chan domain.View, 8)
	cancel := h.gate.Subscribe(client, func(s *domain.Session) {
		view := domain.View{State: domain.StateAnonymous}
		if s != nil {
			view = domain.View{State: domain.StateAuthenticated, Session: s}
		}
		select {
		case updates <- view:
		default:
		}
	})
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	writeView := func(v domain.View) bool {
		data, err := json.Marshal(v)
		if err != nil {
			return true
		}
		if _, err := fmt.Fprintf(c.Writer, "event: session\ndata: %s\n\n", data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeView(auth.View(c)) {
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-updates:
			if !writeView(v) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(c.Writer, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
