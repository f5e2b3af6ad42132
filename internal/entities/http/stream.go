package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/events"
)

const keepAliveInterval = 15 * time.Second

// StreamChanges streams entity changes using Server-Sent Events (SSE).
// ?kind=projects limits the stream to one collection.
func StreamChanges(sub events.Subscriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		var only domain.Kind
		if raw := c.Query("kind"); raw != "" {
			k, ok := domain.ParseKind(raw)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown kind"})
				return
			}
			only = k
		}

		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

		changes := make(chan events.Change, 16)
		cancel := sub.Subscribe(func(ch events.Change) {
			if only != "" && ch.Kind != only {
				return
			}
			select {
			case changes <- ch:
			default:
				// slow reader; it will refresh on the next change
			}
		})
		defer cancel()

		fmt.Fprint(c.Writer, "event: ready\ndata: {}\n\n")
		flusher.Flush()

		ctx := c.Request.Context()
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Fprint(c.Writer, ": keep-alive\n\n")
				flusher.Flush()
			case ch := <-changes:
				data, _ := json.Marshal(ch)
				fmt.Fprintf(c.Writer, "event: change\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
