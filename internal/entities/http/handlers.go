package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
)

func (h *Handler) list(c *gin.Context) {
	kind := h.catalog.Kind()

	// an empty query means no filter
	q := strings.TrimSpace(c.Query("q"))
	var items []domain.Entity
	if q == "" {
		items = h.catalog.List(c.Request.Context())
	} else {
		items = h.catalog.Search(c.Request.Context(), q)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, kind.Collection(): toViews(items), "count": len(items)})
}

func (h *Handler) create(c *gin.Context) {
	kind := h.catalog.Kind()

	var req domain.Fields
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	e, err := h.catalog.Add(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": validationMessage(err)})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "failed to add " + string(kind) + ", please try again"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, string(kind): toView(*e)})
}

func (h *Handler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if !h.catalog.Delete(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": string(h.catalog.Kind()) + " not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// validationMessage strips the sentinel prefix so only the field message is
// shown to the user.
func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, domain.ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(domain.ErrValidation.Error())+2:]
	}
	return msg
}
