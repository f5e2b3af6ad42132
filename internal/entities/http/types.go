package http

import (
	"github.com/portfolio-site/portfolio-backend/internal/entities/domain"
	"github.com/portfolio-site/portfolio-backend/internal/entities/service"
)

// Handler serves one kind's collection.
type Handler struct {
	catalog *service.Catalog
}

func New(catalog *service.Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// entityView is the wire shape of an entity: the stored fields plus the
// image the gallery should actually show.
type entityView struct {
	domain.Entity
	DisplayImageURL string `json:"displayImageUrl"`
}

func toView(e domain.Entity) entityView {
	return entityView{Entity: e, DisplayImageURL: e.DisplayImageURL()}
}

func toViews(items []domain.Entity) []entityView {
	out := make([]entityView, 0, len(items))
	for _, e := range items {
		out = append(out, toView(e))
	}
	return out
}
