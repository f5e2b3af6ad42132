package http

import (
	"github.com/portfolio-site/portfolio-backend/internal/auth/service"
)

type Handler struct {
	gate *service.Gate
}

func New(gate *service.Gate) *Handler {
	return &Handler{gate: gate}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
