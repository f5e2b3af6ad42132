package routes

import (
	"github.com/gin-gonic/gin"

	authhttp "github.com/portfolio-site/portfolio-backend/internal/auth/http"
	authmw "github.com/portfolio-site/portfolio-backend/internal/auth/middleware"
	"github.com/portfolio-site/portfolio-backend/internal/auth/service"
	entityhttp "github.com/portfolio-site/portfolio-backend/internal/entities/http"
	entityservice "github.com/portfolio-site/portfolio-backend/internal/entities/service"
	"github.com/portfolio-site/portfolio-backend/internal/events"
	"github.com/portfolio-site/portfolio-backend/internal/synthesis"
	synthhttp "github.com/portfolio-site/portfolio-backend/internal/synthesis/http"
)

type V1Deps struct {
	Catalogs      entityservice.Catalogs
	Changes       events.Subscriber
	Gate          *service.Gate
	Synthesizer   synthesis.Synthesizer
	SecureCookies bool
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(authmw.ClientKey(dep.SecureCookies))
	api.Use(authmw.WithSession(dep.Gate))

	adminOnly := authmw.RequireAdmin()

	for kind, catalog := range dep.Catalogs {
		entityhttp.New(catalog).Register(api.Group("/"+kind.Collection()), adminOnly)
	}
	api.GET("/events", entityhttp.StreamChanges(dep.Changes))

	synthhttp.New(dep.Synthesizer).Register(api, authmw.RequireAuth())

	authhttp.New(dep.Gate).Register(api.Group("/auth"))
}
