package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/portfolio-site/portfolio-backend/internal/api/http"
	"github.com/portfolio-site/portfolio-backend/internal/api/http/middleware"
	"github.com/portfolio-site/portfolio-backend/internal/api/http/routes"
	authmw "github.com/portfolio-site/portfolio-backend/internal/auth/middleware"
)

const ServiceName = "portfolio-backend"

func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(a.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     a.Config.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, authmw.ClientHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(ServiceName, a.Config.App.Version, a.Config.Store.Backend, a.checks, a.Synth)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{
		Catalogs:      a.Catalogs,
		Changes:       a.Bus,
		Gate:          a.Gate,
		Synthesizer:   a.Synth,
		SecureCookies: a.Config.Auth.SecureCookies,
	})
	return r
}
