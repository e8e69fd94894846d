// Package router wires the gin engine: middleware, health endpoints,
// prometheus metrics and the versioned API routes.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/routecast/routecast-backend/config"
	"github.com/routecast/routecast-backend/handlers"
	"github.com/routecast/routecast-backend/middleware"
)

// Dependencies carries the handlers the router mounts.
type Dependencies struct {
	Health *handlers.HealthHandler
	Trips  *handlers.TripHandler
}

// New builds the gin engine with CORS, health, metrics and API routes.
func New(cfg *config.Config, deps Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health/liveness", deps.Health.LivenessCheck)
	r.GET("/health/readiness", deps.Health.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.POST("/trips", deps.Trips.CreateTrip)
		v1.GET("/trips", deps.Trips.ListTrips)
		v1.GET("/trips/:id", deps.Trips.GetTrip)
		v1.DELETE("/trips/:id", deps.Trips.DeleteTrip)
		v1.POST("/trips/:id/report", deps.Trips.TriggerReport)
		v1.GET("/trips/:id/risks", deps.Trips.GetRisks)
	}

	return r
}
