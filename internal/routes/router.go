package routes

import (
	"drone-fire-monitor/internal/auth"
	"drone-fire-monitor/internal/config"
	"drone-fire-monitor/internal/delivery/http/handler"
	"drone-fire-monitor/internal/logger"
	"drone-fire-monitor/internal/mediaproxy"
	"drone-fire-monitor/internal/middleware"
	"drone-fire-monitor/internal/usecase/detection"
	"drone-fire-monitor/internal/usecase/drone"
	"drone-fire-monitor/internal/usecase/pushtoken"

	"github.com/gin-gonic/gin"
)

// Dependencies are the wired services the HTTP surface exposes.
type Dependencies struct {
	Health     handler.HealthChecker
	Metrics    handler.MetricsSource
	Drones     *drone.Service
	Detections *detection.Service
	PushTokens *pushtoken.Service
	Proxy      *mediaproxy.Proxy
	Issuer     *auth.TokenIssuer
	Limiter    *middleware.RateLimiter
}

func SetupRoutes(cfg *config.Config, deps Dependencies) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order: recovery, request ID, logging, security headers, CORS, request size limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware("/api/health", "/api/proxy/"))
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))

	systemHandler := handler.NewSystemHandler(deps.Health, deps.Metrics)
	droneHandler := handler.NewDroneHandler(deps.Drones)
	detectionHandler := handler.NewDetectionHandler(deps.Detections)
	pushTokenHandler := handler.NewPushTokenHandler(deps.PushTokens)
	proxyHandler := handler.NewProxyHandler(deps.Proxy)

	api := router.Group("/api")
	{
		systemHandler.RegisterRoutes(api)
		proxyHandler.RegisterRoutes(api)

		limited := api.Group("")
		if deps.Limiter != nil {
			limited.Use(middleware.RateLimitMiddleware(deps.Limiter))
		}
		{
			droneHandler.RegisterRoutes(limited)
			detectionHandler.RegisterRoutes(limited)
			detectionHandler.RegisterIngestRoutes(limited, middleware.IngestAuthMiddleware(deps.Issuer))
			pushTokenHandler.RegisterRoutes(limited)
		}
	}

	logger.Info("All routes initialized")
	return router
}
