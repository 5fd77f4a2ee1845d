package main

import (
	"github.com/consensuslabs/festival/backend/internal/health"
	httpapi "github.com/consensuslabs/festival/backend/internal/http"
	"github.com/consensuslabs/festival/backend/internal/http/middleware"
	"github.com/consensuslabs/festival/backend/internal/intake/transport"
	"github.com/consensuslabs/festival/backend/internal/submission"
)

func (a *App) setupRoutes() {
	responseHandler := httpapi.NewResponseHandler(a.logger)

	a.router.Use(
		middleware.RequestLoggerMiddleware(a.logger),
		httpapi.RecoveryMiddleware(responseHandler, a.logger),
		httpapi.CORSMiddleware(transport.DeviceHeader),
	)

	healthHandler := health.NewHandler(responseHandler, map[string]health.Pinger{
		"database": a.database,
		"cache":    a.cache,
	})
	a.router.GET("/health", healthHandler.HandleHealthCheck)

	api := a.router.Group("/api/v1")
	submissionHandler := submission.NewHandler(a.submission, responseHandler, a.Config.Server.MaxRequestBytes)
	submissionHandler.RegisterRoutes(api)
}
