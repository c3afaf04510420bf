package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/tofabd/call-center-shajgoj-sub003/internal/auth"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/broadcast"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/bus"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/httpapi"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/rbac"
	"github.com/tofabd/call-center-shajgoj-sub003/internal/ws"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(
	r *gin.Engine,
	registry *broadcast.Registry,
	dispatcher *broadcast.Dispatcher,
	publisher bus.EventPublisher,
	authManager *auth.Manager,
	log *slog.Logger,
) {
	// public
	health := httpapi.HealthHandler{Registry: registry, Dispatcher: dispatcher}
	r.GET("/healthz", health.Health)

	// Subscriber endpoint; auth happens inside the handler because
	// browser websockets pass the token as a query parameter.
	wsHandler := ws.Handler{Registry: registry, Auth: authManager, Log: log}
	r.GET("/ws", wsHandler.Serve)

	// protected ingest group
	v1 := r.Group("/v1")
	v1.Use(auth.RequireAccessToken(authManager))
	{
		ingest := httpapi.BroadcastHandler{Publisher: publisher}

		publish := v1.Group("/broadcast")
		publish.Use(rbac.RequireAnyRole(rbac.RoleSystem, rbac.RoleSupervisor))
		{
			publish.POST("", ingest.Publish)
		}
	}
}
