package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasenjit/go-chainer/internal/events"
)

// Router handles HTTP routing for the admin API
type Router struct {
	engine  *gin.Engine
	handler *Handler
}

// NewRouter creates a new router around the handler
func NewRouter(handler *Handler) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:  gin.New(),
		handler: handler,
	}

	r.engine.Use(gin.Recovery())
	r.engine.Use(corsMiddleware())
	r.engine.Use(gin.Logger())

	r.setupRoutes()

	return r
}

// setupRoutes configures all routes
func (r *Router) setupRoutes() {
	api := r.engine.Group("/_api")
	{
		// Specs
		api.GET("/specs", r.handler.ListSpecs)
		api.POST("/specs", r.handler.CreateSpec)
		api.GET("/specs/:id", r.handler.GetSpec)
		api.DELETE("/specs/:id", r.handler.DeleteSpec)

		// Operations
		api.GET("/specs/:id/operations", r.handler.ListOperations)

		// Analysis: dependency graph, certainty, sequences
		api.POST("/specs/:id/analyze", r.handler.AnalyzeSpec)
		api.GET("/specs/:id/analysis", r.handler.GetAnalysis)

		// Execution
		api.POST("/specs/:id/run", r.handler.RunSequences)
		api.GET("/specs/:id/runs", r.handler.ListSpecRuns)
		api.GET("/runs", r.handler.ListRuns)
		api.GET("/runs/:id", r.handler.GetRun)

		// Statistics
		api.GET("/stats", r.handler.GetStats)
		api.POST("/stats/reset", r.handler.ResetStats)

		// Events
		api.GET("/events", r.handler.ListEvents)

		// Health
		api.GET("/health", r.handler.HealthCheck)
	}

	// WebSocket for live execution events
	wsHandler := events.NewWebSocketHandler(r.handler.events)
	r.engine.GET("/_api/events/stream", gin.WrapH(wsHandler))
}

// Handler returns the router as an http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// corsMiddleware allows cross-origin access to the admin API
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
