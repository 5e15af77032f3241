package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	PlanBlocks  *PlanBlockHandler
	Planner     *PlannerHandler
	Preferences *PreferenceHandler
	Metrics     *MetricsHandler
}

// Register mounts operational endpoints on root and the API under prefix behind auth.
func Register(root *gin.Engine, prefix string, auth gin.HandlerFunc, h Handlers) {
	if h.Metrics != nil {
		root.GET("/health", h.Metrics.Health)
		root.GET("/ready", h.Metrics.Ready)
		root.GET("/metrics", h.Metrics.Prometheus)
	}

	api := root.Group(prefix)
	if auth != nil {
		api.Use(auth)
	}

	if h.PlanBlocks != nil {
		blocks := api.Group("/planblocks")
		blocks.GET("", h.PlanBlocks.List)
		blocks.POST("", h.PlanBlocks.Create)
		blocks.PATCH("", h.PlanBlocks.Update)
		blocks.DELETE("", h.PlanBlocks.Delete)
		blocks.GET("/export", h.PlanBlocks.Export)
		blocks.PATCH("/:id", h.PlanBlocks.Update)
		blocks.DELETE("/:id", h.PlanBlocks.Delete)
	}

	if h.Planner != nil {
		planner := api.Group("/planner")
		planner.POST("/generate", h.Planner.Generate)
		planner.POST("/apply", h.Planner.Apply)
		planner.POST("/diff", h.Planner.Diff)
	}

	if h.Preferences != nil {
		api.GET("/preferences/availability", h.Preferences.Get)
		api.PUT("/preferences/availability", h.Preferences.Upsert)
	}
}
