package routes

import (
    "github.com/gin-gonic/gin"

    "github.com/vizlink/dashboard-engine/api/handlers"
    "github.com/vizlink/dashboard-engine/api/middleware"
)

// SetupRoutes wires all API routes.
func SetupRoutes(r *gin.Engine, h *handlers.Handlers) {
    r.Use(middleware.CORS())

    v1 := r.Group("/api/v1")

    dashboards := v1.Group("/dashboards")
    {
        dashboards.POST("/:dashboardId/filters", h.Dashboard.ApplyFilter)
        dashboards.POST("/:dashboardId/clicks", h.Dashboard.ApplyClick)
        dashboards.POST("/:dashboardId/selections", h.Dashboard.ApplySelection)
        dashboards.DELETE("/:dashboardId/filters", h.Dashboard.ClearFilters)
        dashboards.DELETE("/:dashboardId/filters/:componentId", h.Dashboard.ResetFilter)
        dashboards.POST("/:dashboardId/recompute", h.Dashboard.Recompute)
        dashboards.POST("/:dashboardId/renders", h.Dashboard.SubmitRenders)
    }

    tasks := v1.Group("/tasks")
    {
        tasks.GET("/:taskId", h.Dashboard.RenderStatus)
    }
}
