package handlers

import (
    "net/http"

    "github.com/gin-gonic/gin"

    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/internal/propagate"
    "github.com/vizlink/dashboard-engine/internal/service/dashboard"
    "github.com/vizlink/dashboard-engine/pkg/logger"
)

type DashboardHandler struct {
    engine dashboard.Engine
    logger logger.Logger
}

func NewDashboardHandler(engine dashboard.Engine, log logger.Logger) *DashboardHandler {
    return &DashboardHandler{engine: engine, logger: log}
}

// ApplyFilter handles a widget value change: record the filter and return
// the recomputed component payloads.
func (h *DashboardHandler) ApplyFilter(c *gin.Context) {
    dashboardID := c.Param("dashboardId")

    var filter models.InteractiveFilter
    if err := c.ShouldBindJSON(&filter); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter payload: " + err.Error()})
        return
    }
    if filter.ComponentID == "" || filter.ColumnName == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "component_id and column_name are required"})
        return
    }

    updates, err := h.engine.ApplyFilter(c.Request.Context(), dashboardID, &filter)
    if err != nil {
        h.logger.Error("Apply filter failed",
            logger.String("dashboard", dashboardID),
            logger.Error(err),
        )
        c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// ApplyClick handles a chart click event.
func (h *DashboardHandler) ApplyClick(c *gin.Context) {
    dashboardID := c.Param("dashboardId")

    var ev propagate.ClickEvent
    if err := c.ShouldBindJSON(&ev); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid click payload: " + err.Error()})
        return
    }

    updates, err := h.engine.ApplyClick(c.Request.Context(), dashboardID, &ev)
    if err != nil {
        c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// ApplySelection handles a chart box/lasso selection event.
func (h *DashboardHandler) ApplySelection(c *gin.Context) {
    dashboardID := c.Param("dashboardId")

    var ev propagate.SelectionEvent
    if err := c.ShouldBindJSON(&ev); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selection payload: " + err.Error()})
        return
    }

    updates, err := h.engine.ApplySelection(c.Request.Context(), dashboardID, &ev)
    if err != nil {
        c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// ResetFilter drops one component's filter and returns the recomputed
// payloads.
func (h *DashboardHandler) ResetFilter(c *gin.Context) {
    dashboardID := c.Param("dashboardId")
    componentID := c.Param("componentId")

    updates, err := h.engine.ResetFilter(c.Request.Context(), dashboardID, componentID)
    if err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// ClearFilters discards the dashboard view's filter state.
func (h *DashboardHandler) ClearFilters(c *gin.Context) {
    dashboardID := c.Param("dashboardId")
    if err := h.engine.ClearFilters(c.Request.Context(), dashboardID); err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// Recompute runs a synchronous propagation pass.
func (h *DashboardHandler) Recompute(c *gin.Context) {
    dashboardID := c.Param("dashboardId")
    updates, err := h.engine.Recompute(c.Request.Context(), dashboardID)
    if err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// SubmitRenders enqueues asynchronous render tasks for every component and
// returns the pending statuses.
func (h *DashboardHandler) SubmitRenders(c *gin.Context) {
    dashboardID := c.Param("dashboardId")
    force := c.Query("force_full_data") == "true"

    statuses, err := h.engine.SubmitRenders(c.Request.Context(), dashboardID, force)
    if err != nil {
        c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "tasks": statuses})
        return
    }
    c.JSON(http.StatusAccepted, gin.H{"tasks": statuses})
}

// RenderStatus polls one render task.
func (h *DashboardHandler) RenderStatus(c *gin.Context) {
    taskID := c.Param("taskId")
    status, err := h.engine.RenderStatus(c.Request.Context(), taskID)
    if err != nil {
        c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, status)
}
