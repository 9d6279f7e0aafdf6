package handlers

import (
    "github.com/vizlink/dashboard-engine/internal/service/dashboard"
    "github.com/vizlink/dashboard-engine/pkg/logger"
)

type Handlers struct {
    Dashboard *DashboardHandler
}

func NewHandlers(engine dashboard.Engine, log logger.Logger) *Handlers {
    return &Handlers{
        Dashboard: NewDashboardHandler(engine, log),
    }
}
