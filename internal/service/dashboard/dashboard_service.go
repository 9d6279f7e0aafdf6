package dashboard

import (
    "context"

    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/internal/propagate"
    "github.com/vizlink/dashboard-engine/pkg/queue"
)

// Engine is the dashboard-facing surface of the filter propagation engine.
// Each dashboard view owns one filter set, created on first use and
// discarded on ClearFilters; concurrent mutations for the same view are
// the caller's to serialize (last writer wins).
type Engine interface {
    // ApplyFilter records a widget-driven filter and recomputes all
    // affected components synchronously.
    ApplyFilter(ctx context.Context, dashboardID string, f *models.InteractiveFilter) ([]propagate.ComponentUpdate, error)
    // ApplyClick translates a chart click into a filter and applies it.
    ApplyClick(ctx context.Context, dashboardID string, ev *propagate.ClickEvent) ([]propagate.ComponentUpdate, error)
    // ApplySelection translates a chart selection into a filter and applies it.
    ApplySelection(ctx context.Context, dashboardID string, ev *propagate.SelectionEvent) ([]propagate.ComponentUpdate, error)
    // ResetFilter drops one component's filter and recomputes.
    ResetFilter(ctx context.Context, dashboardID, componentID string) ([]propagate.ComponentUpdate, error)
    // ClearFilters drops the dashboard view's whole filter state.
    ClearFilters(ctx context.Context, dashboardID string) error
    // Recompute runs a full propagation pass against the current filters.
    Recompute(ctx context.Context, dashboardID string) ([]propagate.ComponentUpdate, error)
    // SubmitRenders enqueues one asynchronous render task per renderable
    // component and returns the pending statuses for polling.
    SubmitRenders(ctx context.Context, dashboardID string, forceFullData bool) ([]*queue.RenderStatus, error)
    // RenderStatus polls one render task.
    RenderStatus(ctx context.Context, taskID string) (*queue.RenderStatus, error)
}
