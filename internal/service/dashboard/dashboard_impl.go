package dashboard

import (
    "context"
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"
    "golang.org/x/sync/errgroup"

    "github.com/vizlink/dashboard-engine/config"
    "github.com/vizlink/dashboard-engine/internal/filters"
    "github.com/vizlink/dashboard-engine/internal/joingraph"
    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/internal/propagate"
    "github.com/vizlink/dashboard-engine/pkg/logger"
    "github.com/vizlink/dashboard-engine/pkg/queue"
    "github.com/vizlink/dashboard-engine/pkg/storage"
)

// Service implements Engine over the propagator, the render queue and the
// frame store.
type Service struct {
    definitions map[string]config.DashboardDefinition
    propagator  *propagate.Propagator
    queue       queue.RenderQueue
    logger      logger.Logger

    mu         sync.Mutex
    filterSets map[string]*filters.FilterSet
}

// NewService resolves the join graph of every workflow named by the
// dashboard definitions and wires the propagator. Join declarations
// referencing unknown collections fail here, at load time, not during
// propagation.
func NewService(
    defs *config.DashboardsFile,
    store storage.FrameStore,
    renderer propagate.FigureRenderer,
    q queue.RenderQueue,
    log logger.Logger,
) (Engine, error) {
    byWorkflow := make(map[string][]models.DataCollection)
    definitions := make(map[string]config.DashboardDefinition, len(defs.Dashboards))
    for _, d := range defs.Dashboards {
        definitions[d.ID] = d
        for _, dc := range d.Collections {
            byWorkflow[dc.WorkflowID] = append(byWorkflow[dc.WorkflowID], dc)
        }
    }

    graphs := make(map[string]*joingraph.Graph, len(byWorkflow))
    for wfID, collections := range byWorkflow {
        graph, err := joingraph.NewResolver(collections).Build()
        if err != nil {
            return nil, fmt.Errorf("workflow %s: %w", wfID, err)
        }
        graphs[wfID] = graph
    }

    return &Service{
        definitions: definitions,
        propagator:  propagate.NewPropagator(graphs, store, renderer, log),
        queue:       q,
        logger:      log,
        filterSets:  make(map[string]*filters.FilterSet),
    }, nil
}

func (s *Service) definition(dashboardID string) (config.DashboardDefinition, error) {
    def, ok := s.definitions[dashboardID]
    if !ok {
        return config.DashboardDefinition{}, fmt.Errorf("unknown dashboard %q", dashboardID)
    }
    return def, nil
}

func (s *Service) filterSet(dashboardID string) *filters.FilterSet {
    s.mu.Lock()
    defer s.mu.Unlock()
    fs, ok := s.filterSets[dashboardID]
    if !ok {
        fs = filters.NewFilterSet()
        s.filterSets[dashboardID] = fs
    }
    return fs
}

// ApplyFilter records the filter and recomputes the dashboard.
func (s *Service) ApplyFilter(ctx context.Context, dashboardID string, f *models.InteractiveFilter) ([]propagate.ComponentUpdate, error) {
    def, err := s.definition(dashboardID)
    if err != nil {
        return nil, err
    }
    fs := s.filterSet(dashboardID)
    fs.Apply(f)

    s.logger.Info("Filter applied",
        logger.String("dashboard", dashboardID),
        logger.String("component", f.ComponentID),
        logger.String("column", f.ColumnName),
    )
    return s.propagator.Recompute(ctx, def.Components, fs), nil
}

// ApplyClick translates the click into a filter and applies it.
func (s *Service) ApplyClick(ctx context.Context, dashboardID string, ev *propagate.ClickEvent) ([]propagate.ComponentUpdate, error) {
    f, err := propagate.TranslateClick(ev)
    if err != nil {
        return nil, err
    }
    return s.ApplyFilter(ctx, dashboardID, f)
}

// ApplySelection translates the selection into a filter and applies it.
func (s *Service) ApplySelection(ctx context.Context, dashboardID string, ev *propagate.SelectionEvent) ([]propagate.ComponentUpdate, error) {
    f, err := propagate.TranslateSelection(ev)
    if err != nil {
        return nil, err
    }
    return s.ApplyFilter(ctx, dashboardID, f)
}

// ResetFilter drops one component's filter and recomputes.
func (s *Service) ResetFilter(ctx context.Context, dashboardID, componentID string) ([]propagate.ComponentUpdate, error) {
    def, err := s.definition(dashboardID)
    if err != nil {
        return nil, err
    }
    fs := s.filterSet(dashboardID)
    fs.Reset(componentID)
    return s.propagator.Recompute(ctx, def.Components, fs), nil
}

// ClearFilters discards the dashboard view's filter state.
func (s *Service) ClearFilters(ctx context.Context, dashboardID string) error {
    if _, err := s.definition(dashboardID); err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.filterSets, dashboardID)
    return nil
}

// Recompute runs a full propagation pass with the current filters.
func (s *Service) Recompute(ctx context.Context, dashboardID string) ([]propagate.ComponentUpdate, error) {
    def, err := s.definition(dashboardID)
    if err != nil {
        return nil, err
    }
    return s.propagator.Recompute(ctx, def.Components, s.filterSet(dashboardID)), nil
}

// SubmitRenders enqueues one render task per renderable component. Tasks
// carry a snapshot of the filter set; a later filter change supersedes the
// result rather than cancelling the work.
func (s *Service) SubmitRenders(ctx context.Context, dashboardID string, forceFullData bool) ([]*queue.RenderStatus, error) {
    def, err := s.definition(dashboardID)
    if err != nil {
        return nil, err
    }
    snapshot := s.filterSet(dashboardID).Snapshot()

    var mu sync.Mutex
    statuses := make([]*queue.RenderStatus, 0, len(def.Components))

    g, ctx := errgroup.WithContext(ctx)
    for _, c := range def.Components {
        if c.Type == models.ComponentInteractive {
            continue
        }
        c := c
        g.Go(func() error {
            task := &queue.RenderTask{
                ID:            uuid.New().String(),
                DashboardID:   dashboardID,
                WorkflowID:    c.WfID,
                CollectionID:  c.DCID,
                Component:     c,
                Filters:       snapshot,
                ForceFullData: forceFullData,
                CreatedAt:     time.Now(),
            }
            if err := s.queue.Enqueue(ctx, task); err != nil {
                return fmt.Errorf("component %s: %w", c.Index, err)
            }
            mu.Lock()
            statuses = append(statuses, &queue.RenderStatus{
                TaskID:         task.ID,
                Status:         queue.RenderPending,
                ComponentType:  c.Type,
                ComponentIndex: c.Index,
            })
            mu.Unlock()
            return nil
        })
    }
    if err := g.Wait(); err != nil {
        return statuses, err
    }
    return statuses, nil
}

// RenderStatus polls one render task.
func (s *Service) RenderStatus(ctx context.Context, taskID string) (*queue.RenderStatus, error) {
    return s.queue.GetStatus(ctx, taskID)
}
