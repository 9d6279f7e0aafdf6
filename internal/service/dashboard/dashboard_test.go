package dashboard

import (
    "context"
    "fmt"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/vizlink/dashboard-engine/config"
    "github.com/vizlink/dashboard-engine/internal/cards"
    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/internal/propagate"
    "github.com/vizlink/dashboard-engine/internal/render"
    "github.com/vizlink/dashboard-engine/pkg/logger"
    "github.com/vizlink/dashboard-engine/pkg/queue"
    "github.com/vizlink/dashboard-engine/pkg/storage/memory"
)

// fakeQueue records enqueued tasks instead of touching redis.
type fakeQueue struct {
    mu    sync.Mutex
    tasks []*queue.RenderTask
}

func (q *fakeQueue) Enqueue(ctx context.Context, task *queue.RenderTask) error {
    q.mu.Lock()
    defer q.mu.Unlock()
    q.tasks = append(q.tasks, task)
    return nil
}

func (q *fakeQueue) GetStatus(ctx context.Context, taskID string) (*queue.RenderStatus, error) {
    q.mu.Lock()
    defer q.mu.Unlock()
    for _, t := range q.tasks {
        if t.ID == taskID {
            return &queue.RenderStatus{TaskID: taskID, Status: queue.RenderPending}, nil
        }
    }
    return nil, fmt.Errorf("render task %s not found", taskID)
}

func (q *fakeQueue) SaveStatus(ctx context.Context, status *queue.RenderStatus) error { return nil }
func (q *fakeQueue) Cancel(ctx context.Context, taskID string) error                  { return nil }

func demoDefinitions() *config.DashboardsFile {
    return &config.DashboardsFile{
        Dashboards: []config.DashboardDefinition{
            {
                ID:    "demo",
                Title: "Demo",
                Collections: []models.DataCollection{
                    {
                        WorkflowID: "wf1", ID: "dc-samples", Tag: "samples",
                        Type: models.CollectionTypeTable,
                        Join: &models.JoinDeclaration{
                            OnColumns: []string{"id=sample_id"},
                            How:       models.JoinInner,
                            WithDC:    []string{"measurements"},
                        },
                    },
                    {
                        WorkflowID: "wf1", ID: "dc-measurements", Tag: "measurements",
                        Type: models.CollectionTypeTable,
                    },
                },
                Components: []models.ComponentDescriptor{
                    {
                        Index: "card-1", Type: models.ComponentCard,
                        WfID: "wf1", DCID: "dc-measurements",
                        Card: &models.CardConfig{ColumnName: "value", Aggregation: "mean"},
                    },
                    {
                        Index: "widget-1", Type: models.ComponentInteractive,
                        WfID: "wf1", DCID: "dc-samples",
                    },
                },
            },
        },
    }
}

func demoService(t *testing.T) (Engine, *fakeQueue) {
    t.Helper()
    store := memory.NewStore()
    ctx := context.Background()
    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-samples", frame.New(
        []string{"id", "group"},
        []frame.Record{
            {"id": 1, "group": "A"},
            {"id": 2, "group": "B"},
        },
    )))
    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-measurements", frame.New(
        []string{"sample_id", "value"},
        []frame.Record{
            {"sample_id": 1, "value": 100.0},
            {"sample_id": 2, "value": 200.0},
        },
    )))

    q := &fakeQueue{}
    engine, err := NewService(demoDefinitions(), store, render.NewPayloadRenderer(), q, logger.Nop())
    require.NoError(t, err)
    return engine, q
}

func TestApplyFilterRecomputes(t *testing.T) {
    engine, _ := demoService(t)

    updates, err := engine.ApplyFilter(context.Background(), "demo", &models.InteractiveFilter{
        ComponentID: "widget-1",
        ColumnName:  "group",
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  models.WidgetSelect,
        Value:       "A",
        SourceWfID:  "wf1",
        SourceDCID:  "dc-samples",
    })
    require.NoError(t, err)
    require.Len(t, updates, 1)
    require.Equal(t, propagate.UpdateSuccess, updates[0].Status, updates[0].Error)
    assert.Equal(t, 100.0, updates[0].Data.(*cards.Result).Value)
}

func TestResetFilterRestoresFullFrame(t *testing.T) {
    engine, _ := demoService(t)
    ctx := context.Background()

    _, err := engine.ApplyFilter(ctx, "demo", &models.InteractiveFilter{
        ComponentID: "widget-1",
        ColumnName:  "group",
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  models.WidgetSelect,
        Value:       "A",
        SourceWfID:  "wf1",
        SourceDCID:  "dc-samples",
    })
    require.NoError(t, err)

    updates, err := engine.ResetFilter(ctx, "demo", "widget-1")
    require.NoError(t, err)
    require.Len(t, updates, 1)
    assert.Equal(t, 150.0, updates[0].Data.(*cards.Result).Value)
}

func TestUnknownDashboard(t *testing.T) {
    engine, _ := demoService(t)
    _, err := engine.Recompute(context.Background(), "nope")
    assert.ErrorContains(t, err, "nope")
}

func TestSubmitRendersSkipsInteractive(t *testing.T) {
    engine, q := demoService(t)
    statuses, err := engine.SubmitRenders(context.Background(), "demo", false)
    require.NoError(t, err)

    require.Len(t, statuses, 1)
    assert.Equal(t, queue.RenderPending, statuses[0].Status)
    assert.Equal(t, "card-1", statuses[0].ComponentIndex)
    require.Len(t, q.tasks, 1)
    assert.Equal(t, "demo", q.tasks[0].DashboardID)
}

func TestNewServiceRejectsMissingJoinReference(t *testing.T) {
    defs := demoDefinitions()
    defs.Dashboards[0].Collections[0].Join.WithDC = []string{"ghost"}

    _, err := NewService(defs, memory.NewStore(), render.NewPayloadRenderer(), &fakeQueue{}, logger.Nop())
    require.Error(t, err)
    assert.Contains(t, err.Error(), "ghost")
}

func TestClearFilters(t *testing.T) {
    engine, _ := demoService(t)
    ctx := context.Background()

    _, err := engine.ApplyFilter(ctx, "demo", &models.InteractiveFilter{
        ComponentID: "widget-1",
        ColumnName:  "group",
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  models.WidgetSelect,
        Value:       "A",
        SourceWfID:  "wf1",
        SourceDCID:  "dc-samples",
    })
    require.NoError(t, err)
    require.NoError(t, engine.ClearFilters(ctx, "demo"))

    updates, err := engine.Recompute(ctx, "demo")
    require.NoError(t, err)
    assert.Equal(t, 150.0, updates[0].Data.(*cards.Result).Value)
}
