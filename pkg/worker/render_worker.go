package worker

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/hibiken/asynq"

    "github.com/vizlink/dashboard-engine/internal/filters"
    "github.com/vizlink/dashboard-engine/internal/propagate"
    "github.com/vizlink/dashboard-engine/pkg/logger"
    "github.com/vizlink/dashboard-engine/pkg/queue"
)

// RenderWorker executes render tasks: it rebuilds the filter set from the
// task's snapshot, recomputes the one component, and stores the result
// where pollers can find it.
type RenderWorker struct {
    BaseWorker
    propagator *propagate.Propagator
    queue      queue.RenderQueue
}

// NewRenderWorker creates a worker bound to the given propagator and queue.
func NewRenderWorker(cfg *Config, p *propagate.Propagator, q queue.RenderQueue, log logger.Logger) *RenderWorker {
    server := asynq.NewServer(
        asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
        asynq.Config{
            Concurrency: cfg.Concurrency,
            Queues:      cfg.Queues,
            RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
                return time.Duration(n) * time.Minute
            },
        },
    )

    w := &RenderWorker{
        BaseWorker: BaseWorker{
            server: server,
            mux:    asynq.NewServeMux(),
            logger: log,
        },
        propagator: p,
        queue:      q,
    }
    w.mux.HandleFunc(queue.TaskTypeRenderComponent, w.handleRender)
    return w
}

func (w *RenderWorker) handleRender(ctx context.Context, t *asynq.Task) error {
    var task queue.RenderTask
    if err := json.Unmarshal(t.Payload(), &task); err != nil {
        w.logger.Error("Failed to unmarshal render task",
            logger.Error(err),
            logger.String("payload", string(t.Payload())),
        )
        return fmt.Errorf("failed to unmarshal render task: %w", err)
    }

    w.logger.Info("Rendering component",
        logger.String("taskId", task.ID),
        logger.String("component", task.Component.Index),
        logger.String("dashboard", task.DashboardID),
    )

    running := &queue.RenderStatus{
        TaskID:         task.ID,
        Status:         queue.RenderRunning,
        ComponentType:  task.Component.Type,
        ComponentIndex: task.Component.Index,
        StartedAt:      time.Now(),
    }
    if err := w.queue.SaveStatus(ctx, running); err != nil {
        w.logger.Error("Failed to save running status", logger.Error(err))
    }

    fs := filters.NewFilterSet()
    if !task.ForceFullData {
        fs = filters.FromSnapshot(task.Filters)
    }

    update := w.propagator.RecomputeComponent(ctx, &task.Component, fs)

    status := &queue.RenderStatus{
        TaskID:         task.ID,
        ComponentType:  task.Component.Type,
        ComponentIndex: task.Component.Index,
        StartedAt:      running.StartedAt,
        FinishedAt:     time.Now(),
    }
    if update.Status == propagate.UpdateFailed {
        status.Status = queue.RenderFailed
        status.Error = update.Error
    } else {
        status.Status = queue.RenderSuccess
        status.Data = &update
    }

    if err := w.queue.SaveStatus(ctx, status); err != nil {
        w.logger.Error("Failed to save render result", logger.Error(err))
        return fmt.Errorf("failed to save render result: %w", err)
    }

    if status.Status == queue.RenderFailed {
        // Terminal: the failure is recorded for pollers, retrying would
        // recompute the same deterministic result.
        w.logger.Error("Render failed",
            logger.String("taskId", task.ID),
            logger.String("error", status.Error),
        )
    }
    return nil
}

// Start runs the worker until the context is cancelled.
func (w *RenderWorker) Start(ctx context.Context) error {
    go func() {
        if err := w.server.Run(w.mux); err != nil {
            w.logger.Error("Worker server stopped", logger.Error(err))
        }
    }()
    go func() {
        <-ctx.Done()
        w.Stop()
    }()
    return nil
}
