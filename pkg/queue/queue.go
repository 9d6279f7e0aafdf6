package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    "github.com/hibiken/asynq"
    "github.com/redis/go-redis/v9"

    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/internal/propagate"
)

// TaskTypeRenderComponent is the asynq task type for one component render.
const TaskTypeRenderComponent = "render:component"

// RenderStatusValue is the lifecycle state of a render task.
type RenderStatusValue string

const (
    RenderPending RenderStatusValue = "pending"
    RenderRunning RenderStatusValue = "running"
    RenderSuccess RenderStatusValue = "success"
    RenderFailed  RenderStatusValue = "failed"
)

// RenderTask is the request payload of the task-executor boundary: one
// component descriptor plus a snapshot of the filter set at submission
// time.
type RenderTask struct {
    ID            string                     `json:"id"`
    DashboardID   string                     `json:"dashboard_id"`
    WorkflowID    string                     `json:"workflow_id"`
    CollectionID  string                     `json:"data_collection_id"`
    Component     models.ComponentDescriptor `json:"component_metadata"`
    Filters       []models.InteractiveFilter `json:"filters"`
    ForceFullData bool                       `json:"force_full_data"`
    CreatedAt     time.Time                  `json:"created_at"`
}

// RenderStatus is the response side of the boundary: a terminal
// success/failed record carrying the payload or error, or a pending record
// whose task id is pollable.
type RenderStatus struct {
    TaskID         string                     `json:"task_id"`
    Status         RenderStatusValue          `json:"status"`
    ComponentType  models.ComponentType       `json:"component_type"`
    ComponentIndex string                     `json:"component_index"`
    Data           *propagate.ComponentUpdate `json:"data,omitempty"`
    Error          string                     `json:"error,omitempty"`
    StartedAt      time.Time                  `json:"started_at"`
    FinishedAt     time.Time                  `json:"finished_at,omitempty"`
}

// RenderQueue is the contract between the engine and the asynchronous
// render executor.
type RenderQueue interface {
    Enqueue(ctx context.Context, task *RenderTask) error
    GetStatus(ctx context.Context, taskID string) (*RenderStatus, error)
    SaveStatus(ctx context.Context, status *RenderStatus) error
    Cancel(ctx context.Context, taskID string) error
}

// Config defines queue configuration.
type Config struct {
    RedisAddr      string
    RedisDB        int
    MaxRetries     int
    ProcessTimeout time.Duration
    StatusTTL      time.Duration
}

// AsynqQueue implements RenderQueue on asynq with status records kept in
// redis under "render_status:<id>".
type AsynqQueue struct {
    client    *asynq.Client
    inspector *asynq.Inspector
    redis     *redis.Client
    statusTTL time.Duration
}

// NewAsynqQueue creates a render queue against the given redis instance.
func NewAsynqQueue(cfg *Config) *AsynqQueue {
    redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
    ttl := cfg.StatusTTL
    if ttl == 0 {
        ttl = 24 * time.Hour
    }
    return &AsynqQueue{
        client:    asynq.NewClient(redisOpt),
        inspector: asynq.NewInspector(redisOpt),
        redis:     redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB}),
        statusTTL: ttl,
    }
}

func statusKey(taskID string) string {
    return fmt.Sprintf("render_status:%s", taskID)
}

// Enqueue submits a render task and records its pending status.
func (q *AsynqQueue) Enqueue(ctx context.Context, task *RenderTask) error {
    payload, err := json.Marshal(task)
    if err != nil {
        return fmt.Errorf("failed to marshal render task: %w", err)
    }

    t := asynq.NewTask(TaskTypeRenderComponent, payload,
        asynq.MaxRetry(3),
        asynq.Timeout(10*time.Minute),
        asynq.TaskID(task.ID),
    )
    if _, err := q.client.EnqueueContext(ctx, t); err != nil {
        return fmt.Errorf("failed to enqueue render task: %w", err)
    }

    return q.SaveStatus(ctx, &RenderStatus{
        TaskID:         task.ID,
        Status:         RenderPending,
        ComponentType:  task.Component.Type,
        ComponentIndex: task.Component.Index,
        StartedAt:      time.Now(),
    })
}

// GetStatus returns the stored status for a task. Tasks that have not yet
// produced a stored record report as pending.
func (q *AsynqQueue) GetStatus(ctx context.Context, taskID string) (*RenderStatus, error) {
    data, err := q.redis.Get(ctx, statusKey(taskID)).Bytes()
    if err == redis.Nil {
        info, inspectErr := q.inspector.GetTaskInfo("default", taskID)
        if inspectErr != nil {
            return nil, fmt.Errorf("render task %s not found: %w", taskID, inspectErr)
        }
        return &RenderStatus{TaskID: info.ID, Status: RenderPending}, nil
    }
    if err != nil {
        return nil, fmt.Errorf("failed to get render status: %w", err)
    }
    var status RenderStatus
    if err := json.Unmarshal(data, &status); err != nil {
        return nil, fmt.Errorf("failed to unmarshal render status: %w", err)
    }
    return &status, nil
}

// SaveStatus persists a status record with TTL.
func (q *AsynqQueue) SaveStatus(ctx context.Context, status *RenderStatus) error {
    data, err := json.Marshal(status)
    if err != nil {
        return fmt.Errorf("failed to marshal render status: %w", err)
    }
    if err := q.redis.Set(ctx, statusKey(status.TaskID), data, q.statusTTL).Err(); err != nil {
        return fmt.Errorf("failed to save render status: %w", err)
    }
    return nil
}

// Cancel removes a queued render task. A superseding filter change simply
// enqueues a new task; cancellation only drops work not yet started.
func (q *AsynqQueue) Cancel(ctx context.Context, taskID string) error {
    if err := q.inspector.DeleteTask("default", taskID); err != nil {
        return fmt.Errorf("failed to cancel render task %s: %w", taskID, err)
    }
    return nil
}
