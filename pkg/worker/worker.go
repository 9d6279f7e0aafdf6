package worker

import (
    "context"

    "github.com/hibiken/asynq"

    "github.com/vizlink/dashboard-engine/pkg/logger"
)

// Worker consumes render tasks from the queue.
type Worker interface {
    Start(ctx context.Context) error
    Stop() error
}

// Config defines worker configuration.
type Config struct {
    RedisAddr   string
    RedisDB     int
    Concurrency int
    Queues      map[string]int
}

// BaseWorker wraps the asynq server and mux shared by concrete workers.
type BaseWorker struct {
    server *asynq.Server
    mux    *asynq.ServeMux
    logger logger.Logger
}

func (w *BaseWorker) Stop() error {
    w.server.Stop()
    return nil
}
