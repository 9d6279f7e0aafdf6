package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"

    "github.com/vizlink/dashboard-engine/config"
    "github.com/vizlink/dashboard-engine/internal/joingraph"
    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/internal/propagate"
    "github.com/vizlink/dashboard-engine/internal/render"
    "github.com/vizlink/dashboard-engine/pkg/logger"
    "github.com/vizlink/dashboard-engine/pkg/queue"
    "github.com/vizlink/dashboard-engine/pkg/storage"
    "github.com/vizlink/dashboard-engine/pkg/worker"
)

func main() {
    srvCfg := config.GetServerConfig()

    log, err := logger.NewLogger(
        logger.WithLevel(srvCfg.LogLevel),
        logger.WithEncoding("json"),
        logger.WithOutputPaths([]string{"stdout"}),
    )
    if err != nil {
        panic(err)
    }
    defer log.Sync()

    defs, err := config.LoadDashboards(srvCfg.DashboardFile)
    if err != nil {
        log.Fatal("Failed to load dashboards", logger.Error(err))
    }

    store, err := storage.NewStore(storage.StoreTypeRedis, log)
    if err != nil {
        log.Fatal("Failed to initialize frame store", logger.Error(err))
    }

    // resolve join graphs per workflow
    byWorkflow := make(map[string][]models.DataCollection)
    for _, d := range defs.Dashboards {
        for _, dc := range d.Collections {
            byWorkflow[dc.WorkflowID] = append(byWorkflow[dc.WorkflowID], dc)
        }
    }
    graphs := make(map[string]*joingraph.Graph, len(byWorkflow))
    for wfID, collections := range byWorkflow {
        graph, err := joingraph.NewResolver(collections).Build()
        if err != nil {
            log.Fatal("Failed to resolve join graph",
                logger.String("workflow", wfID),
                logger.Error(err),
            )
        }
        graphs[wfID] = graph
    }

    propagator := propagate.NewPropagator(graphs, store, render.NewPayloadRenderer(), log)

    redisCfg := config.GetRedisConfig()
    q := queue.NewAsynqQueue(&queue.Config{
        RedisAddr: redisCfg.Addr,
        RedisDB:   redisCfg.DB,
    })

    renderWorker := worker.NewRenderWorker(&worker.Config{
        RedisAddr:   redisCfg.Addr,
        RedisDB:     redisCfg.DB,
        Concurrency: 10,
        Queues:      map[string]int{"default": 1},
    }, propagator, q, log)

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    if err := renderWorker.Start(ctx); err != nil {
        log.Error("Failed to start worker", logger.Error(err))
        os.Exit(1)
    }

    sigChan := make(chan os.Signal, 1)
    signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
    <-sigChan

    log.Info("Shutting down worker...")
    renderWorker.Stop()
    log.Info("Worker stopped")
}
