package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/vizlink/dashboard-engine/api/handlers"
    "github.com/vizlink/dashboard-engine/api/routes"
    "github.com/vizlink/dashboard-engine/config"
    "github.com/vizlink/dashboard-engine/internal/render"
    "github.com/vizlink/dashboard-engine/internal/service/dashboard"
    "github.com/vizlink/dashboard-engine/pkg/logger"
    "github.com/vizlink/dashboard-engine/pkg/queue"
    "github.com/vizlink/dashboard-engine/pkg/storage"
)

func main() {
    srvCfg := config.GetServerConfig()

    outputs := []string{"stdout"}
    if srvCfg.LogPath != "" {
        outputs = append(outputs, srvCfg.LogPath)
    }
    log, err := logger.NewLogger(
        logger.WithLevel(srvCfg.LogLevel),
        logger.WithEncoding("json"),
        logger.WithOutputPaths(outputs),
    )
    if err != nil {
        panic(err)
    }
    defer log.Sync()

    // dashboard definitions
    defs, err := config.LoadDashboards(srvCfg.DashboardFile)
    if err != nil {
        log.Fatal("Failed to load dashboards", logger.Error(err))
    }

    // frame store
    store, err := storage.NewStore(storage.StoreTypeRedis, log)
    if err != nil {
        log.Fatal("Failed to initialize frame store", logger.Error(err))
    }

    // render queue
    redisCfg := config.GetRedisConfig()
    q := queue.NewAsynqQueue(&queue.Config{
        RedisAddr: redisCfg.Addr,
        RedisDB:   redisCfg.DB,
    })

    // dashboard engine
    engine, err := dashboard.NewService(defs, store, render.NewPayloadRenderer(), q, log)
    if err != nil {
        log.Fatal("Failed to build dashboard engine", logger.Error(err))
    }

    h := handlers.NewHandlers(engine, log)
    r := gin.New()
    r.Use(gin.Recovery())
    routes.SetupRoutes(r, h)

    srv := &http.Server{
        Addr:    ":" + srvCfg.Port,
        Handler: r,
    }

    go func() {
        log.Info("Server starting", logger.String("port", srvCfg.Port))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Error("Server error", logger.Error(err))
        }
    }()

    quit := make(chan os.Signal, 1)
    signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
    <-quit

    log.Info("Shutting down server...")
    shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer shutdownCancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Error("Server forced to shutdown", logger.Error(err))
    }
}
