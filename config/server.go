package config

import (
    "log"
    "os"
    "sync"

    "github.com/joho/godotenv"
)

var (
    serverOnce   sync.Once
    serverConfig *ServerConfig
)

type ServerConfig struct {
    Port          string
    LogLevel      string
    LogPath       string
    DashboardFile string
}

func GetServerConfig() *ServerConfig {
    serverOnce.Do(func() {
        if err := godotenv.Load(); err != nil {
            log.Printf("Warning: .env file not found, falling back to environment variables")
        }

        port := os.Getenv("SERVER_PORT")
        if port == "" {
            port = "8080"
        }
        level := os.Getenv("LOG_LEVEL")
        if level == "" {
            level = "info"
        }
        dashboards := os.Getenv("DASHBOARD_FILE")
        if dashboards == "" {
            dashboards = "dashboards.yaml"
        }

        serverConfig = &ServerConfig{
            Port:          port,
            LogLevel:      level,
            LogPath:       os.Getenv("LOG_PATH"),
            DashboardFile: dashboards,
        }
    })
    return serverConfig
}
