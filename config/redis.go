package config

import (
    "log"
    "os"
    "strconv"
    "sync"

    "github.com/joho/godotenv"
)

var (
    redisOnce   sync.Once
    redisConfig *RedisConfig
)

type RedisConfig struct {
    Addr     string
    Password string
    DB       int
}

func GetRedisConfig() *RedisConfig {
    redisOnce.Do(func() {
        if err := godotenv.Load(); err != nil {
            log.Printf("Warning: .env file not found, falling back to environment variables")
        }

        db := 0
        if raw := os.Getenv("REDIS_DB"); raw != "" {
            if parsed, err := strconv.Atoi(raw); err == nil {
                db = parsed
            }
        }

        addr := os.Getenv("REDIS_ADDR")
        if addr == "" {
            addr = "localhost:6379"
        }

        redisConfig = &RedisConfig{
            Addr:     addr,
            Password: os.Getenv("REDIS_PASSWORD"),
            DB:       db,
        }
    })
    return redisConfig
}
