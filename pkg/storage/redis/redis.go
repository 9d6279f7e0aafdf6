package redis

import (
    "context"
    "encoding/json"
    "fmt"
    "sync"

    "github.com/redis/go-redis/v9"

    "github.com/vizlink/dashboard-engine/config"
    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/pkg/logger"
)

var (
    clientOnce sync.Once
    client     *Client
    clientErr  error
)

// Client is a redis-backed frame store. Frames are stored JSON-encoded
// under "frame:<workflow>:<collection>".
type Client struct {
    rdb    *redis.Client
    logger logger.Logger
}

// GetClient returns the shared redis frame store.
func GetClient(log logger.Logger) (*Client, error) {
    clientOnce.Do(func() {
        cfg := config.GetRedisConfig()
        rdb := redis.NewClient(&redis.Options{
            Addr:     cfg.Addr,
            Password: cfg.Password,
            DB:       cfg.DB,
        })
        if err := rdb.Ping(context.Background()).Err(); err != nil {
            clientErr = fmt.Errorf("redis ping failed: %w", err)
            return
        }
        client = &Client{rdb: rdb, logger: log}
    })
    return client, clientErr
}

// NewClient wraps an existing redis connection; used by workers that share
// one connection pool.
func NewClient(rdb *redis.Client, log logger.Logger) *Client {
    return &Client{rdb: rdb, logger: log}
}

func frameKey(workflowID, dataCollectionID string) string {
    return fmt.Sprintf("frame:%s:%s", workflowID, dataCollectionID)
}

// LoadFrame fetches and decodes a stored frame. A missing key is an error
// naming the source, never an empty frame.
func (c *Client) LoadFrame(ctx context.Context, workflowID, dataCollectionID string) (*frame.Frame, error) {
    data, err := c.rdb.Get(ctx, frameKey(workflowID, dataCollectionID)).Bytes()
    if err == redis.Nil {
        return nil, fmt.Errorf("frame not found for %s/%s", workflowID, dataCollectionID)
    }
    if err != nil {
        return nil, fmt.Errorf("failed to load frame %s/%s: %w", workflowID, dataCollectionID, err)
    }
    var fr frame.Frame
    if err := json.Unmarshal(data, &fr); err != nil {
        return nil, fmt.Errorf("failed to decode frame %s/%s: %w", workflowID, dataCollectionID, err)
    }
    return &fr, nil
}

// SaveFrame encodes and stores a frame, replacing any previous version.
func (c *Client) SaveFrame(ctx context.Context, workflowID, dataCollectionID string, fr *frame.Frame) error {
    data, err := json.Marshal(fr)
    if err != nil {
        return fmt.Errorf("failed to encode frame %s/%s: %w", workflowID, dataCollectionID, err)
    }
    if err := c.rdb.Set(ctx, frameKey(workflowID, dataCollectionID), data, 0).Err(); err != nil {
        return fmt.Errorf("failed to save frame %s/%s: %w", workflowID, dataCollectionID, err)
    }
    return nil
}

// DeleteFrame removes a stored frame.
func (c *Client) DeleteFrame(ctx context.Context, workflowID, dataCollectionID string) error {
    if err := c.rdb.Del(ctx, frameKey(workflowID, dataCollectionID)).Err(); err != nil {
        return fmt.Errorf("failed to delete frame %s/%s: %w", workflowID, dataCollectionID, err)
    }
    return nil
}
