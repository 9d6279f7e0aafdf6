package storage

import (
    "context"
    "fmt"

    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/pkg/logger"
    "github.com/vizlink/dashboard-engine/pkg/storage/memory"
    redisstore "github.com/vizlink/dashboard-engine/pkg/storage/redis"
)

// StoreType selects the frame store backend.
type StoreType string

const (
    StoreTypeRedis  StoreType = "redis"
    StoreTypeMemory StoreType = "memory"
)

// FrameStore is the data-access boundary over stored tabular frames.
type FrameStore interface {
    // LoadFrame returns the base frame for a workflow's data collection.
    // A missing source is a hard error, never an empty frame.
    LoadFrame(ctx context.Context, workflowID, dataCollectionID string) (*frame.Frame, error)
    // SaveFrame stores a frame, replacing any previous version.
    SaveFrame(ctx context.Context, workflowID, dataCollectionID string, fr *frame.Frame) error
    // DeleteFrame removes a stored frame.
    DeleteFrame(ctx context.Context, workflowID, dataCollectionID string) error
}

// NewStore is the factory for frame store backends.
func NewStore(storeType StoreType, log logger.Logger) (FrameStore, error) {
    switch storeType {
    case StoreTypeRedis:
        return redisstore.GetClient(log)
    case StoreTypeMemory:
        return memory.NewStore(), nil
    default:
        return nil, fmt.Errorf("unsupported store type: %s", storeType)
    }
}
