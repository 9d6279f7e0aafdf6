package memory

import (
    "context"
    "fmt"
    "sync"

    "github.com/vizlink/dashboard-engine/internal/frame"
)

// Store is an in-memory frame store, used for tests and demo seeding.
type Store struct {
    mu     sync.RWMutex
    frames map[string]*frame.Frame
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
    return &Store{frames: make(map[string]*frame.Frame)}
}

func key(workflowID, dataCollectionID string) string {
    return workflowID + "/" + dataCollectionID
}

// LoadFrame returns the stored frame or an error naming the missing source.
func (s *Store) LoadFrame(ctx context.Context, workflowID, dataCollectionID string) (*frame.Frame, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    fr, ok := s.frames[key(workflowID, dataCollectionID)]
    if !ok {
        return nil, fmt.Errorf("frame not found for %s/%s", workflowID, dataCollectionID)
    }
    return fr, nil
}

// SaveFrame stores a frame, replacing any previous version.
func (s *Store) SaveFrame(ctx context.Context, workflowID, dataCollectionID string, fr *frame.Frame) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.frames[key(workflowID, dataCollectionID)] = fr
    return nil
}

// DeleteFrame removes a stored frame.
func (s *Store) DeleteFrame(ctx context.Context, workflowID, dataCollectionID string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.frames, key(workflowID, dataCollectionID))
    return nil
}
