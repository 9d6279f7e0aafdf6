package filters

import (
    "sort"

    "github.com/vizlink/dashboard-engine/internal/models"
)

// FilterSet holds the active interactive filters of one dashboard view,
// keyed by the id of the component that produced them. Mutated only by
// explicit apply/reset operations; callers own its lifecycle and serialize
// concurrent mutations for the same view.
type FilterSet struct {
    byComponent map[string]*models.InteractiveFilter
}

// NewFilterSet returns an empty filter set.
func NewFilterSet() *FilterSet {
    return &FilterSet{byComponent: make(map[string]*models.InteractiveFilter)}
}

// Apply records or replaces the filter for its source component.
func (s *FilterSet) Apply(f *models.InteractiveFilter) {
    s.byComponent[f.ComponentID] = f
}

// Reset drops the filter owned by one component.
func (s *FilterSet) Reset(componentID string) {
    delete(s.byComponent, componentID)
}

// Clear drops every filter.
func (s *FilterSet) Clear() {
    s.byComponent = make(map[string]*models.InteractiveFilter)
}

// Get returns the filter owned by a component, if any.
func (s *FilterSet) Get(componentID string) (*models.InteractiveFilter, bool) {
    f, ok := s.byComponent[componentID]
    return f, ok
}

// Len returns the number of active filters.
func (s *FilterSet) Len() int {
    return len(s.byComponent)
}

// Filters returns the active filters in sorted component-id order.
// Insertion order is irrelevant for filtering, but iteration must be
// deterministic.
func (s *FilterSet) Filters() []*models.InteractiveFilter {
    ids := make([]string, 0, len(s.byComponent))
    for id := range s.byComponent {
        ids = append(ids, id)
    }
    sort.Strings(ids)
    out := make([]*models.InteractiveFilter, len(ids))
    for i, id := range ids {
        out[i] = s.byComponent[id]
    }
    return out
}

// Snapshot copies the active filters into a plain slice for task payloads.
func (s *FilterSet) Snapshot() []models.InteractiveFilter {
    filters := s.Filters()
    out := make([]models.InteractiveFilter, len(filters))
    for i, f := range filters {
        out[i] = *f
    }
    return out
}

// FromSnapshot rebuilds a filter set from a task payload snapshot.
func FromSnapshot(snapshot []models.InteractiveFilter) *FilterSet {
    s := NewFilterSet()
    for i := range snapshot {
        f := snapshot[i]
        s.Apply(&f)
    }
    return s
}
