package filters

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/vizlink/dashboard-engine/internal/models"
)

func widgetFilter(componentID, column string) *models.InteractiveFilter {
    return &models.InteractiveFilter{
        ComponentID: componentID,
        ColumnName:  column,
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  models.WidgetSelect,
        Value:       "x",
        SourceWfID:  "wf1",
        SourceDCID:  "dc1",
    }
}

func TestFilterSetApplyReplaces(t *testing.T) {
    fs := NewFilterSet()
    fs.Apply(widgetFilter("w1", "a"))
    fs.Apply(widgetFilter("w1", "b"))

    require.Equal(t, 1, fs.Len())
    f, ok := fs.Get("w1")
    require.True(t, ok)
    assert.Equal(t, "b", f.ColumnName)
}

func TestFilterSetDeterministicIteration(t *testing.T) {
    fs := NewFilterSet()
    fs.Apply(widgetFilter("w3", "c"))
    fs.Apply(widgetFilter("w1", "a"))
    fs.Apply(widgetFilter("w2", "b"))

    var ids []string
    for _, f := range fs.Filters() {
        ids = append(ids, f.ComponentID)
    }
    assert.Equal(t, []string{"w1", "w2", "w3"}, ids)
}

func TestFilterSetResetAndClear(t *testing.T) {
    fs := NewFilterSet()
    fs.Apply(widgetFilter("w1", "a"))
    fs.Apply(widgetFilter("w2", "b"))

    fs.Reset("w1")
    assert.Equal(t, 1, fs.Len())
    _, ok := fs.Get("w1")
    assert.False(t, ok)

    fs.Clear()
    assert.Equal(t, 0, fs.Len())
}

func TestSnapshotRoundTrip(t *testing.T) {
    fs := NewFilterSet()
    fs.Apply(widgetFilter("w2", "b"))
    fs.Apply(widgetFilter("w1", "a"))

    rebuilt := FromSnapshot(fs.Snapshot())
    require.Equal(t, 2, rebuilt.Len())
    f, ok := rebuilt.Get("w2")
    require.True(t, ok)
    assert.Equal(t, "b", f.ColumnName)
}
