package propagate

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/vizlink/dashboard-engine/internal/cards"
    "github.com/vizlink/dashboard-engine/internal/filters"
    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/internal/joingraph"
    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/internal/render"
    "github.com/vizlink/dashboard-engine/pkg/logger"
    "github.com/vizlink/dashboard-engine/pkg/storage/memory"
)

func fixtureStore(t *testing.T) *memory.Store {
    t.Helper()
    store := memory.NewStore()
    ctx := context.Background()

    samples := frame.New([]string{"id", "group"}, []frame.Record{
        {"id": 1, "group": "A"},
        {"id": 2, "group": "A"},
        {"id": 3, "group": "B"},
        {"id": 4, "group": "B"},
    })
    measurements := frame.New([]string{"sample_id", "value"}, []frame.Record{
        {"sample_id": 1, "value": 10.0},
        {"sample_id": 2, "value": 20.0},
        {"sample_id": 3, "value": 30.0},
        {"sample_id": 4, "value": 40.0},
    })
    other := frame.New([]string{"value"}, []frame.Record{
        {"value": 1.0}, {"value": 2.0}, {"value": 3.0},
    })

    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-samples", samples))
    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-measurements", measurements))
    require.NoError(t, store.SaveFrame(ctx, "wf2", "dc-other", other))
    return store
}

func fixtureGraphs(t *testing.T) map[string]*joingraph.Graph {
    t.Helper()
    collections := []models.DataCollection{
        {
            WorkflowID: "wf1", ID: "dc-samples", Tag: "samples",
            Type: models.CollectionTypeTable,
            Join: &models.JoinDeclaration{
                OnColumns: []string{"id=sample_id"},
                How:       models.JoinInner,
                WithDC:    []string{"measurements"},
            },
        },
        {
            WorkflowID: "wf1", ID: "dc-measurements", Tag: "measurements",
            Type: models.CollectionTypeTable,
        },
    }
    g, err := joingraph.NewResolver(collections).Build()
    require.NoError(t, err)
    return map[string]*joingraph.Graph{"wf1": g}
}

func fixturePropagator(t *testing.T) (*Propagator, *memory.Store) {
    store := fixtureStore(t)
    p := NewPropagator(fixtureGraphs(t), store, render.NewPayloadRenderer(), logger.Nop())
    return p, store
}

func groupFilter(values ...interface{}) *models.InteractiveFilter {
    return &models.InteractiveFilter{
        ComponentID: "widget-group",
        ColumnName:  "group",
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  models.WidgetSelect,
        Value:       values,
        SourceWfID:  "wf1",
        SourceDCID:  "dc-samples",
    }
}

func meanCard() models.ComponentDescriptor {
    return models.ComponentDescriptor{
        Index: "card-1",
        Type:  models.ComponentCard,
        WfID:  "wf1",
        DCID:  "dc-measurements",
        Card:  &models.CardConfig{ColumnName: "value", Aggregation: "mean"},
    }
}

func TestFilterPropagatesThroughJoin(t *testing.T) {
    // categorical group filter on samples must narrow the measurements
    // card to the joined group's rows
    p, _ := fixturePropagator(t)
    fs := filters.NewFilterSet()
    fs.Apply(groupFilter("A"))

    card := meanCard()
    update := p.RecomputeComponent(context.Background(), &card, fs)
    require.Equal(t, UpdateSuccess, update.Status, update.Error)

    result := update.Data.(*cards.Result)
    assert.Equal(t, cards.ResultScalar, result.Kind)
    assert.Equal(t, 15.0, result.Value) // mean of 10, 20
}

func TestFilterColumnAbsentEverywherePassesThrough(t *testing.T) {
    // the filter column exists on neither the component's frame nor the
    // join source's frame: the filter must be a no-op, including for rows
    // that have no join partner
    store := memory.NewStore()
    ctx := context.Background()
    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-samples", frame.New(
        []string{"id", "group"},
        []frame.Record{
            {"id": 1, "group": "A"},
            {"id": 2, "group": "B"},
        },
    )))
    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-measurements", frame.New(
        []string{"sample_id", "value"},
        []frame.Record{
            {"sample_id": 1, "value": 10.0},
            {"sample_id": 2, "value": 20.0},
            {"sample_id": 99, "value": 30.0}, // no matching sample
        },
    )))
    p := NewPropagator(fixtureGraphs(t), store, render.NewPayloadRenderer(), logger.Nop())

    fs := filters.NewFilterSet()
    fs.Apply(&models.InteractiveFilter{
        ComponentID: "widget-ghost",
        ColumnName:  "ghost_column",
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  models.WidgetSelect,
        Value:       "A",
        SourceWfID:  "wf1",
        SourceDCID:  "dc-samples",
    })

    table := models.ComponentDescriptor{
        Index: "table-1",
        Type:  models.ComponentTable,
        WfID:  "wf1",
        DCID:  "dc-measurements",
    }
    update := p.RecomputeComponent(context.Background(), &table, fs)
    require.Equal(t, UpdateSuccess, update.Status, update.Error)
    assert.Len(t, update.Data.([]frame.Record), 3)
}

func TestFilterDoesNotCrossWorkflows(t *testing.T) {
    // a range filter in wf1 must leave a wf2 table untouched
    p, _ := fixturePropagator(t)
    fs := filters.NewFilterSet()
    fs.Apply(&models.InteractiveFilter{
        ComponentID: "widget-range",
        ColumnName:  "value",
        ColumnType:  models.ColumnNumeric,
        WidgetKind:  models.WidgetRangeSlider,
        Value:       []interface{}{10.0, 20.0},
        SourceWfID:  "wf1",
        SourceDCID:  "dc-measurements",
    })

    table := models.ComponentDescriptor{
        Index: "table-1",
        Type:  models.ComponentTable,
        WfID:  "wf2",
        DCID:  "dc-other",
    }
    update := p.RecomputeComponent(context.Background(), &table, fs)
    require.Equal(t, UpdateSuccess, update.Status, update.Error)
    assert.Len(t, update.Data.([]frame.Record), 3)
}

func TestUnfilteredRecomputeUsesFullFrame(t *testing.T) {
    p, _ := fixturePropagator(t)
    card := meanCard()
    update := p.RecomputeComponent(context.Background(), &card, filters.NewFilterSet())
    require.Equal(t, UpdateSuccess, update.Status, update.Error)
    assert.Equal(t, 25.0, update.Data.(*cards.Result).Value)
}

func TestRecomputeOrderingAndInteractiveExclusion(t *testing.T) {
    p, _ := fixturePropagator(t)
    components := []models.ComponentDescriptor{
        {Index: "table-1", Type: models.ComponentTable, WfID: "wf1", DCID: "dc-measurements"},
        {Index: "widget-1", Type: models.ComponentInteractive, WfID: "wf1", DCID: "dc-samples"},
        meanCard(),
    }
    updates := p.Recompute(context.Background(), components, filters.NewFilterSet())

    // interactive descriptors are filter sources, never recompute targets
    require.Len(t, updates, 2)
    assert.Equal(t, "card-1", updates[0].ComponentIndex)
    assert.Equal(t, "table-1", updates[1].ComponentIndex)
}

func TestRecomputeIsDeterministic(t *testing.T) {
    p, _ := fixturePropagator(t)
    fs := filters.NewFilterSet()
    fs.Apply(groupFilter("B"))
    components := []models.ComponentDescriptor{meanCard()}

    first := p.Recompute(context.Background(), components, fs)
    second := p.Recompute(context.Background(), components, fs)
    assert.Equal(t, first, second)
}

func TestFailureIsolation(t *testing.T) {
    // one component with a missing frame must not abort the others
    p, _ := fixturePropagator(t)
    components := []models.ComponentDescriptor{
        meanCard(),
        {Index: "table-ghost", Type: models.ComponentTable, WfID: "wf1", DCID: "dc-ghost"},
    }
    updates := p.Recompute(context.Background(), components, filters.NewFilterSet())
    require.Len(t, updates, 2)

    assert.Equal(t, UpdateSuccess, updates[0].Status)
    assert.Equal(t, UpdateFailed, updates[1].Status)
    assert.Contains(t, updates[1].Error, "dc-ghost")
}

func TestMissingFrameIsHardError(t *testing.T) {
    p, _ := fixturePropagator(t)
    ghost := models.ComponentDescriptor{
        Index: "card-ghost", Type: models.ComponentCard, WfID: "wf1", DCID: "nope",
        Card: &models.CardConfig{ColumnName: "x", Aggregation: "sum"},
    }
    update := p.RecomputeComponent(context.Background(), &ghost, filters.NewFilterSet())
    assert.Equal(t, UpdateFailed, update.Status)
}

func TestCardPipelineComponent(t *testing.T) {
    p, _ := fixturePropagator(t)
    card := models.ComponentDescriptor{
        Index: "card-adv", Type: models.ComponentCard, WfID: "wf1", DCID: "dc-measurements",
        Card: &models.CardConfig{
            Pipeline: &models.CardPipeline{
                Mode: models.PipelineAdvanced,
                Steps: []models.PipelineStep{
                    {Number: 1, Kind: models.StepFilter, Filter: &models.FilterOperation{
                        Column: "value", Operator: models.OpGe, Value: 30.0,
                    }},
                },
                Aggregate: &models.AggregateOperation{Method: "count"},
            },
        },
    }
    update := p.RecomputeComponent(context.Background(), &card, filters.NewFilterSet())
    require.Equal(t, UpdateSuccess, update.Status, update.Error)
    assert.Equal(t, 2, update.Data.(*cards.Result).Value)
}

func TestFigureComponentPayload(t *testing.T) {
    p, _ := fixturePropagator(t)
    fs := filters.NewFilterSet()
    fs.Apply(groupFilter("A"))

    figure := models.ComponentDescriptor{
        Index: "fig-1", Type: models.ComponentFigure, WfID: "wf1", DCID: "dc-measurements",
        Figure: &models.FigureConfig{
            Visu:       "scatter",
            DictKwargs: map[string]string{"x": "sample_id", "y": "value"},
        },
    }
    update := p.RecomputeComponent(context.Background(), &figure, fs)
    require.Equal(t, UpdateSuccess, update.Status, update.Error)

    payload := update.Data.(*render.FigurePayload)
    assert.Equal(t, "scatter", payload.Visu)
    assert.Equal(t, map[string]string{"x": "sample_id", "y": "value"}, payload.DictKwargs)
    assert.Len(t, payload.Records, 2)
}

func TestGenomeBrowserTrackScope(t *testing.T) {
    store := memory.NewStore()
    ctx := context.Background()

    samples := frame.New([]string{"sample_id", "condition"}, []frame.Record{
        {"sample_id": "s1", "condition": "treated"},
        {"sample_id": "s2", "condition": "control"},
    })
    tracks := frame.New([]string{"sample_id", "path"}, []frame.Record{
        {"sample_id": "s1", "path": "/tracks/s1.bw"},
        {"sample_id": "s2", "path": "/tracks/s2.bw"},
    })
    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-samples", samples))
    require.NoError(t, store.SaveFrame(ctx, "wf1", "dc-tracks", tracks))

    collections := []models.DataCollection{
        {
            WorkflowID: "wf1", ID: "dc-samples", Tag: "samples",
            Type: models.CollectionTypeTable,
            Join: &models.JoinDeclaration{
                OnColumns: []string{"sample_id"},
                How:       models.JoinInner,
                WithDC:    []string{"tracks"},
            },
        },
        {WorkflowID: "wf1", ID: "dc-tracks", Tag: "tracks", Type: models.CollectionTypeGenomeBrowser},
    }
    g, err := joingraph.NewResolver(collections).Build()
    require.NoError(t, err)

    p := NewPropagator(map[string]*joingraph.Graph{"wf1": g}, store, render.NewPayloadRenderer(), logger.Nop())

    fs := filters.NewFilterSet()
    fs.Apply(&models.InteractiveFilter{
        ComponentID: "widget-sample",
        ColumnName:  "sample_id",
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  models.WidgetMultiSelect,
        Value:       []interface{}{"s1"},
        SourceWfID:  "wf1",
        SourceDCID:  "dc-samples",
    })

    browser := models.ComponentDescriptor{
        Index: "gb-1", Type: models.ComponentGenomeBrowser, WfID: "wf1", DCID: "dc-tracks",
    }
    update := p.RecomputeComponent(context.Background(), &browser, fs)
    require.Equal(t, UpdateSuccess, update.Status, update.Error)

    require.Contains(t, update.TrackScope, "sample_id")
    assert.Equal(t, []interface{}{"s1"}, update.TrackScope["sample_id"])
    assert.Len(t, update.Data.([]frame.Record), 1)
}
