package propagate

import (
    "context"
    "fmt"
    "sort"
    "strings"

    "github.com/spf13/cast"

    "github.com/vizlink/dashboard-engine/internal/cards"
    "github.com/vizlink/dashboard-engine/internal/filters"
    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/internal/joingraph"
    "github.com/vizlink/dashboard-engine/internal/models"
    "github.com/vizlink/dashboard-engine/pkg/logger"
)

// FrameLoader is the data-access boundary: it returns the base frame for a
// (workflow, data collection) pair. Absence of the source is a hard error,
// never an empty frame.
type FrameLoader interface {
    LoadFrame(ctx context.Context, workflowID, dataCollectionID string) (*frame.Frame, error)
}

// FigureRenderer is the external plotting collaborator. It receives the
// filtered frame and the component's unchanged axis mappings.
type FigureRenderer interface {
    RenderFigure(ctx context.Context, cfg *models.FigureConfig, fr *frame.Frame) (interface{}, error)
}

// UpdateStatus reports the outcome of one component's recompute.
type UpdateStatus string

const (
    UpdateSuccess UpdateStatus = "success"
    UpdateFailed  UpdateStatus = "failed"
)

// ComponentUpdate is the rendering payload produced for one component by a
// recompute pass. TrackScope carries, for genome-browser components, the
// surviving distinct values of join columns touched by a filter; it scopes
// external browser tracks and is exposed as data, not rendered here.
type ComponentUpdate struct {
    ComponentIndex string                   `json:"component_index"`
    ComponentType  models.ComponentType     `json:"component_type"`
    Status         UpdateStatus             `json:"status"`
    Data           interface{}              `json:"data,omitempty"`
    TrackScope     map[string][]interface{} `json:"track_scope,omitempty"`
    Error          string                   `json:"error,omitempty"`
}

// Propagator recomputes every dependent component after the filter set
// changes. It holds only immutable state (join graphs per workflow and the
// collaborator handles); each pass reads fresh base frames, so given the
// same filter set and data the output is identical.
type Propagator struct {
    graphs   map[string]*joingraph.Graph
    loader   FrameLoader
    renderer FigureRenderer
    executor *cards.Executor
    logger   logger.Logger
}

// NewPropagator builds a propagator over per-workflow join graphs.
func NewPropagator(
    graphs map[string]*joingraph.Graph,
    loader FrameLoader,
    renderer FigureRenderer,
    log logger.Logger,
) *Propagator {
    return &Propagator{
        graphs:   graphs,
        loader:   loader,
        renderer: renderer,
        executor: cards.NewExecutor(),
        logger:   log,
    }
}

// Recompute runs one propagation pass: every renderable component is
// recomputed against the active filter set. Failures are isolated per
// component — one component's failure never aborts the rest; its previous
// rendering stays in place on the caller's side.
func (p *Propagator) Recompute(ctx context.Context, components []models.ComponentDescriptor, fs *filters.FilterSet) []ComponentUpdate {
    targets := make([]models.ComponentDescriptor, 0, len(components))
    for _, c := range components {
        // Interactive components are filter sources, not targets.
        if c.Type == models.ComponentInteractive {
            continue
        }
        targets = append(targets, c)
    }
    sort.SliceStable(targets, func(i, j int) bool {
        ri, rj := targets[i].Type.RecomputeRank(), targets[j].Type.RecomputeRank()
        if ri != rj {
            return ri < rj
        }
        return targets[i].Index < targets[j].Index
    })

    updates := make([]ComponentUpdate, 0, len(targets))
    for i := range targets {
        update := p.RecomputeComponent(ctx, &targets[i], fs)
        if update.Status == UpdateFailed {
            p.logger.Error("Component recompute failed",
                logger.String("component", targets[i].Index),
                logger.String("error", update.Error),
            )
        }
        updates = append(updates, update)
    }
    return updates
}

// RecomputeComponent recomputes a single component: load the base frame,
// thread it through every applicable filter, and produce the type-specific
// payload. Also the unit of work for asynchronous render tasks.
func (p *Propagator) RecomputeComponent(ctx context.Context, c *models.ComponentDescriptor, fs *filters.FilterSet) ComponentUpdate {
    update := ComponentUpdate{ComponentIndex: c.Index, ComponentType: c.Type}

    working, err := p.loader.LoadFrame(ctx, c.WfID, c.DCID)
    if err != nil {
        update.Status = UpdateFailed
        update.Error = fmt.Sprintf("load frame %s/%s: %v", c.WfID, c.DCID, err)
        return update
    }

    for _, f := range fs.Filters() {
        if !p.applicable(f, c) || f.Empty() {
            continue
        }

        var narrowed *frame.Frame
        var err error
        if working.HasColumn(f.ColumnName) {
            narrowed, err = filters.Apply(f, working)
        } else {
            // The filter reaches this component through a join and its
            // column lives on the other side: filter the source
            // collection and semi-join on the surviving key values.
            narrowed, err = p.applyThroughJoin(ctx, f, c, working)
        }
        if err != nil {
            // Degrade gracefully: leave the component unfiltered for this
            // one filter and keep going.
            p.logger.Warn("Filter skipped",
                logger.String("component", c.Index),
                logger.String("column", f.ColumnName),
                logger.String("error", err.Error()),
            )
            continue
        }
        working = narrowed

        if c.Type == models.ComponentGenomeBrowser {
            p.scopeTracks(f, c, working, &update)
        }
    }

    data, err := p.render(ctx, c, working)
    if err != nil {
        update.Status = UpdateFailed
        update.Error = err.Error()
        return update
    }
    update.Status = UpdateSuccess
    update.Data = data
    return update
}

// applicable decides whether a filter reaches a component: same workflow,
// and either the component reads the filter's source collection directly or
// the two collections share a join edge.
func (p *Propagator) applicable(f *models.InteractiveFilter, c *models.ComponentDescriptor) bool {
    if f.SourceWfID != c.WfID {
        return false
    }
    graph := p.graphs[c.WfID]
    for _, dcID := range c.SourceCollections() {
        if dcID == f.SourceDCID {
            return true
        }
        if graph != nil && graph.Joined(f.SourceDCID, dcID) {
            return true
        }
    }
    return false
}

// splitJoinColumn parses one on_columns entry. "id=sample_id" names the
// key on each side of the join; a bare name is shared by both sides.
func splitJoinColumn(entry string) (string, string) {
    if i := strings.Index(entry, "="); i >= 0 {
        return entry[:i], entry[i+1:]
    }
    return entry, entry
}

// applyThroughJoin narrows a component's frame by a filter whose column
// only exists on the filter's source collection: the source frame is
// filtered first, then the component keeps the rows whose join-key values
// survive.
func (p *Propagator) applyThroughJoin(ctx context.Context, f *models.InteractiveFilter, c *models.ComponentDescriptor, working *frame.Frame) (*frame.Frame, error) {
    graph := p.graphs[c.WfID]
    if graph == nil {
        return working, nil
    }

    var edge joingraph.Edge
    found := false
    for _, dcID := range c.SourceCollections() {
        if e, ok := graph.EdgeBetween(f.SourceDCID, dcID); ok {
            edge = e
            found = true
            break
        }
    }
    if !found {
        return working, nil
    }

    source, err := p.loader.LoadFrame(ctx, f.SourceWfID, f.SourceDCID)
    if err != nil {
        return nil, fmt.Errorf("load join source %s/%s: %w", f.SourceWfID, f.SourceDCID, err)
    }
    if !source.HasColumn(f.ColumnName) {
        // The column exists on neither side, so there is nothing to
        // narrow by; semi-joining against the unfiltered source would
        // silently drop rows without a join partner.
        return working, nil
    }
    filtered, err := filters.Apply(f, source)
    if err != nil {
        return nil, err
    }

    // Orient each key pair: one name must exist on the source frame, the
    // other on the component frame.
    var sourceCols, targetCols []string
    for _, entry := range edge.OnColumns {
        a, b := splitJoinColumn(entry)
        switch {
        case filtered.HasColumn(a) && working.HasColumn(b):
            sourceCols = append(sourceCols, a)
            targetCols = append(targetCols, b)
        case filtered.HasColumn(b) && working.HasColumn(a):
            sourceCols = append(sourceCols, b)
            targetCols = append(targetCols, a)
        }
    }
    if len(sourceCols) == 0 {
        // No usable key pair on either side: leave the frame unfiltered.
        return working, nil
    }

    surviving := make(map[string]bool, filtered.Len())
    for _, row := range filtered.Records() {
        surviving[compositeKey(row, sourceCols)] = true
    }
    return working.Filter(func(row frame.Record) bool {
        return surviving[compositeKey(row, targetCols)]
    }), nil
}

func compositeKey(row frame.Record, columns []string) string {
    parts := make([]string, len(columns))
    for i, col := range columns {
        parts[i] = cast.ToString(row[col])
    }
    return strings.Join(parts, "\x1f")
}

// scopeTracks records the surviving distinct values of join columns for a
// genome-browser component whose join matches the filtered column.
func (p *Propagator) scopeTracks(f *models.InteractiveFilter, c *models.ComponentDescriptor, working *frame.Frame, update *ComponentUpdate) {
    graph := p.graphs[c.WfID]
    if graph == nil {
        return
    }
    for _, dcID := range c.SourceCollections() {
        edge, ok := graph.EdgeBetween(f.SourceDCID, dcID)
        if !ok {
            continue
        }
        matches := false
        for _, entry := range edge.OnColumns {
            a, b := splitJoinColumn(entry)
            if a == f.ColumnName || b == f.ColumnName {
                matches = true
                break
            }
        }
        if !matches {
            continue
        }
        if update.TrackScope == nil {
            update.TrackScope = make(map[string][]interface{})
        }
        for _, entry := range edge.OnColumns {
            a, b := splitJoinColumn(entry)
            for _, col := range []string{a, b} {
                if working.HasColumn(col) {
                    update.TrackScope[col] = working.Distinct(col)
                    break
                }
            }
        }
    }
}

// render produces the type-specific payload from the final working frame.
func (p *Propagator) render(ctx context.Context, c *models.ComponentDescriptor, working *frame.Frame) (interface{}, error) {
    switch c.Type {
    case models.ComponentCard:
        if c.Card == nil {
            return nil, fmt.Errorf("card component %s has no card config", c.Index)
        }
        pipeline := c.Card.Pipeline
        if pipeline == nil {
            pipeline = &models.CardPipeline{
                Mode:        models.PipelineSimple,
                Column:      c.Card.ColumnName,
                Aggregation: c.Card.Aggregation,
            }
        }
        return p.executor.Execute(pipeline, working)
    case models.ComponentFigure:
        if c.Figure == nil {
            return nil, fmt.Errorf("figure component %s has no figure config", c.Index)
        }
        return p.renderer.RenderFigure(ctx, c.Figure, working)
    case models.ComponentTable, models.ComponentGenomeBrowser:
        return working.Records(), nil
    }
    return nil, fmt.Errorf("unsupported component type %q", c.Type)
}
