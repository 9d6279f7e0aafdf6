package joingraph

import (
    "fmt"
    "sort"

    "github.com/vizlink/dashboard-engine/internal/models"
)

// Edge is one side of a join relationship in the resolved graph.
type Edge struct {
    OnColumns  []string       `json:"on_columns"`
    How        models.JoinHow `json:"how"`
    NeighborID string         `json:"neighbor_id"`
}

// Graph is the symmetric adjacency structure over a workflow's data
// collections. Rebuilt per workflow load; never persisted.
type Graph struct {
    edges map[string][]Edge
}

// Edges returns the outgoing edges of a collection, sorted by neighbor id.
// A collection with no joins yields an empty slice, not a missing node.
func (g *Graph) Edges(id string) []Edge {
    out := make([]Edge, len(g.edges[id]))
    copy(out, g.edges[id])
    sort.Slice(out, func(i, j int) bool { return out[i].NeighborID < out[j].NeighborID })
    return out
}

// Neighbors returns the ids of collections joined to id.
func (g *Graph) Neighbors(id string) []string {
    edges := g.Edges(id)
    out := make([]string, len(edges))
    for i, e := range edges {
        out[i] = e.NeighborID
    }
    return out
}

// Joined reports whether a and b share an edge.
func (g *Graph) Joined(a, b string) bool {
    for _, e := range g.edges[a] {
        if e.NeighborID == b {
            return true
        }
    }
    return false
}

// EdgeBetween returns the edge from a to b, if any.
func (g *Graph) EdgeBetween(a, b string) (Edge, bool) {
    for _, e := range g.edges[a] {
        if e.NeighborID == b {
            return e, true
        }
    }
    return Edge{}, false
}

// Resolver builds JoinGraphs and join-path maps from a workflow's data
// collections. Join declarations arrive validated; the resolver raises only
// on references to collections absent from the workflow.
type Resolver struct {
    byID  map[string]models.DataCollection
    byTag map[string]string
    order []string
}

// NewResolver indexes the workflow's collections by id and tag.
func NewResolver(collections []models.DataCollection) *Resolver {
    r := &Resolver{
        byID:  make(map[string]models.DataCollection, len(collections)),
        byTag: make(map[string]string, len(collections)),
    }
    for _, dc := range collections {
        r.byID[dc.ID] = dc
        r.byTag[dc.Tag] = dc.ID
        r.order = append(r.order, dc.ID)
    }
    return r
}

// resolveRef maps a with_dc reference (tag or id) to a collection id.
func (r *Resolver) resolveRef(ref string) (string, error) {
    if id, ok := r.byTag[ref]; ok {
        return id, nil
    }
    if _, ok := r.byID[ref]; ok {
        return ref, nil
    }
    return "", fmt.Errorf("join references unknown data collection %q", ref)
}

// Build resolves every table collection's join declaration into a
// symmetric graph: each declared edge is inserted in both directions with
// identical on_columns/how, and at most one edge exists per direction for
// any unordered pair.
func (r *Resolver) Build() (*Graph, error) {
    g := &Graph{edges: make(map[string][]Edge)}
    for _, id := range r.order {
        dc := r.byID[id]
        if dc.Type != models.CollectionTypeTable || dc.Join == nil {
            continue
        }
        for _, ref := range dc.Join.WithDC {
            target, err := r.resolveRef(ref)
            if err != nil {
                return nil, fmt.Errorf("collection %q: %w", dc.Tag, err)
            }
            g.insert(dc.ID, target, dc.Join.OnColumns, dc.Join.How)
            g.insert(target, dc.ID, dc.Join.OnColumns, dc.Join.How)
        }
    }
    return g, nil
}

// insert adds a directed edge unless an edge for that pair already exists.
func (g *Graph) insert(from, to string, onColumns []string, how models.JoinHow) {
    for _, e := range g.edges[from] {
        if e.NeighborID == to {
            return
        }
    }
    cols := make([]string, len(onColumns))
    copy(cols, onColumns)
    g.edges[from] = append(g.edges[from], Edge{OnColumns: cols, How: how, NeighborID: to})
}

// PathEdge describes the join between one reachable pair of collections in
// a join-path map.
type PathEdge struct {
    How       models.JoinHow `json:"how"`
    OnColumns []string       `json:"on_columns"`
    Tags      [2]string      `json:"tags"`
}

// PathMap performs a depth-first traversal of declared joins starting at
// root and returns a descriptive edge for every reachable pair, keyed
// "idA--idB". The visited set guards against cycles: a collection joining
// back to an ancestor produces neither recursion nor duplicate entries.
func (r *Resolver) PathMap(rootID string) (map[string]PathEdge, error) {
    if _, ok := r.byID[rootID]; !ok {
        return nil, fmt.Errorf("unknown root data collection %q", rootID)
    }
    paths := make(map[string]PathEdge)
    visited := make(map[string]bool)
    if err := r.walk(rootID, visited, paths); err != nil {
        return nil, err
    }
    return paths, nil
}

func (r *Resolver) walk(id string, visited map[string]bool, paths map[string]PathEdge) error {
    if visited[id] {
        return nil
    }
    visited[id] = true

    dc := r.byID[id]
    // Only table collections declare joins, same rule as Build.
    if dc.Type != models.CollectionTypeTable || dc.Join == nil {
        return nil
    }
    for _, ref := range dc.Join.WithDC {
        target, err := r.resolveRef(ref)
        if err != nil {
            return fmt.Errorf("collection %q: %w", dc.Tag, err)
        }
        key := pairKey(id, target)
        if _, ok := paths[key]; !ok {
            cols := make([]string, len(dc.Join.OnColumns))
            copy(cols, dc.Join.OnColumns)
            paths[key] = PathEdge{
                How:       dc.Join.How,
                OnColumns: cols,
                Tags:      [2]string{dc.Tag, r.byID[target].Tag},
            }
        }
        if err := r.walk(target, visited, paths); err != nil {
            return err
        }
    }
    return nil
}

func pairKey(a, b string) string {
    if b < a {
        a, b = b, a
    }
    return a + models.JoinedIDSeparator + b
}
