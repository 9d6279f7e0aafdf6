package models

import "strings"

// ComponentType is the closed set of renderable component kinds. Dispatch
// over it happens through explicit switches, never open-ended branching.
type ComponentType string

const (
    ComponentFigure        ComponentType = "figure"
    ComponentCard          ComponentType = "card"
    ComponentTable         ComponentType = "table"
    ComponentInteractive   ComponentType = "interactive"
    ComponentGenomeBrowser ComponentType = "genome-browser"
)

// recomputeOrder fixes the deterministic ordering of component types
// during a propagation pass.
var recomputeOrder = map[ComponentType]int{
    ComponentCard:          0,
    ComponentFigure:        1,
    ComponentGenomeBrowser: 2,
    ComponentInteractive:   3,
    ComponentTable:         4,
}

// RecomputeRank returns the stable sort rank for a component type.
func (t ComponentType) RecomputeRank() int {
    if r, ok := recomputeOrder[t]; ok {
        return r
    }
    return len(recomputeOrder)
}

// CardConfig carries the card-specific fields of a descriptor: either a
// plain (column, aggregation) pair or a full pipeline.
type CardConfig struct {
    ColumnName  string        `json:"column_name" yaml:"column_name"`
    Aggregation string        `json:"aggregation" yaml:"aggregation"`
    Pipeline    *CardPipeline `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
}

// FigureConfig carries the axis-to-column mappings handed unchanged to the
// external plotting renderer.
type FigureConfig struct {
    Visu       string            `json:"visu" yaml:"visu"`
    DictKwargs map[string]string `json:"dict_kwargs" yaml:"dict_kwargs"`
}

// ComponentDescriptor describes one renderable component of a dashboard.
// Owned by the dashboard's persisted metadata; read-only here. Only the
// variant matching Type carries data.
type ComponentDescriptor struct {
    Index  string        `json:"index" yaml:"index"`
    Type   ComponentType `json:"component_type" yaml:"component_type"`
    WfID   string        `json:"wf_id" yaml:"wf_id"`
    DCID   string        `json:"dc_id" yaml:"dc_id"`
    Card   *CardConfig   `json:"card,omitempty" yaml:"card,omitempty"`
    Figure *FigureConfig `json:"figure,omitempty" yaml:"figure,omitempty"`
}

// JoinedIDSeparator splits a synthetic joined data-collection id of the
// form "A--B" into its member collection ids.
const JoinedIDSeparator = "--"

// SourceCollections returns the concrete collection ids behind DCID,
// expanding synthetic joined ids.
func (c *ComponentDescriptor) SourceCollections() []string {
    if strings.Contains(c.DCID, JoinedIDSeparator) {
        return strings.Split(c.DCID, JoinedIDSeparator)
    }
    return []string{c.DCID}
}
