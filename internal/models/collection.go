package models

// CollectionType distinguishes the two kinds of data collections a
// workflow can carry.
type CollectionType string

const (
    CollectionTypeTable         CollectionType = "table"
    CollectionTypeGenomeBrowser CollectionType = "genome-browser"
)

// JoinHow is the join strategy declared between two collections.
type JoinHow string

const (
    JoinInner JoinHow = "inner"
    JoinOuter JoinHow = "outer"
    JoinLeft  JoinHow = "left"
    JoinRight JoinHow = "right"
)

// JoinDeclaration states a relationship between the declaring collection
// and the collections named in WithDC, on the shared key columns.
// Declarations arrive validated by the ingestion layer; the resolver only
// checks cross-references.
type JoinDeclaration struct {
    OnColumns []string `json:"on_columns" yaml:"on_columns"`
    How       JoinHow  `json:"how" yaml:"how"`
    WithDC    []string `json:"with_dc" yaml:"with_dc"`
}

// DataCollection is a named, typed tabular (or genome-browser) dataset
// belonging to a workflow. Immutable once created by the ingestion
// pipeline; this engine only reads it.
type DataCollection struct {
    WorkflowID string           `json:"workflow_id" yaml:"workflow_id"`
    ID         string           `json:"id" yaml:"id"`
    Tag        string           `json:"tag" yaml:"tag"`
    Type       CollectionType   `json:"type" yaml:"type"`
    Join       *JoinDeclaration `json:"join,omitempty" yaml:"join,omitempty"`
}
