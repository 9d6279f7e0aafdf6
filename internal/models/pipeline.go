package models

import "fmt"

// PipelineMode selects between the two card computation modes.
type PipelineMode string

const (
    PipelineSimple   PipelineMode = "simple"
    PipelineAdvanced PipelineMode = "advanced"
)

// StepKind is the kind of one advanced-pipeline step.
type StepKind string

const (
    StepFilter  StepKind = "filter"
    StepGroupBy StepKind = "groupby"
)

// FilterOperator is one of the twelve comparison/membership/string/null
// operators supported by pipeline filter steps.
type FilterOperator string

const (
    OpEq          FilterOperator = "=="
    OpNe          FilterOperator = "!="
    OpGt          FilterOperator = ">"
    OpLt          FilterOperator = "<"
    OpGe          FilterOperator = ">="
    OpLe          FilterOperator = "<="
    OpIn          FilterOperator = "in"
    OpNotIn       FilterOperator = "not_in"
    OpContains    FilterOperator = "contains"
    OpNotContains FilterOperator = "not_contains"
    OpIsNull      FilterOperator = "is_null"
    OpNotNull     FilterOperator = "not_null"
)

var supportedOperators = map[FilterOperator]bool{
    OpEq: true, OpNe: true, OpGt: true, OpLt: true, OpGe: true, OpLe: true,
    OpIn: true, OpNotIn: true, OpContains: true, OpNotContains: true,
    OpIsNull: true, OpNotNull: true,
}

// FilterOperation narrows the working frame at one pipeline step.
type FilterOperation struct {
    Column   string         `json:"column" yaml:"column"`
    Operator FilterOperator `json:"operator" yaml:"operator"`
    Value    interface{}    `json:"value,omitempty" yaml:"value,omitempty"`
}

// PipelineStep is one ordered step of an advanced pipeline. Exactly one of
// Filter / GroupBy is set according to Kind.
type PipelineStep struct {
    Number  int              `json:"number" yaml:"number"`
    Kind    StepKind         `json:"kind" yaml:"kind"`
    Filter  *FilterOperation `json:"filter,omitempty" yaml:"filter,omitempty"`
    GroupBy []string         `json:"groupby,omitempty" yaml:"groupby,omitempty"`
}

// AggregateOperation terminates an advanced pipeline. Column may be empty
// only for count.
type AggregateOperation struct {
    Method string `json:"method" yaml:"method"`
    Column string `json:"column,omitempty" yaml:"column,omitempty"`
}

// CardPipeline describes how a card's displayed metric is computed.
type CardPipeline struct {
    Mode        PipelineMode        `json:"mode" yaml:"mode"`
    Column      string              `json:"column,omitempty" yaml:"column,omitempty"`
    Aggregation string              `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
    Steps       []PipelineStep      `json:"steps,omitempty" yaml:"steps,omitempty"`
    Aggregate   *AggregateOperation `json:"aggregate,omitempty" yaml:"aggregate,omitempty"`
}

// needsValue reports whether the operator requires a configured value.
func (op FilterOperator) needsValue() bool {
    return op != OpIsNull && op != OpNotNull
}

// needsList reports whether the operator requires a list value.
func (op FilterOperator) needsList() bool {
    return op == OpIn || op == OpNotIn
}

func isList(v interface{}) bool {
    switch v.(type) {
    case []interface{}, []string, []float64, []int:
        return true
    }
    return false
}

// Validate rejects malformed pipelines before execution: advanced step
// numbers must be contiguous from 1, count is the only aggregation not
// requiring a column, list operators require list values, and any operator
// requiring a value must carry one.
func (p *CardPipeline) Validate() error {
    switch p.Mode {
    case PipelineSimple:
        if p.Aggregation == "" {
            return fmt.Errorf("simple pipeline: aggregation is required")
        }
        if p.Aggregation != "count" && p.Column == "" {
            return fmt.Errorf("simple pipeline: aggregation %q requires a column", p.Aggregation)
        }
        return nil
    case PipelineAdvanced:
        if p.Aggregate == nil {
            return fmt.Errorf("advanced pipeline: terminal aggregate operation is required")
        }
        if p.Aggregate.Method != "count" && p.Aggregate.Column == "" {
            return fmt.Errorf("advanced pipeline: aggregation %q requires a column", p.Aggregate.Method)
        }
        for i, step := range p.Steps {
            if step.Number != i+1 {
                return fmt.Errorf("advanced pipeline: step numbers must be contiguous from 1, got %d at position %d", step.Number, i+1)
            }
            switch step.Kind {
            case StepFilter:
                if step.Filter == nil {
                    return fmt.Errorf("step %d: filter step missing filter operation", step.Number)
                }
                if !supportedOperators[step.Filter.Operator] {
                    return fmt.Errorf("step %d: unsupported operator %q", step.Number, step.Filter.Operator)
                }
                if step.Filter.Operator.needsValue() && step.Filter.Value == nil {
                    return fmt.Errorf("step %d: operator %q requires a value", step.Number, step.Filter.Operator)
                }
                if step.Filter.Operator.needsList() && !isList(step.Filter.Value) {
                    return fmt.Errorf("step %d: operator %q requires a list value", step.Number, step.Filter.Operator)
                }
            case StepGroupBy:
                if len(step.GroupBy) == 0 {
                    return fmt.Errorf("step %d: groupby step requires at least one column", step.Number)
                }
            default:
                return fmt.Errorf("step %d: unsupported step kind %q", step.Number, step.Kind)
            }
        }
        return nil
    default:
        return fmt.Errorf("unsupported pipeline mode %q", p.Mode)
    }
}
