package cards

import (
    "fmt"
    "strings"

    "github.com/spf13/cast"

    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/internal/models"
)

// ResultKind distinguishes the two shapes a card computation can produce.
type ResultKind string

const (
    ResultScalar  ResultKind = "scalar"
    ResultGrouped ResultKind = "grouped"
)

// Result is the outcome of a card pipeline: a single metric value, or one
// aggregated row per group.
type Result struct {
    Kind   ResultKind     `json:"kind"`
    Value  interface{}    `json:"value,omitempty"`
    Groups []frame.Record `json:"groups,omitempty"`
}

// Executor runs card pipelines against frames. A pipeline either fully
// succeeds or reports one error for the whole run; partial aggregation
// results are never returned.
type Executor struct{}

// NewExecutor returns a card pipeline executor.
func NewExecutor() *Executor {
    return &Executor{}
}

// Execute validates and runs a pipeline against a frame.
func (e *Executor) Execute(p *models.CardPipeline, fr *frame.Frame) (*Result, error) {
    if err := p.Validate(); err != nil {
        return nil, err
    }
    switch p.Mode {
    case models.PipelineSimple:
        value, err := fr.Aggregate(p.Aggregation, p.Column)
        if err != nil {
            return nil, err
        }
        return &Result{Kind: ResultScalar, Value: value}, nil
    case models.PipelineAdvanced:
        return e.executeAdvanced(p, fr)
    }
    return nil, fmt.Errorf("unsupported pipeline mode %q", p.Mode)
}

// executeAdvanced runs the steps in order. Filter steps narrow the working
// frame immediately; a groupby step only records its columns (validated
// against the frame at that point) for the terminal aggregation.
func (e *Executor) executeAdvanced(p *models.CardPipeline, fr *frame.Frame) (*Result, error) {
    working := fr
    var groupColumns []string

    for _, step := range p.Steps {
        switch step.Kind {
        case models.StepFilter:
            narrowed, err := applyOperation(step.Filter, working)
            if err != nil {
                return nil, fmt.Errorf("step %d (%s %s): %w", step.Number, step.Kind, step.Filter.Operator, err)
            }
            working = narrowed
        case models.StepGroupBy:
            for _, col := range step.GroupBy {
                if !working.HasColumn(col) {
                    return nil, fmt.Errorf("step %d (%s): unknown column %q", step.Number, step.Kind, col)
                }
            }
            groupColumns = step.GroupBy
        }
    }

    agg := p.Aggregate
    if len(groupColumns) > 0 {
        grouped, err := working.GroupBy(groupColumns...)
        if err != nil {
            return nil, fmt.Errorf("aggregate %s: %w", agg.Method, err)
        }
        table, err := grouped.Aggregate(agg.Method, agg.Column)
        if err != nil {
            return nil, err
        }
        return &Result{Kind: ResultGrouped, Groups: table.Records()}, nil
    }

    value, err := working.Aggregate(agg.Method, agg.Column)
    if err != nil {
        return nil, err
    }
    return &Result{Kind: ResultScalar, Value: value}, nil
}

// applyOperation narrows a frame by one filter operation. Rows whose
// column value is missing, or cannot be coerced for an ordering
// comparison, are excluded rather than erroring.
func applyOperation(op *models.FilterOperation, fr *frame.Frame) (*frame.Frame, error) {
    if !fr.HasColumn(op.Column) {
        return nil, fmt.Errorf("unknown column %q", op.Column)
    }

    switch op.Operator {
    case models.OpIsNull:
        return fr.Filter(func(row frame.Record) bool {
            v, ok := row[op.Column]
            return !ok || v == nil
        }), nil
    case models.OpNotNull:
        return fr.Filter(func(row frame.Record) bool {
            v, ok := row[op.Column]
            return ok && v != nil
        }), nil
    case models.OpIn, models.OpNotIn:
        return applyListOperation(op, fr)
    case models.OpContains, models.OpNotContains:
        return applySubstringOperation(op, fr)
    case models.OpEq, models.OpNe:
        return applyEquality(op, fr)
    case models.OpGt, models.OpLt, models.OpGe, models.OpLe:
        return applyOrdering(op, fr)
    }
    return nil, fmt.Errorf("unsupported operator %q", op.Operator)
}

// applyListOperation implements in/not_in. Both sides are deliberately
// coerced to text, so 1 and "1" compare equal; widgets deliver mixed
// numeric/string inputs and existing dashboards depend on this coercion.
func applyListOperation(op *models.FilterOperation, fr *frame.Frame) (*frame.Frame, error) {
    members := make(map[string]bool)
    switch v := op.Value.(type) {
    case []interface{}:
        for _, item := range v {
            members[cast.ToString(item)] = true
        }
    case []string:
        for _, item := range v {
            members[item] = true
        }
    case []float64:
        for _, item := range v {
            members[cast.ToString(item)] = true
        }
    case []int:
        for _, item := range v {
            members[cast.ToString(item)] = true
        }
    default:
        return nil, fmt.Errorf("operator %q requires a list value", op.Operator)
    }
    want := op.Operator == models.OpIn
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[op.Column]
        if !ok || v == nil {
            return false
        }
        return members[cast.ToString(v)] == want
    }), nil
}

func applySubstringOperation(op *models.FilterOperation, fr *frame.Frame) (*frame.Frame, error) {
    needle := cast.ToString(op.Value)
    want := op.Operator == models.OpContains
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[op.Column]
        if !ok || v == nil {
            return false
        }
        return strings.Contains(cast.ToString(v), needle) == want
    }), nil
}

// applyEquality compares numerically when both sides coerce to numbers,
// otherwise by text form.
func applyEquality(op *models.FilterOperation, fr *frame.Frame) (*frame.Frame, error) {
    want := op.Operator == models.OpEq
    target, targetErr := cast.ToFloat64E(op.Value)
    targetText := cast.ToString(op.Value)
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[op.Column]
        if !ok || v == nil {
            return false
        }
        if targetErr == nil {
            if num, err := cast.ToFloat64E(v); err == nil {
                return (num == target) == want
            }
        }
        return (cast.ToString(v) == targetText) == want
    }), nil
}

func applyOrdering(op *models.FilterOperation, fr *frame.Frame) (*frame.Frame, error) {
    target, err := cast.ToFloat64E(op.Value)
    if err != nil {
        return nil, fmt.Errorf("operator %q requires a numeric value, got %v", op.Operator, op.Value)
    }
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[op.Column]
        if !ok || v == nil {
            return false
        }
        num, err := cast.ToFloat64E(v)
        if err != nil {
            return false
        }
        switch op.Operator {
        case models.OpGt:
            return num > target
        case models.OpLt:
            return num < target
        case models.OpGe:
            return num >= target
        case models.OpLe:
            return num <= target
        }
        return false
    }), nil
}
