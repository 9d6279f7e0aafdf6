package filters

import (
    "fmt"
    "regexp"

    "github.com/spf13/cast"

    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/internal/models"
)

// Apply narrows a frame by one interactive filter, dispatching on the
// target column's type and the widget kind.
//
// Contract: an empty/nil value is the "nothing selected yet" state and
// returns the frame unchanged. A column absent from this frame, or a
// (column_type, widget_kind) pair with no defined semantics, also passes
// the frame through — a single filter may legitimately target a column
// another component's frame does not carry.
func Apply(f *models.InteractiveFilter, fr *frame.Frame) (*frame.Frame, error) {
    if f.Empty() {
        return fr, nil
    }
    if !fr.HasColumn(f.ColumnName) {
        return fr, nil
    }

    switch f.ColumnType {
    case models.ColumnCategorical:
        switch f.WidgetKind {
        case models.WidgetSelect, models.WidgetMultiSelect, models.WidgetSegmentedControl:
            return applyMembership(f, fr), nil
        case models.WidgetTextInput:
            return applyRegex(f, fr)
        }
    case models.ColumnNumeric:
        switch f.WidgetKind {
        case models.WidgetSlider:
            return applyNumericEqual(f, fr)
        case models.WidgetRangeSlider:
            return applyNumericRange(f, fr)
        }
    case models.ColumnDatetime:
        switch f.WidgetKind {
        case models.WidgetSlider:
            return applyTimeEqual(f, fr)
        case models.WidgetRangeSlider:
            return applyTimeRange(f, fr)
        }
    }
    return fr, nil
}

// valueSet coerces the filter value to a set of text forms; a scalar
// becomes a one-element set. Text coercion keeps membership stable when
// widgets hand back strings for numeric-looking values.
func valueSet(value interface{}) map[string]bool {
    set := make(map[string]bool)
    switch v := value.(type) {
    case []interface{}:
        for _, item := range v {
            set[cast.ToString(item)] = true
        }
    case []string:
        for _, item := range v {
            set[item] = true
        }
    case []float64:
        for _, item := range v {
            set[cast.ToString(item)] = true
        }
    case []int:
        for _, item := range v {
            set[cast.ToString(item)] = true
        }
    default:
        set[cast.ToString(v)] = true
    }
    return set
}

func applyMembership(f *models.InteractiveFilter, fr *frame.Frame) *frame.Frame {
    keep := valueSet(f.Value)
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[f.ColumnName]
        if !ok || v == nil {
            return false
        }
        return keep[cast.ToString(v)]
    })
}

func applyRegex(f *models.InteractiveFilter, fr *frame.Frame) (*frame.Frame, error) {
    pattern, err := regexp.Compile(cast.ToString(f.Value))
    if err != nil {
        return nil, fmt.Errorf("filter on column %q: invalid pattern: %w", f.ColumnName, err)
    }
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[f.ColumnName]
        if !ok || v == nil {
            return false
        }
        return pattern.MatchString(cast.ToString(v))
    }), nil
}

func applyNumericEqual(f *models.InteractiveFilter, fr *frame.Frame) (*frame.Frame, error) {
    target, err := cast.ToFloat64E(f.Value)
    if err != nil {
        return nil, fmt.Errorf("slider filter on column %q: non-numeric value %v", f.ColumnName, f.Value)
    }
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[f.ColumnName]
        if !ok || v == nil {
            return false
        }
        num, err := cast.ToFloat64E(v)
        return err == nil && num == target
    }), nil
}

// rangeBounds extracts the [low, high] pair of a range filter value.
func rangeBounds(value interface{}) (interface{}, interface{}, error) {
    switch v := value.(type) {
    case []interface{}:
        if len(v) == 2 {
            return v[0], v[1], nil
        }
    case []float64:
        if len(v) == 2 {
            return v[0], v[1], nil
        }
    case []string:
        if len(v) == 2 {
            return v[0], v[1], nil
        }
    case []int:
        if len(v) == 2 {
            return v[0], v[1], nil
        }
    }
    return nil, nil, fmt.Errorf("range filter requires a 2-element value, got %v", value)
}

func applyNumericRange(f *models.InteractiveFilter, fr *frame.Frame) (*frame.Frame, error) {
    rawLo, rawHi, err := rangeBounds(f.Value)
    if err != nil {
        return nil, fmt.Errorf("filter on column %q: %w", f.ColumnName, err)
    }
    lo, err := cast.ToFloat64E(rawLo)
    if err != nil {
        return nil, fmt.Errorf("range filter on column %q: non-numeric bound %v", f.ColumnName, rawLo)
    }
    hi, err := cast.ToFloat64E(rawHi)
    if err != nil {
        return nil, fmt.Errorf("range filter on column %q: non-numeric bound %v", f.ColumnName, rawHi)
    }
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[f.ColumnName]
        if !ok || v == nil {
            return false
        }
        num, err := cast.ToFloat64E(v)
        // Inclusive on both ends.
        return err == nil && num >= lo && num <= hi
    }), nil
}

func applyTimeEqual(f *models.InteractiveFilter, fr *frame.Frame) (*frame.Frame, error) {
    target, err := cast.ToTimeE(f.Value)
    if err != nil {
        return nil, fmt.Errorf("slider filter on column %q: bad datetime value %v", f.ColumnName, f.Value)
    }
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[f.ColumnName]
        if !ok || v == nil {
            return false
        }
        t, err := cast.ToTimeE(v)
        return err == nil && t.Equal(target)
    }), nil
}

func applyTimeRange(f *models.InteractiveFilter, fr *frame.Frame) (*frame.Frame, error) {
    rawLo, rawHi, err := rangeBounds(f.Value)
    if err != nil {
        return nil, fmt.Errorf("filter on column %q: %w", f.ColumnName, err)
    }
    lo, err := cast.ToTimeE(rawLo)
    if err != nil {
        return nil, fmt.Errorf("range filter on column %q: bad datetime bound %v", f.ColumnName, rawLo)
    }
    hi, err := cast.ToTimeE(rawHi)
    if err != nil {
        return nil, fmt.Errorf("range filter on column %q: bad datetime bound %v", f.ColumnName, rawHi)
    }
    return fr.Filter(func(row frame.Record) bool {
        v, ok := row[f.ColumnName]
        if !ok || v == nil {
            return false
        }
        t, err := cast.ToTimeE(v)
        return err == nil && !t.Before(lo) && !t.After(hi)
    }), nil
}
