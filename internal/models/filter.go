package models

// ColumnType is the semantic type of the column an interactive filter
// targets.
type ColumnType string

const (
    ColumnCategorical ColumnType = "categorical"
    ColumnNumeric     ColumnType = "numeric"
    ColumnDatetime    ColumnType = "datetime"
)

// WidgetKind identifies the interactive widget that produced a filter.
type WidgetKind string

const (
    WidgetSelect           WidgetKind = "Select"
    WidgetMultiSelect      WidgetKind = "MultiSelect"
    WidgetSegmentedControl WidgetKind = "SegmentedControl"
    WidgetTextInput        WidgetKind = "TextInput"
    WidgetSlider           WidgetKind = "Slider"
    WidgetRangeSlider      WidgetKind = "RangeSlider"
)

// InteractiveFilter is one user-driven constraint, created when a widget
// changes value or a chart click/selection is translated into a filter.
// Value is a scalar, a list, or a 2-element range depending on WidgetKind.
type InteractiveFilter struct {
    ComponentID string      `json:"component_id"`
    ColumnName  string      `json:"column_name"`
    ColumnType  ColumnType  `json:"column_type"`
    WidgetKind  WidgetKind  `json:"widget_kind"`
    Value       interface{} `json:"value"`
    SourceWfID  string      `json:"source_wf_id"`
    SourceDCID  string      `json:"source_dc_id"`
}

// Empty reports whether the filter carries no usable value — the
// "nothing selected yet" state. An empty filter is a no-op, not an error.
func (f *InteractiveFilter) Empty() bool {
    if f == nil || f.Value == nil {
        return true
    }
    switch v := f.Value.(type) {
    case string:
        return v == ""
    case []interface{}:
        return len(v) == 0
    case []string:
        return len(v) == 0
    case []float64:
        return len(v) == 0
    case []int:
        return len(v) == 0
    }
    return false
}
