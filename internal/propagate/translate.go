package propagate

import (
    "fmt"

    "github.com/vizlink/dashboard-engine/internal/models"
)

// ClickEvent is a single click on a chart point. Axis names what was
// clicked ("x" or "y"); AxisColumns is the figure's axis-to-column mapping
// taken from its dict_kwargs.
type ClickEvent struct {
    ComponentID string            `json:"component_id"`
    WfID        string            `json:"wf_id"`
    DCID        string            `json:"dc_id"`
    Axis        string            `json:"axis"`
    AxisColumns map[string]string `json:"axis_columns"`
    ColumnType  models.ColumnType `json:"column_type"`
    Value       interface{}       `json:"value"`
}

// SelectionEvent is a box/lasso selection on a chart. For a numeric axis
// Range carries the selected interval; for a categorical axis Values
// carries the selected members.
type SelectionEvent struct {
    ComponentID string            `json:"component_id"`
    WfID        string            `json:"wf_id"`
    DCID        string            `json:"dc_id"`
    Axis        string            `json:"axis"`
    AxisColumns map[string]string `json:"axis_columns"`
    ColumnType  models.ColumnType `json:"column_type"`
    Range       []interface{}     `json:"range,omitempty"`
    Values      []interface{}     `json:"values,omitempty"`
}

// TranslateClick turns a chart click into an equivalent interactive
// filter: numeric columns become exact-match slider filters, categorical
// columns become single-member select filters.
func TranslateClick(ev *ClickEvent) (*models.InteractiveFilter, error) {
    column, ok := ev.AxisColumns[ev.Axis]
    if !ok {
        return nil, fmt.Errorf("click on component %s: no column mapped to axis %q", ev.ComponentID, ev.Axis)
    }
    f := &models.InteractiveFilter{
        ComponentID: ev.ComponentID,
        ColumnName:  column,
        ColumnType:  ev.ColumnType,
        Value:       ev.Value,
        SourceWfID:  ev.WfID,
        SourceDCID:  ev.DCID,
    }
    switch ev.ColumnType {
    case models.ColumnNumeric, models.ColumnDatetime:
        f.WidgetKind = models.WidgetSlider
    case models.ColumnCategorical:
        f.WidgetKind = models.WidgetSelect
    default:
        return nil, fmt.Errorf("click on component %s: unsupported column type %q", ev.ComponentID, ev.ColumnType)
    }
    return f, nil
}

// TranslateSelection turns a chart selection into an equivalent
// interactive filter: numeric ranges become range-slider filters,
// categorical value sets become multi-select membership filters.
func TranslateSelection(ev *SelectionEvent) (*models.InteractiveFilter, error) {
    column, ok := ev.AxisColumns[ev.Axis]
    if !ok {
        return nil, fmt.Errorf("selection on component %s: no column mapped to axis %q", ev.ComponentID, ev.Axis)
    }
    f := &models.InteractiveFilter{
        ComponentID: ev.ComponentID,
        ColumnName:  column,
        ColumnType:  ev.ColumnType,
        SourceWfID:  ev.WfID,
        SourceDCID:  ev.DCID,
    }
    switch ev.ColumnType {
    case models.ColumnNumeric, models.ColumnDatetime:
        if len(ev.Range) != 2 {
            return nil, fmt.Errorf("selection on component %s: numeric selection requires a 2-element range", ev.ComponentID)
        }
        f.WidgetKind = models.WidgetRangeSlider
        f.Value = ev.Range
    case models.ColumnCategorical:
        if len(ev.Values) == 0 {
            return nil, fmt.Errorf("selection on component %s: categorical selection carries no values", ev.ComponentID)
        }
        f.WidgetKind = models.WidgetMultiSelect
        f.Value = ev.Values
    default:
        return nil, fmt.Errorf("selection on component %s: unsupported column type %q", ev.ComponentID, ev.ColumnType)
    }
    return f, nil
}
