package filters

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/vizlink/dashboard-engine/internal/frame"
    "github.com/vizlink/dashboard-engine/internal/models"
)

func testFrame() *frame.Frame {
    return frame.New([]string{"group", "value", "name"}, []frame.Record{
        {"group": "A", "value": 5.0, "name": "alpha"},
        {"group": "A", "value": 15.0, "name": "beta"},
        {"group": "B", "value": 25.0, "name": "gamma"},
        {"group": "C", "value": 35.0, "name": "delta"},
    })
}

func categorical(widget models.WidgetKind, value interface{}) *models.InteractiveFilter {
    return &models.InteractiveFilter{
        ComponentID: "w1",
        ColumnName:  "group",
        ColumnType:  models.ColumnCategorical,
        WidgetKind:  widget,
        Value:       value,
        SourceWfID:  "wf1",
        SourceDCID:  "dc1",
    }
}

func numeric(widget models.WidgetKind, value interface{}) *models.InteractiveFilter {
    return &models.InteractiveFilter{
        ComponentID: "w2",
        ColumnName:  "value",
        ColumnType:  models.ColumnNumeric,
        WidgetKind:  widget,
        Value:       value,
        SourceWfID:  "wf1",
        SourceDCID:  "dc1",
    }
}

func rows(fr *frame.Frame) []frame.Record { return fr.Records() }

func TestNoOpLaw(t *testing.T) {
    // nil or empty value returns the frame unchanged for every supported
    // combination
    fr := testFrame()
    combos := []*models.InteractiveFilter{
        categorical(models.WidgetSelect, nil),
        categorical(models.WidgetMultiSelect, []interface{}{}),
        categorical(models.WidgetSegmentedControl, nil),
        categorical(models.WidgetTextInput, ""),
        numeric(models.WidgetSlider, nil),
        numeric(models.WidgetRangeSlider, []interface{}{}),
    }
    for _, f := range combos {
        t.Run(string(f.WidgetKind), func(t *testing.T) {
            got, err := Apply(f, fr)
            require.NoError(t, err)
            assert.Equal(t, rows(fr), rows(got))
        })
    }
}

func TestMembership(t *testing.T) {
    fr := testFrame()

    got, err := Apply(categorical(models.WidgetMultiSelect, []interface{}{"A", "C"}), fr)
    require.NoError(t, err)
    assert.Equal(t, 3, got.Len())

    // scalar is coerced to a one-element set
    got, err = Apply(categorical(models.WidgetSelect, "B"), fr)
    require.NoError(t, err)
    require.Equal(t, 1, got.Len())
    assert.Equal(t, "gamma", rows(got)[0]["name"])
}

func TestTextInputRegex(t *testing.T) {
    fr := testFrame()
    f := categorical(models.WidgetTextInput, "^a")
    f.ColumnName = "name"

    got, err := Apply(f, fr)
    require.NoError(t, err)
    require.Equal(t, 1, got.Len())
    assert.Equal(t, "alpha", rows(got)[0]["name"])

    f.Value = "["
    _, err = Apply(f, fr)
    assert.ErrorContains(t, err, "invalid pattern")
}

func TestSliderExactMatch(t *testing.T) {
    got, err := Apply(numeric(models.WidgetSlider, 15.0), testFrame())
    require.NoError(t, err)
    require.Equal(t, 1, got.Len())
    assert.Equal(t, "beta", rows(got)[0]["name"])
}

func TestRangeSliderInclusiveBounds(t *testing.T) {
    got, err := Apply(numeric(models.WidgetRangeSlider, []interface{}{5.0, 25.0}), testFrame())
    require.NoError(t, err)
    assert.Equal(t, 3, got.Len(), "both bounds are inclusive")
}

func TestIntSliceValues(t *testing.T) {
    // []int behaves like the other slice kinds: empty is a no-op, a
    // 2-element pair is a valid range
    fr := testFrame()

    got, err := Apply(numeric(models.WidgetRangeSlider, []int{}), fr)
    require.NoError(t, err)
    assert.Equal(t, rows(fr), rows(got))

    got, err = Apply(numeric(models.WidgetRangeSlider, []int{10, 30}), fr)
    require.NoError(t, err)
    assert.Equal(t, 2, got.Len())

    got, err = Apply(categorical(models.WidgetMultiSelect, []int{}), fr)
    require.NoError(t, err)
    assert.Equal(t, rows(fr), rows(got))
}

func TestUnsupportedComboPassesThrough(t *testing.T) {
    fr := testFrame()
    f := numeric(models.WidgetSelect, 15.0) // numeric+Select has no semantics
    got, err := Apply(f, fr)
    require.NoError(t, err)
    assert.Equal(t, rows(fr), rows(got))
}

func TestAbsentColumnPassesThrough(t *testing.T) {
    fr := testFrame()
    f := categorical(models.WidgetSelect, "A")
    f.ColumnName = "not_here"
    got, err := Apply(f, fr)
    require.NoError(t, err)
    assert.Equal(t, rows(fr), rows(got))
}

func TestIdempotence(t *testing.T) {
    fr := testFrame()
    f := categorical(models.WidgetSelect, "A")
    once, err := Apply(f, fr)
    require.NoError(t, err)
    twice, err := Apply(f, once)
    require.NoError(t, err)
    assert.Equal(t, rows(once), rows(twice))
}

func TestCommutativityAcrossColumns(t *testing.T) {
    fr := testFrame()
    f1 := categorical(models.WidgetMultiSelect, []interface{}{"A", "B"})
    f2 := numeric(models.WidgetRangeSlider, []interface{}{10.0, 30.0})

    ab1, err := Apply(f1, fr)
    require.NoError(t, err)
    ab, err := Apply(f2, ab1)
    require.NoError(t, err)

    ba1, err := Apply(f2, fr)
    require.NoError(t, err)
    ba, err := Apply(f1, ba1)
    require.NoError(t, err)

    assert.Equal(t, rows(ab), rows(ba))
}

func TestEmptyThenNonEmptySameColumn(t *testing.T) {
    // an empty-value Select followed by a non-empty Select must equal
    // applying only the non-empty one
    fr := testFrame()
    empty := categorical(models.WidgetSelect, nil)
    nonEmpty := categorical(models.WidgetSelect, "A")

    step1, err := Apply(empty, fr)
    require.NoError(t, err)
    chained, err := Apply(nonEmpty, step1)
    require.NoError(t, err)

    direct, err := Apply(nonEmpty, fr)
    require.NoError(t, err)
    assert.Equal(t, rows(direct), rows(chained))
}

func TestDatetimeRange(t *testing.T) {
    fr := frame.New([]string{"date"}, []frame.Record{
        {"date": "2024-01-01"},
        {"date": "2024-06-15"},
        {"date": "2024-12-31"},
    })
    f := &models.InteractiveFilter{
        ComponentID: "w3",
        ColumnName:  "date",
        ColumnType:  models.ColumnDatetime,
        WidgetKind:  models.WidgetRangeSlider,
        Value:       []interface{}{"2024-06-01", "2024-12-01"},
        SourceWfID:  "wf1",
        SourceDCID:  "dc1",
    }
    got, err := Apply(f, fr)
    require.NoError(t, err)
    require.Equal(t, 1, got.Len())
    assert.Equal(t, "2024-06-15", rows(got)[0]["date"])
}
