package frame

import (
    "fmt"
    "math"
    "sort"

    "github.com/spf13/cast"
)

// Aggregation names accepted by Aggregate. "average" is an alias for
// "mean"; "range" is max-min and, like the other numeric methods, rejects
// non-numeric columns.
var numericAggregations = map[string]bool{
    "sum": true, "mean": true, "average": true, "median": true,
    "min": true, "max": true, "variance": true, "std_dev": true,
    "range": true,
}

// Aggregate reduces one column of the frame to a scalar. count is the only
// method that does not require a column.
func (f *Frame) Aggregate(method, column string) (interface{}, error) {
    if method == "count" {
        return f.Len(), nil
    }
    if !f.HasColumn(column) {
        return nil, fmt.Errorf("aggregate %s: unknown column %q", method, column)
    }

    switch method {
    case "nunique":
        return len(f.Distinct(column)), nil
    case "mode":
        return f.mode(column)
    }

    if !numericAggregations[method] {
        return nil, fmt.Errorf("unsupported aggregation %q", method)
    }

    values, err := f.numericColumn(column, method)
    if err != nil {
        return nil, err
    }
    if len(values) == 0 {
        return nil, fmt.Errorf("aggregate %s on column %q: no numeric values", method, column)
    }

    switch method {
    case "sum":
        return sum(values), nil
    case "mean", "average":
        return sum(values) / float64(len(values)), nil
    case "median":
        return median(values), nil
    case "min":
        return minOf(values), nil
    case "max":
        return maxOf(values), nil
    case "range":
        return maxOf(values) - minOf(values), nil
    case "variance":
        return variance(values), nil
    case "std_dev":
        return math.Sqrt(variance(values)), nil
    }
    return nil, fmt.Errorf("unsupported aggregation %q", method)
}

// numericColumn collects the column's non-nil values as floats. A value
// that cannot be coerced makes the whole aggregation fail with the column
// and method named.
func (f *Frame) numericColumn(column, method string) ([]float64, error) {
    values := make([]float64, 0, len(f.rows))
    for _, row := range f.rows {
        v, ok := row[column]
        if !ok || v == nil {
            continue
        }
        num, err := cast.ToFloat64E(v)
        if err != nil {
            return nil, fmt.Errorf("aggregate %s on column %q: non-numeric value %v", method, column, v)
        }
        values = append(values, num)
    }
    return values, nil
}

func (f *Frame) mode(column string) (interface{}, error) {
    counts := make(map[string]int)
    first := make(map[string]interface{})
    order := make([]string, 0)
    for _, row := range f.rows {
        v, ok := row[column]
        if !ok || v == nil {
            continue
        }
        key := cast.ToString(v)
        if counts[key] == 0 {
            first[key] = v
            order = append(order, key)
        }
        counts[key]++
    }
    if len(order) == 0 {
        return nil, fmt.Errorf("aggregate mode on column %q: no values", column)
    }
    best := order[0]
    for _, key := range order {
        if counts[key] > counts[best] {
            best = key
        }
    }
    return first[best], nil
}

func sum(values []float64) float64 {
    total := 0.0
    for _, v := range values {
        total += v
    }
    return total
}

func median(values []float64) float64 {
    sorted := make([]float64, len(values))
    copy(sorted, values)
    sort.Float64s(sorted)
    mid := len(sorted) / 2
    if len(sorted)%2 == 0 {
        return (sorted[mid-1] + sorted[mid]) / 2
    }
    return sorted[mid]
}

func minOf(values []float64) float64 {
    m := values[0]
    for _, v := range values[1:] {
        if v < m {
            m = v
        }
    }
    return m
}

func maxOf(values []float64) float64 {
    m := values[0]
    for _, v := range values[1:] {
        if v > m {
            m = v
        }
    }
    return m
}

func variance(values []float64) float64 {
    mean := sum(values) / float64(len(values))
    total := 0.0
    for _, v := range values {
        d := v - mean
        total += d * d
    }
    return total / float64(len(values))
}
