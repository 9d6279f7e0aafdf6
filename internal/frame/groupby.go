package frame

import (
    "fmt"
    "sort"
    "strings"

    "github.com/spf13/cast"
)

// Grouped is the result of GroupBy: rows partitioned by the distinct
// values of the grouping columns, awaiting a terminal aggregation.
type Grouped struct {
    source  *Frame
    columns []string
    keys    []string
    groups  map[string][]Record
}

// GroupBy partitions the frame by the named columns. The columns must
// exist; this is validated here so a bad groupby fails when declared, not
// at aggregation time.
func (f *Frame) GroupBy(columns ...string) (*Grouped, error) {
    if len(columns) == 0 {
        return nil, fmt.Errorf("groupby: at least one column required")
    }
    for _, c := range columns {
        if !f.HasColumn(c) {
            return nil, fmt.Errorf("groupby: unknown column %q", c)
        }
    }

    groups := make(map[string][]Record)
    keys := make([]string, 0)
    for _, row := range f.rows {
        parts := make([]string, len(columns))
        for i, c := range columns {
            parts[i] = cast.ToString(row[c])
        }
        key := strings.Join(parts, "\x1f")
        if _, ok := groups[key]; !ok {
            keys = append(keys, key)
        }
        groups[key] = append(groups[key], row)
    }
    sort.Strings(keys)

    return &Grouped{source: f, columns: columns, keys: keys, groups: groups}, nil
}

// Aggregate reduces each group to one row carrying the group columns plus
// the aggregate value under the method name. A grouping column that shares
// the method's name keeps its key; the value column gets a "_value" suffix.
// Groups are emitted in sorted key order so results are deterministic.
func (g *Grouped) Aggregate(method, column string) (*Frame, error) {
    valueCol := method
    for g.hasGroupColumn(valueCol) {
        valueCol += "_value"
    }
    outCols := append(append([]string{}, g.columns...), valueCol)
    rows := make([]Record, 0, len(g.keys))
    for _, key := range g.keys {
        members := g.groups[key]
        sub := &Frame{columns: g.source.columns, rows: members}
        value, err := sub.Aggregate(method, column)
        if err != nil {
            return nil, err
        }
        row := make(Record, len(g.columns)+1)
        for _, c := range g.columns {
            row[c] = members[0][c]
        }
        row[valueCol] = value
        rows = append(rows, row)
    }
    return New(outCols, rows), nil
}

func (g *Grouped) hasGroupColumn(name string) bool {
    for _, c := range g.columns {
        if c == name {
            return true
        }
    }
    return false
}
