package frame

import (
    "encoding/json"
    "fmt"

    "github.com/spf13/cast"
)

// Record is one row of a frame, keyed by column name.
type Record map[string]interface{}

// Frame is an in-memory tabular dataset: an ordered column list plus row
// records. All operations return new frames; a frame is never mutated
// after construction.
type Frame struct {
    columns []string
    rows    []Record
}

// New builds a frame from a column list and rows.
func New(columns []string, rows []Record) *Frame {
    cols := make([]string, len(columns))
    copy(cols, columns)
    return &Frame{columns: cols, rows: rows}
}

// Columns returns the ordered column names.
func (f *Frame) Columns() []string {
    cols := make([]string, len(f.columns))
    copy(cols, f.columns)
    return cols
}

// HasColumn reports whether the frame carries the named column.
func (f *Frame) HasColumn(name string) bool {
    for _, c := range f.columns {
        if c == name {
            return true
        }
    }
    return false
}

// Len returns the row count.
func (f *Frame) Len() int {
    return len(f.rows)
}

// Records returns the rows. Callers must not mutate them.
func (f *Frame) Records() []Record {
    return f.rows
}

// Filter returns a new frame containing the rows for which pred is true.
func (f *Frame) Filter(pred func(Record) bool) *Frame {
    kept := make([]Record, 0, len(f.rows))
    for _, row := range f.rows {
        if pred(row) {
            kept = append(kept, row)
        }
    }
    return &Frame{columns: f.columns, rows: kept}
}

// Select returns a new frame restricted to the named columns.
func (f *Frame) Select(columns ...string) (*Frame, error) {
    for _, c := range columns {
        if !f.HasColumn(c) {
            return nil, fmt.Errorf("select: unknown column %q", c)
        }
    }
    rows := make([]Record, len(f.rows))
    for i, row := range f.rows {
        out := make(Record, len(columns))
        for _, c := range columns {
            out[c] = row[c]
        }
        rows[i] = out
    }
    return New(columns, rows), nil
}

// Distinct returns the distinct non-nil values of a column, in first-seen
// order.
func (f *Frame) Distinct(column string) []interface{} {
    seen := make(map[string]bool)
    var out []interface{}
    for _, row := range f.rows {
        v, ok := row[column]
        if !ok || v == nil {
            continue
        }
        key := cast.ToString(v)
        if !seen[key] {
            seen[key] = true
            out = append(out, v)
        }
    }
    return out
}

// frameJSON is the serialized form used by the frame store.
type frameJSON struct {
    Columns []string `json:"columns"`
    Rows    []Record `json:"rows"`
}

// MarshalJSON implements json.Marshaler.
func (f *Frame) MarshalJSON() ([]byte, error) {
    return json.Marshal(frameJSON{Columns: f.columns, Rows: f.rows})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Frame) UnmarshalJSON(data []byte) error {
    var raw frameJSON
    if err := json.Unmarshal(data, &raw); err != nil {
        return err
    }
    f.columns = raw.Columns
    f.rows = raw.Rows
    return nil
}
