package frame

import "fmt"

// Frame is a materialized, column-major table: Select reuses the kept
// column slices, while WithColumn clones every column before writing the
// new one, so it costs O(rows * columns). Grounded
// on the teacher's query.Relation/query.Tuple pair, adapted from a sequence
// of attribute-keyed tuples to column-major storage since this engine's
// bulk arithmetic operations (§4.4) are naturally columnar.
type Frame struct {
	Schema  Schema
	Columns map[string][]any
	rows    int
}

// NewFrame builds an empty Frame with the given schema and row capacity;
// every declared column is pre-allocated to length rows, filled with nil.
func NewFrame(schema Schema, rows int) *Frame {
	cols := make(map[string][]any, len(schema))
	for _, c := range schema {
		cols[c.Name] = make([]any, rows)
	}
	return &Frame{Schema: schema, Columns: cols, rows: rows}
}

// NumRows returns the frame's row count.
func (f *Frame) NumRows() int { return f.rows }

// Row materializes row i as a plain map, for the operation executors' per-
// row system-column mutations (_deleted, _modified_at) that don't warrant a
// full columnar evaluator pass.
func (f *Frame) Row(i int) map[string]any {
	row := make(map[string]any, len(f.Schema))
	for _, c := range f.Schema {
		row[c.Name] = f.Columns[c.Name][i]
	}
	return row
}

// RowID returns a stable per-row identifier string used for join/delete
// bookkeeping: the "_id" column's value if the schema declares one,
// otherwise the row's ordinal position.
func (f *Frame) RowID(i int) string {
	if f.Schema.Has("_id") {
		return fmt.Sprintf("%v", f.Columns["_id"][i])
	}
	return fmt.Sprintf("#%d", i)
}

// SetCell writes value into column name at row i, used by executors that
// mutate system columns (_deleted, _modified_at) in place during a pass.
func (f *Frame) SetCell(name string, i int, value any) {
	f.Columns[name][i] = value
}

// Clone returns a deep-enough copy: same schema, independently mutable
// column slices, so that executors never mutate an input frame in place.
func (f *Frame) Clone() *Frame {
	cols := make(map[string][]any, len(f.Columns))
	for k, v := range f.Columns {
		cp := make([]any, len(v))
		copy(cp, v)
		cols[k] = cp
	}
	return &Frame{Schema: append(Schema{}, f.Schema...), Columns: cols, rows: f.rows}
}

// AppendRow appends one row (given as a full column-name -> value map) to
// every column in the schema, growing the frame by one row.
func (f *Frame) AppendRow(row map[string]any) {
	for _, c := range f.Schema {
		f.Columns[c.Name] = append(f.Columns[c.Name], row[c.Name])
	}
	f.rows++
}

// Filter returns a new Frame containing only rows for which keep[i] is true.
func (f *Frame) Filter(keep []bool) *Frame {
	out := NewFrame(f.Schema, 0)
	for i := 0; i < f.rows; i++ {
		if keep[i] {
			out.AppendRow(f.Row(i))
		}
	}
	return out
}
