package ops

import (
	"context"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
)

const columnDeleted = "_deleted"

// ApplyDelete tombstones rows: it never physically removes a row, only
// sets the _deleted system column to true on rows for which both temporal
// and cond evaluate true. Rows already marked deleted stay deleted
// regardless of cond, since a tombstone is terminal for a given period.
func ApplyDelete(l frame.Lazy, cond, temporal dsl.Evaluator) frame.Lazy {
	schema := l.Schema()
	newSchema := schema.Without(columnDeleted).With(frame.ColumnInfo{Name: columnDeleted, Type: dsl.TypeBoolean})

	return l.Transform(newSchema, func(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
		out := f.Clone()
		out.Schema = newSchema
		if _, ok := out.Columns[columnDeleted]; !ok {
			out.Columns[columnDeleted] = make([]any, f.NumRows())
		}
		for i := 0; i < f.NumRows(); i++ {
			row := f.Row(i)
			if already, _ := row[columnDeleted].(bool); already {
				out.SetCell(columnDeleted, i, true)
				continue
			}
			matchTemporal, err := temporal(row)
			if err != nil {
				return nil, err
			}
			if t, ok := matchTemporal.(bool); !ok || !t {
				out.SetCell(columnDeleted, i, false)
				continue
			}
			matchCond, err := cond(row)
			if err != nil {
				return nil, err
			}
			deleted, _ := matchCond.(bool)
			out.SetCell(columnDeleted, i, deleted)
		}
		return out, nil
	})
}
