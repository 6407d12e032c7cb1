package frame

import (
	"context"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
)

// Join performs a nested-loop left join of l against right, keeping every
// left row: when cond matches one or more right rows, each match is
// emitted as a combined row; when no right row matches, the left row is
// emitted once with the right side's columns as NULL. Right-side columns
// are registered into the combined row under "alias.column" keys per
// rightAlias (the alias is a prefix; column names are not given an alias
// suffix). cond is evaluated against the combined row, so it may
// reference both bare left-side column names and "alias.column" names.
func (l Lazy) Join(right Lazy, rightAlias string, cond dsl.Evaluator) Lazy {
	rightCols := right.schema
	newSchema := append(Schema{}, l.schema...)
	for _, c := range rightCols {
		newSchema = append(newSchema, ColumnInfo{Name: rightAlias + "." + c.Name, Type: c.Type})
	}

	return l.push(func(ctx context.Context, f *Frame) (*Frame, error) {
		rf, err := right.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := NewFrame(newSchema, 0)
		for i := 0; i < f.NumRows(); i++ {
			leftRow := f.Row(i)
			matched := false
			for j := 0; j < rf.NumRows(); j++ {
				rightRow := rf.Row(j)
				combined := combineRow(leftRow, rightRow, rightAlias)
				v, err := cond(combined)
				if err != nil {
					return nil, err
				}
				if b, ok := v.(bool); ok && b {
					out.AppendRow(combined)
					matched = true
				}
			}
			if !matched {
				nullRight := make(map[string]any, len(rightCols))
				for _, c := range rightCols {
					nullRight[c.Name] = nil
				}
				out.AppendRow(combineRow(leftRow, nullRight, rightAlias))
			}
		}
		return out, nil
	}, newSchema)
}

func combineRow(left, right map[string]any, rightAlias string) map[string]any {
	combined := make(map[string]any, len(left)+len(right))
	for k, v := range left {
		combined[k] = v
	}
	for k, v := range right {
		combined[rightAlias+"."+k] = v
	}
	return combined
}
