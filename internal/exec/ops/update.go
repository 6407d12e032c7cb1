package ops

import (
	"context"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
)

// ApplyUpdate mutates columns of rows for which where evaluates true, by
// evaluating each entry of setEvals (column name -> assignment expression)
// against the row as it stands with any runtime joins already applied
// (joined columns are visible to setEvals/where under "alias.column" keys,
// per spec.md §4.10, but are never written to and never survive into the
// result — the projection back to originalSchema at the end drops them).
// Rows not matching where are passed through unchanged.
func ApplyUpdate(l frame.Lazy, originalSchema frame.Schema, where dsl.Evaluator, setEvals map[string]dsl.Evaluator) (frame.Lazy, error) {
	if len(setEvals) == 0 {
		return frame.Lazy{}, &InvalidUpdateArguments{Reason: "SET clause must assign at least one column"}
	}
	for col := range setEvals {
		if !originalSchema.Has(col) {
			return frame.Lazy{}, &InvalidUpdateArguments{Reason: "SET target column " + col + " does not exist in the working frame"}
		}
	}

	staged := l.Transform(l.Schema(), func(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
		out := f.Clone()
		for i := 0; i < f.NumRows(); i++ {
			row := f.Row(i)
			match, err := where(row)
			if err != nil {
				return nil, err
			}
			matched, _ := match.(bool)
			if !matched {
				continue
			}
			for col, eval := range setEvals {
				v, err := eval(row)
				if err != nil {
					return nil, err
				}
				out.SetCell(col, i, v)
			}
		}
		return out, nil
	})

	names := make([]string, len(originalSchema))
	for i, c := range originalSchema {
		names[i] = c.Name
	}
	return staged.Select(names...), nil
}
