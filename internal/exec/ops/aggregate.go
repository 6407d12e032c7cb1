package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
)

// ApplyAggregate groups l by groupBy and reduces each entry of aggregates
// within each group, per spec.md §4.5. Aggregate expressions are parsed
// via dsl.ParseAggregateExpr elsewhere (the Aggregate operation's Params
// carry the raw strings); this function accepts the already-parsed form so
// it can be unit tested independent of parsing.
func ApplyAggregate(l frame.Lazy, groupBy []string, aggregates []*dsl.AggregateExpr) (frame.Lazy, error) {
	if len(aggregates) == 0 {
		return frame.Lazy{}, &InvalidAggregateSpec{Reason: "at least one aggregate expression is required"}
	}

	schema := l.Schema()
	newSchema := make(frame.Schema, 0, len(groupBy)+len(aggregates))
	for _, g := range groupBy {
		if !schema.Has(g) {
			return frame.Lazy{}, &InvalidAggregateSpec{Reason: fmt.Sprintf("group-by column %q not present in frame", g)}
		}
		newSchema = append(newSchema, frame.ColumnInfo{Name: g, Type: schema.TypeOf(g)})
	}
	for _, a := range aggregates {
		t := dsl.TypeNumber
		if a.Function == "MIN_AGG" || a.Function == "MAX_AGG" {
			t = schema.TypeOf(a.Column)
		}
		newSchema = append(newSchema, frame.ColumnInfo{Name: a.Alias, Type: t})
	}

	return l.Transform(newSchema, func(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
		order := []string{}
		groups := map[string][]int{}
		for i := 0; i < f.NumRows(); i++ {
			key := groupKey(f.Row(i), groupBy)
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], i)
		}

		out := frame.NewFrame(newSchema, 0)
		for _, key := range order {
			indices := groups[key]
			row := make(map[string]any, len(newSchema))
			first := f.Row(indices[0])
			for _, g := range groupBy {
				row[g] = first[g]
			}
			for _, a := range aggregates {
				v, err := reduce(f, indices, a)
				if err != nil {
					return nil, err
				}
				row[a.Alias] = v
			}
			out.AppendRow(row)
		}
		return out, nil
	}), nil
}

func groupKey(row map[string]any, groupBy []string) string {
	parts := make([]string, len(groupBy))
	for i, g := range groupBy {
		parts[i] = fmt.Sprintf("%v", row[g])
	}
	return strings.Join(parts, "\x1f")
}

func reduce(f *frame.Frame, indices []int, a *dsl.AggregateExpr) (any, error) {
	if a.Function == "COUNT" {
		if a.Star {
			return float64(len(indices)), nil
		}
		count := 0
		for _, i := range indices {
			if f.Columns[a.Column][i] != nil {
				count++
			}
		}
		return float64(count), nil
	}

	var nums []float64
	var anyVals []any
	for _, i := range indices {
		v := f.Columns[a.Column][i]
		if v == nil {
			continue
		}
		anyVals = append(anyVals, v)
		if n, ok := v.(float64); ok {
			nums = append(nums, n)
		}
	}

	switch a.Function {
	case "SUM":
		var sum float64
		for _, n := range nums {
			sum += n
		}
		return sum, nil
	case "AVG":
		if len(nums) == 0 {
			return nil, nil
		}
		var sum float64
		for _, n := range nums {
			sum += n
		}
		return sum / float64(len(nums)), nil
	case "MIN_AGG":
		return extremum(anyVals, true)
	case "MAX_AGG":
		return extremum(anyVals, false)
	default:
		return nil, &InvalidAggregateSpec{Reason: fmt.Sprintf("unsupported aggregate function %q", a.Function)}
	}
}

func extremum(values []any, wantMin bool) (any, error) {
	if len(values) == 0 {
		return nil, nil
	}
	best := values[0]
	for _, v := range values[1:] {
		cmp, ok := dsl.CompareValues(v, best)
		if !ok {
			continue
		}
		if (wantMin && cmp < 0) || (!wantMin && cmp > 0) {
			best = v
		}
	}
	return best, nil
}
