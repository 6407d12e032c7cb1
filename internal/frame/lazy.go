package frame

import (
	"context"
	"fmt"
	"sort"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
)

// Materializer is the source a Lazy chain pulls its first Frame from: a
// DataLoader-backed load, an already-materialized Frame, or another Lazy's
// Collect result used as a join probe side. Grounded on the teacher's
// executor.Iterator abstraction — a pull-based source the planner chains
// transforms onto without forcing materialization until consumption.
type Materializer interface {
	Materialize(ctx context.Context) (*Frame, error)
}

// FrameSource adapts an already-materialized Frame into a Materializer, the
// base case every Lazy chain bottoms out at.
type FrameSource struct{ F *Frame }

func (s FrameSource) Materialize(context.Context) (*Frame, error) { return s.F, nil }

type stage func(ctx context.Context, f *Frame) (*Frame, error)

// Lazy is an immutable staged transform chain over a Materializer. Every
// transform method returns a new Lazy appending one stage; no computation
// happens until Collect is called, mirroring the teacher's
// BufferedIterator re-iteration model for intermediate materialization
// boundaries (e.g. a join's probe side needs random row access before the
// build side can stream through it).
type Lazy struct {
	source Materializer
	schema Schema
	stages []stage
}

// FromFrame begins a Lazy chain over an already-materialized Frame.
func FromFrame(f *Frame) Lazy {
	return Lazy{source: FrameSource{F: f}, schema: f.Schema}
}

// FromMaterializer begins a Lazy chain over any Materializer (e.g. a
// DataLoader load), given its declared schema up front.
func FromMaterializer(m Materializer, schema Schema) Lazy {
	return Lazy{source: m, schema: schema}
}

// Schema returns the frame's schema as currently staged, without forcing
// materialization.
func (l Lazy) Schema() Schema { return l.schema }

func (l Lazy) push(s stage, schema Schema) Lazy {
	stages := make([]stage, len(l.stages)+1)
	copy(stages, l.stages)
	stages[len(stages)-1] = s
	return Lazy{source: l.source, schema: schema, stages: stages}
}

// Filter keeps only rows for which pred evaluates to true (NULL/false rows
// are dropped).
func (l Lazy) Filter(pred dsl.Evaluator) Lazy {
	return l.push(func(ctx context.Context, f *Frame) (*Frame, error) {
		keep := make([]bool, f.NumRows())
		for i := 0; i < f.NumRows(); i++ {
			v, err := pred(f.Row(i))
			if err != nil {
				return nil, err
			}
			b, _ := v.(bool)
			keep[i] = b
		}
		return f.Filter(keep), nil
	}, l.schema)
}

// WithColumn adds or replaces a column, evaluated row-wise via eval.
func (l Lazy) WithColumn(name string, t dsl.ExprType, eval dsl.Evaluator) Lazy {
	newSchema := l.schema.Without(name).With(ColumnInfo{Name: name, Type: t})
	return l.push(func(ctx context.Context, f *Frame) (*Frame, error) {
		out := f.Clone()
		out.Schema = newSchema
		values := make([]any, f.NumRows())
		for i := 0; i < f.NumRows(); i++ {
			v, err := eval(f.Row(i))
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		out.Columns[name] = values
		return out, nil
	}, newSchema)
}

// Select projects the frame down to exactly the named columns, in order.
func (l Lazy) Select(columns ...string) Lazy {
	newSchema := make(Schema, 0, len(columns))
	for _, name := range columns {
		newSchema = append(newSchema, ColumnInfo{Name: name, Type: l.schema.TypeOf(name)})
	}
	return l.push(func(ctx context.Context, f *Frame) (*Frame, error) {
		out := &Frame{Schema: newSchema, Columns: make(map[string][]any, len(columns)), rows: f.NumRows()}
		for _, name := range columns {
			col, ok := f.Columns[name]
			if !ok {
				return nil, fmt.Errorf("select: column %q not present in frame", name)
			}
			out.Columns[name] = col
		}
		return out, nil
	}, newSchema)
}

// SortBy reorders rows by the named columns, ascending, using dsl.CompareValues.
// NULL (nil) values sort after every non-NULL value.
func (l Lazy) SortBy(columns ...string) Lazy {
	return l.push(func(ctx context.Context, f *Frame) (*Frame, error) {
		idx := make([]int, f.NumRows())
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			for _, name := range columns {
				av, bv := f.Columns[name][idx[a]], f.Columns[name][idx[b]]
				if av == nil && bv == nil {
					continue
				}
				if av == nil {
					return false
				}
				if bv == nil {
					return true
				}
				cmp, ok := dsl.CompareValues(av, bv)
				if !ok || cmp == 0 {
					continue
				}
				return cmp < 0
			}
			return false
		})
		out := NewFrame(f.Schema, 0)
		for _, i := range idx {
			out.AppendRow(f.Row(i))
		}
		return out, nil
	}, l.schema)
}

// Concat appends other's materialized rows onto this frame. Both sides must
// share identical column sets (see ops.ApplyAppend's ColumnMismatch check,
// which runs before Concat is ever staged).
func (l Lazy) Concat(other Lazy) Lazy {
	return l.push(func(ctx context.Context, f *Frame) (*Frame, error) {
		rhs, err := other.Collect(ctx)
		if err != nil {
			return nil, err
		}
		out := f.Clone()
		for i := 0; i < rhs.NumRows(); i++ {
			out.AppendRow(rhs.Row(i))
		}
		return out, nil
	}, l.schema)
}

// Transform appends an arbitrary custom stage to the chain, declaring the
// schema the stage produces. Used by operation executors (delete/append/
// aggregate/update) that need frame-level transforms beyond the built-in
// Filter/WithColumn/Select/SortBy/Concat/Join set.
func (l Lazy) Transform(schema Schema, fn func(ctx context.Context, f *Frame) (*Frame, error)) Lazy {
	return l.push(fn, schema)
}

// Collect materializes the chain: pulls the source Frame, then applies
// every staged transform in order.
func (l Lazy) Collect(ctx context.Context) (*Frame, error) {
	f, err := l.source.Materialize(ctx)
	if err != nil {
		return nil, fmt.Errorf("materializing frame source: %w", err)
	}
	for _, s := range l.stages {
		f, err = s(ctx, f)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}
