package exec

import (
	"context"
	"fmt"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/exec/ops"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// Pipeline executes a Run's ordered OperationInstance list against a lazy
// working frame, per spec.md §4.11-4.12. It owns the four collaborator
// interfaces a host wires in (storage, data load/write, tracing) so the
// core stays independent of any concrete I/O implementation.
type Pipeline struct {
	Store  MetadataStore
	Loader DataLoader
	Writer OutputWriter
	Tracer TraceWriter
}

// NewPipeline constructs a Pipeline over the given collaborators.
func NewPipeline(store MetadataStore, loader DataLoader, writer OutputWriter, tracer TraceWriter) *Pipeline {
	return &Pipeline{Store: store, Loader: loader, Writer: writer, Tracer: tracer}
}

// ExecutionPlan carries everything Execute needs beyond the Run itself: the
// resolved source location and declared schema the run's dataset loads
// from, and the as-of timestamp bitemporal operations filter against.
type ExecutionPlan struct {
	SourceLocation model.ResolvedLocation
	Schema         frame.Schema
	PeriodID       string
	AsOf           string
}

// Execute runs every operation of run.Operations in order against the
// frame loaded from plan.SourceLocation, threading one working frame
// through the whole pipeline. It pre-validates every operation's DSL
// fragments against plan.Schema before executing any of them, so a late
// operation's parse/type error is reported before an earlier operation has
// mutated anything durable.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run, plan ExecutionPlan) error {
	if err := ValidateOperations(run.Operations, plan.Schema, plan.AsOf); err != nil {
		return err
	}

	working, err := p.Loader.Load(ctx, plan.SourceLocation, plan.Schema)
	if err != nil {
		return fmt.Errorf("loading source frame: %w", err)
	}

	var events []model.TraceEvent
	for _, op := range run.Operations {
		next, err := p.executeOne(ctx, working, op, plan)
		if err != nil {
			wrapped := &OperationError{Order: op.Order, Err: err}
			run.Status = model.RunFailed
			run.Error = &model.ErrorDetail{OperationOrder: op.Order, Message: wrapped.Error()}
			if p.Tracer != nil {
				events = append(events, model.TraceEvent{RunID: run.ID, OperationOrder: op.Order, Level: "error", Message: wrapped.Error()})
				_ = p.Tracer.WriteEvents(ctx, run.ID, events)
			}
			return wrapped
		}
		working = next
		order := op.Order
		run.LastCompletedOperation = &order
		if p.Tracer != nil {
			events = append(events, model.TraceEvent{RunID: run.ID, OperationOrder: op.Order, Level: "info", Message: fmt.Sprintf("%s completed", op.Kind)})
		}
	}

	run.Status = model.RunSucceeded
	if p.Tracer != nil && len(events) > 0 {
		if err := p.Tracer.WriteEvents(ctx, run.ID, events); err != nil {
			return fmt.Errorf("writing trace events: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) executeOne(ctx context.Context, working frame.Lazy, op model.OperationInstance, plan ExecutionPlan) (frame.Lazy, error) {
	switch params := op.Params.(type) {
	case model.DeleteOperationParams:
		return p.executeDelete(working, params, plan)
	case model.OutputOperationParams:
		return p.executeOutput(ctx, working, params, plan)
	case model.AppendOperationParams:
		return p.executeAppend(ctx, working, params, plan)
	case model.AggregateOperationParams:
		return p.executeAggregate(working, params)
	case model.UpdateOperationParams:
		return p.executeUpdate(ctx, working, params, plan)
	default:
		return frame.Lazy{}, &UnknownOperationKind{Kind: string(op.Kind)}
	}
}

func (p *Pipeline) executeDelete(working frame.Lazy, params model.DeleteOperationParams, plan ExecutionPlan) (frame.Lazy, error) {
	condEval, err := compileCondition(params.Condition, working.Schema(), plan.AsOf)
	if err != nil {
		return frame.Lazy{}, err
	}
	temporal, err := TemporalPredicate(working.Schema(), params.Mode, plan.PeriodID, plan.AsOf)
	if err != nil {
		return frame.Lazy{}, err
	}
	return ops.ApplyDelete(working, condEval, temporal), nil
}

func (p *Pipeline) executeOutput(ctx context.Context, working frame.Lazy, params model.OutputOperationParams, plan ExecutionPlan) (frame.Lazy, error) {
	active := ops.FilterActiveOnly(working)
	filtered, err := ApplyTemporalFilter(active, params.Mode, plan.PeriodID, plan.AsOf)
	if err != nil {
		return frame.Lazy{}, err
	}
	materialized, err := filtered.Collect(ctx)
	if err != nil {
		return frame.Lazy{}, fmt.Errorf("collecting output frame: %w", err)
	}
	if err := p.Writer.Write(ctx, materialized, params.Destination); err != nil {
		return frame.Lazy{}, fmt.Errorf("writing output: %w", err)
	}
	return working, nil
}

func (p *Pipeline) executeAppend(ctx context.Context, working frame.Lazy, params model.AppendOperationParams, plan ExecutionPlan) (frame.Lazy, error) {
	source, err := p.Store.GetDataset(ctx, params.SourceDatasetID, params.SourceVersion)
	if err != nil {
		return frame.Lazy{}, err
	}
	if source == nil {
		return frame.Lazy{}, &DatasetNotFound{DatasetID: params.SourceDatasetID}
	}
	if source.Status == model.DatasetDisabled {
		return frame.Lazy{}, &DatasetDisabled{DatasetID: params.SourceDatasetID}
	}
	sourceSchema := datasetSchema(source)
	sourceLocation := model.ResolvedLocation{Identifier: plan.PeriodID}
	sourceLazy, err := p.Loader.Load(ctx, sourceLocation, sourceSchema)
	if err != nil {
		return frame.Lazy{}, fmt.Errorf("loading append source: %w", err)
	}
	return ops.ApplyAppend(working, sourceLazy)
}

func (p *Pipeline) executeAggregate(working frame.Lazy, params model.AggregateOperationParams) (frame.Lazy, error) {
	parsed := make([]*dsl.AggregateExpr, 0, len(params.Aggregates))
	for _, spec := range params.Aggregates {
		a, err := dsl.ParseAggregateExpr(spec)
		if err != nil {
			return frame.Lazy{}, err
		}
		parsed = append(parsed, a)
	}
	active := ops.FilterActiveOnly(working)
	return ops.ApplyAggregate(active, params.GroupBy, parsed)
}

func (p *Pipeline) executeUpdate(ctx context.Context, working frame.Lazy, params model.UpdateOperationParams, plan ExecutionPlan) (frame.Lazy, error) {
	symtab := NewExpressionSymbolTable("", working.Schema())

	joinedFrames := make(map[string]frame.Lazy, len(params.Joins))
	for _, j := range params.Joins {
		ds, err := ResolveDataset(ctx, p.Store, j)
		if err != nil {
			return frame.Lazy{}, &InvalidJoinCondition{Alias: j.Alias, Err: err}
		}
		schema := datasetSchema(ds)
		loc := model.ResolvedLocation{Identifier: plan.PeriodID}
		lazy, err := p.Loader.Load(ctx, loc, schema)
		if err != nil {
			return frame.Lazy{}, &InvalidJoinCondition{Alias: j.Alias, Err: err}
		}
		joinedFrames[j.Alias] = lazy
	}

	joined, err := ApplyRuntimeJoins(ctx, working, params.Joins, joinedFrames, symtab, plan.AsOf)
	if err != nil {
		return frame.Lazy{}, err
	}

	whereSrc := params.Where
	if whereSrc == "" {
		whereSrc = "TRUE"
	}
	whereEval, err := compileCondition(whereSrc, joined.Schema(), plan.AsOf)
	if err != nil {
		return frame.Lazy{}, err
	}

	setCtx := &dsl.CompilationContext{Today: plan.AsOf}
	setEvals := make(map[string]dsl.Evaluator, len(params.Set))
	for col, expr := range params.Set {
		ast, err := dsl.Parse(expr)
		if err != nil {
			return frame.Lazy{}, err
		}
		eval, err := dsl.Compile(ast, setCtx)
		if err != nil {
			return frame.Lazy{}, err
		}
		setEvals[col] = eval
	}

	return ops.ApplyUpdate(joined, working.Schema(), whereEval, setEvals)
}

func compileCondition(source string, schema frame.Schema, today string) (dsl.Evaluator, error) {
	ast, err := dsl.Parse(source)
	if err != nil {
		return nil, err
	}
	return dsl.Compile(ast, &dsl.CompilationContext{Today: today})
}

func datasetSchema(ds *model.Dataset) frame.Schema {
	schema := make(frame.Schema, 0, len(ds.MainTable.Schema))
	for _, col := range ds.MainTable.Schema {
		schema = append(schema, frame.ColumnInfo{Name: col.Name, Type: columnDefType(col.Type)})
	}
	return schema
}

func columnDefType(t string) dsl.ExprType {
	switch t {
	case "number":
		return dsl.TypeNumber
	case "string":
		return dsl.TypeString
	case "boolean":
		return dsl.TypeBoolean
	case "date":
		return dsl.TypeDate
	default:
		return dsl.TypeAny
	}
}

// ValidateOperations runs a pre-validation pass over every operation's DSL
// fragments against schema, before Execute runs any of them. This only
// validates syntax/type-compatibility against the run's starting schema;
// it does not attempt to simulate schema evolution across Aggregate/Update
// steps, since spec.md's operations only ever consume or reduce existing
// columns, never introduce ones a later step's condition depends on.
func ValidateOperations(operations []model.OperationInstance, schema frame.Schema, today string) error {
	ctx := compilationContextFor(schema, false, today)
	for _, op := range operations {
		switch params := op.Params.(type) {
		case model.DeleteOperationParams:
			if err := validateExpr(params.Condition, ctx); err != nil {
				return &OperationError{Order: op.Order, Err: err}
			}
		case model.OutputOperationParams:
			// no expression fragments to validate
		case model.AppendOperationParams:
			// schema compatibility is checked at execution time against the
			// resolved source dataset, which isn't available pre-execution
		case model.AggregateOperationParams:
			aggCtx := compilationContextFor(schema, true, today)
			for _, spec := range params.Aggregates {
				if _, err := dsl.ParseAggregateExpr(spec); err != nil {
					return &OperationError{Order: op.Order, Err: err}
				}
			}
			_ = aggCtx
		case model.UpdateOperationParams:
			if params.Where != "" {
				if err := validateExpr(params.Where, ctx); err != nil {
					return &OperationError{Order: op.Order, Err: err}
				}
			}
		default:
			return &OperationError{Order: op.Order, Err: &UnknownOperationKind{Kind: string(op.Kind)}}
		}
	}
	return nil
}

func validateExpr(source string, ctx *dsl.CompilationContext) error {
	ast, err := dsl.Parse(source)
	if err != nil {
		return err
	}
	_, err = dsl.Validate(ast, ctx)
	return err
}

func compilationContextFor(schema frame.Schema, allowAggregates bool, today string) *dsl.CompilationContext {
	cols := make([]dsl.ColumnSchema, 0, len(schema))
	for _, c := range schema {
		cols = append(cols, dsl.ColumnSchema{Table: "", Column: c.Name, Type: c.Type})
	}
	return dsl.NewCompilationContext(cols, allowAggregates).WithToday(today)
}
