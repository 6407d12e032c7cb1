package exec

import (
	"context"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

// ExpressionSymbolTable tracks which aliases (the main table plus each
// runtime join's alias) are known during Update's SET/WHERE compilation,
// per spec.md §4.10's cross-join alias restriction: an alias may only be
// registered once, and an Update expression may only reference aliases
// registered in this table.
type ExpressionSymbolTable struct {
	aliases map[string]frame.Schema
}

// NewExpressionSymbolTable seeds the table with the main working frame's
// schema, registered under mainAlias (conventionally "").
func NewExpressionSymbolTable(mainAlias string, mainSchema frame.Schema) *ExpressionSymbolTable {
	return &ExpressionSymbolTable{aliases: map[string]frame.Schema{mainAlias: mainSchema}}
}

// Register adds a join alias to the table, rejecting a second registration
// of the same alias (cross-join alias restriction).
func (t *ExpressionSymbolTable) Register(alias string, schema frame.Schema) error {
	if _, exists := t.aliases[alias]; exists {
		return &CrossJoinAliasConflict{Alias: alias}
	}
	t.aliases[alias] = schema
	return nil
}

// Known reports whether alias has been registered.
func (t *ExpressionSymbolTable) Known(alias string) bool {
	_, ok := t.aliases[alias]
	return ok
}

// Schema returns the schema registered for alias.
func (t *ExpressionSymbolTable) Schema(alias string) (frame.Schema, bool) {
	s, ok := t.aliases[alias]
	return s, ok
}

// ResolveDataset fetches the dataset version a RuntimeJoin targets: the
// explicit Version if given, otherwise the dataset's current version. It
// only fetches the dataset and checks it is not disabled; it does not select
// a resolver, and no project-level resolver override is consulted for
// runtime joins.
func ResolveDataset(ctx context.Context, store MetadataStore, j model.RuntimeJoin) (*model.Dataset, error) {
	ds, err := store.GetDataset(ctx, j.DatasetID, j.Version)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, &DatasetNotFound{DatasetID: j.DatasetID}
	}
	if ds.Status == model.DatasetDisabled {
		return nil, &DatasetDisabled{DatasetID: j.DatasetID}
	}
	return ds, nil
}

// ApplyRuntimeJoins left-joins every entry of joins onto base in order,
// registering each alias into symtab (rejecting a repeated alias) and then
// parsing and compiling its ON condition. The condition is compiled with a
// context that carries only the run's today date: it is not validated
// against symtab, so a reference to another join's alias or columns is not
// rejected here.
func ApplyRuntimeJoins(
	ctx context.Context,
	base frame.Lazy,
	joins []model.RuntimeJoin,
	joinedFrames map[string]frame.Lazy,
	symtab *ExpressionSymbolTable,
	today string,
) (frame.Lazy, error) {
	result := base
	for _, j := range joins {
		joined, ok := joinedFrames[j.Alias]
		if !ok {
			return frame.Lazy{}, &InvalidJoinCondition{Alias: j.Alias, Err: &DatasetNotFound{DatasetID: j.DatasetID}}
		}

		if err := symtab.Register(j.Alias, joined.Schema()); err != nil {
			return frame.Lazy{}, err
		}

		condAST, err := dsl.Parse(j.On)
		if err != nil {
			return frame.Lazy{}, &InvalidJoinCondition{Alias: j.Alias, Err: err}
		}
		condEval, err := dsl.Compile(condAST, &dsl.CompilationContext{Today: today})
		if err != nil {
			return frame.Lazy{}, &InvalidJoinCondition{Alias: j.Alias, Err: err}
		}

		result = result.Join(joined, j.Alias, condEval)
	}
	return result, nil
}
