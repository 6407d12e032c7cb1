package exec

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

func TestExpressionSymbolTableRejectsDuplicateAlias(t *testing.T) {
	symtab := NewExpressionSymbolTable("", frame.Schema{{Name: "amount", Type: dsl.TypeNumber}})
	assert.True(t, symtab.Known(""))
	assert.False(t, symtab.Known("r"))

	require.NoError(t, symtab.Register("r", frame.Schema{{Name: "rate", Type: dsl.TypeNumber}}))
	assert.True(t, symtab.Known("r"))

	err := symtab.Register("r", frame.Schema{{Name: "other", Type: dsl.TypeNumber}})
	require.Error(t, err)
	var conflict *CrossJoinAliasConflict
	require.ErrorAs(t, err, &conflict)
}

func TestExpressionSymbolTableSchemaLookup(t *testing.T) {
	mainSchema := frame.Schema{{Name: "amount", Type: dsl.TypeNumber}}
	symtab := NewExpressionSymbolTable("", mainSchema)
	got, ok := symtab.Schema("")
	require.True(t, ok)
	assert.Equal(t, mainSchema, got)

	_, ok = symtab.Schema("missing")
	assert.False(t, ok)
}

func TestApplyRuntimeJoinsRegistersAliasesInOrder(t *testing.T) {
	baseSchema := frame.Schema{{Name: "region", Type: dsl.TypeString}, {Name: "amount", Type: dsl.TypeNumber}}
	base := frame.NewFrame(baseSchema, 0)
	base.AppendRow(map[string]any{"region": "east", "amount": 10.0})

	rateSchema := frame.Schema{{Name: "region", Type: dsl.TypeString}, {Name: "rate", Type: dsl.TypeNumber}}
	rateFrame := frame.NewFrame(rateSchema, 0)
	rateFrame.AppendRow(map[string]any{"region": "east", "rate": 1.5})

	joins := []model.RuntimeJoin{
		{DatasetID: uuid.New(), Alias: "r", On: "region = r.region"},
	}
	joinedFrames := map[string]frame.Lazy{"r": frame.FromFrame(rateFrame)}

	symtab := NewExpressionSymbolTable("", baseSchema)
	out, err := ApplyRuntimeJoins(context.Background(), frame.FromFrame(base), joins, joinedFrames, symtab, "2026-01-15")
	require.NoError(t, err)

	assert.True(t, symtab.Known("r"))

	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, collected.NumRows())
	assert.Equal(t, 1.5, collected.Row(0)["r.rate"])
}

func TestApplyRuntimeJoinsRejectsAliasConflict(t *testing.T) {
	baseSchema := frame.Schema{{Name: "region", Type: dsl.TypeString}}
	base := frame.NewFrame(baseSchema, 0)

	rateFrame := frame.NewFrame(frame.Schema{{Name: "region", Type: dsl.TypeString}}, 0)

	joins := []model.RuntimeJoin{
		{DatasetID: uuid.New(), Alias: "r", On: "region == r.region"},
	}
	joinedFrames := map[string]frame.Lazy{"r": frame.FromFrame(rateFrame)}

	symtab := NewExpressionSymbolTable("", baseSchema)
	require.NoError(t, symtab.Register("r", rateFrame.Schema))

	_, err := ApplyRuntimeJoins(context.Background(), frame.FromFrame(base), joins, joinedFrames, symtab, "2026-01-15")
	require.Error(t, err)
	var conflict *CrossJoinAliasConflict
	require.ErrorAs(t, err, &conflict)
}

func TestApplyRuntimeJoinsInvalidConditionErrors(t *testing.T) {
	baseSchema := frame.Schema{{Name: "region", Type: dsl.TypeString}}
	base := frame.NewFrame(baseSchema, 0)
	rateFrame := frame.NewFrame(frame.Schema{{Name: "region", Type: dsl.TypeString}}, 0)

	joins := []model.RuntimeJoin{
		{DatasetID: uuid.New(), Alias: "r", On: "region =="},
	}
	joinedFrames := map[string]frame.Lazy{"r": frame.FromFrame(rateFrame)}

	symtab := NewExpressionSymbolTable("", baseSchema)
	_, err := ApplyRuntimeJoins(context.Background(), frame.FromFrame(base), joins, joinedFrames, symtab, "2026-01-15")
	require.Error(t, err)
	var invalid *InvalidJoinCondition
	require.ErrorAs(t, err, &invalid)
}

func TestResolveDatasetRejectsDisabledDataset(t *testing.T) {
	datasetID := uuid.New()
	store := newFakeMetadataStore()
	store.datasets[datasetID] = &model.Dataset{ID: datasetID, Status: model.DatasetDisabled}

	_, err := ResolveDataset(context.Background(), store, model.RuntimeJoin{DatasetID: datasetID})
	require.Error(t, err)
	var disabled *DatasetDisabled
	require.ErrorAs(t, err, &disabled)
}

func TestResolveDatasetNotFound(t *testing.T) {
	store := newFakeMetadataStore()
	_, err := ResolveDataset(context.Background(), store, model.RuntimeJoin{DatasetID: uuid.New()})
	require.Error(t, err)
	var notFound *DatasetNotFound
	require.ErrorAs(t, err, &notFound)
}
