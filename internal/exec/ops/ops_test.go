package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
)

func ledgerSchema() frame.Schema {
	return frame.Schema{
		{Name: "region", Type: dsl.TypeString},
		{Name: "amount", Type: dsl.TypeNumber},
	}
}

func buildLedger(rows ...map[string]any) *frame.Frame {
	f := frame.NewFrame(ledgerSchema(), 0)
	for _, r := range rows {
		f.AppendRow(r)
	}
	return f
}

func alwaysTrue(dsl.Row) (any, error) { return true, nil }
func alwaysFalse(dsl.Row) (any, error) { return false, nil }

func TestApplyDeleteTombstonesMatchingRows(t *testing.T) {
	f := buildLedger(
		map[string]any{"region": "east", "amount": 10.0},
		map[string]any{"region": "west", "amount": -5.0},
	)
	cond, err := compileExpr(t, "amount < 0")
	require.NoError(t, err)

	out, err := ApplyDelete(frame.FromFrame(f), cond, alwaysTrue).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, out.Row(0)["_deleted"])
	assert.Equal(t, true, out.Row(1)["_deleted"])
}

func TestApplyDeleteSkipsRowsOutsideTemporalBound(t *testing.T) {
	f := buildLedger(map[string]any{"region": "west", "amount": -5.0})
	cond, err := compileExpr(t, "amount < 0")
	require.NoError(t, err)

	out, err := ApplyDelete(frame.FromFrame(f), cond, alwaysFalse).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, out.Row(0)["_deleted"])
}

func TestApplyDeleteTombstoneIsTerminal(t *testing.T) {
	schema := ledgerSchema().With(frame.ColumnInfo{Name: "_deleted", Type: dsl.TypeBoolean})
	f := frame.NewFrame(schema, 0)
	f.AppendRow(map[string]any{"region": "east", "amount": 10.0, "_deleted": true})

	cond, err := compileExpr(t, "amount > 0")
	require.NoError(t, err)
	// cond is true (amount > 0) but the row is already tombstoned: it must
	// not be "un-deleted" even though the condition no longer matches.
	cond2, err := compileExpr(t, "amount < 0")
	require.NoError(t, err)

	for _, c := range []dsl.Evaluator{cond, cond2} {
		out, err := ApplyDelete(frame.FromFrame(f), c, alwaysTrue).Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, true, out.Row(0)["_deleted"])
	}
}

func TestFilterActiveOnlyPassesThroughWithNoDeletedColumn(t *testing.T) {
	f := buildLedger(map[string]any{"region": "east", "amount": 10.0})
	out, err := FilterActiveOnly(frame.FromFrame(f)).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())
}

func TestFilterActiveOnlyDropsTombstonedRows(t *testing.T) {
	schema := ledgerSchema().With(frame.ColumnInfo{Name: "_deleted", Type: dsl.TypeBoolean})
	f := frame.NewFrame(schema, 0)
	f.AppendRow(map[string]any{"region": "east", "amount": 10.0, "_deleted": false})
	f.AppendRow(map[string]any{"region": "west", "amount": -5.0, "_deleted": true})

	out, err := FilterActiveOnly(frame.FromFrame(f)).Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "east", out.Row(0)["region"])
}

func TestApplyAppendRequiresExactColumnMatch(t *testing.T) {
	base := frame.FromFrame(buildLedger(map[string]any{"region": "east", "amount": 10.0}))

	extraSchema := frame.Schema{{Name: "region", Type: dsl.TypeString}, {Name: "amount", Type: dsl.TypeNumber}, {Name: "note", Type: dsl.TypeString}}
	extra := frame.NewFrame(extraSchema, 0)
	extra.AppendRow(map[string]any{"region": "west", "amount": 1.0, "note": "x"})

	_, err := ApplyAppend(base, frame.FromFrame(extra))
	require.Error(t, err)
	var mismatch *ColumnMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, mismatch.Extra, "note")
}

func TestApplyAppendConcatenatesMatchingSchemas(t *testing.T) {
	base := frame.FromFrame(buildLedger(map[string]any{"region": "east", "amount": 10.0}))
	addition := frame.FromFrame(buildLedger(map[string]any{"region": "west", "amount": 20.0}))

	out, err := ApplyAppend(base, addition)
	require.NoError(t, err)
	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, collected.NumRows())
}

func TestApplyAggregateSumGroupByRegion(t *testing.T) {
	f := buildLedger(
		map[string]any{"region": "east", "amount": 10.0},
		map[string]any{"region": "east", "amount": 5.0},
		map[string]any{"region": "west", "amount": 20.0},
	)
	agg, err := dsl.ParseAggregateExpr("SUM(amount) AS total")
	require.NoError(t, err)

	out, err := ApplyAggregate(frame.FromFrame(f), []string{"region"}, []*dsl.AggregateExpr{agg})
	require.NoError(t, err)
	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, collected.NumRows())
	assert.Equal(t, "east", collected.Row(0)["region"])
	assert.Equal(t, 15.0, collected.Row(0)["total"])
	assert.Equal(t, "west", collected.Row(1)["region"])
	assert.Equal(t, 20.0, collected.Row(1)["total"])
}

func TestApplyAggregateCountStar(t *testing.T) {
	f := buildLedger(
		map[string]any{"region": "east", "amount": 10.0},
		map[string]any{"region": "east", "amount": 5.0},
	)
	agg, err := dsl.ParseAggregateExpr("COUNT(*)")
	require.NoError(t, err)

	out, err := ApplyAggregate(frame.FromFrame(f), []string{"region"}, []*dsl.AggregateExpr{agg})
	require.NoError(t, err)
	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, collected.NumRows())
	assert.Equal(t, 2.0, collected.Row(0)["COUNT_star"])
}

func TestApplyAggregateMinMax(t *testing.T) {
	f := buildLedger(
		map[string]any{"region": "east", "amount": 10.0},
		map[string]any{"region": "east", "amount": -5.0},
	)
	minAgg, err := dsl.ParseAggregateExpr("MIN_AGG(amount) AS lo")
	require.NoError(t, err)
	maxAgg, err := dsl.ParseAggregateExpr("MAX_AGG(amount) AS hi")
	require.NoError(t, err)

	out, err := ApplyAggregate(frame.FromFrame(f), []string{"region"}, []*dsl.AggregateExpr{minAgg, maxAgg})
	require.NoError(t, err)
	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -5.0, collected.Row(0)["lo"])
	assert.Equal(t, 10.0, collected.Row(0)["hi"])
}

func TestApplyAggregateRejectsEmptyAggregateList(t *testing.T) {
	f := buildLedger(map[string]any{"region": "east", "amount": 10.0})
	_, err := ApplyAggregate(frame.FromFrame(f), []string{"region"}, nil)
	require.Error(t, err)
	var invalid *InvalidAggregateSpec
	require.ErrorAs(t, err, &invalid)
}

func TestApplyUpdateSetsMatchingRowsAndReprojectsSchema(t *testing.T) {
	f := buildLedger(
		map[string]any{"region": "east", "amount": 10.0},
		map[string]any{"region": "west", "amount": 20.0},
	)
	where, err := compileExpr(t, `region = "east"`)
	require.NoError(t, err)
	setEval, err := compileExpr(t, "amount * 2")
	require.NoError(t, err)

	out, err := ApplyUpdate(frame.FromFrame(f), ledgerSchema(), where, map[string]dsl.Evaluator{"amount": setEval})
	require.NoError(t, err)
	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20.0, collected.Row(0)["amount"])
	assert.Equal(t, 20.0, collected.Row(1)["amount"])
	names := make([]string, len(collected.Schema))
	for i, c := range collected.Schema {
		names[i] = c.Name
	}
	assert.ElementsMatch(t, []string{"region", "amount"}, names)
}

func TestApplyUpdateRejectsEmptySet(t *testing.T) {
	f := buildLedger(map[string]any{"region": "east", "amount": 10.0})
	where, err := compileExpr(t, "TRUE")
	require.NoError(t, err)

	_, err = ApplyUpdate(frame.FromFrame(f), ledgerSchema(), where, map[string]dsl.Evaluator{})
	require.Error(t, err)
	var invalid *InvalidUpdateArguments
	require.ErrorAs(t, err, &invalid)
}

func TestApplyUpdateRejectsUnknownTargetColumn(t *testing.T) {
	f := buildLedger(map[string]any{"region": "east", "amount": 10.0})
	where, err := compileExpr(t, "TRUE")
	require.NoError(t, err)
	setEval, err := compileExpr(t, `"x"`)
	require.NoError(t, err)

	_, err = ApplyUpdate(frame.FromFrame(f), ledgerSchema(), where, map[string]dsl.Evaluator{"nonexistent": setEval})
	require.Error(t, err)
	var invalid *InvalidUpdateArguments
	require.ErrorAs(t, err, &invalid)
}

func compileExpr(t *testing.T, source string) (dsl.Evaluator, error) {
	t.Helper()
	ast, err := dsl.Parse(source)
	require.NoError(t, err)
	return dsl.Compile(ast, nil)
}
