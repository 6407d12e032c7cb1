package exec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
	"github.com/bocacorazon/dobonomodo-sub001/internal/frame"
	"github.com/bocacorazon/dobonomodo-sub001/internal/model"
)

func TestTemporalPredicateSnapshotPassesEverything(t *testing.T) {
	pred, err := TemporalPredicate(frame.Schema{}, model.TemporalSnapshot, "2026-01", "2026-01-15")
	require.NoError(t, err)
	ok, err := pred(nil)
	require.NoError(t, err)
	assert.Equal(t, true, ok)
}

func TestTemporalPredicatePeriodExactMatch(t *testing.T) {
	pred, err := TemporalPredicate(frame.Schema{{Name: "_period", Type: dsl.TypeString}}, model.TemporalPeriod, "2026-01", "")
	require.NoError(t, err)

	ok, err := pred(map[string]any{"_period": "2026-01"})
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	ok, err = pred(map[string]any{"_period": "2026-02"})
	require.NoError(t, err)
	assert.Equal(t, false, ok)

	ok, err = pred(map[string]any{"_period": nil})
	require.NoError(t, err)
	assert.Equal(t, false, ok)
}

func TestTemporalPredicateBitemporalPrefersCanonicalColumns(t *testing.T) {
	schema := frame.Schema{
		{Name: "_period_from", Type: dsl.TypeString},
		{Name: "_period_to", Type: dsl.TypeString},
		{Name: "valid_from", Type: dsl.TypeString},
		{Name: "valid_to", Type: dsl.TypeString},
	}
	pred, err := TemporalPredicate(schema, model.TemporalBitemporal, "", "2026-01-15")
	require.NoError(t, err)

	// Canonical columns say the row is valid; legacy columns (ignored) say
	// it is not — canonical must win.
	ok, err := pred(map[string]any{
		"_period_from": "2026-01-01", "_period_to": "2026-02-01",
		"valid_from": "2025-01-01", "valid_to": "2025-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, true, ok)
}

func TestTemporalPredicateBitemporalFallsBackToLegacyColumns(t *testing.T) {
	schema := frame.Schema{
		{Name: "valid_from", Type: dsl.TypeString},
		{Name: "valid_to", Type: dsl.TypeString},
	}
	pred, err := TemporalPredicate(schema, model.TemporalBitemporal, "", "2026-01-15")
	require.NoError(t, err)

	ok, err := pred(map[string]any{"valid_from": "2026-01-01", "valid_to": "2026-02-01"})
	require.NoError(t, err)
	assert.Equal(t, true, ok)

	ok, err = pred(map[string]any{"valid_from": "2026-02-01", "valid_to": "2026-03-01"})
	require.NoError(t, err)
	assert.Equal(t, false, ok)
}

func TestTemporalPredicateBitemporalEndExclusive(t *testing.T) {
	schema := frame.Schema{{Name: "_period_from", Type: dsl.TypeString}, {Name: "_period_to", Type: dsl.TypeString}}
	pred, err := TemporalPredicate(schema, model.TemporalBitemporal, "", "2026-02-01")
	require.NoError(t, err)

	ok, err := pred(map[string]any{"_period_from": "2026-01-01", "_period_to": "2026-02-01"})
	require.NoError(t, err)
	assert.Equal(t, false, ok, "the to-bound is exclusive")
}

func TestTemporalPredicateBitemporalMissingColumnsErrors(t *testing.T) {
	_, err := TemporalPredicate(frame.Schema{}, model.TemporalBitemporal, "", "2026-01-15")
	require.Error(t, err)
	var missing *MissingTemporalColumns
	require.ErrorAs(t, err, &missing)
}

func TestApplyTemporalFilterSnapshotIsPassthrough(t *testing.T) {
	schema := frame.Schema{{Name: "_period", Type: dsl.TypeString}}
	f := frame.NewFrame(schema, 0)
	f.AppendRow(map[string]any{"_period": "2026-01"})
	f.AppendRow(map[string]any{"_period": "2026-02"})

	out, err := ApplyTemporalFilter(frame.FromFrame(f), model.TemporalSnapshot, "2026-01", "")
	require.NoError(t, err)
	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, collected.NumRows())
}

func TestApplyTemporalFilterPeriodNarrows(t *testing.T) {
	schema := frame.Schema{{Name: "_period", Type: dsl.TypeString}}
	f := frame.NewFrame(schema, 0)
	f.AppendRow(map[string]any{"_period": "2026-01"})
	f.AppendRow(map[string]any{"_period": "2026-02"})

	out, err := ApplyTemporalFilter(frame.FromFrame(f), model.TemporalPeriod, "2026-01", "")
	require.NoError(t, err)
	collected, err := out.Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, collected.NumRows())
	assert.Equal(t, "2026-01", collected.Row(0)["_period"])
}
