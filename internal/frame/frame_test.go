package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocacorazon/dobonomodo-sub001/internal/dsl"
)

func testSchema() Schema {
	return Schema{
		{Name: "region", Type: dsl.TypeString},
		{Name: "amount", Type: dsl.TypeNumber},
	}
}

func buildFrame(rows ...map[string]any) *Frame {
	f := NewFrame(testSchema(), 0)
	for _, r := range rows {
		f.AppendRow(r)
	}
	return f
}

func TestFrameRowAndRowID(t *testing.T) {
	f := buildFrame(map[string]any{"region": "east", "amount": 10.0})
	row := f.Row(0)
	assert.Equal(t, "east", row["region"])
	assert.Equal(t, "#0", f.RowID(0))
}

func TestLazyFilter(t *testing.T) {
	f := buildFrame(
		map[string]any{"region": "east", "amount": 10.0},
		map[string]any{"region": "west", "amount": -5.0},
	)

	expr, err := dsl.Parse("amount > 0")
	require.NoError(t, err)
	eval, err := dsl.Compile(expr, nil)
	require.NoError(t, err)

	out, err := FromFrame(f).Filter(eval).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, out.NumRows())
	assert.Equal(t, "east", out.Row(0)["region"])
}

func TestLazyWithColumn(t *testing.T) {
	f := buildFrame(map[string]any{"region": "east", "amount": 10.0})

	expr, err := dsl.Parse("amount * 2")
	require.NoError(t, err)
	eval, err := dsl.Compile(expr, nil)
	require.NoError(t, err)

	out, err := FromFrame(f).WithColumn("doubled", dsl.TypeNumber, eval).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20.0, out.Row(0)["doubled"])
	assert.True(t, out.Schema.Has("doubled"))
}

func TestLazySelectMissingColumnErrors(t *testing.T) {
	f := buildFrame(map[string]any{"region": "east", "amount": 10.0})
	_, err := FromFrame(f).Select("nonexistent").Collect(context.Background())
	require.Error(t, err)
}

func TestLazySortByNilsLast(t *testing.T) {
	f := buildFrame(
		map[string]any{"region": "b", "amount": 2.0},
		map[string]any{"region": nil, "amount": 1.0},
		map[string]any{"region": "a", "amount": 3.0},
	)

	out, err := FromFrame(f).SortBy("region").Collect(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, out.NumRows())
	assert.Equal(t, "a", out.Row(0)["region"])
	assert.Equal(t, "b", out.Row(1)["region"])
	assert.Nil(t, out.Row(2)["region"])
}

func TestLazyConcatRequiresCollectOnBothSides(t *testing.T) {
	left := buildFrame(map[string]any{"region": "east", "amount": 10.0})
	right := buildFrame(map[string]any{"region": "west", "amount": 20.0})

	out, err := FromFrame(left).Concat(FromFrame(right)).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
}

func TestJoinLeftUnmatchedRowsKeepNullRightColumns(t *testing.T) {
	left := buildFrame(
		map[string]any{"region": "east", "amount": 10.0},
		map[string]any{"region": "west", "amount": 20.0},
	)
	rightSchema := Schema{{Name: "region", Type: dsl.TypeString}, {Name: "rate", Type: dsl.TypeNumber}}
	right := NewFrame(rightSchema, 0)
	right.AppendRow(map[string]any{"region": "east", "rate": 1.5})

	cond := func(row dsl.Row) (any, error) {
		return row["region"] == row["r.region"], nil
	}

	out, err := FromFrame(left).Join(FromFrame(right), "r", cond).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())

	rows := []map[string]any{out.Row(0), out.Row(1)}
	var eastRow, westRow map[string]any
	for _, r := range rows {
		if r["region"] == "east" {
			eastRow = r
		}
		if r["region"] == "west" {
			westRow = r
		}
	}
	require.NotNil(t, eastRow)
	require.NotNil(t, westRow)
	assert.Equal(t, 1.5, eastRow["r.rate"])
	assert.Nil(t, westRow["r.rate"])
}
