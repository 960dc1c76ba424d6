package grid_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelmill/millcore/grid"
	"github.com/voxelmill/millcore/sdf"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/vec/v3i"
)

func stockBox(size float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: size, Y: size, Z: size}}
}

func TestNewLayoutValidation(t *testing.T) {
	_, err := grid.NewLayout(sdf.Box3{Min: v3.Vec{X: 1}, Max: v3.Vec{X: 0}}, 1)
	require.True(t, errors.Is(err, &sdf.Error{Kind: sdf.InvalidBounds}))

	_, err = grid.NewLayout(stockBox(10), 0)
	require.True(t, errors.Is(err, &sdf.Error{Kind: sdf.InvalidResolution}))

	l, err := grid.NewLayout(stockBox(10), 1)
	require.NoError(t, err)
	require.Equal(t, v3i.Vec{X: 10, Y: 10, Z: 10}, l.N)
}

func TestNewLayoutCeilsDimensions(t *testing.T) {
	// 10 / 3 = 3.33 -> ceil to 4 cells, effective bound stretches past 10.
	l, err := grid.NewLayout(stockBox(10), 3)
	require.NoError(t, err)
	require.Equal(t, v3i.Vec{X: 4, Y: 4, Z: 4}, l.N)
	eff := l.EffectiveBounds()
	require.InDelta(t, 12.0, eff.Max.X, 1e-9)
}

func TestCenter(t *testing.T) {
	l, err := grid.NewLayout(stockBox(10), 1)
	require.NoError(t, err)
	c := l.Center(v3i.Vec{X: 0, Y: 0, Z: 0})
	require.Equal(t, v3.Vec{X: 0.5, Y: 0.5, Z: 0.5}, c)

	c = l.Center(v3i.Vec{X: 9, Y: 9, Z: 9})
	require.Equal(t, v3.Vec{X: 9.5, Y: 9.5, Z: 9.5}, c)
}

func TestWorldToIndex(t *testing.T) {
	l, err := grid.NewLayout(stockBox(10), 1)
	require.NoError(t, err)
	require.Equal(t, v3i.Vec{X: 0, Y: 0, Z: 0}, l.WorldToIndex(v3.Vec{X: 0.1, Y: 0.1, Z: 0.1}))
	require.Equal(t, v3i.Vec{X: 5, Y: 5, Z: 5}, l.WorldToIndex(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}))

	// Out-of-range points clamp into the valid index range.
	require.Equal(t, v3i.Vec{X: 9, Y: 9, Z: 9}, l.WorldToIndex(v3.Vec{X: 100, Y: 100, Z: 100}))
	require.Equal(t, v3i.Vec{X: 0, Y: 0, Z: 0}, l.WorldToIndex(v3.Vec{X: -100, Y: -100, Z: -100}))
}

func TestIndexRangeHit(t *testing.T) {
	l, err := grid.NewLayout(stockBox(10), 1)
	require.NoError(t, err)
	box := sdf.Box3{Min: v3.Vec{X: 2, Y: 2, Z: 2}, Max: v3.Vec{X: 4, Y: 4, Z: 4}}
	lo, hi, ok := l.IndexRange(box)
	require.True(t, ok)
	require.Equal(t, v3i.Vec{X: 2, Y: 2, Z: 2}, lo)
	require.Equal(t, v3i.Vec{X: 4, Y: 4, Z: 4}, hi)
}

func TestIndexRangeMiss(t *testing.T) {
	l, err := grid.NewLayout(stockBox(10), 1)
	require.NoError(t, err)
	box := sdf.Box3{Min: v3.Vec{X: 100, Y: 100, Z: 100}, Max: v3.Vec{X: 200, Y: 200, Z: 200}}
	_, _, ok := l.IndexRange(box)
	require.False(t, ok)
}

func TestIndexDeterministicOrder(t *testing.T) {
	l, err := grid.NewLayout(stockBox(3), 1)
	require.NoError(t, err)
	// ascending (k, j, i): X is the fastest-varying component.
	require.Equal(t, 0, l.Index(v3i.Vec{X: 0, Y: 0, Z: 0}))
	require.Equal(t, 1, l.Index(v3i.Vec{X: 1, Y: 0, Z: 0}))
	require.Equal(t, 3, l.Index(v3i.Vec{X: 0, Y: 1, Z: 0}))
	require.Equal(t, 9, l.Index(v3i.Vec{X: 0, Y: 0, Z: 1}))
}

func TestNumCells(t *testing.T) {
	l, err := grid.NewLayout(stockBox(10), 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), l.NumCells())
}

func TestCheckCapUnlimitedWhenZero(t *testing.T) {
	err := grid.CheckCap(v3i.Vec{X: 1000, Y: 1000, Z: 1000}, 4, 0)
	require.NoError(t, err)
}

func TestCheckCapWithinBudget(t *testing.T) {
	// 10*10*10 cells * 4 bytes = 4000 bytes, under a 5000 byte cap.
	err := grid.CheckCap(v3i.Vec{X: 10, Y: 10, Z: 10}, 4, 5000)
	require.NoError(t, err)
}

func TestCheckCapRejectsOversizedAllocation(t *testing.T) {
	// 10*10*10 cells * 4 bytes = 4000 bytes, over a 1000 byte cap.
	err := grid.CheckCap(v3i.Vec{X: 10, Y: 10, Z: 10}, 4, 1000)
	require.True(t, errors.Is(err, &sdf.Error{Kind: sdf.ResolutionTooFine}))
}
