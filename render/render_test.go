package render_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelmill/millcore/render"
	"github.com/voxelmill/millcore/sdf"
	"github.com/voxelmill/millcore/sdfgrid"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/voxel"
)

func unitBox() sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: 1, Y: 1, Z: 1}}
}

func stockBox(size float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: size, Y: size, Z: size}}
}

// A single-cell voxel grid (1mm stock, 1mm voxel) marches to the 12-triangle
// closed surface of that one cell, the degenerate case of the round-trip
// invariant: a grid never cut yields a closed mesh on the stock boundary.
func TestMarchingCubesSingleCellCube(t *testing.T) {
	g, err := voxel.New(unitBox(), 1)
	require.NoError(t, err)

	m, err := render.Extract(g, render.MarchingCubes, render.ExtractOptions{})
	require.NoError(t, err)
	require.Equal(t, 12, m.TriangleCount())
	require.True(t, m.Watertight())
	require.InDelta(t, 6.0, m.SurfaceArea(), 1e-9)
}

// A never-cut grid at any resolution still yields a closed mesh whose
// vertices lie on the stock's outer boundary within h/2, and whose total
// surface area matches the stock's true surface area (since every
// boundary-layer sub-quad is coplanar with the stock face it covers).
func TestMarchingCubesFullStockRoundTrip(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)

	m, err := render.Extract(g, render.MarchingCubes, render.ExtractOptions{})
	require.NoError(t, err)
	require.True(t, m.Watertight())
	require.InDelta(t, 600.0, m.SurfaceArea(), 1e-6)

	box := m.Bounds()
	stock := stockBox(10)
	const halfH = 0.5
	require.InDelta(t, stock.Min.X, box.Min.X, halfH)
	require.InDelta(t, stock.Min.Y, box.Min.Y, halfH)
	require.InDelta(t, stock.Min.Z, box.Min.Z, halfH)
	require.InDelta(t, stock.Max.X, box.Max.X, halfH)
	require.InDelta(t, stock.Max.Y, box.Max.Y, halfH)
	require.InDelta(t, stock.Max.Z, box.Max.Z, halfH)
}

func TestMarchingCubesSDFFullStockRoundTrip(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)

	m, err := render.Extract(g, render.MarchingCubes, render.ExtractOptions{})
	require.NoError(t, err)
	require.True(t, m.Watertight())
	require.InDelta(t, 600.0, m.SurfaceArea(), 1.0)
}

// A sphere cut leaves the overall mesh watertight: the marching-cubes
// kernel seals both the stock's outer boundary and the pocket carved
// into it.
func TestMarchingCubesAfterCutStaysWatertight(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)
	g.RemoveSphere(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, 2)

	m, err := render.Extract(g, render.MarchingCubes, render.ExtractOptions{})
	require.NoError(t, err)
	require.True(t, m.Watertight())
	require.Greater(t, m.TriangleCount(), 0)
}

// Requesting DualContouring over a VoxelGrid silently runs MarchingCubes
// instead of failing (occupancy data carries no gradient to drive a QEF).
func TestExtractDualContouringOnVoxelFallsBackToMarchingCubes(t *testing.T) {
	g, err := voxel.New(unitBox(), 1)
	require.NoError(t, err)

	mMC, err := render.Extract(g, render.MarchingCubes, render.ExtractOptions{})
	require.NoError(t, err)
	mDC, err := render.Extract(g, render.DualContouring, render.ExtractOptions{})
	require.NoError(t, err)
	require.Equal(t, mMC.TriangleCount(), mDC.TriangleCount())
}

// Dual contouring only visits the strict interior lattice with no padding,
// so a never-cut SDF grid (every sample negative) has no sign-changing
// cube anywhere and yields an empty mesh.
func TestDualContouringFullStockIsEmpty(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)

	m, err := render.Extract(g, render.DualContouring, render.ExtractOptions{})
	require.NoError(t, err)
	require.Equal(t, 0, m.TriangleCount())
}

func TestExtractFailOnEmpty(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)

	_, err = render.Extract(g, render.DualContouring, render.ExtractOptions{FailOnEmpty: true})
	require.True(t, errors.Is(err, &sdf.Error{Kind: sdf.EmptyGrid}))
}

// After carving a pocket, dual contouring produces a non-empty surface
// whose vertices stay close to the carved region.
func TestDualContouringAfterCutProducesSurface(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)
	g.RemoveSphere(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, 3)

	m, err := render.Extract(g, render.DualContouring, render.ExtractOptions{})
	require.NoError(t, err)
	require.Greater(t, m.TriangleCount(), 0)

	box := m.Bounds()
	require.GreaterOrEqual(t, box.Min.X, 5.5-3-1)
	require.LessOrEqual(t, box.Max.X, 5.5+3+1)
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := render.Extract(42, render.MarchingCubes, render.ExtractOptions{})
	require.True(t, errors.Is(err, &sdf.Error{Kind: sdf.InvalidBounds}))
}
