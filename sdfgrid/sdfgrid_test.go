package sdfgrid_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelmill/millcore/sdf"
	"github.com/voxelmill/millcore/sdfgrid"
	"github.com/voxelmill/millcore/tool"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/vec/v3i"
)

func stockBox(size float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: size, Y: size, Z: size}}
}

func TestNewGridFullyMaterial(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), g.CountMaterial())

	// Every cell starts negative (inside), at least h/2 from the boundary.
	d := g.At(v3i.Vec{X: 0, Y: 0, Z: 0})
	require.Less(t, d, float32(0))
	require.InDelta(t, -0.5, float64(d), 1e-6)

	// Deep interior cell is further from the boundary.
	center := g.At(v3i.Vec{X: 5, Y: 5, Z: 5})
	require.Less(t, center, d)
}

func TestNewWithCapRejectsOversizedGrid(t *testing.T) {
	// 1000 cells * 4 bytes/cell = 4000 bytes, over a 100 byte cap.
	_, err := sdfgrid.NewWithCap(stockBox(10), 1, 100)
	require.True(t, errors.Is(err, &sdf.Error{Kind: sdf.ResolutionTooFine}))

	// The same request succeeds unlimited, and under a sufficient cap.
	_, err = sdfgrid.NewWithCap(stockBox(10), 1, 0)
	require.NoError(t, err)
	_, err = sdfgrid.NewWithCap(stockBox(10), 1, 4000)
	require.NoError(t, err)
}

// RemoveSphere via CSG max carves the same 33 cells a voxel grid would,
// since every point within the sphere has d_sphere <= 0 <= d_stock.
func TestRemoveSphereMatchesVoxelCount(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)

	g.RemoveSphere(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, 2)
	require.Equal(t, uint64(1000-33), g.CountMaterial())
	require.GreaterOrEqual(t, g.At(v3i.Vec{X: 5, Y: 5, Z: 5}), float32(0))
	require.Less(t, g.At(v3i.Vec{X: 0, Y: 0, Z: 0}), float32(0))
}

func TestRemoveCylinderMatchesVoxelCount(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)

	a := v3.Vec{X: 5.5, Y: 5.5, Z: 2.5}
	b := v3.Vec{X: 5.5, Y: 5.5, Z: 7.5}
	g.RemoveCylinder(a, b, 1.2)
	require.Equal(t, uint64(1000-30), g.CountMaterial())
}

func TestRemoveToolPoseCSGMax(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)
	cutter, err := tool.New(tool.Flat, 2, 4)
	require.NoError(t, err)

	before := g.At(v3i.Vec{X: 5, Y: 5, Z: 4})
	g.RemoveToolPose(cutter, v3.Vec{X: 5, Y: 5, Z: 3}, sdf.DefaultToolAxis)
	after := g.At(v3i.Vec{X: 5, Y: 5, Z: 4})
	// CSG max never lets material come back: the field only increases.
	require.GreaterOrEqual(t, after, before)
	require.GreaterOrEqual(t, after, float32(0))
}

func TestCombineRegionNeverRecarves(t *testing.T) {
	g, err := sdfgrid.New(stockBox(10), 1)
	require.NoError(t, err)
	g.RemoveSphere(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, 3)
	after1 := g.At(v3i.Vec{X: 5, Y: 5, Z: 5})

	// Subtracting a smaller sphere, wholly inside the first, must not
	// change a cell already carved to air (max is monotone non-decreasing).
	g.RemoveSphere(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, 1)
	after2 := g.At(v3i.Vec{X: 5, Y: 5, Z: 5})
	require.Equal(t, after1, after2)
}
