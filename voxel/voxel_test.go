package voxel_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelmill/millcore/sdf"
	"github.com/voxelmill/millcore/tool"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/vec/v3i"
	"github.com/voxelmill/millcore/voxel"
)

func stockBox(size float64) sdf.Box3 {
	return sdf.Box3{Min: v3.Vec{}, Max: v3.Vec{X: size, Y: size, Z: size}}
}

func TestNewGridFullyMaterial(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), g.Layout().NumCells())
	require.Equal(t, uint64(1000), g.CountMaterial())

	var idx v3i.Vec
	for idx.Z = 0; idx.Z < 10; idx.Z++ {
		for idx.Y = 0; idx.Y < 10; idx.Y++ {
			for idx.X = 0; idx.X < 10; idx.X++ {
				require.True(t, g.At(idx))
			}
		}
	}
}

func TestNewWithCapRejectsOversizedGrid(t *testing.T) {
	// 1000 cells * 1 byte/cell = 1000 bytes, over a 100 byte cap.
	_, err := voxel.NewWithCap(stockBox(10), 1, 100)
	require.True(t, errors.Is(err, &sdf.Error{Kind: sdf.ResolutionTooFine}))

	// The same request succeeds unlimited, and under a sufficient cap.
	_, err = voxel.NewWithCap(stockBox(10), 1, 0)
	require.NoError(t, err)
	_, err = voxel.NewWithCap(stockBox(10), 1, 1000)
	require.NoError(t, err)
}

// RemoveSphere with radius 2 centered on the cell-center lattice point
// (5,5,5) removes exactly the 33 cells whose center indices (i,j,k)
// satisfy (i-5)^2+(j-5)^2+(k-5)^2 <= 4, leaving 967 cells.
func TestRemoveSphereCellCount(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)

	g.RemoveSphere(v3.Vec{X: 5.5, Y: 5.5, Z: 5.5}, 2)
	require.Equal(t, uint64(1000-33), g.CountMaterial())

	// The exact center cell must be gone.
	require.False(t, g.At(v3i.Vec{X: 5, Y: 5, Z: 5}))
	// A far corner cell must be untouched.
	require.True(t, g.At(v3i.Vec{X: 0, Y: 0, Z: 0}))
}

// RemoveCylinder along the Z axis from z=2.5 to z=7.5 (6 layers) with
// radius 1.2 removes 5 cells per layer (the cross pattern at r^2<2),
// 30 cells total.
func TestRemoveCylinderCellCount(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)

	a := v3.Vec{X: 5.5, Y: 5.5, Z: 2.5}
	b := v3.Vec{X: 5.5, Y: 5.5, Z: 7.5}
	g.RemoveCylinder(a, b, 1.2)
	require.Equal(t, uint64(1000-30), g.CountMaterial())

	require.False(t, g.At(v3i.Vec{X: 5, Y: 5, Z: 4}))
	require.True(t, g.At(v3i.Vec{X: 5, Y: 5, Z: 9}))  // above the cylinder's cap
	require.True(t, g.At(v3i.Vec{X: 5, Y: 5, Z: 1}))  // below the cylinder's cap
}

func TestRemoveCylinderFlatCaps(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)
	a := v3.Vec{X: 5.5, Y: 5.5, Z: 2.5}
	b := v3.Vec{X: 5.5, Y: 5.5, Z: 7.5}
	g.RemoveCylinder(a, b, 1.2)
	// on-axis, just past the cap at t>1 must remain material.
	require.True(t, g.At(v3i.Vec{X: 5, Y: 5, Z: 8}))
}

func TestRemoveToolPoseFlat(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)
	cutter, err := tool.New(tool.Flat, 2, 4)
	require.NoError(t, err)

	g.RemoveToolPose(cutter, v3.Vec{X: 5, Y: 5, Z: 3}, sdf.DefaultToolAxis)
	require.Less(t, g.CountMaterial(), uint64(1000))
	// just above the tip, inside the cutter body and radius, must be cleared.
	require.False(t, g.At(v3i.Vec{X: 5, Y: 5, Z: 4}))
	require.True(t, g.At(v3i.Vec{X: 0, Y: 0, Z: 0}))
}

// The broad-phase R-tree culling is an optimization only: results must be
// identical to an uncut region of the grid regardless of how many prior
// cuts have emptied neighboring blocks.
func TestBroadPhaseCullingPreservesCorrectness(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)

	// Empty one whole block, forcing it out of the R-tree index.
	g.RemoveSphere(v3.Vec{X: 1.5, Y: 1.5, Z: 1.5}, 5)
	// Then repeat the same cut with that block culled: material outside
	// the sphere must survive untouched.
	before := g.At(v3i.Vec{X: 3, Y: 8, Z: 8})
	require.True(t, before)
	g.RemoveSphere(v3.Vec{X: 1.5, Y: 1.5, Z: 1.5}, 5)
	require.True(t, g.At(v3i.Vec{X: 3, Y: 8, Z: 8}))
}

func TestRemoveSphereOutsideGridIsNoop(t *testing.T) {
	g, err := voxel.New(stockBox(10), 1)
	require.NoError(t, err)
	g.RemoveSphere(v3.Vec{X: 1000, Y: 1000, Z: 1000}, 2)
	require.Equal(t, uint64(1000), g.CountMaterial())
}
