package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voxelmill/millcore/mesh"
	v3 "github.com/voxelmill/millcore/vec/v3"
)

func v(x, y, z float64) v3.Vec { return v3.Vec{X: x, Y: y, Z: z} }

func TestTriangleDegenerate(t *testing.T) {
	tri := mesh.Triangle3{V: [3]v3.Vec{v(0, 0, 0), v(1, 0, 0), v(2, 0, 0)}}
	require.True(t, tri.Degenerate(1e-9))

	tri2 := mesh.Triangle3{V: [3]v3.Vec{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)}}
	require.False(t, tri2.Degenerate(1e-9))
}

func TestTriangleNormal(t *testing.T) {
	tri := mesh.Triangle3{V: [3]v3.Vec{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0)}}
	n := tri.Normal()
	require.InDelta(t, 0.0, n.X, 1e-9)
	require.InDelta(t, 0.0, n.Y, 1e-9)
	require.InDelta(t, 1.0, n.Z, 1e-9)
}

// unitCube returns the 12-triangle closed surface of the unit cube
// [0,1]^3, wound so every triangle's normal points outward.
func unitCube() *mesh.Mesh {
	a := v(0, 0, 0)
	b := v(1, 0, 0)
	c := v(1, 1, 0)
	d := v(0, 1, 0)
	e := v(0, 0, 1)
	f := v(1, 0, 1)
	g := v(1, 1, 1)
	h := v(0, 1, 1)

	tris := []mesh.Triangle3{
		{V: [3]v3.Vec{a, d, c}}, {V: [3]v3.Vec{a, c, b}}, // z=0
		{V: [3]v3.Vec{e, f, g}}, {V: [3]v3.Vec{e, g, h}}, // z=1
		{V: [3]v3.Vec{a, b, f}}, {V: [3]v3.Vec{a, f, e}}, // y=0
		{V: [3]v3.Vec{d, h, g}}, {V: [3]v3.Vec{d, g, c}}, // y=1
		{V: [3]v3.Vec{a, e, h}}, {V: [3]v3.Vec{a, h, d}}, // x=0
		{V: [3]v3.Vec{b, c, g}}, {V: [3]v3.Vec{b, g, f}}, // x=1
	}
	return mesh.New(tris)
}

func TestUnitCubeWatertightAndArea(t *testing.T) {
	m := unitCube()
	require.Equal(t, 12, m.TriangleCount())
	require.True(t, m.Watertight())
	require.InDelta(t, 6.0, m.SurfaceArea(), 1e-9)

	box := m.Bounds()
	require.Equal(t, v(0, 0, 0), box.Min)
	require.Equal(t, v(1, 1, 1), box.Max)
}

func TestNonWatertightMeshDetected(t *testing.T) {
	m := unitCube()
	// drop one triangle: one edge now belongs to only one triangle.
	m.Triangles = m.Triangles[:len(m.Triangles)-1]
	require.False(t, m.Watertight())
}

func TestEmptyMesh(t *testing.T) {
	m := mesh.New(nil)
	require.Equal(t, 0, m.TriangleCount())
	require.Equal(t, 0.0, m.SurfaceArea())
	require.True(t, m.Watertight()) // no edges to fail the check: vacuously true
}
