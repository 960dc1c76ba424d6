//-----------------------------------------------------------------------------
/*

Mesh (component G).

A triangle soup: the common output format for both the marching cubes and
dual contouring extractors in the render package. Deliberately minimal —
no shared-vertex indexing, no normals cache — since the extractors already
know the per-triangle geometry and nothing downstream needs more than
that.

*/
//-----------------------------------------------------------------------------

package mesh

import (
	"math"

	"github.com/voxelmill/millcore/sdf"
	v3 "github.com/voxelmill/millcore/vec/v3"
)

//-----------------------------------------------------------------------------

// Triangle3 is a triangle in 3D space, vertices wound so that the normal
// (computed via RHR from V[0]->V[1]->V[2]) points outward from the solid.
type Triangle3 struct {
	V [3]v3.Vec
}

// Degenerate reports whether the triangle's vertices are collinear or
// coincident to within eps, i.e. it has (near) zero area.
func (t Triangle3) Degenerate(eps float64) bool {
	e1 := t.V[1].Sub(t.V[0])
	e2 := t.V[2].Sub(t.V[0])
	return e1.Cross(e2).Length() <= eps
}

// Normal returns the triangle's unit outward normal. Undefined (zero
// vector) for a degenerate triangle.
func (t Triangle3) Normal() v3.Vec {
	e1 := t.V[1].Sub(t.V[0])
	e2 := t.V[2].Sub(t.V[0])
	return e1.Cross(e2).Normalize()
}

// edgeKey identifies an undirected edge between two vertices, quantized so
// that coincident-to-float-error vertices produced independently by two
// adjacent cells still hash to the same key.
type edgeKey struct {
	a, b [3]int64
}

const weldScale = 1e6

func quantize(p v3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Round(p.X * weldScale)),
		int64(math.Round(p.Y * weldScale)),
		int64(math.Round(p.Z * weldScale)),
	}
}

func makeEdgeKey(a, b v3.Vec) edgeKey {
	qa, qb := quantize(a), quantize(b)
	if less3(qb, qa) {
		qa, qb = qb, qa
	}
	return edgeKey{qa, qb}
}

func less3(a, b [3]int64) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	if a[1] != b[1] {
		return a[1] < b[1]
	}
	return a[2] < b[2]
}

//-----------------------------------------------------------------------------

// Mesh is a triangle soup produced by a surface extractor.
type Mesh struct {
	Triangles []Triangle3
}

// New wraps a slice of triangles as a Mesh.
func New(triangles []Triangle3) *Mesh {
	return &Mesh{Triangles: triangles}
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Bounds returns the axis-aligned bounding box of every vertex in the mesh.
// Returns a zero Box3 for an empty mesh.
func (m *Mesh) Bounds() sdf.Box3 {
	if len(m.Triangles) == 0 {
		return sdf.Box3{}
	}
	first := m.Triangles[0].V[0]
	box := sdf.Box3{Min: first, Max: first}
	for _, t := range m.Triangles {
		for _, v := range t.V {
			box.Min = box.Min.Min(v)
			box.Max = box.Max.Max(v)
		}
	}
	return box
}

// SurfaceArea returns the sum of triangle areas.
func (m *Mesh) SurfaceArea() float64 {
	var total float64
	for _, t := range m.Triangles {
		e1 := t.V[1].Sub(t.V[0])
		e2 := t.V[2].Sub(t.V[0])
		total += 0.5 * e1.Cross(e2).Length()
	}
	return total
}

// Watertight reports whether every edge in the mesh is shared by exactly
// two triangles, the closure property a correctly extracted surface of a
// closed solid must have. Boundary or non-manifold edges make it false.
func (m *Mesh) Watertight() bool {
	counts := make(map[edgeKey]int, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		counts[makeEdgeKey(t.V[0], t.V[1])]++
		counts[makeEdgeKey(t.V[1], t.V[2])]++
		counts[makeEdgeKey(t.V[2], t.V[0])]++
	}
	for _, c := range counts {
		if c != 2 {
			return false
		}
	}
	return true
}
