//-----------------------------------------------------------------------------
/*

Dual contouring (SDF path).

One vertex per sign-changing cube, placed at the QEF minimizer of Hermite
edge data (surface position + SDF gradient) collected from every edge of
the cube that crosses the zero level set, solved by least squares via
gonum/mat. Quads are built per cube from its three "far" edges, connecting
to the neighboring cubes that share them, and split into two triangles
along the shorter diagonal. Adapted from the teacher pack's commented-out
gonum branch (github.com/deadsy/sdfx-style dc3v2.go): that version
raycasts a continuous SDF3 for edge crossings and calls a skipped gonum
solve; here the grid already holds point samples, so edge crossings come
from linear interpolation between neighboring SDF samples (the same
zero-crossing math marching cubes uses) and the commented-out gonum.Solve
path is the one actually taken.

*/
//-----------------------------------------------------------------------------

package render

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/voxelmill/millcore/grid"
	"github.com/voxelmill/millcore/mesh"
	"github.com/voxelmill/millcore/sdfgrid"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/vec/v3i"
)

//-----------------------------------------------------------------------------

// DualContouringOptions tunes vertex placement, mirroring the teacher's
// NewDualContouringV2 constructor options minus the raycast parameters
// (there is no continuous SDF to raycast against here).
type DualContouringOptions struct {
	// FarAway bounds how far the QEF solution may stray from the cube
	// center (Chebyshev distance, as a fraction of cube size) before it is
	// clamped back into the cube.
	FarAway float64
	// CenterPush is a weak bias plane toward the cube center added to every
	// QEF solve, improving conditioning for surfaces flat along an axis.
	CenterPush float64
}

// DefaultDualContouringOptions mirrors NewDualContouringDefault's constants.
func DefaultDualContouringOptions() DualContouringOptions {
	return DualContouringOptions{FarAway: 1, CenterPush: 1e-4}
}

//-----------------------------------------------------------------------------

// dcCornerOffset uses its own corner order (distinct from marching cubes'),
// grounded directly on the teacher's dcCorners table.
var dcCornerOffset = [8]v3i.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 1},
	{X: 1, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 1},
	{X: 1, Y: 1, Z: 0},
	{X: 1, Y: 1, Z: 1},
}

// dcEdges are the 12 cube edges as corner-index pairs in dcCornerOffset order.
var dcEdges = [12][2]int{
	{0, 1}, {0, 2}, {0, 4},
	{1, 3}, {1, 5},
	{2, 3}, {2, 6},
	{3, 7},
	{4, 5}, {4, 6},
	{5, 7},
	{6, 7},
}

// dcFarEdges are the three edges incident to corner 7 (the cube's "far"
// corner), one per axis; the cube sharing each with this one lies in the
// direction from the far edge's other endpoint back toward the cube origin.
var dcFarEdges = [3][2]int{
	{3, 7}, // x axis
	{5, 7}, // y axis
	{6, 7}, // z axis
}

// dcNeighborOffsets[axis] gives the three cubes (besides the home cube)
// that share the far edge along axis, as index deltas from the home cube.
var dcNeighborOffsets = [3][3]v3i.Vec{
	{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 1}}, // x axis
	{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}}, // y axis
	{{X: 0, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}}, // z axis
}

type dcCubeInfo struct {
	idx    v3i.Vec
	vertex v3.Vec
	inside uint8
}

//-----------------------------------------------------------------------------

func dualContouringSDF(g *sdfgrid.Grid, opts DualContouringOptions) []mesh.Triangle3 {
	l := g.Layout()
	n := l.N
	nx, ny, nz := n.X-1, n.Y-1, n.Z-1
	if nx < 1 || ny < 1 || nz < 1 {
		return nil
	}

	sample := func(idx v3i.Vec) float64 { return float64(g.At(idx)) }
	gradient := func(idx v3i.Vec) v3.Vec { return centralGradient(l, sample, idx) }

	cubes := make(map[v3i.Vec]*dcCubeInfo)
	var order []v3i.Vec
	var idx v3i.Vec
	for idx.X = 0; idx.X < nx; idx.X++ {
		for idx.Y = 0; idx.Y < ny; idx.Y++ {
			for idx.Z = 0; idx.Z < nz; idx.Z++ {
				inside := dcCornersInside(sample, idx)
				if inside == 0 || inside == 0xff {
					continue
				}
				v := dcPlaceVertex(l, sample, gradient, idx, inside, opts)
				key := idx
				cubes[key] = &dcCubeInfo{idx: idx, vertex: v, inside: inside}
				order = append(order, key)
			}
		}
	}

	var triangles []mesh.Triangle3
	for _, key := range order {
		home := cubes[key]
		for axis := 0; axis < 3; axis++ {
			edge := dcFarEdges[axis]
			if ((home.inside >> uint(edge[0])) & 1) == ((home.inside >> uint(edge[1])) & 1) {
				continue // no sign change on this far edge
			}
			offs := dcNeighborOffsets[axis]
			n1 := cubes[addIdx(home.idx, offs[0])]
			n2 := cubes[addIdx(home.idx, offs[1])]
			n3 := cubes[addIdx(home.idx, offs[2])]
			if n1 == nil || n2 == nil || n3 == nil {
				// A bounding cube had no sign change (or is off-grid): no
				// quad to emit here, leaving an open edge at the grid wall.
				continue
			}
			flip := ((home.inside >> uint(edge[0])) & 1) != uint8(axis&1)
			triangles = append(triangles, dcQuadToTriangles(home.vertex, n1.vertex, n3.vertex, n2.vertex, flip)...)
		}
	}
	return triangles
}

func addIdx(a, b v3i.Vec) v3i.Vec {
	return v3i.Vec{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func dcCornersInside(sample func(v3i.Vec) float64, base v3i.Vec) uint8 {
	var inside uint8
	for i, off := range dcCornerOffset {
		idx := addIdx(base, off)
		if sample(idx) < 0 {
			inside |= 1 << uint(i)
		}
	}
	return inside
}

// dcQuadToTriangles splits quad (a,b,c,d), wound in order, along its
// shorter diagonal, per the spec's quad-splitting rule.
func dcQuadToTriangles(a, b, c, d v3.Vec, flip bool) []mesh.Triangle3 {
	var t0, t1 mesh.Triangle3
	if v3.Distance(a, c) <= v3.Distance(b, d) {
		t0 = mesh.Triangle3{V: [3]v3.Vec{a, b, c}}
		t1 = mesh.Triangle3{V: [3]v3.Vec{a, c, d}}
	} else {
		t0 = mesh.Triangle3{V: [3]v3.Vec{a, b, d}}
		t1 = mesh.Triangle3{V: [3]v3.Vec{b, c, d}}
	}
	if flip {
		t0.V[0], t0.V[2] = t0.V[2], t0.V[0]
		t1.V[0], t1.V[2] = t1.V[2], t1.V[0]
	}
	var out []mesh.Triangle3
	if !t0.Degenerate(0) {
		out = append(out, t0)
	}
	if !t1.Degenerate(0) {
		out = append(out, t1)
	}
	return out
}

//-----------------------------------------------------------------------------

func centralGradient(l grid.Layout, sample func(v3i.Vec) float64, idx v3i.Vec) v3.Vec {
	n := l.N
	dx := centralDiff(sample, idx, v3i.Vec{X: 1}, n.X, idx.X)
	dy := centralDiff(sample, idx, v3i.Vec{Y: 1}, n.Y, idx.Y)
	dz := centralDiff(sample, idx, v3i.Vec{Z: 1}, n.Z, idx.Z)
	g := v3.Vec{X: dx, Y: dy, Z: dz}
	if g.Length2() == 0 {
		return v3.Vec{X: 0, Y: 0, Z: 1}
	}
	return g.Normalize()
}

func centralDiff(sample func(v3i.Vec) float64, idx, step v3i.Vec, axisN, axisIdx int) float64 {
	lo, hi := idx, idx
	denom := 2.0
	if axisIdx > 0 {
		lo = v3i.Vec{X: idx.X - step.X, Y: idx.Y - step.Y, Z: idx.Z - step.Z}
	} else {
		denom = 1
	}
	if axisIdx < axisN-1 {
		hi = v3i.Vec{X: idx.X + step.X, Y: idx.Y + step.Y, Z: idx.Z + step.Z}
	} else {
		denom = 1
	}
	return (sample(hi) - sample(lo)) / denom
}

//-----------------------------------------------------------------------------

func dcPlaceVertex(l grid.Layout, sample func(v3i.Vec) float64, gradient func(v3i.Vec) v3.Vec, base v3i.Vec, inside uint8, opts DualContouringOptions) v3.Vec {
	cellSize := l.H
	cellStart := l.Center(base)
	cellCenter := l.Center(base).Add(v3.Vec{X: cellSize / 2, Y: cellSize / 2, Z: cellSize / 2})

	var normals []v3.Vec
	var planeDs []float64
	for _, edge := range dcEdges {
		idxA := addIdx(base, dcCornerOffset[edge[0]])
		idxB := addIdx(base, dcCornerOffset[edge[1]])
		va, vb := sample(idxA), sample(idxB)
		if (va < 0) == (vb < 0) {
			continue
		}
		pa, pb := l.Center(idxA), l.Center(idxB)
		t := va / (va - vb)
		surfPos := v3.Lerp(pa, pb, t)
		var normal v3.Vec
		if va-vb != 0 {
			normal = gradient(idxA).MulScalar(1 - t).Add(gradient(idxB).MulScalar(t)).Normalize()
		} else {
			normal = gradient(idxA)
		}
		normals = append(normals, normal)
		planeDs = append(planeDs, normal.Dot(surfPos))
	}

	for _, axis := range [3]v3.Vec{{X: 1}, {Y: 1}, {Z: 1}} {
		normal := axis.MulScalar(opts.CenterPush)
		normals = append(normals, normal)
		planeDs = append(planeDs, normal.Dot(cellCenter))
	}

	vertexPos, ok := solveQEF(normals, planeDs)
	if !ok {
		// Ill-conditioned QEF: fall back to the edge-midpoint centroid.
		vertexPos = edgeMidpointCentroid(l, sample, base)
	}

	far := opts.FarAway * cellSize
	if math.Abs(vertexPos.X-cellCenter.X) > far || math.Abs(vertexPos.Y-cellCenter.Y) > far || math.Abs(vertexPos.Z-cellCenter.Z) > far {
		vertexPos = vertexPos.Clamp(cellStart, cellStart.Add(v3.Vec{X: cellSize, Y: cellSize, Z: cellSize}))
	}
	return vertexPos
}

func solveQEF(normals []v3.Vec, planeDs []float64) (v3.Vec, bool) {
	rows := len(normals)
	a := mat.NewDense(rows, 3, nil)
	b := mat.NewVecDense(rows, nil)
	for i, normal := range normals {
		a.Set(i, 0, normal.X)
		a.Set(i, 1, normal.Y)
		a.Set(i, 2, normal.Z)
		b.SetVec(i, planeDs[i])
	}
	var x mat.Dense
	if err := x.Solve(a, b); err != nil {
		return v3.Vec{}, false
	}
	return v3.Vec{X: x.At(0, 0), Y: x.At(1, 0), Z: x.At(2, 0)}, true
}

// edgeMidpointCentroid averages the zero-crossing points of every
// sign-changing edge of the cube, the fallback vertex when the QEF solve
// is ill-conditioned.
func edgeMidpointCentroid(l grid.Layout, sample func(v3i.Vec) float64, base v3i.Vec) v3.Vec {
	var sum v3.Vec
	var count float64
	for _, edge := range dcEdges {
		idxA := addIdx(base, dcCornerOffset[edge[0]])
		idxB := addIdx(base, dcCornerOffset[edge[1]])
		va, vb := sample(idxA), sample(idxB)
		if (va < 0) == (vb < 0) {
			continue
		}
		pa, pb := l.Center(idxA), l.Center(idxB)
		t := va / (va - vb)
		sum = sum.Add(v3.Lerp(pa, pb, t))
		count++
	}
	if count == 0 {
		return l.Center(base)
	}
	return sum.DivScalar(count)
}
