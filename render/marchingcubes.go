//-----------------------------------------------------------------------------
/*

Marching cubes (voxel and SDF paths).

Builds an 8-bit corner-sign index per cube of adjacent cell centers and
emits triangles from the 256-entry edge/triangle tables in mctables.go.
Voxel occupancy places edge vertices at the midpoint; SDF samples place
them at the linearly interpolated zero-crossing. The lattice is padded by
one synthetic "outside" layer at each face so a never-cut grid still
yields the closed outer-boundary surface rather than nothing (the
interior-only lattice of cell centers never changes sign on a pristine
grid). Work is partitioned by X-layer across a worker pool, mirroring the
teacher's evalRoutines/layerYZ pattern, with each worker's triangles
merged back in ascending X order so output stays deterministic.

*/
//-----------------------------------------------------------------------------

package render

import (
	"math"
	"runtime"
	"sync"

	"github.com/voxelmill/millcore/grid"
	"github.com/voxelmill/millcore/mesh"
	"github.com/voxelmill/millcore/sdfgrid"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/vec/v3i"
	"github.com/voxelmill/millcore/voxel"
)

//-----------------------------------------------------------------------------

// mcCornerOffset is the canonical Lorensen-Cline corner ordering: index i
// corresponds to mcPairTable/mcEdgeTable/mcTriangleTable entry i.
var mcCornerOffset = [8]v3i.Vec{
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: 1, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: 0, Z: 1},
	{X: 1, Y: 0, Z: 1},
	{X: 1, Y: 1, Z: 1},
	{X: 0, Y: 1, Z: 1},
}

const epsilon = 1e-9

// cellCornerFunc returns the scalar value (negative = inside material) at
// grid cell idx, which may lie one cell outside [0,N) on any axis.
type cellCornerFunc func(idx v3i.Vec) float64

// paddedCenter extrapolates a cell-center position one h further out for an
// index that lies just outside [0, N), so the outer layer of synthetic
// cubes below still places vertices at the true stock boundary rather than
// the last real cell's center.
func paddedCenter(l grid.Layout, idx v3i.Vec) v3.Vec {
	clamped := idx.Clamp(v3i.Vec{}, v3i.Vec{X: l.N.X - 1, Y: l.N.Y - 1, Z: l.N.Z - 1})
	p := l.Center(clamped)
	p.X += float64(idx.X-clamped.X) * l.H
	p.Y += float64(idx.Y-clamped.Y) * l.H
	p.Z += float64(idx.Z-clamped.Z) * l.H
	return p
}

// marchingCubesGeneric runs marching cubes over any source exposing a
// per-cell scalar value and the shared grid Layout both backends use.
// midpoint forces edge vertices to the 0.5 midpoint rather than the
// value-weighted zero-crossing, matching the spec's rule that pure
// occupancy data (no magnitude to interpolate) always uses midpoints.
//
// The lattice is padded by one synthetic layer of "outside" cubes on every
// face (index range [-1, N] rather than the [0, N-2] interior-only range),
// so a pristine, never-cut grid still produces the closed outer-boundary
// mesh the round-trip invariant requires instead of zero triangles.
func marchingCubesGeneric(l grid.Layout, value cellCornerFunc, midpoint bool) []mesh.Triangle3 {
	nx, ny, nz := l.N.X+1, l.N.Y+1, l.N.Z+1
	if l.N.X < 1 || l.N.Y < 1 || l.N.Z < 1 {
		return nil
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > nx {
		numWorkers = nx
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	layerResults := make([][]mesh.Triangle3, nx)
	var wg sync.WaitGroup
	layers := make(chan int)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := range layers {
				layerResults[x] = marchCubeLayer(l, value, midpoint, x-1, ny, nz)
			}
		}()
	}
	for x := 0; x < nx; x++ {
		layers <- x
	}
	close(layers)
	wg.Wait()

	var total int
	for _, r := range layerResults {
		total += len(r)
	}
	out := make([]mesh.Triangle3, 0, total)
	for x := 0; x < nx; x++ {
		out = append(out, layerResults[x]...)
	}
	return out
}

func marchCubeLayer(l grid.Layout, value cellCornerFunc, midpoint bool, x, ny, nz int) []mesh.Triangle3 {
	var triangles []mesh.Triangle3
	for y := -1; y < ny-1; y++ {
		for z := -1; z < nz-1; z++ {
			base := v3i.Vec{X: x, Y: y, Z: z}
			var corners [8]v3.Vec
			var values [8]float64
			for c, off := range mcCornerOffset {
				idx := v3i.Vec{X: base.X + off.X, Y: base.Y + off.Y, Z: base.Z + off.Z}
				corners[c] = paddedCenter(l, idx)
				values[c] = value(idx)
			}
			triangles = append(triangles, mcToTriangles(corners, values, midpoint)...)
		}
	}
	return triangles
}

//-----------------------------------------------------------------------------

func mcToTriangles(p [8]v3.Vec, v [8]float64, midpoint bool) []mesh.Triangle3 {
	index := 0
	for i := 0; i < 8; i++ {
		if v[i] < 0 {
			index |= 1 << uint(i)
		}
	}
	if mcEdgeTable[index] == 0 {
		return nil
	}

	var points [12]v3.Vec
	for i := 0; i < 12; i++ {
		bit := 1 << uint(i)
		if mcEdgeTable[index]&bit != 0 {
			a := mcPairTable[i][0]
			b := mcPairTable[i][1]
			if midpoint {
				points[i] = v3.Lerp(p[a], p[b], 0.5)
			} else {
				points[i] = mcInterpolate(p[a], p[b], v[a], v[b])
			}
		}
	}

	table := mcTriangleTable[index]
	count := len(table) / 3
	result := make([]mesh.Triangle3, 0, count)
	for i := 0; i < count; i++ {
		t := mesh.Triangle3{}
		// Negative-corner (material) to positive-corner (air) outward winding.
		t.V[2] = points[table[i*3+0]]
		t.V[1] = points[table[i*3+1]]
		t.V[0] = points[table[i*3+2]]
		if !t.Degenerate(0) {
			result = append(result, t)
		}
	}
	return result
}

func mcInterpolate(p1, p2 v3.Vec, v1, v2 float64) v3.Vec {
	closeToV1 := math.Abs(v1) < epsilon
	closeToV2 := math.Abs(v2) < epsilon
	if closeToV1 && !closeToV2 {
		return p1
	}
	if closeToV2 && !closeToV1 {
		return p2
	}
	t := 0.5
	if !closeToV1 || !closeToV2 {
		t = -v1 / (v2 - v1)
	}
	return v3.Lerp(p1, p2, t)
}

//-----------------------------------------------------------------------------

func inBounds(n v3i.Vec, idx v3i.Vec) bool {
	return idx.X >= 0 && idx.Y >= 0 && idx.Z >= 0 && idx.X < n.X && idx.Y < n.Y && idx.Z < n.Z
}

func marchingCubesVoxel(g *voxel.Grid) []mesh.Triangle3 {
	n := g.Layout().N
	value := func(idx v3i.Vec) float64 {
		if !inBounds(n, idx) {
			return 1 // outside the grid is always air
		}
		if g.At(idx) {
			return -1
		}
		return 1
	}
	return marchingCubesGeneric(g.Layout(), value, true)
}

func marchingCubesSDF(g *sdfgrid.Grid) []mesh.Triangle3 {
	n := g.Layout().N
	h := g.Layout().H
	value := func(idx v3i.Vec) float64 {
		if !inBounds(n, idx) {
			return h / 2 // outside the grid mirrors the boundary cell's offset
		}
		return float64(g.At(idx))
	}
	return marchingCubesGeneric(g.Layout(), value, false)
}
