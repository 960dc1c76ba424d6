//-----------------------------------------------------------------------------
/*

VoxelGrid (component B).

Dense boolean occupancy over nx*ny*nz cells, created full, mutated only by
the cutting kernels below. A coarse R-tree index of non-empty blocks gives
the per-cut inner loop a cheap broad-phase: once a block is proven fully
removed it is dropped from the tree, and later cuts skip re-scanning it
entirely. The tree only ever culls blocks already known empty, so it can
never hide material that is still present.

*/
//-----------------------------------------------------------------------------

package voxel

import (
	"github.com/dhconnelly/rtreego"

	"github.com/voxelmill/millcore/grid"
	"github.com/voxelmill/millcore/sdf"
	"github.com/voxelmill/millcore/sweep"
	"github.com/voxelmill/millcore/tool"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/vec/v3i"
)

//-----------------------------------------------------------------------------

// blockSize is the edge length, in cells, of one broad-phase culling block.
const blockSize = 4

// Grid is a dense boolean occupancy grid.
type Grid struct {
	layout grid.Layout
	occ    []bool // true = material present

	blocksDim v3i.Vec
	blockIdx  *rtreego.Rtree
	blockObj  map[v3i.Vec]*blockEntry
}

type blockEntry struct {
	idx  v3i.Vec
	rect rtreego.Rect
}

func (b *blockEntry) Bounds() rtreego.Rect { return b.rect }

// New allocates a full (all-material) voxel grid over bounds at resolution
// h, with no memory cap.
func New(bounds sdf.Box3, h float64) (*Grid, error) {
	return NewWithCap(bounds, h, 0)
}

// occCellBytes is the backing-slice cost of one occupancy cell: Go's bool
// occupies one byte.
const occCellBytes = 1

// NewWithCap is New with a caller-configurable memory cap in bytes for the
// occupancy array; maxBytes == 0 means unlimited. An oversized request
// returns *sdf.Error{Kind: sdf.ResolutionTooFine} before anything is
// allocated, so construction fails atomically.
func NewWithCap(bounds sdf.Box3, h float64, maxBytes uint64) (*Grid, error) {
	layout, err := grid.NewLayout(bounds, h)
	if err != nil {
		return nil, err
	}
	if err := grid.CheckCap(layout.N, occCellBytes, maxBytes); err != nil {
		return nil, err
	}
	n := layout.N

	g := &Grid{
		layout: layout,
		occ:    make([]bool, layout.NumCells()),
		blocksDim: v3i.Vec{
			X: ceilDiv(n.X, blockSize),
			Y: ceilDiv(n.Y, blockSize),
			Z: ceilDiv(n.Z, blockSize),
		},
	}
	for i := range g.occ {
		g.occ[i] = true
	}

	g.blockIdx = rtreego.NewTree(3, 4, 16)
	g.blockObj = make(map[v3i.Vec]*blockEntry, g.blocksDim.Volume())
	eff := layout.EffectiveBounds()
	var bi v3i.Vec
	for bi.Z = 0; bi.Z < g.blocksDim.Z; bi.Z++ {
		for bi.Y = 0; bi.Y < g.blocksDim.Y; bi.Y++ {
			for bi.X = 0; bi.X < g.blocksDim.X; bi.X++ {
				be := &blockEntry{idx: bi, rect: blockRect(bi, eff, h)}
				g.blockObj[bi] = be
				g.blockIdx.Insert(be)
			}
		}
	}
	return g, nil
}

// Layout exposes the grid's resolved dimensions.
func (g *Grid) Layout() grid.Layout { return g.layout }

// H returns the grid's isotropic voxel edge length, satisfying sweep.Surface.
func (g *Grid) H() float64 { return g.layout.H }

// CutLinear performs a 3-axis linear cut (external cutting API: grid.cutLinear).
func (g *Grid) CutLinear(t tool.Tool, a, b v3.Vec) error {
	return sweep.CutLinear(g, t, a, b)
}

// CutLinearWithOrientation performs a 5-axis linear cut (external cutting
// API: grid.cutLinearWithOrientation).
func (g *Grid) CutLinearWithOrientation(t tool.Tool, a, b, axisA, axisB v3.Vec, steps int) error {
	return sweep.CutLinearWithOrientation(g, t, a, b, axisA, axisB, steps)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func blockRect(bi v3i.Vec, eff sdf.Box3, h float64) rtreego.Rect {
	min := v3.Vec{
		X: eff.Min.X + float64(bi.X*blockSize)*h,
		Y: eff.Min.Y + float64(bi.Y*blockSize)*h,
		Z: eff.Min.Z + float64(bi.Z*blockSize)*h,
	}
	edge := float64(blockSize) * h
	r, err := rtreego.NewRect(rtreego.Point{min.X, min.Y, min.Z}, []float64{edge, edge, edge})
	if err != nil {
		// NewRect only fails for non-positive lengths; blockSize*h is always > 0.
		panic(err)
	}
	return r
}

func aabbRect(box sdf.Box3) rtreego.Rect {
	size := box.Size()
	lengths := []float64{
		maxf(size.X, 1e-9),
		maxf(size.Y, 1e-9),
		maxf(size.Z, 1e-9),
	}
	r, err := rtreego.NewRect(rtreego.Point{box.Min.X, box.Min.Y, box.Min.Z}, lengths)
	if err != nil {
		panic(err)
	}
	return r
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func cellBlock(idx v3i.Vec) v3i.Vec {
	return v3i.Vec{X: idx.X / blockSize, Y: idx.Y / blockSize, Z: idx.Z / blockSize}
}

//-----------------------------------------------------------------------------

// At reports whether material is present at cell (i,j,k).
func (g *Grid) At(idx v3i.Vec) bool {
	return g.occ[g.layout.Index(idx)]
}

// CountMaterial returns the number of cells still containing material.
func (g *Grid) CountMaterial() uint64 {
	var n uint64
	for _, present := range g.occ {
		if present {
			n++
		}
	}
	return n
}

//-----------------------------------------------------------------------------

// RemoveSphere clears every cell whose center lies within distance r of center.
func (g *Grid) RemoveSphere(center v3.Vec, r float64) {
	box := sdf.NewBox3(center, v3.Vec{X: 2 * r, Y: 2 * r, Z: 2 * r})
	r2 := r * r
	g.removeRegion(box, func(p v3.Vec) bool {
		return p.Sub(center).Length2() <= r2
	})
}

// RemoveCylinder clears every cell whose center's perpendicular distance to
// segment ab is <= r and whose projection parameter t lies in [0,1]. Caps
// are flat; compose with RemoveSphere at the endpoints for rounded caps.
func (g *Grid) RemoveCylinder(a, b v3.Vec, r float64) {
	axis := b.Sub(a)
	length2 := axis.Length2()
	box := sdf.Box3{Min: a.Min(b), Max: a.Max(b)}.ExpandedBy(r)
	g.removeRegion(box, func(p v3.Vec) bool {
		if length2 == 0 {
			return p.Sub(a).Length2() <= r*r
		}
		t := p.Sub(a).Dot(axis) / length2
		if t < 0 || t > 1 {
			return false
		}
		closest := a.Add(axis.MulScalar(t))
		return p.Sub(closest).Length2() <= r*r
	})
}

// RemoveToolPose clears every cell whose world position, transformed into
// the tool's local frame, satisfies signedDistance <= 0. This is a single
// static stamp; RemoveToolSwept and the sweep package build motion on top.
func (g *Grid) RemoveToolPose(t tool.Tool, tip, axis v3.Vec) {
	box := t.WorldAABB(tip, axis).ExpandedBy(g.layout.H)
	toLocal := tool.RotationToLocal(tip, axis)
	g.removeRegion(box, func(p v3.Vec) bool {
		return t.SignedDistance(toLocal(p)) <= 0
	})
}

// RemoveToolSwept discretizes segment a->b (with orientation interpolated
// from axisA to axisB) into steps sub-poses and stamps each one. steps
// defaults to ceil(|b-a| / (h*0.5)) when <= 0, guaranteeing sub-voxel
// motion — the same discretization sweep.CutLinearWithOrientation uses.
func (g *Grid) RemoveToolSwept(t tool.Tool, a, b, axisA, axisB v3.Vec, steps int) error {
	return sweep.CutLinearWithOrientation(g, t, a, b, axisA, axisB, steps)
}

//-----------------------------------------------------------------------------
// Broad-phase-culled region removal.
//-----------------------------------------------------------------------------

// removeRegion clears every cell within box whose center satisfies contains.
func (g *Grid) removeRegion(box sdf.Box3, contains func(p v3.Vec) bool) {
	lo, hi, ok := g.layout.IndexRange(box)
	if !ok {
		return
	}
	loB := cellBlock(lo)
	hiB := cellBlock(hi)

	active := make(map[v3i.Vec]bool)
	for _, s := range g.blockIdx.SearchIntersect(aabbRect(box)) {
		active[s.(*blockEntry).idx] = true
	}

	var bi v3i.Vec
	for bi.Z = loB.Z; bi.Z <= hiB.Z; bi.Z++ {
		for bi.Y = loB.Y; bi.Y <= hiB.Y; bi.Y++ {
			for bi.X = loB.X; bi.X <= hiB.X; bi.X++ {
				if !active[bi] {
					// Already proven fully empty by a previous cut.
					continue
				}
				g.removeInBlock(bi, lo, hi, contains)
			}
		}
	}
}

func (g *Grid) removeInBlock(bi, lo, hi v3i.Vec, contains func(p v3.Vec) bool) {
	cellLo := v3i.Vec{X: bi.X * blockSize, Y: bi.Y * blockSize, Z: bi.Z * blockSize}
	cellHi := v3i.Vec{X: minInt(cellLo.X+blockSize-1, g.layout.N.X-1),
		Y: minInt(cellLo.Y+blockSize-1, g.layout.N.Y-1),
		Z: minInt(cellLo.Z+blockSize-1, g.layout.N.Z-1)}

	// Restrict to the cells actually covered by the cut's index range.
	lo2 := v3i.Vec{X: maxInt(lo.X, cellLo.X), Y: maxInt(lo.Y, cellLo.Y), Z: maxInt(lo.Z, cellLo.Z)}
	hi2 := v3i.Vec{X: minInt(hi.X, cellHi.X), Y: minInt(hi.Y, cellHi.Y), Z: minInt(hi.Z, cellHi.Z)}

	var idx v3i.Vec
	for idx.Z = lo2.Z; idx.Z <= hi2.Z; idx.Z++ {
		for idx.Y = lo2.Y; idx.Y <= hi2.Y; idx.Y++ {
			for idx.X = lo2.X; idx.X <= hi2.X; idx.X++ {
				off := g.layout.Index(idx)
				if !g.occ[off] {
					continue
				}
				if contains(g.layout.Center(idx)) {
					g.occ[off] = false
				}
			}
		}
	}

	if g.blockEmpty(bi, cellLo, cellHi) {
		if be, ok := g.blockObj[bi]; ok {
			g.blockIdx.Delete(be)
			delete(g.blockObj, bi)
		}
	}
}

func (g *Grid) blockEmpty(bi, cellLo, cellHi v3i.Vec) bool {
	var idx v3i.Vec
	for idx.Z = cellLo.Z; idx.Z <= cellHi.Z; idx.Z++ {
		for idx.Y = cellLo.Y; idx.Y <= cellHi.Y; idx.Y++ {
			for idx.X = cellLo.X; idx.X <= cellHi.X; idx.X++ {
				if g.occ[g.layout.Index(idx)] {
					return false
				}
			}
		}
	}
	return true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
