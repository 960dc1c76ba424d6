//-----------------------------------------------------------------------------
/*

SDFGrid (component C).

Dense scalar distance field sampled at cell centers. Sign convention:
negative inside material, positive outside. Updates combine via CSG
subtraction: d' = max(d, -d_tool(p)). The tight AABB is the tool's local
AABB transformed to world and expanded by one voxel so the narrow band
around the cut is always refreshed; outside it the field is left alone —
this "local CSG max" is sufficient because only the zero-crossing
neighborhood matters to the extractor.

Shares the same R-tree broad-phase block culling as voxel.Grid, applied
here to blocks that have been fully carved to d >= 0 (air).

*/
//-----------------------------------------------------------------------------

package sdfgrid

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

const blockSize = 4

// Grid is a dense f32 signed-distance field.
type Grid struct {
	layout grid.Layout
	d      []float32

	blocksDim v3i.Vec
	blockIdx  *rtreego.Rtree
	blockObj  map[v3i.Vec]*blockEntry
}

type blockEntry struct {
	idx  v3i.Vec
	rect rtreego.Rect
}

func (b *blockEntry) Bounds() rtreego.Rect { return b.rect }

// New allocates an SDF grid over bounds at resolution h, initialized so
// that d[i,j,k] = distance to the stock boundary (negative inside), which
// makes the pristine zero level set coincide with the stock walls — the
// resolution adopted for the SDF-initialization open question.
func New(bounds sdf.Box3, h float64) (*Grid, error) {
	return NewWithCap(bounds, h, 0)
}

// sdfCellBytes is the backing-slice cost of one distance sample (float32).
const sdfCellBytes = 4

// NewWithCap is New with a caller-configurable memory cap in bytes for the
// distance array; maxBytes == 0 means unlimited. An oversized request
// returns *sdf.Error{Kind: sdf.ResolutionTooFine} before anything is
// allocated, so construction fails atomically.
func NewWithCap(bounds sdf.Box3, h float64, maxBytes uint64) (*Grid, error) {
	layout, err := grid.NewLayout(bounds, h)
	if err != nil {
		return nil, err
	}
	if err := grid.CheckCap(layout.N, sdfCellBytes, maxBytes); err != nil {
		return nil, err
	}
	n := layout.N
	eff := layout.EffectiveBounds()

	g := &Grid{
		layout: layout,
		d:      make([]float32, layout.NumCells()),
		blocksDim: v3i.Vec{
			X: ceilDiv(n.X, blockSize),
			Y: ceilDiv(n.Y, blockSize),
			Z: ceilDiv(n.Z, blockSize),
		},
	}

	var idx v3i.Vec
	for idx.Z = 0; idx.Z < n.Z; idx.Z++ {
		for idx.Y = 0; idx.Y < n.Y; idx.Y++ {
			for idx.X = 0; idx.X < n.X; idx.X++ {
				p := layout.Center(idx)
				g.d[layout.Index(idx)] = float32(-distanceToStockBoundary(p, eff))
			}
		}
	}

	g.blockIdx = rtreego.NewTree(3, 4, 16)
	g.blockObj = make(map[v3i.Vec]*blockEntry, g.blocksDim.Volume())
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

// distanceToStockBoundary returns the distance from p to the nearest face
// of eff (always >= 0 for p inside eff, as required by all call sites here).
func distanceToStockBoundary(p v3.Vec, eff sdf.Box3) float64 {
	dx := minf(p.X-eff.Min.X, eff.Max.X-p.X)
	dy := minf(p.Y-eff.Min.Y, eff.Max.Y-p.Y)
	dz := minf(p.Z-eff.Min.Z, eff.Max.Z-p.Z)
	return minf(dx, minf(dy, dz))
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
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

// At returns the signed distance value at cell (i,j,k).
func (g *Grid) At(idx v3i.Vec) float32 {
	return g.d[g.layout.Index(idx)]
}

// CountMaterial returns the number of cells with d < 0 (still material),
// mirroring VoxelGrid.CountMaterial for cross-backend test parity.
func (g *Grid) CountMaterial() uint64 {
	var n uint64
	for _, v := range g.d {
		if v < 0 {
			n++
		}
	}
	return n
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
		panic(err)
	}
	return r
}

func aabbRect(box sdf.Box3) rtreego.Rect {
	size := box.Size()
	lengths := []float64{maxf(size.X, 1e-9), maxf(size.Y, 1e-9), maxf(size.Z, 1e-9)}
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

// RemoveSphere subtracts a sphere of radius r centered at center via CSG max.
func (g *Grid) RemoveSphere(center v3.Vec, r float64) {
	box := sdf.NewBox3(center, v3.Vec{X: 2 * r, Y: 2 * r, Z: 2 * r}).ExpandedBy(g.layout.H)
	g.combineRegion(box, func(p v3.Vec) float64 {
		return p.Sub(center).Length() - r
	})
}

// RemoveCylinder subtracts a capped cylinder along segment ab of radius r.
func (g *Grid) RemoveCylinder(a, b v3.Vec, r float64) {
	axis := b.Sub(a)
	length := axis.Length()
	box := sdf.Box3{Min: a.Min(b), Max: a.Max(b)}.ExpandedBy(r + g.layout.H)
	g.combineRegion(box, func(p v3.Vec) float64 {
		if length == 0 {
			return p.Sub(a).Length() - r
		}
		tRaw := p.Sub(a).Dot(axis) / (length * length)
		t := clampf(tRaw, 0, 1)
		closest := a.Add(axis.MulScalar(t))
		radial := p.Sub(closest).Length() - r
		// Flat caps: combine the radial distance with the axial overshoot,
		// computed from the unclamped projection so points beyond either
		// endpoint read as outside even when their radial distance is small.
		dz := maxf(-tRaw, tRaw-1) * length
		if dz <= 0 {
			return radial
		}
		return maxf(radial, dz)
	})
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RemoveToolPose subtracts a single static tool stamp via CSG max.
func (g *Grid) RemoveToolPose(t tool.Tool, tip, axis v3.Vec) {
	box := t.WorldAABB(tip, axis).ExpandedBy(g.layout.H)
	toLocal := tool.RotationToLocal(tip, axis)
	g.combineRegion(box, func(p v3.Vec) float64 {
		return t.SignedDistance(toLocal(p))
	})
}

// RemoveToolSwept discretizes segment a->b into sub-poses and subtracts each,
// delegating to the same discretization sweep.CutLinearWithOrientation uses.
func (g *Grid) RemoveToolSwept(t tool.Tool, a, b, axisA, axisB v3.Vec, steps int) error {
	return sweep.CutLinearWithOrientation(g, t, a, b, axisA, axisB, steps)
}

//-----------------------------------------------------------------------------

// combineRegion applies d' = max(d, -dTool(p)) for every cell whose center
// lies in box. Blocks already proven fully carved away (all d >= 0) are
// skipped via the same broad-phase index voxel.Grid uses.
func (g *Grid) combineRegion(box sdf.Box3, dTool func(p v3.Vec) float64) {
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
					continue
				}
				g.combineInBlock(bi, lo, hi, dTool)
			}
		}
	}
}

func (g *Grid) combineInBlock(bi, lo, hi v3i.Vec, dTool func(p v3.Vec) float64) {
	cellLo := v3i.Vec{X: bi.X * blockSize, Y: bi.Y * blockSize, Z: bi.Z * blockSize}
	cellHi := v3i.Vec{
		X: minInt(cellLo.X+blockSize-1, g.layout.N.X-1),
		Y: minInt(cellLo.Y+blockSize-1, g.layout.N.Y-1),
		Z: minInt(cellLo.Z+blockSize-1, g.layout.N.Z-1),
	}
	lo2 := v3i.Vec{X: maxInt(lo.X, cellLo.X), Y: maxInt(lo.Y, cellLo.Y), Z: maxInt(lo.Z, cellLo.Z)}
	hi2 := v3i.Vec{X: minInt(hi.X, cellHi.X), Y: minInt(hi.Y, cellHi.Y), Z: minInt(hi.Z, cellHi.Z)}

	var idx v3i.Vec
	for idx.Z = lo2.Z; idx.Z <= hi2.Z; idx.Z++ {
		for idx.Y = lo2.Y; idx.Y <= hi2.Y; idx.Y++ {
			for idx.X = lo2.X; idx.X <= hi2.X; idx.X++ {
				off := g.layout.Index(idx)
				p := g.layout.Center(idx)
				nd := float32(maxf(float64(g.d[off]), -dTool(p)))
				g.d[off] = nd
			}
		}
	}

	if g.blockCarved(bi, cellLo, cellHi) {
		if be, ok := g.blockObj[bi]; ok {
			g.blockIdx.Delete(be)
			delete(g.blockObj, bi)
		}
	}
}

func (g *Grid) blockCarved(bi, cellLo, cellHi v3i.Vec) bool {
	var idx v3i.Vec
	for idx.Z = cellLo.Z; idx.Z <= cellHi.Z; idx.Z++ {
		for idx.Y = cellLo.Y; idx.Y <= cellHi.Y; idx.Y++ {
			for idx.X = cellLo.X; idx.X <= cellHi.X; idx.X++ {
				if g.d[g.layout.Index(idx)] < 0 {
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
