//-----------------------------------------------------------------------------
/*

Shared index/dimension math used by both VoxelGrid and SDFGrid.

center(i,j,k) = min + (i+0.5, j+0.5, k+0.5) * h
n = ceil(size / h)

Factored out once so the two grid kinds (and the swept-volume engine that
drives both) never disagree about where a cell center sits in world space.

*/
//-----------------------------------------------------------------------------

package grid

import (
	"github.com/voxelmill/millcore/sdf"
	"github.com/voxelmill/millcore/vec/conv"
	v3 "github.com/voxelmill/millcore/vec/v3"
	"github.com/voxelmill/millcore/vec/v3i"
)

//-----------------------------------------------------------------------------

// Layout holds the resolved dimensions of a uniform grid over a bounding box.
type Layout struct {
	Bounds sdf.Box3 // configured stock bounds
	H      float64  // isotropic voxel edge length
	N      v3i.Vec  // cell counts (nx, ny, nz)
}

// NewLayout validates h and bounds, and computes cell counts.
// The effective grid bound (Bounds.Min + N*h) may exceed the configured
// bound by less than one voxel; callers must use EffectiveBounds, not
// Bounds, for anything that depends on the exact grid extent.
func NewLayout(bounds sdf.Box3, h float64) (Layout, error) {
	if !bounds.Valid() {
		return Layout{}, sdf.NewError(sdf.InvalidBounds, "min %v > max %v", bounds.Min, bounds.Max)
	}
	if h <= 0 {
		return Layout{}, sdf.NewError(sdf.InvalidResolution, "voxel size %v <= 0", h)
	}
	size := bounds.Size()
	n := conv.V3ToV3i(size.DivScalar(h).Ceil())
	if n.X <= 0 || n.Y <= 0 || n.Z <= 0 {
		return Layout{}, sdf.NewError(sdf.InvalidResolution, "degenerate grid dimensions %v for size %v, h %v", n, size, h)
	}
	return Layout{Bounds: bounds, H: h, N: n}, nil
}

// EffectiveBounds returns the actual grid extent, which may be slightly
// larger than the configured Bounds due to the ceil() in dimension sizing.
func (l Layout) EffectiveBounds() sdf.Box3 {
	size := conv.V3iToV3(l.N).MulScalar(l.H)
	return sdf.Box3{Min: l.Bounds.Min, Max: l.Bounds.Min.Add(size)}
}

// Center returns the world-space center of cell (i,j,k).
func (l Layout) Center(idx v3i.Vec) v3.Vec {
	return v3.Vec{
		X: l.Bounds.Min.X + (float64(idx.X)+0.5)*l.H,
		Y: l.Bounds.Min.Y + (float64(idx.Y)+0.5)*l.H,
		Z: l.Bounds.Min.Z + (float64(idx.Z)+0.5)*l.H,
	}
}

// WorldToIndex maps a world point to the nearest cell index, clamped to
// the valid range [0, n-1] on each axis.
func (l Layout) WorldToIndex(p v3.Vec) v3i.Vec {
	rel := p.Sub(l.Bounds.Min).DivScalar(l.H).Floor()
	return conv.V3ToV3i(rel).Clamp(v3i.Vec{}, v3i.Vec{X: l.N.X - 1, Y: l.N.Y - 1, Z: l.N.Z - 1})
}

// IndexRange clips box to the grid's effective bounds and returns the
// inclusive [lo, hi] cell-index range that could contain a cell whose
// center lies in box. Returns ok=false if the box misses the grid.
func (l Layout) IndexRange(box sdf.Box3) (lo, hi v3i.Vec, ok bool) {
	eff := l.EffectiveBounds()
	clipped := box.Intersect(eff)
	if clipped.Empty() {
		return v3i.Vec{}, v3i.Vec{}, false
	}
	maxIdx := v3i.Vec{X: l.N.X - 1, Y: l.N.Y - 1, Z: l.N.Z - 1}
	lo = l.WorldToIndex(clipped.Min)
	hi = l.WorldToIndex(clipped.Max)
	lo = lo.Clamp(v3i.Vec{}, maxIdx)
	hi = hi.Clamp(v3i.Vec{}, maxIdx)
	return lo, hi, true
}

// Index flattens (i,j,k) into a linear offset, ascending (k, j, i) order so
// that iterating the flattened array visits cells in the deterministic
// order the concurrency model requires for extraction merges.
func (l Layout) Index(idx v3i.Vec) int {
	return (idx.Z*l.N.Y+idx.Y)*l.N.X + idx.X
}

// NumCells returns the total number of cells in the grid.
func (l Layout) NumCells() uint64 {
	return l.N.Volume()
}

// CheckCap returns an *sdf.Error of kind ResolutionTooFine if n cells of
// elemBytes each would allocate more than maxBytes. maxBytes == 0 means no
// cap (the default). Callers must check this before allocating the backing
// slice, so an oversized request fails atomically at construction time
// rather than after committing the memory.
func CheckCap(n v3i.Vec, elemBytes, maxBytes uint64) error {
	if maxBytes == 0 {
		return nil
	}
	total := n.Volume() * elemBytes
	if total > maxBytes {
		return sdf.NewError(sdf.ResolutionTooFine, "grid allocation of %d bytes for dimensions %v exceeds cap of %d bytes", total, n, maxBytes)
	}
	return nil
}
