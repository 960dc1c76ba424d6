//-----------------------------------------------------------------------------
/*

Geometry primitives.

Axis-aligned bounding boxes in world units (millimeters by contract), and
the segment/AABB helpers the swept-volume engine uses to clip a motion to
the cells it can possibly touch.

*/
//-----------------------------------------------------------------------------

package sdf

import (
	"math"

	v3 "github.com/voxelmill/millcore/vec/v3"
)

//-----------------------------------------------------------------------------

// Box3 is an axis-aligned bounding box in world units.
type Box3 struct {
	Min, Max v3.Vec
}

// NewBox3 returns a box of the given size centered at center.
func NewBox3(center, size v3.Vec) Box3 {
	half := size.DivScalar(2)
	return Box3{Min: center.Sub(half), Max: center.Add(half)}
}

// Size returns the box extent along each axis.
func (b Box3) Size() v3.Vec {
	return b.Max.Sub(b.Min)
}

// Center returns the box center.
func (b Box3) Center() v3.Vec {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Valid reports whether min <= max component-wise.
func (b Box3) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Contains reports whether p lies within the closed box.
func (b Box3) Contains(p v3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Empty reports whether the box encloses no volume (min > max on some axis).
func (b Box3) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Intersect returns the intersection of b and other. The result may be Empty.
func (b Box3) Intersect(other Box3) Box3 {
	return Box3{
		Min: b.Min.Max(other.Min),
		Max: b.Max.Min(other.Max),
	}
}

// Union returns the smallest box containing both b and other.
func (b Box3) Union(other Box3) Box3 {
	return Box3{
		Min: b.Min.Min(other.Min),
		Max: b.Max.Max(other.Max),
	}
}

// ExpandedBy returns b expanded outward by margin on every face.
func (b Box3) ExpandedBy(margin float64) Box3 {
	d := v3.Vec{X: margin, Y: margin, Z: margin}
	return Box3{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

//-----------------------------------------------------------------------------

// ClipSegment clips the segment a->b against box using the slab method.
// It returns the portion of the segment's parameter range [0,1] that lies
// inside the box, as (tMin, tMax), and ok=false if the segment misses the
// box entirely.
func ClipSegment(a, b v3.Vec, box Box3) (tMin, tMax float64, ok bool) {
	tMin, tMax = 0, 1
	dir := b.Sub(a)

	axes := [3]struct{ a0, d, lo, hi float64 }{
		{a.X, dir.X, box.Min.X, box.Max.X},
		{a.Y, dir.Y, box.Min.Y, box.Max.Y},
		{a.Z, dir.Z, box.Min.Z, box.Max.Z},
	}

	for _, ax := range axes {
		if math.Abs(ax.d) < 1e-15 {
			// Parallel to this slab: must already be within it.
			if ax.a0 < ax.lo || ax.a0 > ax.hi {
				return 0, 0, false
			}
			continue
		}
		t0 := (ax.lo - ax.a0) / ax.d
		t1 := (ax.hi - ax.a0) / ax.d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}

//-----------------------------------------------------------------------------

// DtoR converts degrees to radians.
func DtoR(deg float64) float64 {
	return deg * math.Pi / 180
}
