//-----------------------------------------------------------------------------
/*

Tool shape model.

A Tool is a parametric cutter shape with an axis-aligned local frame: +z
points from the tip into the shank. It exposes a signed distance function
(negative inside the cutter) and a local bounding box, the same small
closed-dispatch contract the teacher library uses for its own SDF3 shapes
(a struct plus an Evaluate-shaped method, combined rather than subclassed).

*/
//-----------------------------------------------------------------------------

package tool

import (
	"math"

	"github.com/voxelmill/millcore/sdf"
	v3 "github.com/voxelmill/millcore/vec/v3"
)

//-----------------------------------------------------------------------------

// Type identifies a cutter shape.
type Type int

// Recognized cutter shapes.
const (
	Flat Type = iota
	BallEnd
)

func (t Type) String() string {
	switch t {
	case Flat:
		return "Flat"
	case BallEnd:
		return "BallEnd"
	default:
		return "Unknown"
	}
}

// Tool is an immutable value object describing a cutter shape.
type Tool struct {
	Diameter float64
	Length   float64
	Type     Type
}

// New validates and returns a Tool, or an *sdf.Error of kind InvalidTool.
func New(typ Type, diameter, length float64) (Tool, error) {
	if diameter <= 0 {
		return Tool{}, sdf.NewError(sdf.InvalidTool, "diameter %v <= 0", diameter)
	}
	if length <= 0 {
		return Tool{}, sdf.NewError(sdf.InvalidTool, "length %v <= 0", length)
	}
	return Tool{Diameter: diameter, Length: length, Type: typ}, nil
}

// Radius returns half the tool diameter.
func (t Tool) Radius() float64 {
	return t.Diameter / 2
}

// SignedDistance evaluates the tool's signed distance field at a point
// given in the tool's local frame (negative inside the cutter).
func (t Tool) SignedDistance(p v3.Vec) float64 {
	r := t.Radius()
	switch t.Type {
	case BallEnd:
		return t.signedDistanceBall(p, r)
	default:
		return t.signedDistanceFlat(p, r)
	}
}

// signedDistanceFlat is the flat mill formula: a capped cylinder of radius
// r and height t.Length, flat bottom at z=0, flat top at z=t.Length.
func (t Tool) signedDistanceFlat(p v3.Vec, r float64) float64 {
	dr := math.Hypot(p.X, p.Y) - r
	dz := math.Max(-p.Z, p.Z-t.Length)
	if dr <= 0 && dz <= 0 {
		// Inside both the radial and axial extent: the usual "inside" case
		// is the max of the two (least negative) signed distances.
		return math.Max(dr, dz)
	}
	// Outside at least one: Euclidean composition of the positive parts.
	dr = math.Max(dr, 0)
	dz = math.Max(dz, 0)
	return math.Hypot(dr, dz)
}

// signedDistanceBall is the ball mill formula: a hemisphere of radius r
// centered at (0,0,r) fused with a flat-mill shank above z=r.
func (t Tool) signedDistanceBall(p v3.Vec, r float64) float64 {
	if p.Z < r {
		return v3.Vec{X: p.X, Y: p.Y, Z: p.Z - r}.Length() - r
	}
	return t.signedDistanceFlat(p, r)
}

// LocalAABB returns the tool's bounding box in its local frame.
func (t Tool) LocalAABB() sdf.Box3 {
	r := t.Radius()
	return sdf.Box3{
		Min: v3.Vec{X: -r, Y: -r, Z: 0},
		Max: v3.Vec{X: r, Y: r, Z: t.Length},
	}
}

//-----------------------------------------------------------------------------

// Orientation is a unit axis vector describing the cutter's pointing
// direction in world space, defaulting to (0,0,1).
type Orientation struct {
	Axis v3.Vec
}

// DefaultOrientation returns the +Z axis orientation.
func DefaultOrientation() Orientation {
	return Orientation{Axis: v3.Vec{X: 0, Y: 0, Z: 1}}
}

// Slerp performs spherical linear interpolation between two unit axis
// vectors at parameter t in [0,1]. Axis vectors (not full rotations) have
// no twist-about-axis component to carry, so this is implemented directly
// with the standard dot/acos/sin formula rather than via a quaternion
// library.
func Slerp(a, b v3.Vec, t float64) v3.Vec {
	a = a.Normalize()
	b = b.Normalize()
	dot := clamp(a.Dot(b), -1, 1)

	// Nearly parallel: linear interpolation is numerically safer and the
	// visual difference from true slerp is negligible.
	const epsilon = 1e-6
	if dot > 1-epsilon {
		return v3.Lerp(a, b, t).Normalize()
	}
	if dot < -1+epsilon {
		// Antiparallel axes: pick an arbitrary perpendicular to rotate through.
		perp := perpendicular(a)
		theta := math.Pi * t
		return a.MulScalar(math.Cos(theta)).Add(perp.MulScalar(math.Sin(theta)))
	}

	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta
	return a.MulScalar(wa).Add(b.MulScalar(wb)).Normalize()
}

func perpendicular(a v3.Vec) v3.Vec {
	ref := v3.Vec{X: 1, Y: 0, Z: 0}
	if math.Abs(a.Dot(ref)) > 0.9 {
		ref = v3.Vec{X: 0, Y: 1, Z: 0}
	}
	return a.Cross(ref).Normalize()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RotationToLocal returns a function mapping world points into the tool's
// local frame for a cutter whose axis is currently `axis` and whose tip is
// at world position `tip`. The local frame's +z is `axis`.
func RotationToLocal(tip, axis v3.Vec) func(v3.Vec) v3.Vec {
	u, vv, w := Basis(axis)
	return func(p v3.Vec) v3.Vec {
		rel := p.Sub(tip)
		return v3.Vec{X: rel.Dot(u), Y: rel.Dot(vv), Z: rel.Dot(w)}
	}
}

// Basis returns an orthonormal (u, v, axis) frame for axis. Because every
// cutter shape in this package is rotationally symmetric about its axis,
// any choice of u/v perpendicular to axis is valid.
func Basis(axis v3.Vec) (u, v, w v3.Vec) {
	w = axis.Normalize()
	u = perpendicular(w)
	v = w.Cross(u).Normalize()
	return u, v, w
}

// WorldAABB returns the world-space bounding box of the tool when its tip
// is at world position tip and its axis points along axis. This is a
// conservative box: it encloses the local AABB's corners transformed into
// world space, which always contains the (rotationally symmetric) cutter.
func (t Tool) WorldAABB(tip, axis v3.Vec) sdf.Box3 {
	u, v, w := Basis(axis)
	local := t.LocalAABB()
	xs := [2]float64{local.Min.X, local.Max.X}
	ys := [2]float64{local.Min.Y, local.Max.Y}
	zs := [2]float64{local.Min.Z, local.Max.Z}

	var box sdf.Box3
	first := true
	for _, x := range xs {
		for _, y := range ys {
			for _, z := range zs {
				corner := tip.Add(u.MulScalar(x)).Add(v.MulScalar(y)).Add(w.MulScalar(z))
				if first {
					box = sdf.Box3{Min: corner, Max: corner}
					first = false
					continue
				}
				box.Min = box.Min.Min(corner)
				box.Max = box.Max.Max(corner)
			}
		}
	}
	return box
}
