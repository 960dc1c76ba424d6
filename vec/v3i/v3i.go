// Package v3i implements 3D integer vector algebra, used for grid indices and dimensions.
package v3i

// Vec is a 3D vector of int components.
type Vec struct {
	X, Y, Z int
}

// Add returns a + b.
func (a Vec) Add(b Vec) Vec {
	return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns a - b.
func (a Vec) Sub(b Vec) Vec {
	return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// InBounds reports whether 0 <= a[i] < n[i] for every component.
func (a Vec) InBounds(n Vec) bool {
	return a.X >= 0 && a.X < n.X &&
		a.Y >= 0 && a.Y < n.Y &&
		a.Z >= 0 && a.Z < n.Z
}

// Clamp restricts a to [lo, hi] component-wise (inclusive).
func (a Vec) Clamp(lo, hi Vec) Vec {
	return Vec{
		clampInt(a.X, lo.X, hi.X),
		clampInt(a.Y, lo.Y, hi.Y),
		clampInt(a.Z, lo.Z, hi.Z),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Volume returns X*Y*Z, the number of cells described by this extent.
func (a Vec) Volume() uint64 {
	return uint64(a.X) * uint64(a.Y) * uint64(a.Z)
}
