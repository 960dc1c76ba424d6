//-----------------------------------------------------------------------------
/*

Swept-volume engine (component E).

Translates a motion segment (3-axis or 5-axis) into repeated point-sample
CSG subtractions on the active grid: choose a sub-voxel step count and
submit one pose per step. The engine computes no AABB of its own; each
backend's RemoveToolPose bounds its pose by the cutter's world AABB,
expanded by one voxel and clipped to the grid, so a pose off the grid
touches nothing. Both
VoxelGrid and SDFGrid satisfy Surface, so this algorithm runs identically
over either backend — the only difference is what RemoveToolPose does with
each pose.

*/
//-----------------------------------------------------------------------------

package sweep

import (
	"math"

	"github.com/voxelmill/millcore/sdf"
	"github.com/voxelmill/millcore/tool"
	v3 "github.com/voxelmill/millcore/vec/v3"
)

//-----------------------------------------------------------------------------

// Surface is the subset of VoxelGrid/SDFGrid the engine needs to drive a cut.
type Surface interface {
	// RemoveToolPose applies a single static cutter stamp at tip/axis.
	RemoveToolPose(t tool.Tool, tip, axis v3.Vec)
	// H returns the grid's isotropic voxel edge length.
	H() float64
}

// CutLinear performs a 3-axis linear cut with a fixed tool axis of (0,0,1).
func CutLinear(s Surface, t tool.Tool, a, b v3.Vec) error {
	return CutLinearWithOrientation(s, t, a, b, sdf.DefaultToolAxis, sdf.DefaultToolAxis, 0)
}

// CutLinearWithOrientation performs a 5-axis linear cut, slerping the tool
// axis from axisA to axisB over the segment. steps <= 0 selects the
// default: max(1, ceil(|motion| / (h * stepFraction))).
//
// The engine never fails on out-of-bounds or zero-length motion — it
// clips silently and, for a zero-length motion with axisA == axisB,
// performs exactly one static stamp. It fails only on a malformed tool.
func CutLinearWithOrientation(s Surface, t tool.Tool, a, b, axisA, axisB v3.Vec, steps int) error {
	if t.Diameter <= 0 {
		return sdf.NewError(sdf.InvalidTool, "diameter %v <= 0", t.Diameter)
	}
	if t.Length <= 0 {
		return sdf.NewError(sdf.InvalidTool, "length %v <= 0", t.Length)
	}

	if a == b && axisA == axisB {
		s.RemoveToolPose(t, a, axisA)
		return nil
	}

	h := s.H()
	if steps <= 0 {
		steps = defaultSteps(a, b, h)
	}

	for i := 0; i <= steps; i++ {
		tt := float64(i) / float64(steps)
		pose := v3.Lerp(a, b, tt)
		axis := tool.Slerp(axisA, axisB, tt)
		s.RemoveToolPose(t, pose, axis)
	}
	return nil
}

func defaultSteps(a, b v3.Vec, h float64) int {
	dist := v3.Distance(a, b)
	if dist == 0 {
		return 1
	}
	n := int(math.Ceil(dist / (h * sdf.DefaultStepFraction)))
	if n < 1 {
		n = 1
	}
	return n
}
