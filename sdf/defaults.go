package sdf

import v3 "github.com/voxelmill/millcore/vec/v3"

// Defaults per section 6 of the spec.
const (
	// DefaultVoxelSize is the default isotropic voxel edge length, in mm.
	DefaultVoxelSize = 0.5
	// DefaultStockSize is the default edge length of a cubic stock, in mm.
	DefaultStockSize = 100.0
	// DefaultOrientationSteps is the default slerp sub-step count for 5-axis moves.
	DefaultOrientationSteps = 20
	// DefaultStepFraction is the fraction of h used to size sweep sub-steps.
	DefaultStepFraction = 0.5
)

// DefaultToolAxis is the default cutter axis, pointing from tip to shank.
var DefaultToolAxis = v3.Vec{X: 0, Y: 0, Z: 1}
