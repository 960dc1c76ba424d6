//-----------------------------------------------------------------------------
/*

Surface extractor (component F).

Dispatches a grid (VoxelGrid or SDFGrid) and a Method to the matching
extraction kernel. Both kernels are pure functions of the grid: same
input, same triangles, every time.

*/
//-----------------------------------------------------------------------------

package render

import (
	"github.com/voxelmill/millcore/mesh"
	"github.com/voxelmill/millcore/sdf"
	"github.com/voxelmill/millcore/sdfgrid"
	"github.com/voxelmill/millcore/voxel"
)

//-----------------------------------------------------------------------------

// Method selects a surface-extraction algorithm.
type Method int

// Recognized extraction methods.
const (
	MarchingCubes Method = iota
	DualContouring
)

// ExtractOptions controls extraction behavior at the edges of the contract.
type ExtractOptions struct {
	// FailOnEmpty, when true, makes Extract return an *sdf.Error of kind
	// EmptyGrid instead of an empty mesh when no surface is found. Off by
	// default: an empty mesh is the documented, non-error outcome.
	FailOnEmpty bool
}

// Extract runs method over g and returns the resulting mesh. VoxelGrid only
// supports MarchingCubes (occupancy carries no gradient for a QEF solve);
// requesting DualContouring over a VoxelGrid still runs MarchingCubes
// rather than failing, since both are valid readings of "extract this
// voxel grid's surface".
func Extract(g interface{}, method Method, opts ExtractOptions) (*mesh.Mesh, error) {
	switch v := g.(type) {
	case *voxel.Grid:
		return finish(marchingCubesVoxel(v), opts)
	case *sdfgrid.Grid:
		if method == DualContouring {
			return finish(dualContouringSDF(v, DefaultDualContouringOptions()), opts)
		}
		return finish(marchingCubesSDF(v), opts)
	default:
		return nil, sdf.NewError(sdf.InvalidBounds, "extract: unsupported grid type %T", g)
	}
}

func finish(triangles []mesh.Triangle3, opts ExtractOptions) (*mesh.Mesh, error) {
	if len(triangles) == 0 && opts.FailOnEmpty {
		return nil, sdf.NewError(sdf.EmptyGrid, "extraction produced no surface")
	}
	return mesh.New(triangles), nil
}
