//-----------------------------------------------------------------------------
/*

Slice preview (expansion component 4.H).

Rasterizes one layer of a grid to SVG or PNG for visual inspection during
development and in tests. Read-only: never called by the cutting or
extraction kernels, and never changes what gets simulated.

*/
//-----------------------------------------------------------------------------

package debug

import (
	"fmt"
	"image"
	"image/color"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/llgcode/draw2d/draw2dimg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/voxelmill/millcore/sdfgrid"
	"github.com/voxelmill/millcore/vec/v3i"
	"github.com/voxelmill/millcore/voxel"
)

//-----------------------------------------------------------------------------

// Axis identifies the grid axis held constant when slicing.
type Axis int

// Recognized slice axes.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

const cellPixels = 4

// sliceDims returns the in-plane cell counts (u, v) for a slice along axis.
func sliceDims(n v3i.Vec, axis Axis) (int, int) {
	switch axis {
	case AxisX:
		return n.Y, n.Z
	case AxisY:
		return n.X, n.Z
	default:
		return n.X, n.Y
	}
}

func planeIndex(axis Axis, index, u, v int) v3i.Vec {
	switch axis {
	case AxisX:
		return v3i.Vec{X: index, Y: u, Z: v}
	case AxisY:
		return v3i.Vec{X: u, Y: index, Z: v}
	default:
		return v3i.Vec{X: u, Y: v, Z: index}
	}
}

//-----------------------------------------------------------------------------

// materialAt reports whether cell idx is material, for either grid kind.
type materialAt func(idx v3i.Vec) bool

func voxelMaterial(g *voxel.Grid) materialAt {
	return func(idx v3i.Vec) bool { return g.At(idx) }
}

func sdfMaterial(g *sdfgrid.Grid) materialAt {
	return func(idx v3i.Vec) bool { return g.At(idx) < 0 }
}

//-----------------------------------------------------------------------------

// SliceSVG rasterizes layer `index` along `axis` of a voxel grid to an SVG
// file: one filled rect per material cell.
func SliceSVG(g *voxel.Grid, axis Axis, index int, path string) error {
	return sliceSVG(g.Layout().N, voxelMaterial(g), axis, index, path)
}

// SliceSVGSDF is the SDFGrid counterpart of SliceSVG (material = d < 0).
func SliceSVGSDF(g *sdfgrid.Grid, axis Axis, index int, path string) error {
	return sliceSVG(g.Layout().N, sdfMaterial(g), axis, index, path)
}

func sliceSVG(n v3i.Vec, material materialAt, axis Axis, index int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	nu, nv := sliceDims(n, axis)
	canvas := svg.New(f)
	canvas.Start(nu*cellPixels, nv*cellPixels)
	canvas.Rect(0, 0, nu*cellPixels, nv*cellPixels, "fill:white")
	for u := 0; u < nu; u++ {
		for v := 0; v < nv; v++ {
			if material(planeIndex(axis, index, u, v)) {
				canvas.Rect(u*cellPixels, v*cellPixels, cellPixels, cellPixels, "fill:gray;stroke:none")
			}
		}
	}
	canvas.End()
	return nil
}

//-----------------------------------------------------------------------------

// SlicePNG rasterizes layer `index` along `axis` of a voxel grid to a PNG
// file via draw2d, one filled rect per material cell.
func SlicePNG(g *voxel.Grid, axis Axis, index int, path string) error {
	return slicePNG(g.Layout().N, voxelMaterial(g), axis, index, path)
}

// SlicePNGSDF is the SDFGrid counterpart of SlicePNG.
func SlicePNGSDF(g *sdfgrid.Grid, axis Axis, index int, path string) error {
	return slicePNG(g.Layout().N, sdfMaterial(g), axis, index, path)
}

func slicePNG(n v3i.Vec, material materialAt, axis Axis, index int, path string) error {
	nu, nv := sliceDims(n, axis)
	img := image.NewRGBA(image.Rect(0, 0, nu*cellPixels, nv*cellPixels))
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillColor(color.RGBA{R: 96, G: 96, B: 96, A: 255})

	for u := 0; u < nu; u++ {
		for v := 0; v < nv; v++ {
			if !material(planeIndex(axis, index, u, v)) {
				continue
			}
			x0, y0 := float64(u*cellPixels), float64(v*cellPixels)
			gc.MoveTo(x0, y0)
			gc.LineTo(x0+cellPixels, y0)
			gc.LineTo(x0+cellPixels, y0+cellPixels)
			gc.LineTo(x0, y0+cellPixels)
			gc.Close()
			gc.Fill()
		}
	}
	drawLabel(img, labelText(axis, index))
	return draw2dimg.SaveToPngFile(path, img)
}

// labelText builds the corner annotation identifying which slice this is.
func labelText(axis Axis, index int) string {
	return fmt.Sprintf("%s=%d", axis, index)
}

// drawLabel stamps text in the image's top-left corner using the fixed-size
// face basicfont.Face7x13 from golang.org/x/image, so a batch of slice PNGs stays
// identifiable without cross-referencing file names.
func drawLabel(img *image.RGBA, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, 12),
	}
	d.DrawString(text)
}

// String renders a compact identifier for axis, used in generated file names.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

// DefaultPath builds a conventional slice-preview file name.
func DefaultPath(prefix string, axis Axis, index int, ext string) string {
	return fmt.Sprintf("%s-%s%04d.%s", prefix, axis, index, ext)
}
