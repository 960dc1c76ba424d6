//-----------------------------------------------------------------------------
/*

Mesh export (expansion component 4.I).

Illustrative serializers that give a caller something to write to disk,
in the manner of the teacher's own example mains (hollowing_stl, spiral), which
always end in a render.ToSTL/render.RenderDXF call. None of this is part
of the grid/sweep/extract contract: the core guarantees only triangle
data (mesh.Mesh); everything here is an external collaborator's concern.

*/
//-----------------------------------------------------------------------------

package export

import (
	"bufio"
	"fmt"
	"os"

	"github.com/hpinc/go3mf"
	"github.com/yofu/dxf"

	"github.com/voxelmill/millcore/mesh"
)

//-----------------------------------------------------------------------------

// WriteSTL serializes m to an ASCII STL file at path.
func WriteSTL(m *mesh.Mesh, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	fmt.Fprintln(w, "solid millcore")
	for _, t := range m.Triangles {
		nrm := t.Normal()
		fmt.Fprintf(w, "  facet normal %g %g %g\n", nrm.X, nrm.Y, nrm.Z)
		fmt.Fprintln(w, "    outer loop")
		for _, v := range t.V {
			fmt.Fprintf(w, "      vertex %g %g %g\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintln(w, "    endloop")
		fmt.Fprintln(w, "  endfacet")
	}
	fmt.Fprintln(w, "endsolid millcore")
	return nil
}

//-----------------------------------------------------------------------------

// Write3MF serializes m to a 3MF package at path via go3mf.
func Write3MF(m *mesh.Mesh, path string) error {
	model := &go3mf.Model{}
	mesh3mf := new(go3mf.MeshResource)
	mesh3mf.ID = 1

	vertexIndex := make(map[[3]float64]uint32)
	indexOf := func(v [3]float64) uint32 {
		if i, ok := vertexIndex[v]; ok {
			return i
		}
		i := uint32(len(mesh3mf.Vertices.Vertex))
		mesh3mf.Vertices.Vertex = append(mesh3mf.Vertices.Vertex, go3mf.Point3D{float32(v[0]), float32(v[1]), float32(v[2])})
		vertexIndex[v] = i
		return i
	}

	for _, t := range m.Triangles {
		a := indexOf([3]float64{t.V[0].X, t.V[0].Y, t.V[0].Z})
		b := indexOf([3]float64{t.V[1].X, t.V[1].Y, t.V[1].Z})
		c := indexOf([3]float64{t.V[2].X, t.V[2].Y, t.V[2].Z})
		mesh3mf.Triangles.Triangle = append(mesh3mf.Triangles.Triangle, go3mf.Triangle{V1: a, V2: b, V3: c})
	}

	model.Resources.Objects = append(model.Resources.Objects, &go3mf.Object{ID: 1, Mesh: mesh3mf})
	model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: 1})

	w, err := go3mf.CreateWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Encode(model)
}

//-----------------------------------------------------------------------------

// WriteDXFOutline projects every triangle edge of m onto the plane z =
// sliceZ (within tolerance) and writes the resulting 2D line segments as a
// DXF outline at path, via yofu/dxf. A coarse stand-in for a real
// slice-to-profile pipeline, useful for a quick look at one Z level.
func WriteDXFOutline(m *mesh.Mesh, sliceZ, tolerance float64, path string) error {
	d := dxf.NewDrawing()
	d.Layer("outline", false)

	emit := func(x1, y1, x2, y2 float64) {
		d.Line(x1, y1, 0, x2, y2, 0)
	}

	for _, t := range m.Triangles {
		edges := [3][2]int{{0, 1}, {1, 2}, {2, 0}}
		for _, e := range edges {
			a, b := t.V[e[0]], t.V[e[1]]
			da, db := a.Z-sliceZ, b.Z-sliceZ
			if da*db > 0 && absf(da) > tolerance && absf(db) > tolerance {
				continue // edge doesn't straddle the slice plane
			}
			emit(a.X, a.Y, b.X, b.Y)
		}
	}
	return d.SaveAs(path)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
