package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// WriteSTL writes the mesh as binary STL. STL carries no vertex colors
// or shared vertices, so only the triangle geometry is exported.
//
//	https://en.wikipedia.org/wiki/STL_(file_format)#Binary
func (m *Mesh) WriteSTL(w io.Writer) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, 80)
	copy(header, "bric-afm surface")
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("writing header: %s", err)
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("writing triangle count: %s", err)
	}

	for idx, f := range m.Faces {
		v1, v2, v3 := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		n := faceNormal(v1, v2, v3)

		tri := [12]float32{
			float32(n.X), float32(n.Y), float32(n.Z),
			float32(v1.X), float32(v1.Y), float32(v1.Z),
			float32(v2.X), float32(v2.Y), float32(v2.Z),
			float32(v3.X), float32(v3.Y), float32(v3.Z),
		}
		if err := binary.Write(bw, binary.LittleEndian, tri); err != nil {
			return fmt.Errorf("writing triangle %d: %s", idx, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("writing triangle %d: %s", idx, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing: %s", err)
	}

	return nil
}

// WritePLY writes the mesh as ASCII PLY with vertex normals, and vertex
// colors when the mesh has them.
func (m *Mesh) WritePLY(w io.Writer) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintln(bw, "comment bric-afm surface")
	fmt.Fprintf(bw, "element vertex %d\n", len(m.Vertices))
	fmt.Fprintln(bw, "property float x")
	fmt.Fprintln(bw, "property float y")
	fmt.Fprintln(bw, "property float z")
	fmt.Fprintln(bw, "property float nx")
	fmt.Fprintln(bw, "property float ny")
	fmt.Fprintln(bw, "property float nz")
	if m.Colors != nil {
		fmt.Fprintln(bw, "property uchar red")
		fmt.Fprintln(bw, "property uchar green")
		fmt.Fprintln(bw, "property uchar blue")
	}
	fmt.Fprintf(bw, "element face %d\n", len(m.Faces))
	fmt.Fprintln(bw, "property list uchar int vertex_indices")
	fmt.Fprintln(bw, "end_header")

	for idx, v := range m.Vertices {
		n := m.Normals[idx]
		fmt.Fprintf(bw, "%g %g %g %g %g %g", v.X, v.Y, v.Z, n.X, n.Y, n.Z)
		if m.Colors != nil {
			c := m.Colors[idx]
			fmt.Fprintf(bw, " %d %d %d", c.R, c.G, c.B)
		}
		fmt.Fprintln(bw)
	}

	for _, f := range m.Faces {
		fmt.Fprintf(bw, "3 %d %d %d\n", f[0], f[1], f[2])
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing: %s", err)
	}

	return nil
}

func faceNormal(v1, v2, v3 r3.Vec) r3.Vec {
	n := r3.Cross(r3.Sub(v2, v1), r3.Sub(v3, v1))
	if r3.Norm(n) == 0 || math.IsNaN(r3.Norm(n)) {
		return r3.Vec{}
	}
	return r3.Unit(n)
}
