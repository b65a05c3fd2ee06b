// Package mesh builds triangle meshes from image grids and samples them
// by vertical ray casting. Meshes can be exported as binary STL or ASCII
// PLY for external viewers.
package mesh

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an indexed triangle mesh with per-vertex normals and optional
// per-vertex colors.
type Mesh struct {
	Vertices []r3.Vec
	Faces    [][3]int
	Normals  []r3.Vec
	Colors   []color.NRGBA
}

// New builds a mesh from a height grid. Vertices are placed at
// (x[i], y[j], z(i,j)-min(z)), with two triangles per grid cell and
// vertex normals derived from the numerical gradient of the surface.
// Colors, if given, must hold one color per grid point in row-major
// order.
//
// Meshing and ray casting work best when coordinates are on the order
// of 1; scale nanometer-ranged data up before building.
func New(x, y []float64, data *mat.Dense, colors []color.NRGBA) (*Mesh, error) {
	rows, cols := data.Dims()
	if len(x) != rows {
		return nil, fmt.Errorf("invalid shape along x: %d index points for %d rows", len(x), rows)
	}
	if len(y) != cols {
		return nil, fmt.Errorf("invalid shape along y: %d index points for %d columns", len(y), cols)
	}
	if rows < 2 || cols < 2 {
		return nil, fmt.Errorf("grid must be at least 2x2, is %dx%d", rows, cols)
	}
	if colors != nil && len(colors) != rows*cols {
		return nil, fmt.Errorf("invalid colors length: %d for %d vertices", len(colors), rows*cols)
	}

	min := math.Inf(1)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := data.At(i, j); !math.IsNaN(v) && v < min {
				min = v
			}
		}
	}
	if math.IsInf(min, 1) {
		return nil, fmt.Errorf("no finite values")
	}

	dzdx, dzdy := gradient(data, x, y)

	m := &Mesh{
		Vertices: make([]r3.Vec, 0, rows*cols),
		Normals:  make([]r3.Vec, 0, rows*cols),
		Faces:    make([][3]int, 0, 2*(rows-1)*(cols-1)),
		Colors:   colors,
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Vertices = append(m.Vertices, r3.Vec{X: x[i], Y: y[j], Z: data.At(i, j) - min})
			n := r3.Vec{X: -dzdx.At(i, j), Y: -dzdy.At(i, j), Z: 1}
			m.Normals = append(m.Normals, r3.Unit(n))
		}
	}

	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols-1; j++ {
			v := i*cols + j
			m.Faces = append(m.Faces,
				[3]int{v, v + cols, v + 1},
				[3]int{v + cols, v + cols + 1, v + 1},
			)
		}
	}

	return m, nil
}

// Offset returns a copy of the mesh with every vertex moved dist along
// its normal. Faces and normals are shared with the original mesh.
func (m *Mesh) Offset(dist float64) *Mesh {
	out := &Mesh{
		Vertices: make([]r3.Vec, len(m.Vertices)),
		Faces:    m.Faces,
		Normals:  m.Normals,
		Colors:   m.Colors,
	}

	for idx, v := range m.Vertices {
		out.Vertices[idx] = r3.Add(v, r3.Scale(dist, m.Normals[idx]))
	}

	return out
}

// gradient computes partial derivatives of the grid along both index
// dimensions, using central differences in the interior and one-sided
// differences at the edges.
func gradient(data *mat.Dense, x, y []float64) (dzdx, dzdy *mat.Dense) {
	rows, cols := data.Dims()
	dzdx = mat.NewDense(rows, cols, nil)
	dzdy = mat.NewDense(rows, cols, nil)

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			il, ih := i-1, i+1
			if il < 0 {
				il = 0
			}
			if ih > rows-1 {
				ih = rows - 1
			}
			dzdx.Set(i, j, (data.At(ih, j)-data.At(il, j))/(x[ih]-x[il]))

			jl, jh := j-1, j+1
			if jl < 0 {
				jl = 0
			}
			if jh > cols-1 {
				jh = cols - 1
			}
			dzdy.Set(i, j, (data.At(i, jh)-data.At(i, jl))/(y[jh]-y[jl]))
		}
	}

	return dzdx, dzdy
}
