package mesh

import (
	"math"
)

// barycentric tolerance for points on triangle edges
const edgeEps = 1e-9

// RayIndex accelerates vertical ray casts against a mesh by binning
// triangles into a uniform grid over their xy bounding boxes.
type RayIndex struct {
	m            *Mesh
	minX, minY   float64
	cellW, cellH float64
	nx, ny       int
	cells        [][]int
}

// NewRayIndex builds a ray cast index for the mesh.
func NewRayIndex(m *Mesh) *RayIndex {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range m.Vertices {
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}

	n := int(math.Sqrt(float64(len(m.Faces)))) + 1

	ri := &RayIndex{
		m:     m,
		minX:  minX,
		minY:  minY,
		cellW: (maxX - minX) / float64(n),
		cellH: (maxY - minY) / float64(n),
		nx:    n,
		ny:    n,
		cells: make([][]int, n*n),
	}

	for fidx, f := range m.Faces {
		fMinX, fMinY := math.Inf(1), math.Inf(1)
		fMaxX, fMaxY := math.Inf(-1), math.Inf(-1)
		for _, vidx := range f {
			v := m.Vertices[vidx]
			fMinX = math.Min(fMinX, v.X)
			fMinY = math.Min(fMinY, v.Y)
			fMaxX = math.Max(fMaxX, v.X)
			fMaxY = math.Max(fMaxY, v.Y)
		}
		if math.IsNaN(fMinX) || math.IsNaN(fMinY) {
			continue
		}

		c0, r0 := ri.cell(fMinX, fMinY)
		c1, r1 := ri.cell(fMaxX, fMaxY)
		for c := c0; c <= c1; c++ {
			for r := r0; r <= r1; r++ {
				ri.cells[r*ri.nx+c] = append(ri.cells[r*ri.nx+c], fidx)
			}
		}
	}

	return ri
}

func (ri *RayIndex) cell(x, y float64) (c, r int) {
	c = int((x - ri.minX) / ri.cellW)
	r = int((y - ri.minY) / ri.cellH)
	if c < 0 {
		c = 0
	}
	if c > ri.nx-1 {
		c = ri.nx - 1
	}
	if r < 0 {
		r = 0
	}
	if r > ri.ny-1 {
		r = ri.ny - 1
	}
	return c, r
}

// CastDown casts a vertical ray from above through (px, py) and returns
// the z of the topmost intersection with the mesh.
func (ri *RayIndex) CastDown(px, py float64) (float64, bool) {
	c, r := ri.cell(px, py)

	best := math.Inf(-1)
	hit := false
	for _, fidx := range ri.cells[r*ri.nx+c] {
		f := ri.m.Faces[fidx]
		v1, v2, v3 := ri.m.Vertices[f[0]], ri.m.Vertices[f[1]], ri.m.Vertices[f[2]]

		det := (v2.Y-v3.Y)*(v1.X-v3.X) + (v3.X-v2.X)*(v1.Y-v3.Y)
		if math.Abs(det) == 0 || math.IsNaN(det) {
			continue
		}

		l1 := ((v2.Y-v3.Y)*(px-v3.X) + (v3.X-v2.X)*(py-v3.Y)) / det
		l2 := ((v3.Y-v1.Y)*(px-v3.X) + (v1.X-v3.X)*(py-v3.Y)) / det
		l3 := 1 - l1 - l2
		if l1 < -edgeEps || l2 < -edgeEps || l3 < -edgeEps {
			continue
		}

		z := l1*v1.Z + l2*v2.Z + l3*v3.Z
		if math.IsNaN(z) {
			continue
		}
		if z > best {
			best = z
			hit = true
		}
	}

	if !hit {
		return math.NaN(), false
	}
	return best, true
}
