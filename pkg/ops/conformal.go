package ops

import (
	"fmt"
	"math"

	"briclab/afm/pkg/mesh"

	"gonum.org/v1/gonum/mat"
)

// Conformal approximates a conformal layer of the given thickness on top
// of the surface. The surface is meshed, every vertex is offset along its
// normal by Thickness, and the offset surface is resampled at the original
// grid positions by vertical ray casting. Samples the rays miss are NaN.
//
// Meshing does best with values on the order of 1, so the grid and data
// are multiplied by Scale before meshing; Thickness is a distance in that
// scaled space. The result is divided by Scale again and, like the meshed
// surface, is relative to the minimum of the input.
type Conformal struct {
	Thickness float64
	Scale     float64

	// Progress, if set, is called after each resampled grid row.
	Progress func(done, total int)
}

// Name ...
func (c Conformal) Name() string {
	return fmt.Sprintf("conformal(%g)", c.Thickness)
}

// Apply ...
func (c Conformal) Apply(x, y []float64, data *mat.Dense) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if len(x) != rows {
		return nil, fmt.Errorf("invalid shape along x: %d index points for %d rows", len(x), rows)
	}
	if len(y) != cols {
		return nil, fmt.Errorf("invalid shape along y: %d index points for %d columns", len(y), cols)
	}
	if c.Thickness < 0 {
		return nil, fmt.Errorf("thickness can not be negative")
	}
	if c.Scale <= 0 {
		return nil, fmt.Errorf("invalid scale, must be greater than 0")
	}

	if c.Thickness == 0 {
		return mat.DenseCopyOf(data), nil
	}

	xs := make([]float64, len(x))
	for i, v := range x {
		xs[i] = v * c.Scale
	}
	ys := make([]float64, len(y))
	for j, v := range y {
		ys[j] = v * c.Scale
	}

	zs := mat.NewDense(rows, cols, nil)
	zs.Apply(func(i, j int, v float64) float64 { return v * c.Scale }, data)

	m, err := mesh.New(xs, ys, zs, nil)
	if err != nil {
		return nil, fmt.Errorf("meshing surface: %s", err)
	}

	idx := mesh.NewRayIndex(m.Offset(c.Thickness))

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			z, ok := idx.CastDown(xs[i], ys[j])
			if !ok {
				out.Set(i, j, math.NaN())
				continue
			}
			out.Set(i, j, z/c.Scale)
		}
		if c.Progress != nil {
			c.Progress(i+1, rows)
		}
	}

	return out, nil
}
