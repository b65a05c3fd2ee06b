// Package ops implements the grid operations applied to image channels:
// zeroing, plane leveling and conformal layers. All operations satisfy
// scan.Operation, leave their input untouched and tolerate NaN samples,
// which conformal layers produce.
package ops

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MinToZero translates the data so that its minimum is 0.
type MinToZero struct{}

// Name ...
func (MinToZero) Name() string { return "min_to_zero" }

// Apply ...
func (MinToZero) Apply(x, y []float64, data *mat.Dense) (*mat.Dense, error) {
	min := math.NaN()
	rows, cols := data.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := data.At(i, j)
			if !math.IsNaN(v) && !(v >= min) {
				min = v
			}
		}
	}
	if math.IsNaN(min) {
		return nil, fmt.Errorf("no finite values")
	}

	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 { return v - min }, data)
	return out, nil
}

// PlaneLevel subtracts the least-squares mean plane from the data. NaN
// samples are excluded from the fit but remain NaN in the output.
type PlaneLevel struct{}

// Name ...
func (PlaneLevel) Name() string { return "plane_level" }

// Apply ...
func (PlaneLevel) Apply(x, y []float64, data *mat.Dense) (*mat.Dense, error) {
	rows, cols := data.Dims()
	if rows != len(x) || cols != len(y) {
		return nil, fmt.Errorf("invalid data shape: %dx%d for %dx%d index", rows, cols, len(x), len(y))
	}

	var coords []float64
	var zs []float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			z := data.At(i, j)
			if math.IsNaN(z) {
				continue
			}
			coords = append(coords, x[i], y[j], 1)
			zs = append(zs, z)
		}
	}
	if len(zs) < 3 {
		return nil, fmt.Errorf("need at least 3 finite values for a plane fit, have %d", len(zs))
	}

	a := mat.NewDense(len(zs), 3, coords)
	b := mat.NewVecDense(len(zs), zs)

	var qr mat.QR
	qr.Factorize(a)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, b); err != nil {
		return nil, fmt.Errorf("fitting plane: %s", err)
	}

	ax, ay, c := beta.AtVec(0), beta.AtVec(1), beta.AtVec(2)
	out := mat.NewDense(rows, cols, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return v - (ax*x[i] + ay*y[j] + c)
	}, data)

	return out, nil
}
