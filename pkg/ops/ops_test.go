package ops

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestMinToZero(t *testing.T) {
	t.Parallel()

	n := rand.Intn(100) + 2
	vals := make([]float64, n*n)
	for i := range vals {
		vals[i] = rand.NormFloat64()
	}
	data := mat.NewDense(n, n, vals)

	res, err := MinToZero{}.Apply(nil, nil, data)
	if err != nil {
		t.Fatalf("Apply() = %s", err)
	}

	rows, cols := res.Dims()
	if rows != n || cols != n {
		t.Errorf("shape = (%d, %d), want (%d, %d)", rows, cols, n, n)
	}

	min := math.Inf(1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			min = math.Min(min, res.At(i, j))
		}
	}
	if min != 0 {
		t.Errorf("min = %g, want 0", min)
	}
}

func TestMinToZeroIgnoresNaN(t *testing.T) {
	t.Parallel()

	data := mat.NewDense(2, 2, []float64{3, 5, math.NaN(), 4})

	res, err := MinToZero{}.Apply(nil, nil, data)
	if err != nil {
		t.Fatalf("Apply() = %s", err)
	}

	if got := res.At(0, 0); got != 0 {
		t.Errorf("res(0,0) = %g, want 0", got)
	}
	if got := res.At(1, 1); got != 1 {
		t.Errorf("res(1,1) = %g, want 1", got)
	}
	if !math.IsNaN(res.At(1, 0)) {
		t.Errorf("res(1,0) = %g, want NaN", res.At(1, 0))
	}
}

func TestMinToZeroAllNaN(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	data := mat.NewDense(2, 2, []float64{nan, nan, nan, nan})

	if _, err := (MinToZero{}).Apply(nil, nil, data); err == nil {
		t.Error("Apply() = nil, want error")
	}
}

func TestPlaneLevel(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1, 2}
	y := []float64{3, 4, 5}
	// plane z = 2x - y + 1
	data := mat.NewDense(3, 3, nil)
	for i := range x {
		for j := range y {
			data.Set(i, j, 2*x[i]-y[j]+1)
		}
	}

	res, err := PlaneLevel{}.Apply(x, y, data)
	if err != nil {
		t.Fatalf("Apply() = %s", err)
	}

	for i := range x {
		for j := range y {
			if v := res.At(i, j); math.Abs(v) > 1e-9 {
				t.Fatalf("residual at (%d,%d) = %g, want ~0", i, j, v)
			}
		}
	}
}

func TestPlaneLevelSkipsNaN(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1, 2, 3}
	y := []float64{0, 1, 2, 3}
	data := mat.NewDense(4, 4, nil)
	for i := range x {
		for j := range y {
			data.Set(i, j, 0.5*x[i]+3*y[j])
		}
	}
	data.Set(1, 2, math.NaN())

	res, err := PlaneLevel{}.Apply(x, y, data)
	if err != nil {
		t.Fatalf("Apply() = %s", err)
	}

	if !math.IsNaN(res.At(1, 2)) {
		t.Errorf("res(1,2) = %g, want NaN", res.At(1, 2))
	}
	if v := res.At(0, 0); math.Abs(v) > 1e-9 {
		t.Errorf("residual at (0,0) = %g, want ~0", v)
	}
}

func TestPlaneLevelShapeMismatch(t *testing.T) {
	t.Parallel()

	if _, err := (PlaneLevel{}).Apply([]float64{0, 1}, []float64{0, 1}, mat.NewDense(3, 3, nil)); err == nil {
		t.Error("Apply() = nil, want error")
	}
}

func TestConformalValidation(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1}
	y := []float64{0, 1}
	data := mat.NewDense(2, 2, nil)

	tests := []struct {
		name string
		op   Conformal
	}{
		{name: "negative thickness", op: Conformal{Thickness: -1, Scale: 1}},
		{name: "zero scale", op: Conformal{Thickness: 1, Scale: 0}},
		{name: "negative scale", op: Conformal{Thickness: 1, Scale: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := tt.op.Apply(x, y, data); err == nil {
				t.Error("Apply() = nil, want error")
			}
		})
	}
}

func TestConformalZeroThicknessIsIdentity(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1}
	y := []float64{0, 1}
	data := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	res, err := Conformal{Thickness: 0, Scale: 1}.Apply(x, y, data)
	if err != nil {
		t.Fatalf("Apply() = %s", err)
	}

	if !mat.Equal(res, data) {
		t.Errorf("res = %v, want unchanged input", mat.Formatted(res))
	}
}

func TestConformalFlatSurface(t *testing.T) {
	t.Parallel()

	const n = 8
	const thickness = 0.25

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i)
	}

	data := mat.NewDense(n, n, nil)
	data.Apply(func(i, j int, v float64) float64 { return 5 }, data)

	var calls int
	op := Conformal{
		Thickness: thickness,
		Scale:     1,
		Progress:  func(done, total int) { calls++ },
	}

	res, err := op.Apply(x, y, data)
	if err != nil {
		t.Fatalf("Apply() = %s", err)
	}
	if calls != n {
		t.Errorf("progress calls = %d, want %d", calls, n)
	}

	// flat surface: normals point straight up, the offset surface sits at
	// exactly thickness above the min-shifted input
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := res.At(i, j); math.Abs(v-thickness) > 1e-9 {
				t.Fatalf("res(%d,%d) = %g, want %g", i, j, v, thickness)
			}
		}
	}
}

func TestConformalTiltedSurface(t *testing.T) {
	t.Parallel()

	const n = 16
	const thickness = 0.5

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i)
	}

	// plane with slope 1 along x
	data := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data.Set(i, j, float64(i))
		}
	}

	res, err := Conformal{Thickness: thickness, Scale: 1}.Apply(x, y, data)
	if err != nil {
		t.Fatalf("Apply() = %s", err)
	}

	// vertical distance to a conformal layer over a slope-1 plane is
	// thickness * sqrt(2); the high-x edge may fall off the offset mesh
	want := thickness * math.Sqrt2
	for i := 1; i < n-2; i++ {
		for j := 1; j < n-1; j++ {
			v := res.At(i, j)
			if math.IsNaN(v) {
				t.Fatalf("res(%d,%d) is NaN in the interior", i, j)
			}
			if math.Abs(v-(float64(i)+want)) > 1e-6 {
				t.Fatalf("res(%d,%d) = %g, want %g", i, j, v, float64(i)+want)
			}
		}
	}
}
