package stats

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestMultiGaussianParamValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  []float64
		wantErr bool
	}{
		{name: "empty", params: nil, wantErr: true},
		{name: "not a triple", params: []float64{1, 2}, wantErr: true},
		{name: "one triple", params: []float64{1, 0, 1}},
		{name: "two triples", params: []float64{1, 0, 1, 2, 3, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := MultiGaussian([]float64{0, 1}, tt.params)
			if (err != nil) != tt.wantErr {
				t.Errorf("MultiGaussian() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestMultiGaussianPeak(t *testing.T) {
	t.Parallel()

	const c, mu, sigma = 2.0, 0.5, 0.25

	got, err := MultiGaussian([]float64{mu}, []float64{c, mu, sigma})
	if err != nil {
		t.Fatalf("MultiGaussian() = %s", err)
	}

	want := c / (sigma * math.Sqrt(2*math.Pi))
	if math.Abs(got[0]-want) > 1e-12 {
		t.Errorf("peak = %g, want %g", got[0], want)
	}
}

func TestMultiGaussianSumsComponents(t *testing.T) {
	t.Parallel()

	x := []float64{-1, 0, 1, 2}

	one, err := MultiGaussian(x, []float64{1, 0, 0.5})
	if err != nil {
		t.Fatalf("MultiGaussian() = %s", err)
	}
	two, err := MultiGaussian(x, []float64{3, 1, 0.25})
	if err != nil {
		t.Fatalf("MultiGaussian() = %s", err)
	}
	both, err := MultiGaussian(x, []float64{1, 0, 0.5, 3, 1, 0.25})
	if err != nil {
		t.Fatalf("MultiGaussian() = %s", err)
	}

	sum := make([]float64, len(x))
	for i := range sum {
		sum[i] = one[i] + two[i]
	}
	if diff := cmp.Diff(sum, both, cmpopts.EquateApprox(1e-12, 0)); diff != "" {
		t.Errorf("sum mismatch (-want +got):\n%s", diff)
	}
}

func TestMultiGaussianResidual(t *testing.T) {
	t.Parallel()

	x := []float64{-1, 0, 1}
	params := []float64{2, 0, 0.5}

	y, err := MultiGaussian(x, params)
	if err != nil {
		t.Fatalf("MultiGaussian() = %s", err)
	}

	res, err := MultiGaussianResidual(params, x, y)
	if err != nil {
		t.Fatalf("MultiGaussianResidual() = %s", err)
	}
	for i, r := range res {
		if math.Abs(r) > 1e-12 {
			t.Errorf("residual[%d] = %g, want 0", i, r)
		}
	}

	if _, err := MultiGaussianResidual(params, x, y[:2]); err == nil {
		t.Error("MultiGaussianResidual() with mismatched lengths: want error, got nil")
	}
}

func TestFitMultiGaussian(t *testing.T) {
	t.Parallel()

	const c, mu, sigma = 2.0, 0.5, 0.3

	x := make([]float64, 100)
	for i := range x {
		x[i] = -1 + 3*float64(i)/99
	}
	y, err := MultiGaussian(x, []float64{c, mu, sigma})
	if err != nil {
		t.Fatalf("MultiGaussian() = %s", err)
	}

	got, err := FitMultiGaussian(x, y, []float64{1.5, 0.3, 0.4})
	if err != nil {
		t.Fatalf("FitMultiGaussian() = %s", err)
	}

	want := []float64{c, mu, sigma}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0.05, 0.01)); diff != "" {
		t.Errorf("fitted params mismatch (-want +got):\n%s", diff)
	}
}

func TestFitMultiGaussianValidation(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1, 2, 3}
	y := []float64{0, 1, 1, 0}

	if _, err := FitMultiGaussian(x, y, []float64{1, 2}); err == nil {
		t.Error("FitMultiGaussian() with bad param count: want error, got nil")
	}
	if _, err := FitMultiGaussian(x, y[:2], []float64{1, 0, 1}); err == nil {
		t.Error("FitMultiGaussian() with mismatched lengths: want error, got nil")
	}
	if _, err := FitMultiGaussian(x[:2], y[:2], []float64{1, 0, 1, 1, 0, 1}); err == nil {
		t.Error("FitMultiGaussian() with too few points: want error, got nil")
	}
}
