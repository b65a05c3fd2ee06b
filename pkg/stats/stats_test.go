package stats

import (
	"math"
	"testing"

	"briclab/afm/pkg/scan"

	"gonum.org/v1/gonum/mat"
)

func planeChannel(t *testing.T, n int, bump func(i, j int) float64) *scan.Channel {
	t.Helper()

	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i)
	}

	data := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := 0.25*x[i] - 2*y[j] + 3
			if bump != nil {
				v += bump(i, j)
			}
			data.Set(i, j, v)
		}
	}

	ch, err := scan.NewChannel("HeightTrace", x, y, data)
	if err != nil {
		t.Fatalf("NewChannel() = %s", err)
	}
	return ch
}

func TestRMS(t *testing.T) {
	t.Parallel()

	data := mat.NewDense(1, 2, []float64{3, 4})
	if got, want := RMS(data), math.Sqrt(12.5); math.Abs(got-want) > 1e-12 {
		t.Errorf("RMS() = %g, want %g", got, want)
	}
}

func TestRoughnessOfPlaneIsZero(t *testing.T) {
	t.Parallel()

	ch := planeChannel(t, 8, nil)

	ra, err := RoughnessAvg(ch, true)
	if err != nil {
		t.Fatalf("RoughnessAvg() = %s", err)
	}
	if ra > 1e-9 {
		t.Errorf("Ra = %g, want ~0", ra)
	}

	rq, err := RoughnessRMS(ch, true)
	if err != nil {
		t.Fatalf("RoughnessRMS() = %s", err)
	}
	if rq > 1e-9 {
		t.Errorf("Rq = %g, want ~0", rq)
	}
}

func TestRoughnessOfCheckerboard(t *testing.T) {
	t.Parallel()

	const h = 0.5
	ch := planeChannel(t, 8, func(i, j int) float64 {
		if (i+j)%2 == 0 {
			return h
		}
		return -h
	})

	ra, err := RoughnessAvg(ch, true)
	if err != nil {
		t.Fatalf("RoughnessAvg() = %s", err)
	}
	if math.Abs(ra-h) > 1e-9 {
		t.Errorf("Ra = %g, want %g", ra, h)
	}

	rq, err := RoughnessRMS(ch, true)
	if err != nil {
		t.Fatalf("RoughnessRMS() = %s", err)
	}
	if math.Abs(rq-h) > 1e-9 {
		t.Errorf("Rq = %g, want %g", rq, h)
	}
}

func TestRoughnessNaNHandling(t *testing.T) {
	t.Parallel()

	n := 8
	x := make([]float64, n)
	y := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
		y[i] = float64(i)
	}

	data := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data.Set(i, j, float64(i))
		}
	}
	data.Set(3, 3, math.NaN())

	ch, err := scan.NewChannel("HeightTrace", x, y, data)
	if err != nil {
		t.Fatalf("NewChannel() = %s", err)
	}

	ra, err := RoughnessAvg(ch, true)
	if err != nil {
		t.Fatalf("RoughnessAvg(ignore) = %s", err)
	}
	if math.IsNaN(ra) {
		t.Error("Ra with ignoreNaN is NaN")
	}

	ra, err = RoughnessAvg(ch, false)
	if err != nil {
		t.Fatalf("RoughnessAvg(keep) = %s", err)
	}
	if !math.IsNaN(ra) {
		t.Errorf("Ra without ignoreNaN = %g, want NaN", ra)
	}
}

func TestHistogram(t *testing.T) {
	t.Parallel()

	n := 16
	ch := planeChannel(t, n, nil)

	counts, edges, err := Histogram(ch)
	if err != nil {
		t.Fatalf("Histogram() = %s", err)
	}

	if len(edges) != len(counts)+1 {
		t.Fatalf("len(edges) = %d, want len(counts)+1 = %d", len(edges), len(counts)+1)
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	if total != n*n {
		t.Errorf("counts sum = %d, want %d", total, n*n)
	}

	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			t.Fatalf("edges not increasing at %d: %v", i, edges)
		}
	}
}

func TestHistogramConstantData(t *testing.T) {
	t.Parallel()

	n := 4
	x := []float64{0, 1, 2, 3}
	data := mat.NewDense(n, n, nil)
	data.Apply(func(i, j int, v float64) float64 { return 7 }, data)

	ch, err := scan.NewChannel("HeightTrace", x, x, data)
	if err != nil {
		t.Fatalf("NewChannel() = %s", err)
	}

	counts, edges, err := Histogram(ch)
	if err != nil {
		t.Fatalf("Histogram() = %s", err)
	}
	if len(counts) != 1 || counts[0] != n*n {
		t.Errorf("counts = %v, want [%d]", counts, n*n)
	}
	if len(edges) != 2 || edges[0] >= 7 || edges[1] <= 7 {
		t.Errorf("edges = %v, want a bin around 7", edges)
	}
}
