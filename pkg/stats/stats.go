// Package stats provides surface statistics for image channels: RMS,
// roughness measures against the mean plane, and histogramming with
// Freedman-Diaconis binning.
package stats

import (
	"fmt"
	"math"
	"sort"

	"briclab/afm/pkg/ops"
	"briclab/afm/pkg/scan"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RMS returns the root mean square of all values.
func RMS(data *mat.Dense) float64 {
	rows, cols := data.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := data.At(i, j)
			sum += v * v
		}
	}
	return math.Sqrt(sum / float64(rows*cols))
}

// RoughnessAvg returns the average roughness Ra, the mean absolute
// deviation from the least-squares mean plane. With ignoreNaN, NaN
// samples are excluded; otherwise they propagate into the result.
func RoughnessAvg(ch *scan.Channel, ignoreNaN bool) (float64, error) {
	res, err := meanPlaneResiduals(ch)
	if err != nil {
		return 0, err
	}

	var sum float64
	var n int
	for _, v := range res {
		if math.IsNaN(v) && ignoreNaN {
			continue
		}
		sum += math.Abs(v)
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("no values")
	}

	return sum / float64(n), nil
}

// RoughnessRMS returns the RMS roughness Rq, the root mean square
// deviation from the least-squares mean plane. With ignoreNaN, NaN
// samples are excluded; otherwise they propagate into the result.
func RoughnessRMS(ch *scan.Channel, ignoreNaN bool) (float64, error) {
	res, err := meanPlaneResiduals(ch)
	if err != nil {
		return 0, err
	}

	var sum float64
	var n int
	for _, v := range res {
		if math.IsNaN(v) && ignoreNaN {
			continue
		}
		sum += v * v
		n++
	}
	if n == 0 {
		return 0, fmt.Errorf("no values")
	}

	return math.Sqrt(sum / float64(n)), nil
}

func meanPlaneResiduals(ch *scan.Channel) ([]float64, error) {
	leveled, err := ops.PlaneLevel{}.Apply(ch.X(), ch.Y(), ch.Data())
	if err != nil {
		return nil, fmt.Errorf("leveling: %s", err)
	}

	rows, cols := leveled.Dims()
	out := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		out = append(out, leveled.RawRowView(i)...)
	}

	return out, nil
}

// Histogram bins the channel data. Bin widths follow the
// Freedman-Diaconis estimator, falling back to Sturges when the
// interquartile range is zero. NaN samples are skipped. Returns the
// counts and the nbins+1 bin edges.
func Histogram(ch *scan.Channel) ([]int, []float64, error) {
	data := ch.Data()
	rows, cols := data.Dims()

	vals := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if v := data.At(i, j); !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return nil, nil, fmt.Errorf("no finite values")
	}

	sort.Float64s(vals)
	min, max := vals[0], vals[len(vals)-1]
	if min == max {
		return []int{len(vals)}, []float64{min - 0.5, max + 0.5}, nil
	}

	iqr := stat.Quantile(0.75, stat.Empirical, vals, nil) - stat.Quantile(0.25, stat.Empirical, vals, nil)

	var nbins int
	if width := 2 * iqr / math.Cbrt(float64(len(vals))); width > 0 {
		nbins = int(math.Ceil((max - min) / width))
	} else {
		nbins = int(math.Ceil(math.Log2(float64(len(vals))))) + 1
	}
	if nbins < 1 {
		nbins = 1
	}

	edges := make([]float64, nbins+1)
	for i := range edges {
		edges[i] = min + (max-min)*float64(i)/float64(nbins)
	}

	counts := make([]int, nbins)
	for _, v := range vals {
		bin := int(float64(nbins) * (v - min) / (max - min))
		if bin > nbins-1 { // max falls into the last bin
			bin = nbins - 1
		}
		counts[bin]++
	}

	return counts, edges, nil
}
