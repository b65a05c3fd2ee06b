package stats

import (
	"fmt"
	"strings"

	"briclab/afm/pkg/scan"
	"briclab/afm/pkg/stats"
)

const barWidth = 40

// printHistogram prints the height histogram as text bars and, when
// peaks > 0, fits that many Gaussians to the height distribution.
func printHistogram(ch *scan.Channel, peaks int) error {
	counts, edges, err := stats.Histogram(ch)
	if err != nil {
		return fmt.Errorf("computing histogram: %s", err)
	}

	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}

	fmt.Println()
	for i, c := range counts {
		bar := ""
		if max > 0 {
			bar = strings.Repeat("#", c*barWidth/max)
		}
		fmt.Printf("%13.6g .. %-13.6g %7d %s\n", edges[i], edges[i+1], c, bar)
	}

	if peaks < 1 {
		return nil
	}

	params, err := fitPeaks(counts, edges, peaks)
	if err != nil {
		return fmt.Errorf("fitting %d peaks: %s", peaks, err)
	}

	fmt.Println()
	for g := 0; g < peaks; g++ {
		fmt.Printf("Peak %d: weight=%g mean=%g sigma=%g\n",
			g+1, params[3*g], params[3*g+1], params[3*g+2])
	}

	return nil
}

// fitPeaks fits a Gaussian mixture to the histogram, treated as a
// density over the bin centers. Initial peaks are spread evenly over
// the height range.
func fitPeaks(counts []int, edges []float64, peaks int) ([]float64, error) {
	centers := make([]float64, len(counts))
	y := make([]float64, len(counts))

	total := 0.0
	for _, c := range counts {
		total += float64(c)
	}
	if total == 0 {
		return nil, fmt.Errorf("histogram is empty")
	}

	for i, c := range counts {
		centers[i] = (edges[i] + edges[i+1]) / 2
		// normalize to a density so weights do not depend on image size
		y[i] = float64(c) / (total * (edges[i+1] - edges[i]))
	}

	lo, hi := edges[0], edges[len(edges)-1]

	init := make([]float64, 0, 3*peaks)
	for g := 0; g < peaks; g++ {
		mu := lo + (hi-lo)*(float64(g)+0.5)/float64(peaks)
		init = append(init, 1/float64(peaks), mu, (hi-lo)/(4*float64(peaks)))
	}

	return stats.FitMultiGaussian(centers, y, init)
}
