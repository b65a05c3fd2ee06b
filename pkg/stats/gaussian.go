package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat/distuv"
)

// MultiGaussian evaluates a sum of Gaussians at the given points. The
// number of Gaussians is inferred from the parameters: each (c, mu,
// sigma) triple adds one scaled normal pdf.
func MultiGaussian(x []float64, params []float64) ([]float64, error) {
	if len(params) == 0 || len(params)%3 != 0 {
		return nil, fmt.Errorf("params must be a non-empty multiple of 3, have %d", len(params))
	}

	out := make([]float64, len(x))
	for t := 0; t < len(params); t += 3 {
		c, mu, sigma := params[t], params[t+1], params[t+2]
		dist := distuv.Normal{Mu: mu, Sigma: sigma}
		for i, xi := range x {
			out[i] += c * dist.Prob(xi)
		}
	}

	return out, nil
}

// MultiGaussianResidual returns the pointwise difference between the
// multi-Gaussian with the given parameters and the data values y.
func MultiGaussianResidual(params, x, y []float64) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("x and y lengths differ: %d != %d", len(x), len(y))
	}

	fit, err := MultiGaussian(x, params)
	if err != nil {
		return nil, err
	}

	for i := range fit {
		fit[i] -= y[i]
	}

	return fit, nil
}

// FitMultiGaussian fits a sum of Gaussians to (x, y) by least squares,
// starting from the given parameter triples. Returns the fitted
// parameters in the same (c, mu, sigma) layout.
func FitMultiGaussian(x, y, init []float64) ([]float64, error) {
	if len(init) == 0 || len(init)%3 != 0 {
		return nil, fmt.Errorf("init params must be a non-empty multiple of 3, have %d", len(init))
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("x and y lengths differ: %d != %d", len(x), len(y))
	}
	if len(x) < len(init) {
		return nil, fmt.Errorf("need at least %d data points for %d parameters, have %d", len(init), len(init), len(x))
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			for t := 2; t < len(params); t += 3 {
				if params[t] <= 0 { // keep sigma positive
					return math.Inf(1)
				}
			}

			res, err := MultiGaussianResidual(params, x, y)
			if err != nil {
				return math.Inf(1)
			}

			var ssq float64
			for _, r := range res {
				ssq += r * r
			}
			return ssq
		},
	}

	start := append([]float64(nil), init...)
	result, err := optimize.Minimize(problem, start, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("minimizing residual: %s", err)
	}

	return result.X, nil
}
