package model

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the marginal distribution of a set of posterior samples.
// Quantiles are empirical (no interpolation).
type Summary struct {
	Count    int
	Mean     float64
	Variance float64 // Unbiased sample variance, 0 for a single sample
	StdDev   float64
	Min      float64
	Q025     float64 // 2.5% quantile
	Median   float64
	Q975     float64 // 97.5% quantile
	Max      float64
}

// Summarize computes a Summary for the given samples, which are not modified
func Summarize(samples []float64) (*Summary, error) {
	if len(samples) < 1 {
		return nil, errors.New("Can not summarize 0 samples")
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	s := &Summary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Q025:   stat.Quantile(0.025, stat.Empirical, sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q975:   stat.Quantile(0.975, stat.Empirical, sorted, nil),
	}

	if len(sorted) > 1 {
		s.Variance = stat.Variance(sorted, nil)
	}
	s.StdDev = math.Sqrt(s.Variance)

	return s, nil
}
