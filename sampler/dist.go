package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/CraigKelly/tsample/rand"
)

// The derived distributions below are free functions over a random stream.
// Every parameter is checked before any bits are drawn, so a failed call
// never advances src.

// ChiSquared returns a chi-squared variate with df degrees of freedom.
func ChiSquared(src rand.Source, df float64) (float64, error) {
	if !positiveFinite(df) {
		return 0, errors.Wrapf(ErrDistributionParameter, "chi-squared df=%v", df)
	}
	return distuv.ChiSquared{K: df, Src: src}.Rand(), nil
}

// ScaledInvChiSquared returns df * scale / C where C is chi-squared with df
// degrees of freedom.
func ScaledInvChiSquared(src rand.Source, df float64, scale float64) (float64, error) {
	if !positiveFinite(scale) {
		return 0, errors.Wrapf(ErrDistributionParameter, "scaled-inv-chi-squared scale=%v", scale)
	}

	c, err := ChiSquared(src, df)
	if err != nil {
		return 0, err
	}
	return df * scale / c, nil
}

// Gamma returns a gamma variate parameterized by shape and scale (NOT rate).
func Gamma(src rand.Source, shape float64, scale float64) (float64, error) {
	if !positiveFinite(shape) || !positiveFinite(scale) {
		return 0, errors.Wrapf(ErrDistributionParameter, "gamma shape=%v scale=%v", shape, scale)
	}

	rate := 1.0 / scale
	if !positiveFinite(rate) {
		return 0, errors.Wrapf(ErrDistributionParameter, "gamma scale=%v has no finite rate", scale)
	}
	return distuv.Gamma{Alpha: shape, Beta: rate, Src: src}.Rand(), nil
}

// StdNormal returns a standard normal variate
func StdNormal(src rand.Source) float64 {
	return distuv.Normal{Mu: 0, Sigma: 1, Src: src}.Rand()
}

// Normal returns a normal variate with the given mean and variance.
func Normal(src rand.Source, mean float64, variance float64) (float64, error) {
	if !finite(mean) || !positiveFinite(variance) {
		return 0, errors.Wrapf(ErrDistributionParameter, "normal mean=%v variance=%v", mean, variance)
	}
	return mean + math.Sqrt(variance)*StdNormal(src), nil
}
