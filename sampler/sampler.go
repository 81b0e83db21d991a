// Package sampler implements a Gibbs sampler for a location-scale model with
// heavy tailed (scaled Student-t) observation noise.
package sampler

import (
	"context"
)

// A Sampler produces posterior draws of location and observation variance
// from a fixed data set.
type Sampler interface {
	Advance() error
	Run(ctx context.Context, burnIn int, sampleSize int) error
	LocationSamples() []float64
	VarianceSamples() []float64
}

var _ Sampler = (*ScaledT)(nil)
