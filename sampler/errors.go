package sampler

import (
	"math"

	"github.com/pkg/errors"
)

// Error kinds returned by the sampler. Returned errors wrap one of these with
// context, so callers should test with errors.Is.
var (
	// ErrInvalidInput is returned for bad construction or run arguments.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDistributionParameter is returned when a derived distribution is asked
	// for a draw with a non-positive or non-finite parameter.
	ErrDistributionParameter = errors.New("invalid distribution parameter")

	// ErrNumericDegeneracy is returned when an update produces a value that
	// would break the chain state invariants (alpha2, tau2 and every extended
	// variance positive and finite, mu finite).
	ErrNumericDegeneracy = errors.New("numeric degeneracy")
)

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func positiveFinite(x float64) bool {
	return x > 0 && finite(x)
}
