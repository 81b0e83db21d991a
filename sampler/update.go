package sampler

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/CraigKelly/tsample/rand"
)

// minScale floors the alpha2 scale. A singleton or constant data set has
// zero squared residuals at the sample mean, which would make alpha2 zero.
const minScale = 1e-300

// Each update reads the current state, draws from src and validates the
// result before storing it: a failing update leaves the state untouched.

// updateExtendedVars draws every latent variance from a scaled inverse
// chi-squared with nu+1 degrees of freedom.
func (s *ScaledT) updateExtendedVars(src *rand.Generator) error {
	df := s.nu + 1.0
	if !positiveFinite(df) {
		return errors.Wrapf(ErrDistributionParameter, "extended variance df=%v", df)
	}

	var err error
	if s.workers > 1 && len(s.data) >= 2*s.workers {
		err = s.fillExtendedVarsParallel(src, df)
	} else {
		err = s.fillExtendedVars(src, df, 0, len(s.data))
	}
	if err != nil {
		return err
	}

	s.extendedVars, s.scratch = s.scratch, s.extendedVars
	return nil
}

// fillExtendedVars writes proposed latent variances for [lo, hi) to scratch
func (s *ScaledT) fillExtendedVars(src rand.Source, df float64, lo int, hi int) error {
	nutau2 := s.nu * s.tau2
	for i := lo; i < hi; i++ {
		r := s.data[i] - s.mu
		c, err := ChiSquared(src, df)
		if err != nil {
			return err
		}

		v := (nutau2 + s.alpha2*r*r) / c
		if !positiveFinite(v) {
			return errors.Wrapf(ErrNumericDegeneracy, "extended variance %d = %v", i, v)
		}
		s.scratch[i] = v
	}
	return nil
}

// fillExtendedVarsParallel splits the observations into one contiguous block
// per worker. Worker streams are split from src in worker order before any
// goroutine starts, so the result depends only on src and the worker count.
func (s *ScaledT) fillExtendedVarsParallel(src *rand.Generator, df float64) error {
	n := len(s.data)
	block := (n + s.workers - 1) / s.workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += block {
		lo, hi := lo, lo+block
		if hi > n {
			hi = n
		}
		sub := src.Split()
		g.Go(func() error {
			return s.fillExtendedVars(sub, df, lo, hi)
		})
	}
	return g.Wait()
}

// updateAlpha2 draws the global variance scale
func (s *ScaledT) updateAlpha2(src rand.Source) error {
	n := float64(len(s.data))

	x := 0.0
	for i, d := range s.data {
		r := d - s.mu
		x += r * r / s.extendedVars[i]
	}
	x /= n
	if !finite(x) {
		return errors.Wrapf(ErrNumericDegeneracy, "alpha2 scale = %v", x)
	}
	if x < minScale {
		x = minScale
	}

	alpha2, err := ScaledInvChiSquared(src, n, x)
	if err != nil {
		return errors.Wrap(err, "alpha2 update")
	}
	if !positiveFinite(alpha2) {
		return errors.Wrapf(ErrNumericDegeneracy, "alpha2 = %v", alpha2)
	}

	s.alpha2 = alpha2
	return nil
}

// updateMu draws the location from its conjugate normal posterior with
// per-observation precision 1/(alpha2*extendedVars[i]). alpha2 is factored
// out of the sums so a tiny alpha2 cannot overflow the weights.
//
// A chain on constant data contracts toward zero variance, and the precision
// sum eventually overflows. That is a collapsed state, not a bad draw.
func (s *ScaledT) updateMu(src rand.Source) error {
	precision, weighted := 0.0, 0.0
	for i, d := range s.data {
		w := 1.0 / s.extendedVars[i]
		precision += w
		weighted += d * w
	}
	if !finite(precision) {
		return errors.Wrapf(ErrNumericDegeneracy, "location precision = %v", precision)
	}

	mean := weighted / precision
	variance := s.alpha2 / precision
	if !finite(mean) || !positiveFinite(variance) {
		return errors.Wrapf(ErrNumericDegeneracy, "location mean=%v variance=%v", mean, variance)
	}

	mu, err := Normal(src, mean, variance)
	if err != nil {
		return errors.Wrap(err, "mu update")
	}
	if !finite(mu) {
		return errors.Wrapf(ErrNumericDegeneracy, "mu = %v", mu)
	}

	s.mu = mu
	return nil
}

// updateTau2 draws the prior scale of the latent variances. An overflowing
// precision sum is degeneracy; a gamma scale that is out of range for finite
// sums (huge latent variances) is left to Gamma to reject.
func (s *ScaledT) updateTau2(src rand.Source) error {
	x := 0.0
	for _, v := range s.extendedVars {
		x += 1.0 / v
	}
	if !finite(x) || !finite(s.nu*x) {
		return errors.Wrapf(ErrNumericDegeneracy, "latent precision sum = %v", x)
	}

	shape := float64(len(s.data)) * s.nu / 2.0
	scale := 2.0 / (s.nu * x)

	tau2, err := Gamma(src, shape, scale)
	if err != nil {
		return errors.Wrap(err, "tau2 update")
	}
	if !positiveFinite(tau2) {
		return errors.Wrapf(ErrNumericDegeneracy, "tau2 = %v", tau2)
	}

	s.tau2 = tau2
	return nil
}

// sweep runs one full update cycle in the fixed order the model requires.
func (s *ScaledT) sweep(src *rand.Generator) error {
	if err := s.updateExtendedVars(src); err != nil {
		return err
	}
	if err := s.updateAlpha2(src); err != nil {
		return err
	}
	if err := s.updateMu(src); err != nil {
		return err
	}
	return s.updateTau2(src)
}

// varianceSample is the implied observation variance at the current state
func (s *ScaledT) varianceSample() float64 {
	return s.alpha2 * s.tau2
}
