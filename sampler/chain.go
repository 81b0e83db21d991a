package sampler

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Run phases reported to a ProgressFunc
const (
	PhaseBurnIn = "burn-in"
	PhaseSample = "sample"
)

// Progress describes the chain after one completed sweep of a Run
type Progress struct {
	Phase  string  // PhaseBurnIn or PhaseSample
	Sweep  int     // 1-based sweep number within the phase
	Total  int     // Number of sweeps in the phase
	Mu     float64 // Location after the sweep
	Sigma2 float64 // Implied observation variance after the sweep
}

// ProgressFunc receives a Progress after every sweep of Run. It is called on
// the goroutine running the chain and must not call back into the sampler.
type ProgressFunc func(Progress)

// Advance performs a single sweep. On failure the chain is restored to the
// state it had before the call (the random stream is NOT rewound).
func (s *ScaledT) Advance() error {
	mu, alpha2, tau2 := s.mu, s.alpha2, s.tau2
	copy(s.backup, s.extendedVars)

	if err := s.sweep(s.gen); err != nil {
		s.mu, s.alpha2, s.tau2 = mu, alpha2, tau2
		copy(s.extendedVars, s.backup)
		return err
	}

	s.sweeps++
	return nil
}

// Run performs burnIn sweeps that are discarded followed by sampleSize sweeps
// whose mu and sigma2 are recorded. The chain continues from wherever the
// previous Run left it. On error the samples of the previous successful Run
// are kept and the chain stays at the last complete sweep.
func (s *ScaledT) Run(ctx context.Context, burnIn int, sampleSize int) error {
	if burnIn < 0 || sampleSize < 0 {
		return errors.Wrapf(ErrInvalidInput, "burn-in %d and sample size %d must be >= 0", burnIn, sampleSize)
	}

	s.log.Debug("starting burn-in", zap.Int("sweeps", burnIn), zap.Int64("chainSweeps", s.sweeps))
	for i := 0; i < burnIn; i++ {
		if err := s.step(ctx, PhaseBurnIn, i, burnIn); err != nil {
			return err
		}
	}

	resultMu := make([]float64, sampleSize)
	resultSigma2 := make([]float64, sampleSize)

	s.log.Debug("starting sampling", zap.Int("sweeps", sampleSize))
	for i := 0; i < sampleSize; i++ {
		if err := s.step(ctx, PhaseSample, i, sampleSize); err != nil {
			return err
		}
		resultMu[i] = s.mu
		resultSigma2[i] = s.varianceSample()
	}

	s.resultMu = resultMu
	s.resultSigma2 = resultSigma2

	s.log.Debug("run complete",
		zap.Int64("chainSweeps", s.sweeps),
		zap.Float64("mu", s.mu),
		zap.Float64("sigma2", s.varianceSample()),
	)
	return nil
}

// step is one sweep of a Run with cancellation and progress reporting
func (s *ScaledT) step(ctx context.Context, phase string, i int, total int) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "%s cancelled before sweep %d", phase, i+1)
	}

	if err := s.Advance(); err != nil {
		return errors.Wrapf(err, "%s sweep %d of %d failed", phase, i+1, total)
	}

	if s.progress != nil {
		s.progress(Progress{
			Phase:  phase,
			Sweep:  i + 1,
			Total:  total,
			Mu:     s.mu,
			Sigma2: s.varianceSample(),
		})
	}
	return nil
}
