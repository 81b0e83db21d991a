package sampler

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/CraigKelly/tsample/rand"
)

// DefaultSeed is the seed every new ScaledT stream starts from unless
// WithSeed or WithGenerator says otherwise.
const DefaultSeed int64 = 0

// ScaledT is the chain state for the scaled-t model. It owns the data, the
// latent parameters and its own random stream. It is not safe for concurrent
// use; run independent chains on independent instances.
type ScaledT struct {
	data []float64
	nu   float64

	mu           float64
	alpha2       float64
	tau2         float64
	extendedVars []float64

	// scratch receives a proposed extendedVars update, backup holds the
	// extendedVars of the last complete sweep
	scratch []float64
	backup  []float64

	resultMu     []float64
	resultSigma2 []float64

	sweeps   int64
	gen      *rand.Generator
	workers  int
	progress ProgressFunc
	log      *zap.Logger
}

// State is a snapshot of the chain position
type State struct {
	Mu           float64
	Alpha2       float64
	Tau2         float64
	ExtendedVars []float64
	Sweeps       int64 // Completed sweeps over the lifetime of the chain
}

// Option configures a ScaledT at construction
type Option func(*config)

type config struct {
	seed     int64
	source   string
	gen      *rand.Generator
	workers  int
	progress ProgressFunc
	log      *zap.Logger
}

// WithSeed sets the seed for the chain's random stream
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// WithSource selects the PRNG source by name (see the rand package)
func WithSource(name string) Option {
	return func(c *config) { c.source = name }
}

// WithGenerator hands the chain an existing stream. The chain takes
// ownership: the caller must not draw from it afterwards.
func WithGenerator(gen *rand.Generator) Option {
	return func(c *config) { c.gen = gen }
}

// WithWorkers enables the parallel latent variance update with the given
// worker count. Any value < 2 means the sequential update. Output in parallel
// mode is reproducible for a fixed worker count but differs from the
// sequential mode.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithProgress registers a callback invoked after every completed sweep in Run
func WithProgress(fn ProgressFunc) Option {
	return func(c *config) { c.progress = fn }
}

// WithLogger sets the logger used for debug output
func WithLogger(log *zap.Logger) Option {
	return func(c *config) { c.log = log }
}

// NewScaledT creates a chain for the given observations and degrees of
// freedom. The data is copied. mu starts at the sample mean, alpha2, tau2 and
// every extended variance at 1.
func NewScaledT(data []float64, nu float64, opts ...Option) (*ScaledT, error) {
	if len(data) < 1 {
		return nil, errors.Wrap(ErrInvalidInput, "at least one observation is required")
	}
	if !positiveFinite(nu) {
		return nil, errors.Wrapf(ErrInvalidInput, "nu must be positive and finite, got %v", nu)
	}

	cfg := config{seed: DefaultSeed, source: rand.MT19937}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = zap.NewNop()
	}

	n := len(data)
	s := &ScaledT{
		data:         make([]float64, n),
		nu:           nu,
		alpha2:       1.0,
		tau2:         1.0,
		extendedVars: make([]float64, n),
		scratch:      make([]float64, n),
		backup:       make([]float64, n),
		resultMu:     []float64{},
		resultSigma2: []float64{},
		gen:          cfg.gen,
		workers:      cfg.workers,
		progress:     cfg.progress,
		log:          cfg.log,
	}

	sum := 0.0
	for i, d := range data {
		if !finite(d) {
			return nil, errors.Wrapf(ErrInvalidInput, "observation %d is not finite: %v", i, d)
		}
		s.data[i] = d
		s.extendedVars[i] = 1.0
		sum += d
	}
	s.mu = sum / float64(n)
	if !finite(s.mu) {
		return nil, errors.Wrap(ErrInvalidInput, "mean of observations overflows")
	}

	if s.gen == nil {
		gen, err := rand.NewNamedGenerator(cfg.source, cfg.seed)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidInput, "%v", err)
		}
		s.gen = gen
	}

	s.log.Debug("scaled-t sampler created",
		zap.Int("n", n),
		zap.Float64("nu", nu),
		zap.Float64("mu", s.mu),
		zap.String("source", s.gen.Name()),
		zap.Int("workers", s.workers),
	)

	return s, nil
}

// Len is the number of observations
func (s *ScaledT) Len() int {
	return len(s.data)
}

// Nu is the degrees of freedom hyperparameter
func (s *ScaledT) Nu() float64 {
	return s.nu
}

// State returns a copy of the current chain position
func (s *ScaledT) State() State {
	ev := make([]float64, len(s.extendedVars))
	copy(ev, s.extendedVars)
	return State{
		Mu:           s.mu,
		Alpha2:       s.alpha2,
		Tau2:         s.tau2,
		ExtendedVars: ev,
		Sweeps:       s.sweeps,
	}
}

// LocationSamples returns a copy of the mu samples from the last successful Run
func (s *ScaledT) LocationSamples() []float64 {
	return append([]float64{}, s.resultMu...)
}

// VarianceSamples returns a copy of the sigma2 = alpha2*tau2 samples from the
// last successful Run
func (s *ScaledT) VarianceSamples() []float64 {
	return append([]float64{}, s.resultSigma2...)
}
