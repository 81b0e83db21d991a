package rand

import (
	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
	"gonum.org/v1/gonum/mathext/prng"
)

// Names of the supported PRNG sources
const (
	MT19937    = "mt19937"
	Xoshiro256 = "xoshiro256+"
)

// Source is the minimal interface a PRNG must satisfy. It matches the
// math/rand/v2 Source interface, so anything implementing it can be handed to
// the gonum distributions directly.
type Source interface {
	Uint64() uint64
}

// A Generator is a deterministic PRNG stream. It is NOT safe for concurrent
// use: a chain owns its Generator, and independent chains need independent
// Generators (see Split).
type Generator struct {
	src  Source
	name string
}

// NewGenerator returns a Mersenne twister (64 bit) stream seeded with seed.
func NewGenerator(seed int64) (*Generator, error) {
	r := mt19937.New()
	r.Seed(seed)

	g := &Generator{
		src:  r,
		name: MT19937,
	}

	return g, nil
}

// NewXoshiroGenerator returns a xoshiro256+ stream seeded with seed. It is
// much cheaper to create than the Mersenne twister, which makes it the
// source used for sub-streams.
func NewXoshiroGenerator(seed uint64) *Generator {
	return &Generator{
		src:  prng.NewXoshiro256plus(seed),
		name: Xoshiro256,
	}
}

// NewNamedGenerator creates a generator for the named source
func NewNamedGenerator(name string, seed int64) (*Generator, error) {
	switch name {
	case MT19937, "":
		return NewGenerator(seed)
	case Xoshiro256:
		return NewXoshiroGenerator(uint64(seed)), nil
	}
	return nil, errors.Errorf("Unknown random source %q", name)
}

// Name returns the name of the underlying source
func (g *Generator) Name() string {
	return g.name
}

// Uint64 returns the next 64 random bits. This makes a Generator a Source.
func (g *Generator) Uint64() uint64 {
	return g.src.Uint64()
}

// Split draws a seed from this stream and returns a new, independent
// xoshiro256+ stream. Splitting is deterministic: the same parent state
// always yields the same child.
func (g *Generator) Split() *Generator {
	return NewXoshiroGenerator(g.Uint64())
}
