// Package manifold generates labeled time-series trajectories that lie on or
// near low-dimensional manifolds: great circles on a hypersphere, geodesics in
// the Poincaré ball, curves on a Swiss roll, Lorenz attractor orbits and
// pendulum phase-space paths.
//
// Every generator returns a Dataset whose X has shape (samples, features,
// steps) and whose y assigns each sample a cluster label. Samples are split
// into contiguous, near-equal blocks in index order and the cluster label
// selects the dynamics parameters of each block.
//
// A Generator owns a single seeded random stream which is advanced
// sequentially, sample by sample, so two generators built with the same seed
// and configuration produce identical output.
package manifold

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
	"unsafe"

	"gonum.org/v1/gonum/floats"
)

// Generator produces datasets for every manifold family. T selects the
// floating point precision of the generated values.
type Generator[T Float] struct {
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a Generator for samples trajectories of the given feature
// dimension and length. Defaults: 2 clusters, no noise, omega delta 2.0 and a
// time-based seed.
func New[T Float](samples, features, steps int, opts ...Option) (*Generator[T], error) {
	o := defaultOptions(samples, features, steps)
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.cfg.validate(); err != nil {
		return nil, err
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return &Generator[T]{
		cfg:    o.cfg,
		rng:    rand.New(rand.NewSource(o.cfg.seed())),
		logger: o.logger,
	}, nil
}

// Config returns a copy of the generation parameters.
func (g *Generator[T]) Config() Config {
	return g.cfg
}

// Precision reports the bit width of T (32 or 64).
func (g *Generator[T]) Precision() int {
	return Bits[T]()
}

// Bits returns the bit width of T.
func Bits[T Float]() int {
	var zero T
	return int(unsafe.Sizeof(zero)) * 8
}

// Generate runs the generator of family f.
func (g *Generator[T]) Generate(f Family) (*Dataset[T], error) {
	var fn func() *Dataset[T]
	switch f {
	case Hypersphere:
		fn = g.hypersphere
	case Hyperbolic:
		fn = g.hyperbolic
	case SwissRoll:
		fn = g.swissRoll
	case Lorenz:
		fn = g.lorenz
	case Pendulum:
		fn = g.pendulum
	default:
		return nil, &UnknownFamilyError{Name: f.String()}
	}

	start := time.Now()
	ds := fn()
	g.logger.Debug("dataset generated",
		"family", f.String(),
		"samples", ds.Samples,
		"features", ds.Features,
		"steps", ds.Steps,
		"clusters", g.cfg.Clusters,
		"precision", g.Precision(),
		"elapsed", time.Since(start),
	)
	return ds, nil
}

// GenerateByName parses name and runs the matching generator.
func (g *Generator[T]) GenerateByName(name string) (*Dataset[T], error) {
	f, err := ParseFamily(name)
	if err != nil {
		return nil, err
	}
	return g.Generate(f)
}

// ClusterOf returns the cluster label of sample i.
func (g *Generator[T]) ClusterOf(i int) int {
	return clusterIndex(i, g.cfg.Samples, g.cfg.Clusters)
}

// Subsample returns at most limit samples of ds, drawn uniformly without
// replacement from the generator's stream. ds itself is returned when it
// already fits or when limit < 1.
func (g *Generator[T]) Subsample(ds *Dataset[T], limit int) (*Dataset[T], error) {
	if limit < 1 || ds.Samples <= limit {
		return ds, nil
	}
	idx := g.rng.Perm(ds.Samples)[:limit]
	sub, err := ds.Select(idx)
	if err != nil {
		return nil, fmt.Errorf("subsample: %w", err)
	}
	return sub, nil
}

func (g *Generator[T]) newDataset() *Dataset[T] {
	ds := NewDataset[T](g.cfg.Samples, g.cfg.Features, g.cfg.Steps)
	for i := range ds.Y {
		ds.Y[i] = int32(g.ClusterOf(i))
	}
	return ds
}

// clusterIndex partitions [0, samples) into contiguous blocks:
// floor(i*clusters/samples), clamped to clusters-1.
func clusterIndex(i, samples, clusters int) int {
	k := i * clusters / samples
	if k > clusters-1 {
		k = clusters - 1
	}
	return k
}

// randUnit draws a standard normal vector of length d and normalizes it.
// A zero draw becomes the first basis vector.
func (g *Generator[T]) randUnit(d int) []float64 {
	v := make([]float64, d)
	for i := range v {
		v[i] = g.rng.NormFloat64()
	}
	return normalizeOrBasis(v)
}

// normalizeOrBasis scales v to unit length in place, or turns a zero v into
// the first basis vector.
func normalizeOrBasis(v []float64) []float64 {
	n := floats.Norm(v, 2)
	if n == 0 {
		v[0] = 1
		return v
	}
	floats.Scale(1/n, v)
	return v
}

// randUnitOrth draws a unit vector orthogonal to the unit vector a. When the
// draw is colinear with a, the basis vector following a's largest component is
// orthogonalized instead. For d == 1 no orthogonal direction exists and the
// zero vector is returned.
func (g *Generator[T]) randUnitOrth(a []float64) []float64 {
	b := make([]float64, len(a))
	for i := range b {
		b[i] = g.rng.NormFloat64()
	}
	return orthonormalize(a, b)
}

// orthonormalize removes a's component from b in place and normalizes the
// residual, falling back to a basis vector when b is colinear with a.
func orthonormalize(a, b []float64) []float64 {
	floats.AddScaled(b, -floats.Dot(a, b), a)
	n := floats.Norm(b, 2)
	if n == 0 {
		for i := range b {
			b[i] = 0
		}
		b[(argMaxAbs(a)+1)%len(a)] = 1
		floats.AddScaled(b, -floats.Dot(a, b), a)
		n = floats.Norm(b, 2)
		if n == 0 {
			return b
		}
	}
	floats.Scale(1/n, b)
	return b
}

func argMaxAbs(v []float64) int {
	best, idx := -1.0, 0
	for i, x := range v {
		if ax := math.Abs(x); ax > best {
			best, idx = ax, i
		}
	}
	return idx
}

// uniform draws from [lo, hi).
func (g *Generator[T]) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// linspace returns n evenly spaced values over [lo, hi]. A single value is lo.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
