package manifold

import (
	"log/slog"
	"math"
	"time"
)

// Float is the set of floating point kinds a Generator can produce.
type Float interface {
	~float32 | ~float64
}

// Config holds the immutable generation parameters of a Generator.
type Config struct {
	// Samples is the number of trajectories to generate.
	Samples int

	// Features is the dimensionality of each point along a trajectory.
	Features int

	// Steps is the length of each trajectory.
	Steps int

	// Clusters is the number of distinct dynamics (labels). Default 2.
	Clusters int

	// BaseNoise scales the cluster-dependent perturbation used by the
	// hypersphere generator. Default 0.
	BaseNoise float64

	// OmegaDelta is the angular velocity separation between pendulum
	// clusters. Default 2.0.
	OmegaDelta float64

	// Seed for the random stream. Only meaningful when Seeded is true,
	// otherwise a time-based seed is used.
	Seed   int64
	Seeded bool
}

const (
	defaultClusters   = 2
	defaultOmegaDelta = 2.0
)

// Option configures a Generator at construction time.
type Option func(*options)

type options struct {
	cfg    Config
	logger *slog.Logger
}

// WithClusters sets the number of clusters.
func WithClusters(n int) Option {
	return func(o *options) {
		o.cfg.Clusters = n
	}
}

// WithBaseNoise sets the base noise level.
func WithBaseNoise(noise float64) Option {
	return func(o *options) {
		o.cfg.BaseNoise = noise
	}
}

// WithOmegaDelta sets the pendulum angular velocity separation.
func WithOmegaDelta(delta float64) Option {
	return func(o *options) {
		o.cfg.OmegaDelta = delta
	}
}

// WithSeed makes generation reproducible. Two generators built with the same
// seed and configuration produce identical datasets.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.cfg.Seed = seed
		o.cfg.Seeded = true
	}
}

// WithLogger attaches a structured logger. If nil is passed, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions(samples, features, steps int) options {
	return options{
		cfg: Config{
			Samples:    samples,
			Features:   features,
			Steps:      steps,
			Clusters:   defaultClusters,
			OmegaDelta: defaultOmegaDelta,
		},
	}
}

// validate checks the invariants samples >= clusters >= 1, features >= 1 and steps >= 1.
func (c Config) validate() error {
	switch {
	case c.Clusters < 1:
		return &ConfigError{Field: "clusters", Value: c.Clusters, Reason: "must be >= 1"}
	case c.Samples < c.Clusters:
		return &ConfigError{Field: "samples", Value: c.Samples, Reason: "must be >= clusters"}
	case c.Features < 1:
		return &ConfigError{Field: "features", Value: c.Features, Reason: "must be >= 1"}
	case c.Steps < 1:
		return &ConfigError{Field: "steps", Value: c.Steps, Reason: "must be >= 1"}
	case c.BaseNoise < 0 || math.IsNaN(c.BaseNoise):
		return &ConfigError{Field: "base_noise", Value: c.BaseNoise, Reason: "must be a non-negative number"}
	case math.IsNaN(c.OmegaDelta) || math.IsInf(c.OmegaDelta, 0):
		return &ConfigError{Field: "omega_delta", Value: c.OmegaDelta, Reason: "must be finite"}
	}
	return nil
}

func (c Config) seed() int64 {
	if c.Seeded {
		return c.Seed
	}
	return time.Now().UnixNano()
}
