package manifold

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func pointNorm[T Float](ds *Dataset[T], i, t int) float64 {
	var s float64
	for _, v := range ds.Point(i, t) {
		s += float64(v) * float64(v)
	}
	return math.Sqrt(s)
}

func mustGenerator[T Float](t *testing.T, samples, features, steps int, opts ...Option) *Generator[T] {
	t.Helper()
	g, err := New[T](samples, features, steps, opts...)
	require.NoError(t, err)
	return g
}

func TestClusterIndex(t *testing.T) {
	cases := []struct {
		i, samples, clusters, want int
	}{
		{0, 10, 2, 0},
		{4, 10, 2, 0},
		{5, 10, 2, 1},
		{9, 10, 2, 1},
		{0, 7, 3, 0},
		{2, 7, 3, 0},
		{3, 7, 3, 1},
		{5, 7, 3, 2},
		{6, 7, 3, 2},
		{0, 1, 1, 0},
		{3, 4, 4, 3},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, clusterIndex(c.i, c.samples, c.clusters),
			"clusterIndex(%d, %d, %d)", c.i, c.samples, c.clusters)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name                     string
		samples, features, steps int
		opts                     []Option
		field                    string
	}{
		{"zero clusters", 10, 3, 5, []Option{WithClusters(0)}, "clusters"},
		{"fewer samples than clusters", 2, 3, 5, []Option{WithClusters(3)}, "samples"},
		{"zero features", 10, 0, 5, nil, "features"},
		{"zero steps", 10, 3, 0, nil, "steps"},
		{"negative noise", 10, 3, 5, []Option{WithBaseNoise(-0.1)}, "base_noise"},
		{"nan omega delta", 10, 3, 5, []Option{WithOmegaDelta(math.NaN())}, "omega_delta"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New[float32](c.samples, c.features, c.steps, c.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, c.field, ce.Field)
		})
	}
}

func TestDefaults(t *testing.T) {
	g := mustGenerator[float32](t, 4, 2, 3)
	cfg := g.Config()
	assert.Equal(t, 2, cfg.Clusters)
	assert.Equal(t, 0.0, cfg.BaseNoise)
	assert.Equal(t, 2.0, cfg.OmegaDelta)
	assert.False(t, cfg.Seeded)
	assert.Equal(t, 32, g.Precision())
	assert.Equal(t, 64, mustGenerator[float64](t, 4, 2, 3).Precision())
}

func TestShapesAndLabels(t *testing.T) {
	for _, f := range Families() {
		for _, features := range []int{1, 2, 3, 5} {
			g := mustGenerator[float32](t, 13, features, 7, WithClusters(4), WithSeed(1), WithBaseNoise(0.05))
			ds, err := g.Generate(f)
			require.NoError(t, err, "family %s", f)

			n, d, s := ds.Shape()
			assert.Equal(t, [3]int{13, features, 7}, [3]int{n, d, s}, "family %s", f)
			require.Len(t, ds.X, 13*features*7)
			require.Len(t, ds.Y, 13)
			require.NoError(t, ds.Validate())

			for i := 1; i < len(ds.Y); i++ {
				assert.LessOrEqual(t, ds.Y[i-1], ds.Y[i], "labels must be non-decreasing")
			}
			assert.Equal(t, []int32{0, 1, 2, 3}, ds.Labels(), "family %s", f)
		}
	}
}

func TestHypersphereScenario(t *testing.T) {
	g := mustGenerator[float32](t, 10, 3, 5, WithClusters(2), WithSeed(0))
	ds, err := g.GenerateHypersphere()
	require.NoError(t, err)

	n, d, s := ds.Shape()
	require.Equal(t, [3]int{10, 3, 5}, [3]int{n, d, s})
	for i := range n {
		assert.Contains(t, []int32{0, 1}, ds.Y[i])
		for step := range s {
			assert.InDelta(t, 1.0, pointNorm(ds, i, step), 1e-5, "sample %d step %d", i, step)
		}
	}
}

func TestHypersphereUnitNorm(t *testing.T) {
	for _, noise := range []float64{0, 0.3} {
		g := mustGenerator[float64](t, 20, 6, 30, WithClusters(3), WithSeed(7), WithBaseNoise(noise))
		ds, err := g.GenerateHypersphere()
		require.NoError(t, err)
		for i := range ds.Samples {
			for step := range ds.Steps {
				if !approxEqual(pointNorm(ds, i, step), 1, 1e-9) {
					t.Fatalf("noise %v: sample %d step %d has norm %v", noise, i, step, pointNorm(ds, i, step))
				}
			}
		}
	}
}

func TestHypersphereCluster0IgnoresNoise(t *testing.T) {
	// cluster 0 is scaled by noise*0, so it draws no noise and follows an exact great circle.
	g := mustGenerator[float64](t, 4, 3, 8, WithSeed(3), WithBaseNoise(1))
	ds, err := g.GenerateHypersphere()
	require.NoError(t, err)

	// a·cos(ωt) + b·sin(ωt) with orthonormal a, b: point at t=0 is a, so the
	// inner product with the point at step t equals cos(ωt).
	omega := 2 * math.Pi / 8
	a := ds.Point(0, 0)
	for step := range 8 {
		p := ds.Point(0, step)
		var dot float64
		for f := range p {
			dot += a[f] * p[f]
		}
		assert.InDelta(t, math.Cos(omega*float64(step)), dot, 1e-9)
	}
}

func TestHyperbolicInsideBall(t *testing.T) {
	for _, clusters := range []int{1, 2, 5} {
		g := mustGenerator[float32](t, 25, 4, 40, WithClusters(clusters), WithSeed(11))
		ds, err := g.GenerateHyperbolic()
		require.NoError(t, err)
		for i := range ds.Samples {
			for step := range ds.Steps {
				assert.Less(t, pointNorm(ds, i, step), 1.0)
			}
			// starts at the origin and moves outward
			assert.InDelta(t, 0, pointNorm(ds, i, 0), 1e-7)
		}
	}
}

func TestHyperbolicEndpointFollowsBudget(t *testing.T) {
	g := mustGenerator[float64](t, 2, 3, 10, WithClusters(2), WithSeed(5))
	ds, err := g.GenerateHyperbolic()
	require.NoError(t, err)

	// budgets are 1 and 2; the final radius is tanh(T/2).
	assert.InDelta(t, math.Tanh(0.5), pointNorm(ds, 0, 9), 1e-12)
	assert.InDelta(t, math.Tanh(1.0), pointNorm(ds, 1, 9), 1e-12)
}

func TestClampToBall(t *testing.T) {
	ds := NewDataset[float64](1, 2, 2)
	ds.Set(0, 0, 0, 0.5)
	ds.Set(0, 0, 1, 3)
	ds.Set(0, 1, 1, 4)
	clampToBall(ds, 0)
	assert.Equal(t, 0.5, ds.At(0, 0, 0))
	assert.InDelta(t, poincareLimit, pointNorm(ds, 0, 1), 1e-12)
}

func TestSwissRollHeightBands(t *testing.T) {
	g := mustGenerator[float64](t, 40, 3, 12, WithClusters(4), WithSeed(2))
	ds, err := g.GenerateSwissRoll()
	require.NoError(t, err)

	for i := range ds.Samples {
		k := float64(ds.Y[i])
		h := ds.At(i, 1, 0)
		assert.GreaterOrEqual(t, h, k*2.5)
		assert.Less(t, h, (k+1)*2.5)
		for step := range ds.Steps {
			assert.Equal(t, h, ds.At(i, 1, step), "height is constant along a trajectory")
		}
		// radius in the x/z plane equals the roll parameter, which spans 1.5π
		r0 := math.Hypot(ds.At(i, 0, 0), ds.At(i, 2, 0))
		r1 := math.Hypot(ds.At(i, 0, ds.Steps-1), ds.At(i, 2, ds.Steps-1))
		assert.GreaterOrEqual(t, r0, 1.5*math.Pi-1e-9)
		assert.Less(t, r0, 3*math.Pi)
		assert.InDelta(t, 1.5*math.Pi, r1-r0, 1e-9)
	}
}

func TestSwissRollTruncatesFeatures(t *testing.T) {
	full, err := mustGenerator[float64](t, 6, 3, 5, WithSeed(9)).GenerateSwissRoll()
	require.NoError(t, err)
	two, err := mustGenerator[float64](t, 6, 2, 5, WithSeed(9)).GenerateSwissRoll()
	require.NoError(t, err)

	for i := range 6 {
		for f := range 2 {
			assert.Equal(t, full.Series(i, f), two.Series(i, f))
		}
	}
}

func TestLorenzZeroPadding(t *testing.T) {
	g := mustGenerator[float32](t, 6, 5, 20, WithClusters(3), WithSeed(4))
	ds, err := g.GenerateLorenz()
	require.NoError(t, err)

	for i := range ds.Samples {
		for f := range 3 {
			v := float64(ds.At(i, f, 0))
			assert.True(t, v >= -10 && v < 10, "initial state %v outside [-10, 10)", v)
		}
		for f := 3; f < 5; f++ {
			for _, v := range ds.Series(i, f) {
				assert.Zero(t, v)
			}
		}
	}
}

func TestLorenzEulerStep(t *testing.T) {
	g := mustGenerator[float64](t, 1, 3, 2, WithClusters(1), WithSeed(8))
	ds, err := g.GenerateLorenz()
	require.NoError(t, err)

	x, y, z := ds.At(0, 0, 0), ds.At(0, 1, 0), ds.At(0, 2, 0)
	rho := lorenzRhoLo // single cluster
	assert.InDelta(t, x+lorenzDt*lorenzSigma*(y-x), ds.At(0, 0, 1), 1e-12)
	assert.InDelta(t, y+lorenzDt*(x*(rho-z)-y), ds.At(0, 1, 1), 1e-12)
	assert.InDelta(t, z+lorenzDt*(x*y-lorenzBeta*z), ds.At(0, 2, 1), 1e-12)
}

func TestPendulumChannels(t *testing.T) {
	full, err := mustGenerator[float32](t, 8, 5, 30, WithClusters(2), WithSeed(0)).GeneratePendulum()
	require.NoError(t, err)
	one, err := mustGenerator[float32](t, 8, 1, 30, WithClusters(2), WithSeed(0)).GeneratePendulum()
	require.NoError(t, err)

	for i := range 8 {
		assert.Equal(t, full.Series(i, 0), one.Series(i, 0), "single channel keeps cos θ")
		for step := range 30 {
			c, s := float64(full.At(i, 0, step)), float64(full.At(i, 1, step))
			assert.InDelta(t, 1, c*c+s*s, 1e-5)
			assert.Zero(t, full.At(i, 3, step))
			assert.Zero(t, full.At(i, 4, step))
		}
	}
}

func TestPendulumSemiImplicitStep(t *testing.T) {
	g := mustGenerator[float64](t, 1, 3, 2, WithClusters(1), WithSeed(5))
	ds, err := g.GeneratePendulum()
	require.NoError(t, err)

	theta0 := math.Atan2(ds.At(0, 1, 0), ds.At(0, 0, 0))
	omega0 := ds.At(0, 2, 0)
	alpha := -(gravity / pendulumLength) * math.Sin(theta0)
	theta1 := theta0 + omega0*pendulumDt
	omega1 := omega0 + alpha*pendulumDt

	assert.InDelta(t, math.Cos(theta1), ds.At(0, 0, 1), 1e-12)
	assert.InDelta(t, math.Sin(theta1), ds.At(0, 1, 1), 1e-12)
	assert.InDelta(t, omega1, ds.At(0, 2, 1), 1e-12)
}

func TestPendulumVelocityBands(t *testing.T) {
	g := mustGenerator[float64](t, 30, 3, 1, WithClusters(3), WithOmegaDelta(2), WithSeed(6))
	ds, err := g.GeneratePendulum()
	require.NoError(t, err)

	for i := range ds.Samples {
		shift := 2 * float64(ds.Y[i])
		omega := ds.At(i, 2, 0)
		assert.GreaterOrEqual(t, omega, -0.5+shift)
		assert.Less(t, omega, 0.5+shift)
		assert.Greater(t, ds.At(i, 0, 0), math.Cos(0.5)-1e-12, "|θ0| <= 0.5")
	}
}

func TestWrapAngle(t *testing.T) {
	cases := map[float64]float64{
		0:               0,
		math.Pi:         math.Pi,
		-math.Pi:        math.Pi,
		4:               4 - 2*math.Pi,
		-4:              -4 + 2*math.Pi,
		0.5 + 6*math.Pi: 0.5,
	}
	for in, want := range cases {
		assert.InDelta(t, want, wrapAngle(in), 1e-9, "wrapAngle(%v)", in)
	}
}

func TestDeterminism(t *testing.T) {
	for _, f := range Families() {
		a, err := mustGenerator[float32](t, 9, 4, 11, WithClusters(3), WithSeed(42), WithBaseNoise(0.1)).Generate(f)
		require.NoError(t, err)
		b, err := mustGenerator[float32](t, 9, 4, 11, WithClusters(3), WithSeed(42), WithBaseNoise(0.1)).Generate(f)
		require.NoError(t, err)
		assert.Equal(t, a.X, b.X, "family %s", f)
		assert.Equal(t, a.Y, b.Y, "family %s", f)
	}
}

func TestFreshDatasetPerCall(t *testing.T) {
	g := mustGenerator[float64](t, 4, 2, 3, WithSeed(1))
	a, err := g.GenerateHypersphere()
	require.NoError(t, err)
	snapshot := a.Clone()
	b, err := g.GenerateHypersphere()
	require.NoError(t, err)

	assert.Equal(t, snapshot.X, a.X, "earlier result must not be mutated")
	assert.NotEqual(t, a.X, b.X, "the stream advances between calls")
}

func TestRandUnitOrth(t *testing.T) {
	g := mustGenerator[float64](t, 1, 1, 1, WithClusters(1), WithSeed(12))
	for _, d := range []int{2, 3, 10} {
		for range 50 {
			a := g.randUnit(d)
			b := g.randUnitOrth(a)
			var dot, na, nb float64
			for i := range a {
				dot += a[i] * b[i]
				na += a[i] * a[i]
				nb += b[i] * b[i]
			}
			assert.InDelta(t, 0, dot, 1e-12)
			assert.InDelta(t, 1, na, 1e-12)
			assert.InDelta(t, 1, nb, 1e-12)
		}
	}

	b := g.randUnitOrth([]float64{1})
	assert.Equal(t, []float64{0}, b, "no orthogonal direction in one dimension")
}

func TestUnitVectorFallbacks(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 0}, normalizeOrBasis([]float64{0, 0, 0}), "zero draw")
	assert.InDeltaSlice(t, []float64{0, 0.6, 0.8}, normalizeOrBasis([]float64{0, 3, 4}), 1e-15)

	a := []float64{0, 1, 0}
	assert.Equal(t, []float64{0, 0, 1}, orthonormalize(a, []float64{0, 1, 0}), "draw equal to a")
	assert.Equal(t, []float64{0, 0, 1}, orthonormalize(a, []float64{0, -2, 0}), "draw opposite to a")

	s := 1 / math.Sqrt2
	a = []float64{s, s}
	b := orthonormalize(a, []float64{3, 3})
	assert.InDelta(t, 0, a[0]*b[0]+a[1]*b[1], 1e-12)
	assert.InDelta(t, 1, math.Hypot(b[0], b[1]), 1e-12)
}

func TestHypersphereSingleFeature(t *testing.T) {
	g := mustGenerator[float64](t, 4, 1, 6, WithClusters(2), WithSeed(3))
	ds, err := g.GenerateHypersphere()
	require.NoError(t, err)

	for i := range ds.Samples {
		a := ds.At(i, 0, 0)
		assert.InDelta(t, 1, math.Abs(a), 1e-12, "a is ±1 in one dimension")
		omega := float64(ds.Y[i]+1) * 2 * math.Pi / 6
		for step := range 6 {
			assert.InDelta(t, a*math.Cos(omega*float64(step)), ds.At(i, 0, step), 1e-12)
		}
	}
}

func TestGenerateUnknownFamily(t *testing.T) {
	g := mustGenerator[float32](t, 2, 1, 1)
	_, err := g.Generate(Family(42))
	assert.ErrorIs(t, err, ErrUnknownFamily)

	_, err = g.GenerateByName("torus")
	require.ErrorIs(t, err, ErrUnknownFamily)
	assert.Contains(t, err.Error(), "torus")
}

func TestSubsample(t *testing.T) {
	g := mustGenerator[float64](t, 50, 2, 3, WithSeed(1))
	ds, err := g.GenerateLorenz()
	require.NoError(t, err)

	same, err := g.Subsample(ds, 200)
	require.NoError(t, err)
	assert.Same(t, ds, same)

	sub, err := g.Subsample(ds, 10)
	require.NoError(t, err)
	require.Equal(t, 10, sub.Samples)

	// every selected trajectory is a distinct sample of ds with its own label
	used := make(map[int]bool)
	for j := range sub.Samples {
		found := -1
		for i := range ds.Samples {
			if !used[i] && assert.ObjectsAreEqual(ds.Series(i, 0), sub.Series(j, 0)) {
				found = i
				break
			}
		}
		require.NotEqual(t, -1, found, "subsampled trajectory %d not found", j)
		used[found] = true
		assert.Equal(t, ds.Y[found], sub.Y[j])
	}
}
