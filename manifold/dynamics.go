package manifold

import "math"

// Lorenz system constants and forward Euler step.
const (
	lorenzSigma = 10.0
	lorenzBeta  = 8.0 / 3.0
	lorenzDt    = 0.01
	lorenzRhoLo = 14.0
	lorenzRhoHi = 28.0
)

// Pendulum constants and semi-implicit Euler step.
const (
	gravity        = 9.81
	pendulumLength = 1.0
	pendulumDt     = 0.02
)

// GenerateLorenz integrates the Lorenz system with forward Euler (dt = 0.01)
// from a state drawn uniformly in [-10, 10)^3. ρ is spread linearly over
// [14, 28] across clusters; σ = 10 and β = 8/3. The state (x, y, z) is
// recorded before each step into the first min(3, Features) channels; any
// further channels stay zero.
func (g *Generator[T]) GenerateLorenz() (*Dataset[T], error) {
	return g.Generate(Lorenz)
}

func (g *Generator[T]) lorenz() *Dataset[T] {
	ds := g.newDataset()
	dims := min(3, ds.Features)
	rhos := linspace(lorenzRhoLo, lorenzRhoHi, g.cfg.Clusters)

	for i := range ds.Samples {
		rho := rhos[ds.Y[i]]
		var state [3]float64
		for j := range state {
			state[j] = g.uniform(-10, 10)
		}

		for t := range ds.Steps {
			for f := range dims {
				ds.Set(i, f, t, T(state[f]))
			}
			x, y, z := state[0], state[1], state[2]
			dx := lorenzSigma * (y - x)
			dy := x*(rho-z) - y
			dz := x*y - lorenzBeta*z
			state = [3]float64{x + lorenzDt*dx, y + lorenzDt*dy, z + lorenzDt*dz}
		}
	}
	return ds
}

// GeneratePendulum simulates a simple pendulum (g = 9.81, L = 1) with
// semi-implicit Euler steps of 0.02. The initial angle is drawn in
// [-0.5, 0.5) and the initial angular velocity in [-0.5+kΔ, 0.5+kΔ) for
// cluster k, Δ being OmegaDelta. Each step records (cos θ, sin θ, ω),
// truncated or zero-padded to Features channels.
func (g *Generator[T]) GeneratePendulum() (*Dataset[T], error) {
	return g.Generate(Pendulum)
}

func (g *Generator[T]) pendulum() *Dataset[T] {
	ds := g.newDataset()
	dims := min(3, ds.Features)

	for i := range ds.Samples {
		shift := float64(ds.Y[i]) * g.cfg.OmegaDelta
		theta := g.uniform(-0.5, 0.5)
		omega := g.uniform(-0.5+shift, 0.5+shift)

		for t := range ds.Steps {
			obs := [3]float64{math.Cos(theta), math.Sin(theta), omega}
			for f := range dims {
				ds.Set(i, f, t, T(obs[f]))
			}
			alpha := -(gravity / pendulumLength) * math.Sin(theta)
			theta = wrapAngle(theta + omega*pendulumDt)
			omega += alpha * pendulumDt
		}
	}
	return ds
}

// wrapAngle maps theta into (-π, π].
func wrapAngle(theta float64) float64 {
	if theta > -math.Pi && theta <= math.Pi {
		return theta
	}
	theta = math.Mod(theta+math.Pi, 2*math.Pi)
	if theta <= 0 {
		theta += 2 * math.Pi
	}
	return theta - math.Pi
}
