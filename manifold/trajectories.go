package manifold

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// poincareLimit is the norm points are pulled back to when numeric drift puts
// them on or outside the boundary of the unit ball.
const poincareLimit = 0.999

// GenerateHypersphere returns great-circle trajectories on the unit sphere in
// feature space. Cluster k travels at angular speed (k+1)*2π/steps. With a
// positive base noise each point is perturbed by N(0, (noise*k)^2) and
// projected back onto the sphere.
//
// Unit norm requires Features >= 2. With a single feature there is no second
// direction orthogonal to a, so the trajectory degenerates to a·cos(ωt).
func (g *Generator[T]) GenerateHypersphere() (*Dataset[T], error) {
	return g.Generate(Hypersphere)
}

func (g *Generator[T]) hypersphere() *Dataset[T] {
	ds := g.newDataset()
	d, steps := ds.Features, ds.Steps
	p := make([]float64, d)

	for i := range ds.Samples {
		k := int(ds.Y[i])
		a := g.randUnit(d)
		b := g.randUnitOrth(a)
		omega := float64(k+1) * 2 * math.Pi / float64(steps)
		noise := g.cfg.BaseNoise * float64(k)

		for t := range steps {
			theta := omega * float64(t)
			c, s := math.Cos(theta), math.Sin(theta)
			for f := range p {
				p[f] = a[f]*c + b[f]*s
			}
			if noise > 0 {
				for f := range p {
					p[f] += noise * g.rng.NormFloat64()
				}
				if n := floats.Norm(p, 2); n != 0 {
					floats.Scale(1/n, p)
				}
			}
			for f, v := range p {
				ds.Set(i, f, t, T(v))
			}
		}
	}
	return ds
}

// GenerateHyperbolic returns geodesics of the Poincaré ball leaving the origin
// along a random direction v: x(τ) = v·sinh(τ)/(1+cosh(τ)). The time budget T
// grows linearly from 1 for cluster 0 to 2 for the last cluster and τ runs
// over T·[0, 1].
func (g *Generator[T]) GenerateHyperbolic() (*Dataset[T], error) {
	return g.Generate(Hyperbolic)
}

func (g *Generator[T]) hyperbolic() *Dataset[T] {
	ds := g.newDataset()
	d, steps := ds.Features, ds.Steps
	budgets := linspace(1, 2, g.cfg.Clusters)
	tIdx := linspace(0, 1, steps)

	for i := range ds.Samples {
		budget := budgets[ds.Y[i]]
		v := g.randUnit(d)

		for t := range steps {
			tau := budget * tIdx[t]
			r := math.Sinh(tau) / (1 + math.Cosh(tau))
			for f := range d {
				ds.Set(i, f, t, T(v[f]*r))
			}
		}
		clampToBall(ds, i)
	}
	return ds
}

// clampToBall rescales every point of sample i whose norm reached 1 back to
// poincareLimit. The check runs on the stored values since rounding to T can
// move a point onto the boundary.
func clampToBall[T Float](ds *Dataset[T], i int) {
	p := make([]float64, ds.Features)
	for t := range ds.Steps {
		for f := range p {
			p[f] = float64(ds.At(i, f, t))
		}
		n := floats.Norm(p, 2)
		if n < 1 {
			continue
		}
		for f := range p {
			ds.Set(i, f, t, T(p[f]*poincareLimit/n))
		}
	}
}

// GenerateSwissRoll returns curves on a 3D Swiss roll. Each sample sweeps the
// roll parameter over [t0, t0+1.5π] with t0 drawn in [1.5π, 3π) at a height
// drawn from its cluster's band of [0, 10]. Coordinates are ordered
// (t·cos t, height, t·sin t); only the first Features of them are kept.
func (g *Generator[T]) GenerateSwissRoll() (*Dataset[T], error) {
	return g.Generate(SwissRoll)
}

func (g *Generator[T]) swissRoll() *Dataset[T] {
	ds := g.newDataset()
	steps := ds.Steps
	dims := min(3, ds.Features)
	bands := linspace(0, 10, g.cfg.Clusters+1)
	tLin := linspace(0, 1, steps)
	const span = 1.5 * math.Pi

	for i := range ds.Samples {
		k := ds.Y[i]
		t0 := g.uniform(1.5*math.Pi, 3*math.Pi)
		h := g.uniform(bands[k], bands[k+1])

		for t := range steps {
			u := t0 + span*tLin[t]
			coords := [3]float64{u * math.Cos(u), h, u * math.Sin(u)}
			for f := range dims {
				ds.Set(i, f, t, T(coords[f]))
			}
		}
	}
	return ds
}
