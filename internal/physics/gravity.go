package physics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// DefaultThreshold is the separation (km) at or below which a pair is
// ignored.
const DefaultThreshold = 1e-12

type Gravity struct {
	Threshold float64
	Workers   int
}

func NewGravity() *Gravity {
	return &Gravity{Threshold: DefaultThreshold}
}

func (g *Gravity) SetWorkers(n int) { g.Workers = n }

func (g *Gravity) Accelerations(pos []r3.Vec, mu []float64, out []r3.Vec) {
	dynamo.ParallelFor(len(pos), g.Workers, func(i int) {
		out[i] = g.accelerationOn(i, pos, mu)
	})
}

func (g *Gravity) accelerationOn(i int, pos []r3.Vec, mu []float64) r3.Vec {
	var acc r3.Vec
	pi := pos[i]

	for j, pj := range pos {
		if j == i {
			continue
		}

		diff := r3.Sub(pj, pi)
		r := r3.Norm(diff)
		if r <= g.Threshold {
			continue
		}

		acc = r3.Add(acc, r3.Scale(mu[j]/(r*r*r), diff))
	}

	return acc
}

// Energy returns Σ μ_i |v_i|²/2 − Σ_{i<j} μ_i μ_j / r_ij, the system energy
// scaled by G (km⁵/s⁴). Pairs inside the threshold are skipped.
func (g *Gravity) Energy(x dynamo.SystemState, mu []float64) float64 {
	n := x.Len()
	ke := 0.0
	pe := 0.0

	for i := 0; i < n; i++ {
		ke += 0.5 * mu[i] * r3.Norm2(x.Velocities[i])

		for j := i + 1; j < n; j++ {
			r := r3.Norm(r3.Sub(x.Positions[j], x.Positions[i]))
			if r <= g.Threshold {
				continue
			}
			pe -= mu[i] * mu[j] / r
		}
	}

	return ke + pe
}

// AngularMomentum returns Σ μ_i (r_i × v_i), the total angular momentum
// scaled by G.
func AngularMomentum(x dynamo.SystemState, mu []float64) r3.Vec {
	var L r3.Vec
	for i := range x.Positions {
		L = r3.Add(L, r3.Scale(mu[i], r3.Cross(x.Positions[i], x.Velocities[i])))
	}
	return L
}

// Momentum returns Σ μ_i v_i.
func Momentum(x dynamo.SystemState, mu []float64) r3.Vec {
	var p r3.Vec
	for i := range x.Velocities {
		p = r3.Add(p, r3.Scale(mu[i], x.Velocities[i]))
	}
	return p
}

// SpecificOrbitalEnergy returns v²/2 − μ/r for a body moving about a
// central body of parameter mu, given its relative position and velocity.
func SpecificOrbitalEnergy(rel, vel r3.Vec, mu float64) float64 {
	return 0.5*r3.Norm2(vel) - mu/r3.Norm(rel)
}
