package integrators

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Leapfrog is the velocity-Verlet kick-drift-kick scheme. It is symplectic
// and second order; each step evaluates the model exactly twice.
type Leapfrog struct {
	acc []r3.Vec
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) ensureScratch(n int) {
	if len(l.acc) != n {
		l.acc = make([]r3.Vec, n)
	}
}

func (l *Leapfrog) Step(model dynamo.AccelerationModel, x *dynamo.SystemState, mu []float64, dt float64) {
	n := x.Len()
	l.ensureScratch(n)
	halfDt := 0.5 * dt

	// kick with a(x_n)
	model.Accelerations(x.Positions, mu, l.acc)
	for i := 0; i < n; i++ {
		x.Velocities[i] = r3.Add(x.Velocities[i], r3.Scale(halfDt, l.acc[i]))
	}

	// drift with the half-kicked velocity
	for i := 0; i < n; i++ {
		x.Positions[i] = r3.Add(x.Positions[i], r3.Scale(dt, x.Velocities[i]))
	}

	// kick with a(x_{n+1})
	model.Accelerations(x.Positions, mu, l.acc)
	for i := 0; i < n; i++ {
		x.Velocities[i] = r3.Add(x.Velocities[i], r3.Scale(halfDt, l.acc[i]))
	}
}
