package integrators

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Euler is the explicit forward-Euler step. It drifts secularly in energy
// and exists only as a comparison baseline.
type Euler struct {
	acc []r3.Vec
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(model dynamo.AccelerationModel, x *dynamo.SystemState, mu []float64, dt float64) {
	n := x.Len()
	if len(e.acc) != n {
		e.acc = make([]r3.Vec, n)
	}

	model.Accelerations(x.Positions, mu, e.acc)
	for i := 0; i < n; i++ {
		x.Positions[i] = r3.Add(x.Positions[i], r3.Scale(dt, x.Velocities[i]))
		x.Velocities[i] = r3.Add(x.Velocities[i], r3.Scale(dt, e.acc[i]))
	}
}
