package dynamo

import "gonum.org/v1/gonum/spatial/r3"

// Trajectory is the position history of a run: one slot per step including
// the initial state, each slot holding one position per body.
type Trajectory struct {
	Bodies    []string
	StepSize  float64
	Positions [][]r3.Vec
}

// NewTrajectory allocates every slot of a run up front. All slots share a
// single backing array of (steps+1)*len(bodies) vectors.
func NewTrajectory(bodies []string, stepSize float64, steps int) *Trajectory {
	n := len(bodies)
	backing := make([]r3.Vec, (steps+1)*n)
	slots := make([][]r3.Vec, steps+1)
	for k := range slots {
		slots[k] = backing[k*n : (k+1)*n : (k+1)*n]
	}
	names := make([]string, n)
	copy(names, bodies)
	return &Trajectory{Bodies: names, StepSize: stepSize, Positions: slots}
}

// Len returns the number of recorded slots (steps + 1).
func (t *Trajectory) Len() int { return len(t.Positions) }

func (t *Trajectory) NumBodies() int { return len(t.Bodies) }

// Record copies pos into slot k.
func (t *Trajectory) Record(k int, pos []r3.Vec) {
	copy(t.Positions[k], pos)
}

// Index returns the slot column of the named body, or -1.
func (t *Trajectory) Index(name string) int {
	for i, b := range t.Bodies {
		if b == name {
			return i
		}
	}
	return -1
}

// Series returns the positions of body i across every slot.
func (t *Trajectory) Series(i int) []r3.Vec {
	out := make([]r3.Vec, len(t.Positions))
	for k, slot := range t.Positions {
		out[k] = slot[i]
	}
	return out
}

// Times returns the elapsed time in seconds of every slot.
func (t *Trajectory) Times() []float64 {
	times := make([]float64, len(t.Positions))
	for k := range times {
		times[k] = float64(k) * t.StepSize
	}
	return times
}

// Flatten returns the (steps+1) x N x 3 array form handed to consumers.
func (t *Trajectory) Flatten() [][][3]float64 {
	out := make([][][3]float64, len(t.Positions))
	for k, slot := range t.Positions {
		row := make([][3]float64, len(slot))
		for i, p := range slot {
			row[i] = [3]float64{p.X, p.Y, p.Z}
		}
		out[k] = row
	}
	return out
}
