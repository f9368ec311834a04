package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Body is a participant of a run. Mu is G times the body's mass in km³/s²;
// a zero Mu makes the body an inert test particle.
type Body struct {
	Name string
	Mu   float64
}

// Names returns the identifiers of bodies in order.
func Names(bodies []Body) []string {
	names := make([]string, len(bodies))
	for i, b := range bodies {
		names[i] = b.Name
	}
	return names
}

// Mus returns the gravitational parameters of bodies in order.
func Mus(bodies []Body) []float64 {
	mu := make([]float64, len(bodies))
	for i, b := range bodies {
		mu[i] = b.Mu
	}
	return mu
}

// SystemState holds one position (km) and velocity (km/s) per body.
type SystemState struct {
	Positions  []r3.Vec
	Velocities []r3.Vec
}

func NewSystemState(n int) SystemState {
	return SystemState{
		Positions:  make([]r3.Vec, n),
		Velocities: make([]r3.Vec, n),
	}
}

func (s SystemState) Len() int { return len(s.Positions) }

func (s SystemState) Clone() SystemState {
	c := NewSystemState(len(s.Positions))
	copy(c.Positions, s.Positions)
	copy(c.Velocities, s.Velocities)
	return c
}

func (s SystemState) IsValid() bool {
	for _, p := range s.Positions {
		if !finite(p) {
			return false
		}
	}
	for _, v := range s.Velocities {
		if !finite(v) {
			return false
		}
	}
	return true
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// AccelerationModel writes the instantaneous acceleration (km/s²) of every
// body into out. Implementations must not retain pos, mu or out.
type AccelerationModel interface {
	Accelerations(pos []r3.Vec, mu []float64, out []r3.Vec)
}

// Parallel is implemented by models that can spread one evaluation over
// several goroutines.
type Parallel interface {
	SetWorkers(n int)
}

// Hamiltonian is implemented by models that can report the conserved
// energy of a state.
type Hamiltonian interface {
	Energy(x SystemState, mu []float64) float64
}

// Stepper advances x in place by one step of dt seconds.
type Stepper interface {
	Step(model AccelerationModel, x *SystemState, mu []float64, dt float64)
}

type Metric interface {
	Name() string
	Observe(x SystemState, mu []float64, t float64)
	Value() float64
	Reset()
}

// MaxSteps bounds the number of steps of a single run.
const MaxSteps = 100_000_000

type Config struct {
	StepSize float64
	RunTime  float64
	Workers  int
}

func DefaultConfig() Config {
	return Config{
		StepSize: 3600,
		RunTime:  86400 * 365.25,
	}
}

// Validate checks the step size and run time, including that the step
// count fits within MaxSteps.
func (c Config) Validate() error {
	if !(c.StepSize > 0) || math.IsInf(c.StepSize, 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidStepSize, c.StepSize)
	}
	if c.RunTime < 0 || math.IsNaN(c.RunTime) || math.IsInf(c.RunTime, 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidRunTime, c.RunTime)
	}
	if ratio := c.RunTime / c.StepSize; !(ratio <= MaxSteps) {
		return fmt.Errorf("%w: %g steps exceeds the limit of %d", ErrInvalidRunTime, ratio, MaxSteps)
	}
	return nil
}

// NumSteps returns floor(RunTime / StepSize). A run time shorter than one
// step yields zero steps. Configs failing Validate yield zero.
func (c Config) NumSteps() int {
	if c.Validate() != nil {
		return 0
	}
	return int(math.Floor(c.RunTime / c.StepSize))
}

type Result struct {
	Trajectory  *Trajectory
	Final       SystemState
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}
