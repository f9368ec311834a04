package sim

import (
	"fmt"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/san-kum/astroprop/internal/dynamo"
)

type Simulator struct {
	model   dynamo.AccelerationModel
	stepper dynamo.Stepper
	metrics []dynamo.Metric
	logger  log.Logger
}

func New(model dynamo.AccelerationModel, stepper dynamo.Stepper, logger log.Logger) *Simulator {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Simulator{
		model:   model,
		stepper: stepper,
		metrics: make([]dynamo.Metric, 0),
		logger:  log.With(logger, "component", "sim"),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric) { s.metrics = append(s.metrics, m) }

// Run propagates x0 for cfg.NumSteps() steps. The returned trajectory holds
// NumSteps+1 snapshots, slot 0 being the initial positions. x0 is not
// modified.
func (s *Simulator) Run(bodies []dynamo.Body, x0 dynamo.SystemState, cfg dynamo.Config) (*dynamo.Result, error) {
	if err := validate(bodies, x0, cfg); err != nil {
		return nil, err
	}

	mu := dynamo.Mus(bodies)
	steps := cfg.NumSteps()
	dt := cfg.StepSize

	if p, ok := s.model.(dynamo.Parallel); ok {
		p.SetWorkers(cfg.Workers)
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	level.Debug(s.logger).Log("msg", "starting propagation", "bodies", len(bodies), "steps", steps, "step_size", dt)

	x := x0.Clone()
	traj := dynamo.NewTrajectory(dynamo.Names(bodies), dt, steps)
	traj.Record(0, x.Positions)
	s.observe(x, mu, 0)

	initialEnergy := s.energy(x, mu)

	for k := 1; k <= steps; k++ {
		s.stepper.Step(s.model, &x, mu, dt)
		t := float64(k) * dt

		if !x.IsValid() {
			level.Error(s.logger).Log("msg", "propagation diverged", "step", k, "t", t)
			return nil, &dynamo.SimulationError{Step: k, Time: t, Wrapped: dynamo.ErrInvalidState}
		}

		traj.Record(k, x.Positions)
		s.observe(x, mu, t)
	}

	result := &dynamo.Result{
		Trajectory: traj,
		Final:      x,
		Metrics:    make(map[string]float64, len(s.metrics)),
		StepsTaken: steps,
	}

	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(s.energy(x, mu)-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	level.Info(s.logger).Log("msg", "propagation complete", "bodies", len(bodies), "steps", steps, "energy_drift", result.EnergyDrift)

	return result, nil
}

func (s *Simulator) observe(x dynamo.SystemState, mu []float64, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, mu, t)
	}
}

func (s *Simulator) energy(x dynamo.SystemState, mu []float64) float64 {
	if h, ok := s.model.(dynamo.Hamiltonian); ok {
		return h.Energy(x, mu)
	}
	return 0
}

func validate(bodies []dynamo.Body, x0 dynamo.SystemState, cfg dynamo.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(bodies) == 0 {
		return dynamo.ErrNoBodies
	}
	if len(x0.Positions) != len(bodies) || len(x0.Velocities) != len(bodies) {
		return fmt.Errorf("%w: %d bodies, %d positions, %d velocities",
			dynamo.ErrDimensionMismatch, len(bodies), len(x0.Positions), len(x0.Velocities))
	}
	if !x0.IsValid() {
		return &dynamo.SimulationError{Wrapped: dynamo.ErrInvalidState}
	}
	for _, b := range bodies {
		if math.IsNaN(b.Mu) || math.IsInf(b.Mu, 0) {
			return &dynamo.SimulationError{Wrapped: fmt.Errorf("%w: mu of %s is %v", dynamo.ErrInvalidState, b.Name, b.Mu)}
		}
	}
	return nil
}
