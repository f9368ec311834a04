package sim

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/ephemeris"
	"github.com/san-kum/astroprop/internal/integrators"
	"github.com/san-kum/astroprop/internal/physics"
)

const (
	muSun   = 1.32712440018e11
	muEarth = 3.986004418e5
	oneAU   = 1.496e8
)

func sunEarth() ([]dynamo.Body, dynamo.SystemState) {
	bodies := []dynamo.Body{{Name: "Sun", Mu: muSun}, {Name: "Earth", Mu: muEarth}}
	x := dynamo.NewSystemState(2)
	x.Positions[1] = r3.Vec{X: oneAU}
	x.Velocities[1] = r3.Vec{Y: 29.78}
	return bodies, x
}

func newSim() *Simulator {
	return New(physics.NewGravity(), integrators.NewLeapfrog(), nil)
}

type countingMetric struct {
	count int
	last  float64
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(x dynamo.SystemState, mu []float64, t float64) {
	c.count++
	c.last = t
}
func (c *countingMetric) Value() float64 { return float64(c.count) }

func (c *countingMetric) Reset() {
	c.count = 0
	c.last = 0
}

func TestRunTrajectoryShape(t *testing.T) {
	bodies, x0 := sunEarth()
	cfg := dynamo.Config{StepSize: 3600, RunTime: 86400}

	result, err := newSim().Run(bodies, x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	traj := result.Trajectory
	if traj.Len() != 25 {
		t.Errorf("expected 25 snapshots, got %d", traj.Len())
	}
	for k, snap := range traj.Positions {
		if len(snap) != 2 {
			t.Fatalf("snapshot %d has %d bodies", k, len(snap))
		}
	}
	if traj.Bodies[0] != "Sun" || traj.Bodies[1] != "Earth" {
		t.Errorf("body order not preserved: %v", traj.Bodies)
	}
	if traj.Positions[0][1] != x0.Positions[1] {
		t.Errorf("slot 0 is not the initial position: %v", traj.Positions[0][1])
	}
	if result.StepsTaken != 24 {
		t.Errorf("expected 24 steps, got %d", result.StepsTaken)
	}
	if result.Final.Positions[1] != traj.Positions[24][1] {
		t.Error("final state does not match last snapshot")
	}
}

func TestRunDoesNotModifyInitialState(t *testing.T) {
	bodies, x0 := sunEarth()
	before := x0.Clone()

	if _, err := newSim().Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: 36000}); err != nil {
		t.Fatal(err)
	}

	for i := range before.Positions {
		if x0.Positions[i] != before.Positions[i] || x0.Velocities[i] != before.Velocities[i] {
			t.Fatalf("initial state of body %d was modified", i)
		}
	}
}

func TestSnapshotsDoNotAlias(t *testing.T) {
	bodies, x0 := sunEarth()
	result, err := newSim().Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: 7200})
	if err != nil {
		t.Fatal(err)
	}

	traj := result.Trajectory
	if traj.Positions[0][1] == traj.Positions[1][1] || traj.Positions[1][1] == traj.Positions[2][1] {
		t.Error("consecutive snapshots are identical")
	}

	result.Final.Positions[1] = r3.Vec{}
	if traj.Positions[2][1] == (r3.Vec{}) {
		t.Error("final state aliases the last snapshot")
	}
}

func TestStepCountBoundary(t *testing.T) {
	tests := []struct {
		name    string
		runTime float64
		want    int
	}{
		{"zero run time", 0, 1},
		{"shorter than one step", 1800, 1},
		{"exactly one step", 3600, 2},
		{"fractional tail dropped", 3600 * 2.5, 3},
		{"one year hourly", 86400 * 365.25, 8767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies, x0 := sunEarth()
			result, err := newSim().Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: tt.runTime})
			if err != nil {
				t.Fatal(err)
			}
			if result.Trajectory.Len() != tt.want {
				t.Errorf("expected %d snapshots, got %d", tt.want, result.Trajectory.Len())
			}
		})
	}
}

func TestRunInvalidConfig(t *testing.T) {
	bodies, x0 := sunEarth()

	tests := []struct {
		name   string
		bodies []dynamo.Body
		x0     dynamo.SystemState
		cfg    dynamo.Config
		want   error
	}{
		{"zero step", bodies, x0, dynamo.Config{StepSize: 0, RunTime: 10}, dynamo.ErrInvalidStepSize},
		{"negative step", bodies, x0, dynamo.Config{StepSize: -1, RunTime: 10}, dynamo.ErrInvalidStepSize},
		{"nan step", bodies, x0, dynamo.Config{StepSize: math.NaN(), RunTime: 10}, dynamo.ErrInvalidStepSize},
		{"negative run time", bodies, x0, dynamo.Config{StepSize: 1, RunTime: -1}, dynamo.ErrInvalidRunTime},
		{"infinite run time", bodies, x0, dynamo.Config{StepSize: 1, RunTime: math.Inf(1)}, dynamo.ErrInvalidRunTime},
		{"no bodies", nil, dynamo.NewSystemState(0), dynamo.Config{StepSize: 1, RunTime: 1}, dynamo.ErrNoBodies},
		{"state too short", bodies, dynamo.NewSystemState(1), dynamo.Config{StepSize: 1, RunTime: 1}, dynamo.ErrDimensionMismatch},
		{"step count overflows", bodies, x0, dynamo.Config{StepSize: 1e-300, RunTime: 1e300}, dynamo.ErrInvalidRunTime},
		{"too many steps", bodies, x0, dynamo.Config{StepSize: 1, RunTime: 2 * dynamo.MaxSteps}, dynamo.ErrInvalidRunTime},
		{"nan mu", []dynamo.Body{{Name: "Sun", Mu: math.NaN()}, {Name: "Earth"}}, x0, dynamo.Config{StepSize: 1, RunTime: 1}, dynamo.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newSim().Run(tt.bodies, tt.x0, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestKeplerOrbitRadius(t *testing.T) {
	bodies, x0 := sunEarth()
	result, err := newSim().Run(bodies, x0, dynamo.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	minR, maxR := math.Inf(1), 0.0
	for _, snap := range result.Trajectory.Positions {
		r := r3.Norm(r3.Sub(snap[1], snap[0]))
		minR = math.Min(minR, r)
		maxR = math.Max(maxR, r)
	}

	if minR < 0.98*oneAU || maxR > 1.02*oneAU {
		t.Errorf("orbit radius left the ±2%% band: [%.4e, %.4e]", minR, maxR)
	}

	final := result.Final
	closing := r3.Norm(r3.Sub(r3.Sub(final.Positions[1], final.Positions[0]), x0.Positions[1]))
	if closing > 0.02*oneAU {
		t.Errorf("earth did not return near its start after one year: off by %.4e km", closing)
	}

	if result.EnergyDrift > 1e-5 {
		t.Errorf("energy drift too high: %e", result.EnergyDrift)
	}
}

func TestZeroGravityStraightLines(t *testing.T) {
	bodies := []dynamo.Body{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	x0 := dynamo.NewSystemState(3)
	x0.Positions[0] = r3.Vec{X: 1, Y: 2, Z: 3}
	x0.Velocities[0] = r3.Vec{X: 0.5}
	x0.Positions[1] = r3.Vec{X: -100}
	x0.Velocities[1] = r3.Vec{Y: -2, Z: 1}
	x0.Velocities[2] = r3.Vec{X: 1, Y: 1, Z: 1}

	cfg := dynamo.Config{StepSize: 10, RunTime: 1000}
	result, err := newSim().Run(bodies, x0, cfg)
	if err != nil {
		t.Fatal(err)
	}

	times := result.Trajectory.Times()
	for k, snap := range result.Trajectory.Positions {
		for i := range bodies {
			want := r3.Add(x0.Positions[i], r3.Scale(times[k], x0.Velocities[i]))
			if d := r3.Norm(r3.Sub(snap[i], want)); d > 1e-9 {
				t.Fatalf("body %d at step %d off its straight line by %g", i, k, d)
			}
		}
	}
}

func TestCoincidentBodiesStayFinite(t *testing.T) {
	bodies := []dynamo.Body{{Name: "A", Mu: 100}, {Name: "B", Mu: 100}}
	x0 := dynamo.NewSystemState(2)

	result, err := newSim().Run(bodies, x0, dynamo.Config{StepSize: 1, RunTime: 10})
	if err != nil {
		t.Fatalf("coincident bodies should not fail: %v", err)
	}

	for k, snap := range result.Trajectory.Positions {
		for i, p := range snap {
			if p != (r3.Vec{}) {
				t.Errorf("body %d moved at step %d: %v", i, k, p)
			}
		}
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	bodies := []dynamo.Body{
		{Name: "Sun", Mu: muSun},
		{Name: "Mercury", Mu: 2.2032e4},
		{Name: "Venus", Mu: 3.24859e5},
		{Name: "Earth", Mu: muEarth},
		{Name: "Mars", Mu: 4.282837e4},
	}
	radii := []float64{0, 5.791e7, 1.0821e8, 1.496e8, 2.2794e8}
	speeds := []float64{0, 47.87, 35.02, 29.78, 24.13}

	x0 := dynamo.NewSystemState(len(bodies))
	for i := range bodies {
		x0.Positions[i] = r3.Vec{X: radii[i]}
		x0.Velocities[i] = r3.Vec{Y: speeds[i]}
	}

	run := func(workers int) *dynamo.Result {
		cfg := dynamo.Config{StepSize: 3600, RunTime: 86400 * 30, Workers: workers}
		result, err := New(physics.NewGravity(), integrators.NewLeapfrog(), nil).Run(bodies, x0, cfg)
		if err != nil {
			t.Fatal(err)
		}
		return result
	}

	seq := run(1)
	par := run(4)
	again := run(1)

	for k := range seq.Trajectory.Positions {
		for i := range bodies {
			if seq.Trajectory.Positions[k][i] != par.Trajectory.Positions[k][i] {
				t.Fatalf("parallel run differs at step %d body %d", k, i)
			}
			if seq.Trajectory.Positions[k][i] != again.Trajectory.Positions[k][i] {
				t.Fatalf("repeated run differs at step %d body %d", k, i)
			}
		}
	}
}

func TestUnknownBodyDegradesToTestParticle(t *testing.T) {
	consts := constants.Default(nil)
	samples := ephemeris.Samples{
		"Sun":   {{}},
		"Earth": {{Position: r3.Vec{X: oneAU}, Velocity: r3.Vec{Y: 29.78}}},
	}
	cfg := dynamo.Config{StepSize: 3600, RunTime: 86400 * 10}

	bodies, x0, err := ephemeris.Initialize([]string{"Sun", "Earth", "Vulcan"}, samples, consts)
	if err != nil {
		t.Fatal(err)
	}
	if bodies[2].Mu != 0 {
		t.Fatalf("unknown body should have zero mu, got %v", bodies[2].Mu)
	}

	withVulcan, err := newSim().Run(bodies, x0, cfg)
	if err != nil {
		t.Fatalf("run with unknown body failed: %v", err)
	}

	bodies, x0, err = ephemeris.Initialize([]string{"Sun", "Earth"}, samples, consts)
	if err != nil {
		t.Fatal(err)
	}
	without, err := newSim().Run(bodies, x0, cfg)
	if err != nil {
		t.Fatal(err)
	}

	for k := range without.Trajectory.Positions {
		if withVulcan.Trajectory.Positions[k][1] != without.Trajectory.Positions[k][1] {
			t.Fatalf("zero-mu body perturbed earth at step %d", k)
		}
	}
}

type blowUp struct{}

func (blowUp) Accelerations(pos []r3.Vec, mu []float64, out []r3.Vec) {
	for i := range out {
		out[i] = r3.Vec{X: math.NaN()}
	}
}

func TestInvalidStateAborts(t *testing.T) {
	bodies, x0 := sunEarth()
	s := New(blowUp{}, integrators.NewLeapfrog(), nil)

	result, err := s.Run(bodies, x0, dynamo.Config{StepSize: 60, RunTime: 600})
	if result != nil {
		t.Error("expected no result for a diverged run")
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %v", err)
	}
	if simErr.Step != 1 || simErr.Time != 60 {
		t.Errorf("unexpected failure point: step %d t=%v", simErr.Step, simErr.Time)
	}
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Error("error does not wrap ErrInvalidState")
	}
}

func TestInvalidInitialStateRejected(t *testing.T) {
	tests := []struct {
		name string
		cfg  dynamo.Config
	}{
		{"zero run time", dynamo.Config{StepSize: 3600}},
		{"run time below step", dynamo.Config{StepSize: 3600, RunTime: 1800}},
		{"one day", dynamo.Config{StepSize: 3600, RunTime: 86400}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies, x0 := sunEarth()
			x0.Positions[1].Y = math.NaN()

			result, err := newSim().Run(bodies, x0, tt.cfg)
			if result != nil {
				t.Error("expected no result for a non-finite initial state")
			}

			var simErr *dynamo.SimulationError
			if !errors.As(err, &simErr) {
				t.Fatalf("expected SimulationError, got %v", err)
			}
			if simErr.Step != 0 || !errors.Is(err, dynamo.ErrInvalidState) {
				t.Errorf("expected ErrInvalidState at step 0, got %v", err)
			}
		})
	}
}

func TestWorkersResetBetweenRuns(t *testing.T) {
	bodies, x0 := sunEarth()
	g := physics.NewGravity()
	s := New(g, integrators.NewLeapfrog(), nil)

	if _, err := s.Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: 3600, Workers: 4}); err != nil {
		t.Fatal(err)
	}
	if g.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", g.Workers)
	}

	if _, err := s.Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: 3600}); err != nil {
		t.Fatal(err)
	}
	if g.Workers != 0 {
		t.Errorf("sequential run kept %d workers from the previous run", g.Workers)
	}
}

func TestMetricsObserveEverySnapshot(t *testing.T) {
	bodies, x0 := sunEarth()
	s := newSim()
	m := &countingMetric{}
	s.AddMetric(m)

	result, err := s.Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: 36000})
	if err != nil {
		t.Fatal(err)
	}

	if result.Metrics["count"] != 11 {
		t.Errorf("expected 11 observations, got %v", result.Metrics["count"])
	}
	if m.last != 36000 {
		t.Errorf("expected last observation at t=36000, got %v", m.last)
	}

	if _, err := s.Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: 3600}); err != nil {
		t.Fatal(err)
	}
	if m.count != 2 {
		t.Errorf("metric not reset between runs: %d", m.count)
	}
}
