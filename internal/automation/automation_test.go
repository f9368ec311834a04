package automation

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/dynamo"
)

func TestScenarioStepConfig(t *testing.T) {
	cfg, err := ScenarioStep{Preset: "earth-moon", StepSize: 300, Integrator: "euler"}.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StepSize != 300 || cfg.Integrator != "euler" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Bodies, []string{"Earth", "Moon"}) {
		t.Errorf("preset bodies lost: %v", cfg.Bodies)
	}
	if config.Presets["earth-moon"].StepSize != 600 {
		t.Error("preset was modified")
	}

	if _, err := (ScenarioStep{Preset: "nope"}).Config(); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := (ScenarioStep{StepSize: -1}).Config(); !errors.Is(err, dynamo.ErrInvalidStepSize) {
		t.Errorf("expected ErrInvalidStepSize, got %v", err)
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	doc := `name: nightly
steps:
  - preset: sun-earth
    run_time: 86400
  - bodies: [Sun, Jupiter]
    step_size: 7200
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "nightly" || len(s.Steps) != 2 {
		t.Fatalf("unexpected scenario: %+v", s)
	}
	if s.Steps[1].Bodies[1] != "Jupiter" || s.Steps[1].StepSize != 7200 {
		t.Errorf("second step decoded wrong: %+v", s.Steps[1])
	}

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("name: empty\n"), 0644)
	if _, err := LoadScenario(empty); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestRunScenario(t *testing.T) {
	var seen []float64
	run := func(ctx context.Context, cfg *config.Config) (*dynamo.Result, error) {
		seen = append(seen, cfg.StepSize)
		return &dynamo.Result{StepsTaken: 1}, nil
	}

	s := &Scenario{Name: "two", Steps: []ScenarioStep{{StepSize: 60}, {StepSize: 120}}}
	results, err := RunScenario(context.Background(), s, run, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || !reflect.DeepEqual(seen, []float64{60, 120}) {
		t.Errorf("results=%d seen=%v", len(results), seen)
	}

	boom := errors.New("boom")
	failing := func(ctx context.Context, cfg *config.Config) (*dynamo.Result, error) {
		return nil, boom
	}
	results, err = RunScenario(context.Background(), s, failing, nil)
	if !errors.Is(err, boom) || len(results) != 0 {
		t.Errorf("expected first step failure, got %v with %d results", err, len(results))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunScenario(ctx, s, run, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunSweep(t *testing.T) {
	run := func(ctx context.Context, cfg *config.Config) (*dynamo.Result, error) {
		return &dynamo.Result{
			StepsTaken:  int(cfg.RunTime / cfg.StepSize),
			EnergyDrift: cfg.StepSize * cfg.StepSize * 1e-12,
		}, nil
	}

	base := config.DefaultConfig()
	results, err := RunSweep(context.Background(), base, []float64{600, 3600, 0, 86400}, run, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if !errors.Is(results[2].Err, dynamo.ErrInvalidStepSize) {
		t.Errorf("zero step size should fail validation, got %v", results[2].Err)
	}
	if base.StepSize != config.DefaultStepSize {
		t.Error("sweep modified the base config")
	}

	best, ok := LargestStable(results, 1e-4)
	if !ok || best != 3600 {
		t.Errorf("LargestStable = %v, %v; want 3600", best, ok)
	}
	if _, ok := LargestStable(results, 1e-9); ok {
		t.Error("expected no step size under 1e-9")
	}
}

func TestPerturb(t *testing.T) {
	x := dynamo.NewSystemState(2)
	x.Positions[1] = r3.Vec{X: 1e8}
	x.Velocities[1] = r3.Vec{Y: 30}

	p := Perturb(x, rand.New(rand.NewSource(1)), 0.1)

	if !reflect.DeepEqual(p.Positions, x.Positions) {
		t.Error("positions should not be perturbed")
	}
	if x.Velocities[1] != (r3.Vec{Y: 30}) {
		t.Error("input was modified")
	}
	for i, v := range p.Velocities {
		d := r3.Sub(v, x.Velocities[i])
		if math.Abs(d.X) > 0.1 || math.Abs(d.Y) > 0.1 || math.Abs(d.Z) > 0.1 {
			t.Errorf("body %d perturbation out of range: %v", i, d)
		}
	}
}

func TestRunMonteCarlo(t *testing.T) {
	x0 := dynamo.NewSystemState(2)
	x0.Positions[1] = r3.Vec{X: 100}

	// drifts each body for one second so escape depends on the draw
	run := func(ctx context.Context, bodies []dynamo.Body, x dynamo.SystemState, cfg *config.Config) (*dynamo.Result, error) {
		final := x.Clone()
		for i := range final.Positions {
			final.Positions[i] = r3.Add(final.Positions[i], x.Velocities[i])
		}
		return &dynamo.Result{Final: final}, nil
	}

	mc := &MonteCarloConfig{
		Base:         config.DefaultConfig(),
		Perturbation: 10,
		NumTrials:    32,
		Seed:         7,
		Workers:      1,
		EscapeRadius: 105,
	}
	bodies := []dynamo.Body{{Name: "A"}, {Name: "B"}}

	seq, err := RunMonteCarlo(context.Background(), mc, bodies, x0, run, nil)
	if err != nil {
		t.Fatal(err)
	}
	mc.Workers = 4
	par, err := RunMonteCarlo(context.Background(), mc, bodies, x0, run, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(seq, par) {
		t.Error("results depend on worker count")
	}

	stable, unstable, failed := MonteCarloStats(seq)
	if stable+unstable+failed != 32 || failed != 0 {
		t.Errorf("stats = %d/%d/%d", stable, unstable, failed)
	}
	if stable == 0 || unstable == 0 {
		t.Errorf("expected a mix of outcomes, got %d stable %d unstable", stable, unstable)
	}
	for i, r := range seq {
		if r.TrialID != i {
			t.Errorf("trial %d has id %d", i, r.TrialID)
		}
	}

	mc.NumTrials = 0
	if _, err := RunMonteCarlo(context.Background(), mc, bodies, x0, run, nil); err == nil {
		t.Error("expected error for zero trials")
	}
}
