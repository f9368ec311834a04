package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/astroprop/internal/config"
	"github.com/san-kum/astroprop/internal/dynamo"
)

// Runner propagates one fully resolved configuration.
type Runner func(ctx context.Context, cfg *config.Config) (*dynamo.Result, error)

// Scenario defines a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from Preset (or the defaults) and overrides any
// non-zero field.
type ScenarioStep struct {
	Preset     string   `yaml:"preset"`
	Bodies     []string `yaml:"bodies"`
	Integrator string   `yaml:"integrator"`
	StepSize   float64  `yaml:"step_size"`
	RunTime    float64  `yaml:"run_time"`
	Start      string   `yaml:"start"`
	End        string   `yaml:"end"`
	Ephemeris  string   `yaml:"ephemeris"`
	SaveAs     string   `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config resolves the step into a validated configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	if len(s.Bodies) > 0 {
		cfg.Bodies = s.Bodies
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.StepSize != 0 {
		cfg.StepSize = s.StepSize
	}
	if s.RunTime != 0 {
		cfg.RunTime = s.RunTime
	}
	if s.Start != "" || s.End != "" {
		cfg.Start, cfg.End = s.Start, s.End
	}
	if s.Ephemeris != "" {
		cfg.Ephemeris = s.Ephemeris
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, run Runner, logger log.Logger) ([]*dynamo.Result, error) {
	logger = orNop(logger)
	results := make([]*dynamo.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		level.Info(logger).Log("msg", "running scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "bodies", len(cfg.Bodies))

		result, err := run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, result)
	}

	return results, nil
}

// SweepResult holds the outcome of one step size.
type SweepResult struct {
	StepSize    float64
	Steps       int
	EnergyDrift float64
	Err         error
}

// RunSweep propagates base once per step size. A failing step size is
// recorded in its result and does not stop the sweep.
func RunSweep(ctx context.Context, base *config.Config, stepSizes []float64, run Runner, logger log.Logger) ([]SweepResult, error) {
	logger = orNop(logger)
	results := make([]SweepResult, 0, len(stepSizes))

	for i, dt := range stepSizes {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		cfg := base.Clone()
		cfg.StepSize = dt
		sr := SweepResult{StepSize: dt}

		if err := cfg.Validate(); err != nil {
			sr.Err = err
		} else if result, err := run(ctx, cfg); err != nil {
			sr.Err = err
		} else {
			sr.Steps = result.StepsTaken
			sr.EnergyDrift = result.EnergyDrift
		}

		level.Debug(logger).Log("msg", "sweep point", "index", i+1, "step_size", dt, "drift", sr.EnergyDrift, "err", sr.Err)
		results = append(results, sr)
	}

	return results, nil
}

// LargestStable returns the largest step size whose drift stays at or below
// tolerance, or false when none does.
func LargestStable(results []SweepResult, tolerance float64) (float64, bool) {
	best, found := 0.0, false
	for _, r := range results {
		if r.Err == nil && r.EnergyDrift <= tolerance && r.StepSize > best {
			best, found = r.StepSize, true
		}
	}
	return best, found
}

// MonteCarloConfig defines a perturbation study around a base run.
type MonteCarloConfig struct {
	Base *config.Config
	// Perturbation is the half-width in km/s of the uniform noise added to
	// every velocity component of every body.
	Perturbation float64
	NumTrials    int
	Seed         int64
	Workers      int
	// EscapeRadius marks a trial unstable when any body ends farther than
	// this from the first body (km).
	EscapeRadius float64
}

type MonteCarloResult struct {
	TrialID     int
	Final       dynamo.SystemState
	EnergyDrift float64
	Stable      bool
	Err         error
}

// Perturb draws one noisy copy of x. Positions are kept.
func Perturb(x dynamo.SystemState, rng *rand.Rand, amplitude float64) dynamo.SystemState {
	out := x.Clone()
	for i := range out.Velocities {
		out.Velocities[i].X += (rng.Float64() - 0.5) * 2 * amplitude
		out.Velocities[i].Y += (rng.Float64() - 0.5) * 2 * amplitude
		out.Velocities[i].Z += (rng.Float64() - 0.5) * 2 * amplitude
	}
	return out
}

// StateRunner propagates an explicit initial state.
type StateRunner func(ctx context.Context, bodies []dynamo.Body, x0 dynamo.SystemState, cfg *config.Config) (*dynamo.Result, error)

// RunMonteCarlo runs NumTrials perturbed copies of x0. Initial states are
// drawn up front from Seed so the outcome does not depend on Workers.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, bodies []dynamo.Body, x0 dynamo.SystemState, run StateRunner, logger log.Logger) ([]MonteCarloResult, error) {
	if mc.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs at least one trial, got %d", mc.NumTrials)
	}
	logger = orNop(logger)

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	inits := make([]dynamo.SystemState, mc.NumTrials)
	for i := range inits {
		inits[i] = Perturb(x0, rng, mc.Perturbation)
	}

	results := make([]MonteCarloResult, mc.NumTrials)
	dynamo.ParallelFor(mc.NumTrials, mc.Workers, func(trial int) {
		r := MonteCarloResult{TrialID: trial}
		result, err := run(ctx, bodies, inits[trial], mc.Base)
		if err != nil {
			r.Err = err
		} else {
			r.Final = result.Final
			r.EnergyDrift = result.EnergyDrift
			r.Stable = bounded(result.Final, mc.EscapeRadius)
		}
		results[trial] = r
	})

	stable, unstable, failed := MonteCarloStats(results)
	level.Info(logger).Log("msg", "monte carlo complete", "trials", mc.NumTrials, "stable", stable, "unstable", unstable, "failed", failed, "seed", seed)

	return results, ctx.Err()
}

func bounded(x dynamo.SystemState, radius float64) bool {
	if radius <= 0 || x.Len() == 0 {
		return x.IsValid()
	}
	c := x.Positions[0]
	for _, p := range x.Positions {
		if !(r3.Norm(r3.Sub(p, c)) <= radius) {
			return false
		}
	}
	return true
}

// MonteCarloStats counts stable, unstable and failed trials.
func MonteCarloStats(results []MonteCarloResult) (stable, unstable, failed int) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
		case r.Stable:
			stable++
		default:
			unstable++
		}
	}
	return
}

func orNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}
