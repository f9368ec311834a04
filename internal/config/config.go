package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/dynamo"
	"github.com/san-kum/astroprop/internal/ephemeris"
)

const (
	DefaultStepSize   = 3600.0
	DefaultRunTime    = constants.SecondsPerYear
	DefaultIntegrator = "leapfrog"

	// DateLayout is the format of Start and End.
	DateLayout = "2006-01-02"
)

type Config struct {
	Bodies     []string                          `yaml:"bodies"`
	Integrator string                            `yaml:"integrator"`
	StepSize   float64                           `yaml:"step_size"`
	RunTime    float64                           `yaml:"run_time"`
	Start      string                            `yaml:"start,omitempty"`
	End        string                            `yaml:"end,omitempty"`
	Ephemeris  string                            `yaml:"ephemeris,omitempty"`
	Workers    int                               `yaml:"workers"`
	Strict     bool                              `yaml:"strict"`
	Initial    map[string]ephemeris.VectorRecord `yaml:"initial,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Bodies:     []string{"Sun", "Earth"},
		Integrator: DefaultIntegrator,
		StepSize:   DefaultStepSize,
		RunTime:    DefaultRunTime,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver decodes the file at path on top of base. Keys absent from the
// file keep their base values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]string(nil), c.Bodies...)
	if c.Initial != nil {
		cp.Initial = make(map[string]ephemeris.VectorRecord, len(c.Initial))
		for k, v := range c.Initial {
			cp.Initial[k] = ephemeris.VectorRecord{
				Position: append([]float64(nil), v.Position...),
				Velocity: append([]float64(nil), v.Velocity...),
			}
		}
	}
	return &cp
}

func (c *Config) Validate() error {
	if len(c.Bodies) == 0 {
		return dynamo.ErrNoBodies
	}
	seen := make(map[string]bool, len(c.Bodies))
	for _, b := range c.Bodies {
		if seen[b] {
			return fmt.Errorf("%w: %s", dynamo.ErrDuplicateBody, b)
		}
		seen[b] = true
	}
	if !(c.StepSize > 0) || math.IsInf(c.StepSize, 0) {
		return fmt.Errorf("%w, got %v", dynamo.ErrInvalidStepSize, c.StepSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	runTime, err := c.ResolveRunTime()
	if err != nil {
		return err
	}
	if err := (dynamo.Config{StepSize: c.StepSize, RunTime: runTime}).Validate(); err != nil {
		return err
	}
	for body, rec := range c.Initial {
		if _, err := rec.ToSample(); err != nil {
			return fmt.Errorf("initial state of %s: %w", body, err)
		}
	}
	return nil
}

// ResolveRunTime returns the propagation span in seconds. A Start/End pair
// takes precedence over RunTime.
func (c *Config) ResolveRunTime() (float64, error) {
	if c.Start == "" && c.End == "" {
		if c.RunTime < 0 || math.IsNaN(c.RunTime) || math.IsInf(c.RunTime, 0) {
			return 0, fmt.Errorf("%w, got %v", dynamo.ErrInvalidRunTime, c.RunTime)
		}
		return c.RunTime, nil
	}
	if c.Start == "" || c.End == "" {
		return 0, fmt.Errorf("%w: start and end must be given together", dynamo.ErrInvalidRunTime)
	}

	start, err := time.Parse(DateLayout, c.Start)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(DateLayout, c.End)
	if err != nil {
		return 0, fmt.Errorf("invalid end date: %w", err)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end %s is before start %s", dynamo.ErrInvalidRunTime, c.End, c.Start)
	}
	return end.Sub(start).Seconds(), nil
}

func (c *Config) SimConfig() (dynamo.Config, error) {
	runTime, err := c.ResolveRunTime()
	if err != nil {
		return dynamo.Config{}, err
	}
	cfg := dynamo.DefaultConfig()
	cfg.StepSize = c.StepSize
	cfg.RunTime = runTime
	cfg.Workers = c.Workers
	return cfg, nil
}

// Samples converts the inline initial states into ephemeris samples.
func (c *Config) Samples() (ephemeris.Samples, error) {
	out := make(ephemeris.Samples, len(c.Initial))
	for body, rec := range c.Initial {
		s, err := rec.ToSample()
		if err != nil {
			return nil, fmt.Errorf("initial state of %s: %w", body, err)
		}
		out[body] = []ephemeris.Sample{s}
	}
	return out, nil
}
