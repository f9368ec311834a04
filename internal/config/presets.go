package config

import (
	"sort"

	"github.com/san-kum/astroprop/internal/ephemeris"
)

func circular(radius, speed float64) ephemeris.VectorRecord {
	return ephemeris.VectorRecord{
		Position: []float64{radius, 0, 0},
		Velocity: []float64{0, speed, 0},
	}
}

var atRest = circular(0, 0)

var Presets = map[string]*Config{
	"sun-earth": {
		Bodies: []string{"Sun", "Earth"}, Integrator: "leapfrog", StepSize: 3600, RunTime: DefaultRunTime,
		Initial: map[string]ephemeris.VectorRecord{
			"Sun":   atRest,
			"Earth": circular(1.496e8, 29.78),
		},
	},
	"earth-moon": {
		Bodies: []string{"Earth", "Moon"}, Integrator: "leapfrog", StepSize: 600, RunTime: 86400 * 27.3,
		Initial: map[string]ephemeris.VectorRecord{
			"Earth": atRest,
			"Moon":  circular(384400, 1.018),
		},
	},
	"inner": {
		Bodies: []string{"Sun", "Mercury", "Venus", "Earth", "Mars"}, Integrator: "leapfrog", StepSize: 3600, RunTime: 2 * DefaultRunTime,
		Initial: map[string]ephemeris.VectorRecord{
			"Sun":     atRest,
			"Mercury": circular(5.791e7, 47.87),
			"Venus":   circular(1.0821e8, 35.02),
			"Earth":   circular(1.496e8, 29.78),
			"Mars":    circular(2.2794e8, 24.13),
		},
	},
	"outer": {
		Bodies: []string{"Sun", "Jupiter", "Saturn", "Uranus", "Neptune"}, Integrator: "leapfrog", StepSize: 86400, RunTime: 165 * DefaultRunTime,
		Initial: map[string]ephemeris.VectorRecord{
			"Sun":     atRest,
			"Jupiter": circular(7.7857e8, 13.06),
			"Saturn":  circular(1.43353e9, 9.62),
			"Uranus":  circular(2.87246e9, 6.80),
			"Neptune": circular(4.49506e9, 5.43),
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
