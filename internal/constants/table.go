// Package constants is the read-only table of physical constants for the
// supported solar-system bodies.
package constants

import (
	"sort"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Provider maps a body identifier to its gravitational parameter μ (km³/s²).
type Provider interface {
	Lookup(id string) float64
}

// Validator is implemented by providers that can tell whether an identifier
// is known.
type Validator interface {
	Validate(id string) bool
}

var gravitationalParameters = map[string]float64{
	"Sun":     1.32712440018e11,
	"Mercury": 2.2032e4,
	"Venus":   3.24859e5,
	"Earth":   3.986004418e5,
	"Moon":    4.9048695e3,
	"Mars":    4.282837e4,
	"Jupiter": 1.26686534e8,
	"Saturn":  3.7931187e7,
	"Uranus":  5.793939e6,
	"Neptune": 6.836529e6,
	"Pluto":   8.71e2,
}

// mean radii in km
var radii = map[string]float64{
	"Sun":     696340.0,
	"Mercury": 2439.7,
	"Venus":   6051.8,
	"Earth":   6371.0,
	"Moon":    1737.4,
	"Mars":    3389.5,
	"Jupiter": 69911.0,
	"Saturn":  58232.0,
	"Uranus":  25362.0,
	"Neptune": 24622.0,
	"Pluto":   1188.3,
}

// mean densities in kg/m³
var densities = map[string]float64{
	"Sun":     1408,
	"Mercury": 5427,
	"Venus":   5243,
	"Earth":   5514,
	"Moon":    3344,
	"Mars":    3933,
	"Jupiter": 1326,
	"Saturn":  687,
	"Uranus":  1271,
	"Neptune": 1638,
	"Pluto":   1850,
}

// Table is a Provider backed by fixed maps. Unknown identifiers resolve to
// zero and are reported through the logger at warn level.
type Table struct {
	mu      map[string]float64
	radius  map[string]float64
	density map[string]float64
	logger  log.Logger
}

// Default returns the table of solar-system bodies.
func Default(logger log.Logger) *Table {
	return &Table{
		mu:      gravitationalParameters,
		radius:  radii,
		density: densities,
		logger:  orNop(logger),
	}
}

// NewTable returns a table over a caller supplied μ map, for synthetic
// bodies. The map is copied.
func NewTable(mu map[string]float64, logger log.Logger) *Table {
	m := make(map[string]float64, len(mu))
	for k, v := range mu {
		m[k] = v
	}
	return &Table{
		mu:      m,
		radius:  map[string]float64{},
		density: map[string]float64{},
		logger:  orNop(logger),
	}
}

func (t *Table) Validate(id string) bool {
	_, ok := t.mu[id]
	return ok
}

func (t *Table) Lookup(id string) float64 {
	mu, ok := t.mu[id]
	if !ok {
		level.Warn(t.logger).Log("msg", "unsupported body, gravitational parameter set to zero", "body", id)
		return 0.0
	}
	return mu
}

// Radius returns the mean radius in km, or zero for unknown bodies.
func (t *Table) Radius(id string) float64 {
	if !t.Validate(id) {
		level.Warn(t.logger).Log("msg", "unsupported body", "body", id)
		return 0.0
	}
	return t.radius[id]
}

// Density returns the mean density in kg/m³, or zero for unknown bodies.
func (t *Table) Density(id string) float64 {
	if !t.Validate(id) {
		level.Warn(t.logger).Log("msg", "unsupported body", "body", id)
		return 0.0
	}
	return t.density[id]
}

// Supported lists the known identifiers in lexical order.
func (t *Table) Supported() []string {
	names := make([]string, 0, len(t.mu))
	for name := range t.mu {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func orNop(logger log.Logger) log.Logger {
	if logger == nil {
		return log.NewNopLogger()
	}
	return logger
}
