package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Default is the integrator used when none is named.
const Default = "leapfrog"

var registry = map[string]func() dynamo.Stepper{
	"leapfrog": func() dynamo.Stepper { return NewLeapfrog() },
	"verlet":   func() dynamo.Stepper { return NewLeapfrog() },
	"euler":    func() dynamo.Stepper { return NewEuler() },
}

// Get returns a fresh stepper by name. An empty name selects Default.
func Get(name string) (dynamo.Stepper, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
