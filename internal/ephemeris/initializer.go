package ephemeris

import (
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/astroprop/internal/constants"
	"github.com/san-kum/astroprop/internal/dynamo"
)

// Sample is one position (km) / velocity (km/s) pair.
type Sample struct {
	Position r3.Vec
	Velocity r3.Vec
}

// Samples maps a body identifier to its ordered samples.
type Samples map[string][]Sample

// First returns the first sample of id, if any.
func (s Samples) First(id string) (Sample, bool) {
	if s == nil {
		return Sample{}, false
	}
	list := s[id]
	if len(list) == 0 {
		return Sample{}, false
	}
	return list[0], true
}

// Initializer builds the initial state of a run. With Strict set, bodies
// unknown to a Constants provider that implements constants.Validator are
// rejected with dynamo.ErrUnknownBody instead of degrading to μ = 0. A nil
// Constants uses constants.Default.
type Initializer struct {
	Constants constants.Provider
	Logger    log.Logger
	Strict    bool
}

// Initialize uses the soft unknown-body policy and no logging.
func Initialize(ids []string, samples Samples, consts constants.Provider) ([]dynamo.Body, dynamo.SystemState, error) {
	in := &Initializer{Constants: consts}
	return in.Initialize(ids, samples)
}

func (in *Initializer) Initialize(ids []string, samples Samples) ([]dynamo.Body, dynamo.SystemState, error) {
	if len(ids) == 0 {
		return nil, dynamo.SystemState{}, dynamo.ErrNoBodies
	}

	logger := in.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}

	consts := in.Constants
	if consts == nil {
		consts = constants.Default(logger)
	}

	seen := make(map[string]struct{}, len(ids))
	bodies := make([]dynamo.Body, len(ids))
	state := dynamo.NewSystemState(len(ids))

	for i, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, dynamo.SystemState{}, fmt.Errorf("%w: %s", dynamo.ErrDuplicateBody, id)
		}
		seen[id] = struct{}{}

		if in.Strict {
			if v, ok := consts.(constants.Validator); ok && !v.Validate(id) {
				return nil, dynamo.SystemState{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownBody, id)
			}
		}

		bodies[i] = dynamo.Body{Name: id, Mu: consts.Lookup(id)}

		sample, ok := samples.First(id)
		if !ok {
			level.Warn(logger).Log("msg", "no ephemeris data, body starts at rest at the origin", "body", id)
			continue
		}
		state.Positions[i] = sample.Position
		state.Velocities[i] = sample.Velocity
	}

	return bodies, state, nil
}
