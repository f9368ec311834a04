// Package ephemeris assembles the initial state of a run.
//
// Initial positions and velocities come from a [Provider]: an in-memory
// [Static] mapping, a YAML/JSON document read by [FileProvider], or a
// directory of saved JPL Horizons vector tables read by [HorizonsDir].
// [Initializer] merges those samples with gravitational parameters from a
// constants.Provider into bodies and a dynamo.SystemState.
//
// Only the first sample of each body is used. Bodies without samples start
// at rest at the origin; the fallback is logged, not treated as an error.
package ephemeris
