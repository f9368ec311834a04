// Package dynamo provides the core data model for N-body propagation.
//
// The package defines the types shared by every stage of a run:
//
//   - [Body]: identity plus gravitational parameter μ (km³/s²)
//   - [SystemState]: positions and velocities, index-aligned with the bodies
//   - [Trajectory]: dense, preallocated position history of a run
//   - [AccelerationModel]: evaluates the acceleration on every body
//   - [Stepper]: advances a [SystemState] by one fixed time step
//   - [Config]: step size, run time and evaluation options
//
// Units are kilometres, seconds and km³/s² throughout.
//
// # Example
//
//	bodies, x0, _ := ephemeris.Initialize(ids, samples, constants.Default(logger))
//	s := sim.New(physics.NewGravity(), integrators.NewLeapfrog(), logger)
//	result, _ := s.Run(bodies, x0, dynamo.Config{StepSize: 3600, RunTime: 86400})
//
// # Index alignment
//
// Index i of a [SystemState], of a [Trajectory] slot and of the μ slice
// always refers to bodies[i]. Every function in this module preserves that
// ordering.
package dynamo
