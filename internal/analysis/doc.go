// Package analysis derives orbital quantities from propagated trajectories.
//
// All functions work on a finished [dynamo.Trajectory] and never run a
// propagation themselves:
//
//   - [RelativeSeries], [Radii] and [Orbit]: motion of a body about a center
//   - [DominantPeriod] and [PowerSpectrum]: spectral period estimate
//   - [Crossings] and [CrossingPeriod]: section through the +X half-plane
//   - [Separation] and [DivergenceRate]: drift between two runs
//   - [OrbitPlot]: top-down ASCII projection
//
// # Period estimate
//
// The orbital period of a body can be read from the x component of its
// position relative to the central body:
//
//	rel, _ := analysis.RelativeSeries(traj, "Earth", "Sun")
//	period, err := analysis.DominantPeriod(analysis.Component(rel, 0), traj.StepSize)
package analysis
