// Package physics provides the gravitational acceleration model.
//
// [Gravity] implements [dynamo.AccelerationModel] by direct pairwise
// summation of Newtonian gravity:
//
//	a_i = Σ_{j≠i} μ_j (r_j − r_i) / |r_j − r_i|³
//
// in km, s and km³/s². Pairs closer than [Gravity.Threshold] contribute
// nothing, so coincident bodies never produce Inf or NaN.
//
// Gravity also implements [dynamo.Hamiltonian] so runs can monitor energy
// drift:
//
//	g := physics.NewGravity()
//	e0 := g.Energy(state, mu)
//
// # Parallel evaluation
//
// With Workers > 1 the per-body sums fan out across goroutines. Every body
// sums its partners in ascending index order in both modes, so results are
// bit-identical to the sequential evaluation.
package physics
