// Package median solves the weighted p-median problem on a distance matrix.
//
// # Problem
//
// Given distances d, demand weights w and a facility count p, choose a set S
// of p vertices minimizing
//
//	Σ_u w(u) · min_{v ∈ S} d(u, v)
//
// Zero-weight vertices contribute nothing, even when they are unreachable.
//
// Setting [ProblemCenter] on a solver switches to the p-center objective
// max_u min_{v ∈ S} d(u, v) over demand points (w(u) > 0), evaluated by
// [Radius].
//
// # Strategies
//
// Two interchangeable [Solver] implementations are selected by [Kind]:
//
//   - [Exact]: builds the binary assignment [Formulation] and delegates the
//     combinatorial search to a [Backend] (see package bnb for the default
//     branch-and-bound backend)
//   - [BruteForce]: enumerates every p-combination; exponential, intended as a
//     correctness oracle on small graphs
//
// # Tie-breaking
//
// Both strategies return the lexicographically smallest optimal set. A
// candidate only replaces the incumbent when it is cheaper by more than a
// relative tolerance of 1e-9, and candidates are visited in lexicographic
// order. Solutions can therefore be compared with [Solution.Equal] to detect
// "no change" across runs.
//
// # Feasibility
//
// [CheckFeasible] runs before every solve and rejects p outside [1, n] and
// graphs with more demand-carrying components than p, which would leave some
// demand at infinite distance from every facility.
package median
