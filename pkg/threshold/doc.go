// Package threshold locates the elongation scales at which the optimal
// facility set changes.
//
// A [Searcher] owns an immutable base graph, its elongation model and a
// median solver. Each probe elongates the base edges at a scale k, recomputes
// all-pairs distances and re-solves the p-median problem.
//
// Two procedures are provided:
//
//   - [Searcher.FindFirstChange]: step-halving search for the largest k below
//     which the baseline (k = 0) solution still holds, up to Config.Precision
//   - [Searcher.FindAllChanges]: geometric walk k = U·(1 - 2^-j) towards the
//     upper limit U, emitting an [Event] whenever the solution differs from
//     the last reported one
//
// k never reaches the upper limit of the model, where edge costs diverge.
// [Searcher.RunConcurrent] runs both procedures as independent tasks over the
// same graph.
package threshold
