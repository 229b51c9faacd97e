// Package graph provides the immutable road-network model used by the
// facility placement engine.
//
// # Core Types
//
//   - [Vertex]: a demand point or a pure road junction
//   - [Edge]: an undirected road segment with a positive travel cost
//   - [Graph]: vertices, edges and the derived all-pairs distance [Matrix]
//
// # Distances
//
// [AllPairs] computes shortest-path distances with the Floyd–Warshall
// triple relaxation. It is used both for the base graph (by [New]) and for
// every elongated edge set produced during a sensitivity search:
//
//	m, err := graph.AllPairs(g.N(), elongatedEdges)
//
// Unreachable pairs hold +Inf. The diagonal is always zero.
//
// # Immutability
//
// A [Graph] never changes after [New] returns. Accessors return copies, and
// [Matrix] has no exported mutators, so a single Graph may be shared by any
// number of goroutines.
package graph
