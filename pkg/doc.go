// Package pkg provides the core libraries for medianshift.
//
// # Overview
//
// medianshift places p emergency facilities on a road network and asks how
// much congestion the network tolerates before the optimal placement moves.
// Congestion is modeled by gravitationally elongating every road: edges near
// heavily weighted vertices grow the most. The pkg directory is organized
// into three areas:
//
//  1. Domain logic ([graph], [elongation], [median], [threshold], [perm])
//  2. Infrastructure ([cache], [metrics], [observability], [errors])
//  3. Orchestration and I/O ([loader], [report], [pipeline])
//
// # Architecture
//
// The typical data flow through medianshift:
//
//	Region files (VUC140318_<region>_nodes.txt, ..._edges.txt)
//	         ↓
//	    [loader] package (parse vertices and edges)
//	         ↓
//	    [graph] package (graph structure + all-pairs distances)
//	         ↓
//	    [elongation] package (edges scaled by k)
//	         ↓
//	    [median] package (p-median on the elongated distances)
//	         ↓
//	    [threshold] package (smallest k that moves the medians)
//	         ↓
//	    [report] package (result files)
//
// # Quick Start
//
//	g, err := loader.LoadRegion("res/Kraje_input_data", "HK")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	solver, _ := median.New(median.KindExact, bnb.New())
//	s, err := threshold.NewSearcher(g, solver, 3, threshold.DefaultConfig(), nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	first, err := s.FindFirstChange(ctx)
//
// # Main Packages
//
// [graph] - Immutable weighted graphs with their base shortest-path matrix.
//
// [elongation] - The gravitational congestion model and its singular upper
// limit.
//
// [median] - p-median solvers: exhaustive enumeration and an exact
// assignment formulation solved by branch and bound ([median/bnb]).
//
// [threshold] - Bisection and doubling searches over the elongation scale.
//
// [pipeline] - load → distances → search → report, with cached distances.
//
// [cache] - File and Redis caches for distance matrices.
//
// [metrics] - Prometheus collectors installed as observability hooks.
package pkg
