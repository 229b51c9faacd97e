package graph

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/medianshift/pkg/errors"
)

// Options configures graph construction.
type Options struct {
	// DemandBound is the first junction label reported by the loader, or 0
	// when every vertex carries a weight.
	DemandBound int

	// Distances is an optional precomputed all-pairs matrix (for example one
	// read from the cache). It must have order len(vertices); when nil the
	// matrix is computed with AllPairs.
	Distances *Matrix
}

// Graph is an immutable road network with its base distance matrix.
//
// The zero value is not usable - use New.
type Graph struct {
	vertices    []Vertex
	edges       []Edge
	dist        *Matrix
	demandBound int
}

// New validates the vertices and edges, computes (or adopts) the base
// distance matrix, and returns the immutable graph. The input slices are
// copied.
//
// Validation rules (INVALID_GRAPH on failure):
//   - vertices[i].Label == i
//   - weights are finite and non-negative
//   - edge endpoints are valid and distinct
//   - edge costs are finite and strictly positive
func New(vertices []Vertex, edges []Edge, opts *Options) (*Graph, error) {
	if opts == nil {
		opts = &Options{}
	}
	n := len(vertices)
	for i, v := range vertices {
		if v.Label != i {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "vertex %d has label %d", i, v.Label)
		}
		if math.IsNaN(v.Weight) || math.IsInf(v.Weight, 0) || v.Weight < 0 {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "vertex %d has invalid weight %v", i, v.Weight)
		}
	}
	for i, e := range edges {
		if e.V1 < 0 || e.V1 >= n || e.V2 < 0 || e.V2 >= n {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "edge %d %s: endpoint out of range [0,%d)", i, e, n)
		}
		if e.V1 == e.V2 {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "edge %d %s: self-loop", i, e)
		}
		if math.IsNaN(e.Cost) || math.IsInf(e.Cost, 0) || e.Cost <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "edge %d %s: cost must be positive", i, e)
		}
	}
	if opts.DemandBound < 0 || opts.DemandBound > n {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "demand bound %d out of range [0,%d]", opts.DemandBound, n)
	}

	dist := opts.Distances
	if dist == nil {
		var err error
		if dist, err = AllPairs(n, edges); err != nil {
			return nil, err
		}
	} else if dist.Size() != n {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "distance matrix order %d, want %d", dist.Size(), n)
	}

	return &Graph{
		vertices:    slices.Clone(vertices),
		edges:       slices.Clone(edges),
		dist:        dist,
		demandBound: opts.DemandBound,
	}, nil
}

// N returns the number of vertices.
func (g *Graph) N() int { return len(g.vertices) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Vertex returns the vertex with label i.
func (g *Graph) Vertex(i int) Vertex { return g.vertices[i] }

// Vertices returns a copy of the vertex list.
func (g *Graph) Vertices() []Vertex { return slices.Clone(g.vertices) }

// Edges returns a copy of the base edge list.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Weights returns the vertex demand weights indexed by label.
func (g *Graph) Weights() []float64 {
	w := make([]float64, len(g.vertices))
	for i, v := range g.vertices {
		w[i] = v.Weight
	}
	return w
}

// TotalWeight returns the sum of all vertex weights.
func (g *Graph) TotalWeight() float64 {
	var sum float64
	for _, v := range g.vertices {
		sum += v.Weight
	}
	return sum
}

// Distances returns the base all-pairs distance matrix. The matrix is shared
// and must be treated as read-only.
func (g *Graph) Distances() *Matrix { return g.dist }

// Distance returns the base shortest-path distance between i and j.
func (g *Graph) Distance(i, j int) float64 { return g.dist.At(i, j) }

// DemandBound returns the first junction label reported by the loader.
func (g *Graph) DemandBound() int { return g.demandBound }

// String lists every edge followed by every vertex, one per line.
func (g *Graph) String() string {
	var sb strings.Builder
	for _, e := range g.edges {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	for _, v := range g.vertices {
		sb.WriteString(v.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
