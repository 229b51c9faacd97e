// Package elongation implements the gravitational congestion model.
//
// Every edge receives a "pull" fraction that measures how much demand sits
// close to it:
//
//	fraction(e) = Σ_v weight(v) / (min(d(v1,v), d(v2,v)) + cost(e)/2)
//
// The fractions are computed once from the base (unelongated) distances.
// With denominator D = Σ fractions, an edge elongated at scale k costs
//
//	cost(e) / (1 - fraction(e)·k/D)
//
// which is the identity at k = 0 and diverges for the most demand-sensitive
// edge as k approaches the upper limit min_e D/fraction(e).
package elongation

import (
	"math"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

// Model holds the per-edge fractions of a graph and the derived limits.
// A Model is immutable and safe for concurrent use.
type Model struct {
	edges       []graph.Edge
	fractions   []float64
	denominator float64
	upperLimit  float64
}

// NewModel computes the fractions of g from its base distance matrix.
// It fails with ELONGATION_DOMAIN when the graph has no edges or no demand,
// since no elongation can then be defined.
func NewModel(g *graph.Graph) (*Model, error) {
	edges := g.Edges()
	if len(edges) == 0 {
		return nil, errors.New(errors.ErrCodeElongationDomain, "graph has no edges")
	}
	fractions := Fractions(g)
	den := Denominator(fractions)
	if !(den > 0) || math.IsInf(den, 0) {
		return nil, errors.New(errors.ErrCodeElongationDomain, "fraction sum %v is not a positive finite number", den)
	}
	return &Model{
		edges:       edges,
		fractions:   fractions,
		denominator: den,
		upperLimit:  UpperLimit(fractions, den),
	}, nil
}

// Fractions returns the gravitational pull of every edge of g, in edge order.
// Unreachable vertices contribute nothing.
func Fractions(g *graph.Graph) []float64 {
	edges := g.Edges()
	dist := g.Distances()
	fractions := make([]float64, len(edges))
	for i, e := range edges {
		var sum float64
		for v := 0; v < g.N(); v++ {
			w := g.Vertex(v).Weight
			if w == 0 {
				continue
			}
			d := min(dist.At(e.V1, v), dist.At(e.V2, v)) + e.Cost/2
			if math.IsInf(d, 1) {
				continue
			}
			sum += w / d
		}
		fractions[i] = sum
	}
	return fractions
}

// Denominator returns the sum of the fractions.
func Denominator(fractions []float64) float64 {
	var sum float64
	for _, f := range fractions {
		sum += f
	}
	return sum
}

// UpperLimit returns min over edges of denominator/fraction, the value of k
// at which the elongation factor of the smallest-ratio edge reaches zero.
// Edges with a zero fraction never elongate and do not bound k; if every
// fraction is zero the limit is +Inf.
func UpperLimit(fractions []float64, denominator float64) float64 {
	limit := math.Inf(1)
	for _, f := range fractions {
		if f <= 0 {
			continue
		}
		limit = min(limit, denominator/f)
	}
	return limit
}

// ElongateEdges returns new edges with cost / (1 - fraction·scale).
// scale is k divided by the denominator. The caller is responsible for
// keeping every factor positive; Model.Elongate enforces it.
func ElongateEdges(edges []graph.Edge, fractions []float64, scale float64) []graph.Edge {
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		out[i] = e.WithCost(e.Cost / (1 - fractions[i]*scale))
	}
	return out
}

// Edges returns a copy of the base edges the model was built from.
func (m *Model) Edges() []graph.Edge { return append([]graph.Edge(nil), m.edges...) }

// Fractions returns a copy of the per-edge fractions.
func (m *Model) Fractions() []float64 { return append([]float64(nil), m.fractions...) }

// Denominator returns the sum of fractions.
func (m *Model) Denominator() float64 { return m.denominator }

// UpperLimit returns the singular value of k. k must stay strictly below it.
func (m *Model) UpperLimit() float64 { return m.upperLimit }

// Elongate returns the edges elongated at k.
//
// k must satisfy 0 <= k < UpperLimit; otherwise, or if rounding drives any
// elongation factor to zero or below, an ELONGATION_DOMAIN error is returned.
func (m *Model) Elongate(k float64) ([]graph.Edge, error) {
	if math.IsNaN(k) || k < 0 {
		return nil, errors.New(errors.ErrCodeElongationDomain, "k=%v must be non-negative", k)
	}
	if k >= m.upperLimit {
		return nil, errors.New(errors.ErrCodeElongationDomain, "k=%v reaches upper limit %v", k, m.upperLimit)
	}
	scale := k / m.denominator
	for i, f := range m.fractions {
		if 1-f*scale <= 0 {
			return nil, errors.New(errors.ErrCodeElongationDomain, "k=%v makes edge %s non-positive", k, m.edges[i])
		}
	}
	return ElongateEdges(m.edges, m.fractions, scale), nil
}

// CostRatios returns original/elongated cost for every edge pair.
// Both slices must describe the same edges in the same order.
func CostRatios(original, elongated []graph.Edge) []float64 {
	ratios := make([]float64, len(original))
	for i := range original {
		ratios[i] = original[i].Cost / elongated[i].Cost
	}
	return ratios
}
