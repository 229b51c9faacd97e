package graph

import (
	"strings"
	"testing"

	"github.com/matzehuels/medianshift/pkg/errors"
)

func triangle() ([]Vertex, []Edge) {
	vertices := []Vertex{
		{Label: 0, Weight: 1, Name: "A"},
		{Label: 1, Weight: 2, Name: "B"},
		{Label: 2, Weight: 3, Name: "C"},
	}
	edges := []Edge{{0, 1, 1}, {1, 2, 1}, {0, 2, 1}}
	return vertices, edges
}

func TestNew(t *testing.T) {
	vertices, edges := triangle()
	g, err := New(vertices, edges, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if g.N() != 3 || g.EdgeCount() != 3 {
		t.Errorf("N=%d EdgeCount=%d, want 3/3", g.N(), g.EdgeCount())
	}
	if got := g.Weights(); got[2] != 3 {
		t.Errorf("Weights() = %v", got)
	}
	if g.TotalWeight() != 6 {
		t.Errorf("TotalWeight() = %v, want 6", g.TotalWeight())
	}
	if g.Distance(0, 2) != 1 {
		t.Errorf("Distance(0,2) = %v, want 1", g.Distance(0, 2))
	}
}

func TestNewIsImmutable(t *testing.T) {
	vertices, edges := triangle()
	g, err := New(vertices, edges, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	vertices[0].Weight = 100
	edges[0].Cost = 100
	got := g.Edges()
	got[1].Cost = 100

	if g.Vertex(0).Weight != 1 {
		t.Error("graph should not alias the input vertices")
	}
	if g.Edges()[0].Cost != 1 || g.Edges()[1].Cost != 1 {
		t.Error("graph should not alias input or returned edges")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name     string
		vertices []Vertex
		edges    []Edge
		opts     *Options
	}{
		{
			name:     "label mismatch",
			vertices: []Vertex{{Label: 1}},
		},
		{
			name:     "negative weight",
			vertices: []Vertex{{Label: 0, Weight: -1}},
		},
		{
			name:     "endpoint out of range",
			vertices: []Vertex{{Label: 0}, {Label: 1}},
			edges:    []Edge{{0, 2, 1}},
		},
		{
			name:     "self loop",
			vertices: []Vertex{{Label: 0}, {Label: 1}},
			edges:    []Edge{{1, 1, 1}},
		},
		{
			name:     "zero cost",
			vertices: []Vertex{{Label: 0}, {Label: 1}},
			edges:    []Edge{{0, 1, 0}},
		},
		{
			name:     "matrix order mismatch",
			vertices: []Vertex{{Label: 0}, {Label: 1}},
			opts:     &Options{Distances: newMatrix(3)},
		},
		{
			name:     "demand bound out of range",
			vertices: []Vertex{{Label: 0}},
			opts:     &Options{DemandBound: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.vertices, tt.edges, tt.opts)
			if !errors.Is(err, errors.ErrCodeInvalidGraph) {
				t.Errorf("New() error = %v, want INVALID_GRAPH", err)
			}
		})
	}
}

func TestNewWithDistances(t *testing.T) {
	vertices, edges := triangle()
	m, err := AllPairs(3, edges)
	if err != nil {
		t.Fatalf("AllPairs: %v", err)
	}
	g, err := New(vertices, edges, &Options{Distances: m, DemandBound: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.Distances() != m {
		t.Error("precomputed matrix should be adopted")
	}
	if g.DemandBound() != 2 {
		t.Errorf("DemandBound() = %d, want 2", g.DemandBound())
	}
}

func TestString(t *testing.T) {
	g, err := New([]Vertex{{Label: 0, Weight: 2.5, Name: "Zlin"}, NewJunction(1)}, []Edge{{0, 1, 5}}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := "(0)--5--(1)\n\n0 Zlin: 2.5\n1 Junction: 0\n"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if !strings.Contains(g.Vertex(1).String(), JunctionName) || !g.Vertex(1).IsJunction() {
		t.Error("vertex 1 should be a junction")
	}
}
