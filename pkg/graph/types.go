package graph

import (
	"fmt"
	"strconv"
)

// JunctionName is the sentinel name of vertices that carry no demand.
const JunctionName = "Junction"

// Vertex is a node of the road network.
//
// Demand points (municipalities) carry a positive Weight. Pure road junctions
// have Weight 0 and Name JunctionName.
type Vertex struct {
	Label  int     // 0-based index, equal to the vertex position in the graph
	Weight float64 // Demand (population); 0 for junctions
	Name   string  // Descriptive name
}

// NewJunction returns a zero-weight junction vertex with the given label.
func NewJunction(label int) Vertex {
	return Vertex{Label: label, Name: JunctionName}
}

// IsJunction reports whether the vertex carries no demand.
func (v Vertex) IsJunction() bool { return v.Weight == 0 }

// String returns "label name: weight".
func (v Vertex) String() string {
	name := v.Name
	if name == "" {
		name = JunctionName
	}
	return fmt.Sprintf("%d %s: %s", v.Label, name, strconv.FormatFloat(v.Weight, 'g', -1, 64))
}

// Edge is an undirected road segment between two distinct vertices.
//
// Elongated edges are new Edge values sharing the endpoints of their base
// edge; the base edge is never modified.
type Edge struct {
	V1, V2 int     // Endpoint labels
	Cost   float64 // Travel cost, strictly positive
}

// WithCost returns a copy of the edge carrying a different cost.
func (e Edge) WithCost(cost float64) Edge {
	return Edge{V1: e.V1, V2: e.V2, Cost: cost}
}

// Touches reports whether v is one of the edge endpoints.
func (e Edge) Touches(v int) bool { return e.V1 == v || e.V2 == v }

// String returns "(v1)--cost--(v2)".
func (e Edge) String() string {
	return fmt.Sprintf("(%d)--%s--(%d)", e.V1, strconv.FormatFloat(e.Cost, 'g', -1, 64), e.V2)
}
