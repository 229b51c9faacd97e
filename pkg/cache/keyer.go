package cache

import (
	"github.com/matzehuels/medianshift/pkg/graph"
)

// Keyer builds cache keys.
type Keyer interface {
	// DistanceKey returns the key of the base distance matrix of a graph
	// whose content hash is graphHash.
	DistanceKey(region, graphHash string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DistanceKey implements Keyer.
func (DefaultKeyer) DistanceKey(region, graphHash string) string {
	return hashKey("distances", region, graphHash)
}

// GraphHash is the content hash of a graph's vertex count and edge list,
// the only inputs of its distance matrix.
func GraphHash(n int, edges []graph.Edge) string {
	return hashKey("graph", n, edges)
}
