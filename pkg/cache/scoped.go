package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "medianshift:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// Prefix returns the key prefix.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// DistanceKey generates a prefixed distance matrix key.
func (k *ScopedKeyer) DistanceKey(region, graphHash string) string {
	return k.prefix + k.inner.DistanceKey(region, graphHash)
}
