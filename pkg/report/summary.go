package report

import (
	"math"
	"slices"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

// DefaultAvgSpeed is the reference travel speed in km/h.
const DefaultAvgSpeed = 110

// Config holds reporting parameters.
type Config struct {
	AvgSpeed float64 // Reference speed used to express cost ratios as speed declines
}

// ValidateAndSetDefaults fills a zero AvgSpeed and rejects invalid values.
func (c *Config) ValidateAndSetDefaults() error {
	if c.AvgSpeed == 0 {
		c.AvgSpeed = DefaultAvgSpeed
	}
	return errors.ValidateTolerance("avg_speed", c.AvgSpeed)
}

// Summary describes speed declines across all edges. A cost ratio r
// (original/elongated) turns an average speed v into v·r, a decline of
// v·(1-r).
type Summary struct {
	Min  float64
	Max  float64
	Mean float64
	Mode float64 // Most frequent decline; the first one in edge order on ties
}

// Decline converts a cost ratio into a speed decline.
func Decline(ratio, avgSpeed float64) float64 {
	return avgSpeed * (1 - ratio)
}

// Summarize computes decline statistics over ratios.
func Summarize(ratios []float64, avgSpeed float64) (Summary, error) {
	if len(ratios) == 0 {
		return Summary{}, errors.New(errors.ErrCodeInvalidInput, "no cost ratios to summarize")
	}

	s := Summary{Min: math.Inf(1), Max: math.Inf(-1)}
	counts := make(map[float64]int, len(ratios))
	best := 0
	var sum float64
	for _, r := range ratios {
		d := Decline(r, avgSpeed)
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
		sum += d

		counts[d]++
		if c := counts[d]; c > best {
			best, s.Mode = c, d
		}
	}
	s.Mean = sum / float64(len(ratios))
	return s, nil
}

// EdgeChange describes one elongated edge.
type EdgeChange struct {
	Index     int        // Position in the edge list
	Edge      graph.Edge // Base edge
	Elongated float64    // Elongated cost
	Ratio     float64    // Base cost / elongated cost
}

// Behavior is the edge-level detail of one elongation step.
type Behavior struct {
	Least    EdgeChange   // Edge with the ratio closest to 1
	Most     EdgeChange   // Edge with the smallest ratio
	Incident []EdgeChange // Edges touching a selected median, in edge order
}

// EdgeBehavior compares base and elongated edges. Both slices must describe
// the same edges in the same order and must not be empty.
func EdgeBehavior(base, elongated []graph.Edge, medians []int) Behavior {
	var b Behavior
	for i, e := range base {
		c := EdgeChange{Index: i, Edge: e, Elongated: elongated[i].Cost, Ratio: e.Cost / elongated[i].Cost}
		if i == 0 || c.Ratio > b.Least.Ratio {
			b.Least = c
		}
		if i == 0 || c.Ratio < b.Most.Ratio {
			b.Most = c
		}
		if slices.ContainsFunc(medians, e.Touches) {
			b.Incident = append(b.Incident, c)
		}
	}
	return b
}
