package report

import (
	"math"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

func TestSummarize(t *testing.T) {
	// Declines: 0, 11, 11, 55
	s, err := Summarize([]float64{1, 0.9, 0.9, 0.5}, 110)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"min", s.Min, 0},
		{"max", s.Max, 55},
		{"mean", s.Mean, 19.25},
		{"mode", s.Mode, 11},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestSummarizeModeTieTakesFirst(t *testing.T) {
	s, err := Summarize([]float64{0.5, 1, 0.5, 1}, 100)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Mode != 50 {
		t.Errorf("Mode = %v, want 50", s.Mode)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil, 110); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Summarize(nil) error = %v, want INVALID_INPUT", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	if err := c.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if c.AvgSpeed != DefaultAvgSpeed {
		t.Errorf("AvgSpeed = %v, want %v", c.AvgSpeed, DefaultAvgSpeed)
	}
	c.AvgSpeed = -5
	if err := c.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("negative speed error = %v, want INVALID_CONFIG", err)
	}
}

func TestEdgeBehavior(t *testing.T) {
	base := []graph.Edge{{V1: 0, V2: 1, Cost: 2}, {V1: 1, V2: 2, Cost: 4}, {V1: 2, V2: 3, Cost: 1}}
	elongated := []graph.Edge{{V1: 0, V2: 1, Cost: 4}, {V1: 1, V2: 2, Cost: 5}, {V1: 2, V2: 3, Cost: 1}}

	b := EdgeBehavior(base, elongated, []int{0, 3})
	if b.Least.Index != 2 || b.Least.Ratio != 1 {
		t.Errorf("Least = %+v, want edge 2 with ratio 1", b.Least)
	}
	if b.Most.Index != 0 || b.Most.Ratio != 0.5 {
		t.Errorf("Most = %+v, want edge 0 with ratio 0.5", b.Most)
	}
	if len(b.Incident) != 2 || b.Incident[0].Index != 0 || b.Incident[1].Index != 2 {
		t.Errorf("Incident = %+v, want edges 0 and 2", b.Incident)
	}
}

func TestWriterAppends(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, Config{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if w.RunID == uuid.Nil {
		t.Error("RunID not set")
	}

	entry := Entry{
		Region:     "HK",
		P:          2,
		K:          0.5,
		UpperLimit: 1.25,
		Medians:    []int{3, 7},
		Objective:  42,
		Ratios:     []float64{1, 0.5},
	}
	for i := 0; i < 2; i++ {
		if err := w.Write(PrefixFirstChange, entry); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	data, err := os.ReadFile(w.Path(PrefixFirstChange))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if got := strings.Count(out, "Weighted p-medians: [3, 7]\n"); got != 2 {
		t.Errorf("found %d entries, want 2:\n%s", got, out)
	}
	for _, want := range []string{
		"run: " + w.RunID.String() + " region: HK p: 2\n",
		"k: 0.5000 upper limit: 1.2500\n",
		"Average speed for ambulance: 110\n",
		"Min speed decline: 0.0000\n",
		"Max speed decline: 55.0000\n",
		"Average speed decline: 27.5000\n",
		"Most often speed decline: 0.0000\n\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "elongated edge") {
		t.Error("edge behavior written without edges")
	}
}

func TestWriterEdgeBehavior(t *testing.T) {
	w, err := NewWriter(t.TempDir(), Config{AvgSpeed: 90})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	var b strings.Builder
	err = w.Format(&b, Entry{
		Medians:   []int{1},
		Ratios:    []float64{0.5},
		Base:      []graph.Edge{{V1: 0, V2: 1, Cost: 2}},
		Elongated: []graph.Edge{{V1: 0, V2: 1, Cost: 4}},
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(b.String(), "Median edge: (0)--2--(1) -> 4.0000 (ratio 0.5000)\n") {
		t.Errorf("missing median edge line:\n%s", b.String())
	}
}

func TestWriterConcurrent(t *testing.T) {
	w, err := NewWriter(t.TempDir(), Config{})
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Write(PrefixAllChanges, Entry{Medians: []int{1}, Ratios: []float64{1}}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(w.Path(PrefixAllChanges))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := strings.Count(string(data), "run: "); got != 16 {
		t.Errorf("found %d entries, want 16", got)
	}
}
