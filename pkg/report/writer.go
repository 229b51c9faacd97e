package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

// Result file prefixes, one per search procedure.
const (
	PrefixFirstChange = "calculate-first-k"
	PrefixAllChanges  = "calculate-all-ks"
)

// Entry is one reported search step.
type Entry struct {
	Region     string
	P          int
	K          float64
	UpperLimit float64
	Medians    []int
	Objective  float64
	Ratios     []float64

	// Base and Elongated enable the edge behavior section when both are set.
	Base      []graph.Edge
	Elongated []graph.Edge
}

// Writer appends formatted entries to <Dir>/<prefix>-result.txt.
// It is safe for concurrent use.
type Writer struct {
	Dir    string
	RunID  uuid.UUID
	Config Config

	mu sync.Mutex
}

// NewWriter creates dir if needed and stamps a fresh run ID.
func NewWriter(dir string, cfg Config) (*Writer, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create results dir")
	}
	return &Writer{Dir: dir, RunID: uuid.New(), Config: cfg}, nil
}

// Path returns the result file for prefix.
func (w *Writer) Path(prefix string) string {
	return filepath.Join(w.Dir, prefix+"-result.txt")
}

// Write appends e to the result file of prefix.
func (w *Writer) Write(prefix string, e Entry) error {
	var b strings.Builder
	if err := w.Format(&b, e); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.Path(prefix), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "open result file")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write result file")
	}
	return f.Close()
}

// Format writes e as a text block terminated by a blank line.
func (w *Writer) Format(out io.Writer, e Entry) error {
	s, err := Summarize(e.Ratios, w.Config.AvgSpeed)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "run: %s region: %s p: %d\n", w.RunID, e.Region, e.P)
	fmt.Fprintf(out, "k: %.4f upper limit: %.4f\n", e.K, e.UpperLimit)
	fmt.Fprintf(out, "Weighted p-medians: %s\n", formatMedians(e.Medians))
	fmt.Fprintf(out, "Objective: %.4f\n", e.Objective)
	fmt.Fprintf(out, "Average speed for ambulance: %s\n", strconv.FormatFloat(w.Config.AvgSpeed, 'g', -1, 64))
	fmt.Fprintf(out, "Min speed decline: %.4f\n", s.Min)
	fmt.Fprintf(out, "Max speed decline: %.4f\n", s.Max)
	fmt.Fprintf(out, "Average speed decline: %.4f\n", s.Mean)
	fmt.Fprintf(out, "Most often speed decline: %.4f\n", s.Mode)

	if len(e.Base) > 0 && len(e.Base) == len(e.Elongated) {
		b := EdgeBehavior(e.Base, e.Elongated, e.Medians)
		fmt.Fprintf(out, "Least elongated edge: %s -> %.4f (ratio %.4f)\n", b.Least.Edge, b.Least.Elongated, b.Least.Ratio)
		fmt.Fprintf(out, "Most elongated edge: %s -> %.4f (ratio %.4f)\n", b.Most.Edge, b.Most.Elongated, b.Most.Ratio)
		for _, c := range b.Incident {
			fmt.Fprintf(out, "Median edge: %s -> %.4f (ratio %.4f)\n", c.Edge, c.Elongated, c.Ratio)
		}
	}
	_, err = fmt.Fprintln(out)
	return err
}

// formatMedians renders medians as "[a, b, c]".
func formatMedians(medians []int) string {
	parts := make([]string, len(medians))
	for i, m := range medians {
		parts[i] = strconv.Itoa(m)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
