// Package loader reads road networks from the regional text format.
//
// A region is described by two files in a data directory:
//
//	VUC140318_<region>_nodes.txt   header, then "label [weight name...]"
//	VUC140318_<region>_edges.txt   header, then "v1 v2 cost"
//
// Labels are 1-based in the files and 0-based in memory. Node lines with
// fewer than three fields are road junctions; the first junction label marks
// the demand boundary. Names may contain spaces.
package loader

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

// FilePrefix is the dataset prefix of region files.
const FilePrefix = "VUC140318"

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// NodesPath returns the vertex file of region inside dir.
func NodesPath(dir, region string) string {
	return filepath.Join(dir, FilePrefix+"_"+region+"_nodes.txt")
}

// EdgesPath returns the edge file of region inside dir.
func EdgesPath(dir, region string) string {
	return filepath.Join(dir, FilePrefix+"_"+region+"_edges.txt")
}

// Region is the raw content of a region's files.
type Region struct {
	Name        string
	Vertices    []graph.Vertex
	Edges       []graph.Edge
	DemandBound int
}

// ReadRegion reads both region files from dir without building the graph.
func ReadRegion(dir, region string) (*Region, error) {
	if err := errors.ValidateRegion(region); err != nil {
		return nil, err
	}

	vertices, bound, err := readFile(NodesPath(dir, region), func(r io.Reader) ([]graph.Vertex, int, error) {
		return ReadVertices(r)
	})
	if err != nil {
		return nil, err
	}
	edges, _, err := readFile(EdgesPath(dir, region), func(r io.Reader) ([]graph.Edge, int, error) {
		e, err := ReadEdges(r)
		return e, 0, err
	})
	if err != nil {
		return nil, err
	}
	return &Region{Name: region, Vertices: vertices, Edges: edges, DemandBound: bound}, nil
}

// Graph builds the graph of r. dist may carry a precomputed base matrix.
func (r *Region) Graph(dist *graph.Matrix) (*graph.Graph, error) {
	g, err := graph.New(r.Vertices, r.Edges, &graph.Options{DemandBound: r.DemandBound, Distances: dist})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeGraphLoad, err, "region %s", r.Name)
	}
	return g, nil
}

// LoadRegion reads both region files from dir and builds the graph.
func LoadRegion(dir, region string) (*graph.Graph, error) {
	r, err := ReadRegion(dir, region)
	if err != nil {
		return nil, err
	}
	return r.Graph(nil)
}

// ListRegions returns the sorted names of the regions in dir that have both
// a vertex and an edge file.
func ListRegions(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, FilePrefix+"_*_nodes.txt"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "list %s", dir)
	}
	var regions []string
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), FilePrefix+"_"), "_nodes.txt")
		if errors.ValidateRegion(name) != nil {
			continue
		}
		if _, err := os.Stat(EdgesPath(dir, name)); err != nil {
			continue
		}
		regions = append(regions, name)
	}
	slices.Sort(regions)
	return regions, nil
}

func readFile[T any](path string, read func(io.Reader) (T, int, error)) (T, int, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, 0, errors.Wrap(errors.ErrCodeGraphLoad, err, "open %s", path)
	}
	defer f.Close()

	v, n, err := read(f)
	if err != nil {
		return zero, 0, errors.Wrap(errors.ErrCodeGraphLoad, err, "%s", filepath.Base(path))
	}
	return v, n, nil
}

// ReadVertices parses a vertex file. It returns the vertices in file order
// and the 0-based label of the first junction (0 if there is none).
func ReadVertices(r io.Reader) ([]graph.Vertex, int, error) {
	var (
		vertices []graph.Vertex
		bound    int
		seen     bool
	)
	err := scanLines(r, func(line int, text string) error {
		fields := splitFields(text, 3)
		label, err := parseLabel(fields[0])
		if err != nil {
			return lineError(line, err)
		}
		if len(fields) < 3 {
			vertices = append(vertices, graph.NewJunction(label))
			if !seen {
				bound, seen = label, true
			}
			return nil
		}
		weight, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return lineError(line, errors.New(errors.ErrCodeGraphLoad, "invalid weight %q", fields[1]))
		}
		vertices = append(vertices, graph.Vertex{Label: label, Weight: weight, Name: fields[2]})
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return vertices, bound, nil
}

// ReadEdges parses an edge file.
func ReadEdges(r io.Reader) ([]graph.Edge, error) {
	var edges []graph.Edge
	err := scanLines(r, func(line int, text string) error {
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return lineError(line, errors.New(errors.ErrCodeGraphLoad, "want 3 fields, got %d", len(fields)))
		}
		v1, err := parseLabel(fields[0])
		if err != nil {
			return lineError(line, err)
		}
		v2, err := parseLabel(fields[1])
		if err != nil {
			return lineError(line, err)
		}
		cost, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return lineError(line, errors.New(errors.ErrCodeGraphLoad, "invalid cost %q", fields[2]))
		}
		edges = append(edges, graph.Edge{V1: v1, V2: v2, Cost: cost})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// scanLines skips the header line and blank lines and calls fn with the
// 1-based line number of every remaining line.
func scanLines(r io.Reader, fn func(line int, text string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if err := fn(line, text); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeGraphLoad, err, "read line %d", line+1)
	}
	return nil
}

// parseLabel converts a 1-based file label to a 0-based index.
func parseLabel(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New(errors.ErrCodeGraphLoad, "invalid label %q", s)
	}
	return n - 1, nil
}

func lineError(line int, err error) error {
	return errors.Wrap(errors.ErrCodeGraphLoad, err, "line %d", line)
}

// splitFields splits text on whitespace into at most n fields; the last
// field keeps the rest of the line, inner spaces included.
func splitFields(text string, n int) []string {
	var out []string
	for len(out) < n-1 {
		text = strings.TrimLeft(text, " \t")
		if text == "" {
			return out
		}
		i := strings.IndexAny(text, " \t")
		if i < 0 {
			return append(out, text)
		}
		out = append(out, text[:i])
		text = text[i:]
	}
	if rest := strings.TrimSpace(text); rest != "" {
		out = append(out, rest)
	}
	return out
}
