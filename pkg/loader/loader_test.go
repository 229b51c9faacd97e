package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/graph"
)

func TestReadEdges(t *testing.T) {
	in := "v1 v2 cost\n1 2 5\n2 3 5\n\n1 3 5\n"
	edges, err := ReadEdges(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadEdges: %v", err)
	}
	want := []graph.Edge{{V1: 0, V2: 1, Cost: 5}, {V1: 1, V2: 2, Cost: 5}, {V1: 0, V2: 2, Cost: 5}}
	if len(edges) != len(want) {
		t.Fatalf("got %d edges, want %d", len(edges), len(want))
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, edges[i], want[i])
		}
	}

	m, err := graph.AllPairs(3, edges)
	if err != nil {
		t.Fatalf("AllPairs: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 5.0
			if i == j {
				want = 0
			}
			if m.At(i, j) != want {
				t.Errorf("d(%d,%d) = %v, want %v", i, j, m.At(i, j), want)
			}
		}
	}
}

func TestReadEdgesErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line string
	}{
		{"too few fields", "h\n1 2\n", "line 2"},
		{"bad label", "h\n1 2 5\nx 2 5\n", "line 3"},
		{"zero label", "h\n0 2 5\n", "line 2"},
		{"bad cost", "h\n1 2 fast\n", "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadEdges(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrCodeGraphLoad) {
				t.Fatalf("ReadEdges() error = %v, want GRAPH_LOAD", err)
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("error %q does not name %s", err, tt.line)
			}
		})
	}
}

func TestReadVertices(t *testing.T) {
	in := "label weight name\n" +
		"1 1200 Nove Mesto nad Metuji\n" +
		"2 350.5 Hronov\n" +
		"3\n" +
		"4\n"
	vertices, bound, err := ReadVertices(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadVertices: %v", err)
	}
	if len(vertices) != 4 {
		t.Fatalf("got %d vertices, want 4", len(vertices))
	}
	if bound != 2 {
		t.Errorf("bound = %d, want 2", bound)
	}

	want := []graph.Vertex{
		{Label: 0, Weight: 1200, Name: "Nove Mesto nad Metuji"},
		{Label: 1, Weight: 350.5, Name: "Hronov"},
		graph.NewJunction(2),
		graph.NewJunction(3),
	}
	for i := range want {
		if vertices[i] != want[i] {
			t.Errorf("vertex %d = %+v, want %+v", i, vertices[i], want[i])
		}
	}
}

func TestReadVerticesNoJunctions(t *testing.T) {
	_, bound, err := ReadVertices(strings.NewReader("h\n1 5 A\n2 7 B\n"))
	if err != nil {
		t.Fatalf("ReadVertices: %v", err)
	}
	if bound != 0 {
		t.Errorf("bound = %d, want 0", bound)
	}
}

func TestReadVerticesBadWeight(t *testing.T) {
	_, _, err := ReadVertices(strings.NewReader("h\n1 many A\n"))
	if !errors.Is(err, errors.ErrCodeGraphLoad) {
		t.Fatalf("error = %v, want GRAPH_LOAD", err)
	}
}

func TestSplitFields(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1", []string{"1"}},
		{"1 2", []string{"1", "2"}},
		{"1\t2  Big  City ", []string{"1", "2", "Big  City"}},
	}
	for _, tt := range tests {
		got := splitFields(tt.in, 3)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("splitFields(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func writeRegion(t *testing.T, dir, region, nodes, edges string) {
	t.Helper()
	if err := os.WriteFile(NodesPath(dir, region), []byte(nodes), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(EdgesPath(dir, region), []byte(edges), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRegion(t *testing.T) {
	dir := t.TempDir()
	writeRegion(t, dir, "HK",
		"h\n1 10 A\n2 20 B\n3\n",
		"h\n1 3 4\n2 3 6\n")

	g, err := LoadRegion(dir, "HK")
	if err != nil {
		t.Fatalf("LoadRegion: %v", err)
	}
	if g.N() != 3 || g.EdgeCount() != 2 {
		t.Errorf("got %d vertices, %d edges", g.N(), g.EdgeCount())
	}
	if g.DemandBound() != 2 {
		t.Errorf("DemandBound() = %d, want 2", g.DemandBound())
	}
	if d := g.Distance(0, 1); d != 10 {
		t.Errorf("Distance(0,1) = %v, want 10", d)
	}
}

func TestLoadRegionErrors(t *testing.T) {
	dir := t.TempDir()
	writeRegion(t, dir, "BAD", "h\n1 1 A\n2 1 B\n", "h\n1 5 3\n")

	tests := []struct {
		name   string
		region string
		code   errors.Code
	}{
		{"missing files", "PHA", errors.ErrCodeGraphLoad},
		{"invalid region", "../etc", errors.ErrCodeInvalidInput},
		{"endpoint out of range", "BAD", errors.ErrCodeGraphLoad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegion(dir, tt.region)
			if !errors.Is(err, tt.code) {
				t.Errorf("LoadRegion(%q) error = %v, want %s", tt.region, err, tt.code)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	if got, want := NodesPath("data", "PHA"), filepath.Join("data", "VUC140318_PHA_nodes.txt"); got != want {
		t.Errorf("NodesPath() = %q, want %q", got, want)
	}
	if got, want := EdgesPath("data", "PHA"), filepath.Join("data", "VUC140318_PHA_edges.txt"); got != want {
		t.Errorf("EdgesPath() = %q, want %q", got, want)
	}
}

func TestReadRegion(t *testing.T) {
	dir := t.TempDir()
	writeRegion(t, dir, "HK", "h\n1 10 A\n2\n", "h\n1 2 3\n")

	r, err := ReadRegion(dir, "HK")
	if err != nil {
		t.Fatalf("ReadRegion: %v", err)
	}
	if r.Name != "HK" || len(r.Vertices) != 2 || len(r.Edges) != 1 || r.DemandBound != 1 {
		t.Fatalf("ReadRegion() = %+v", r)
	}

	dist, err := graph.AllPairs(2, r.Edges)
	if err != nil {
		t.Fatal(err)
	}
	g, err := r.Graph(dist)
	if err != nil {
		t.Fatalf("Graph: %v", err)
	}
	if g.Distances() != dist {
		t.Error("Graph should adopt the given matrix")
	}
}

func TestListRegions(t *testing.T) {
	dir := t.TempDir()
	touch := func(path string) {
		t.Helper()
		if err := os.WriteFile(path, []byte("header\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	touch(NodesPath(dir, "Zlinsky"))
	touch(EdgesPath(dir, "Zlinsky"))
	touch(NodesPath(dir, "HK"))
	touch(EdgesPath(dir, "HK"))
	touch(NodesPath(dir, "Orphan")) // no edge file
	touch(filepath.Join(dir, "notes.txt"))

	got, err := ListRegions(dir)
	if err != nil {
		t.Fatalf("ListRegions: %v", err)
	}
	want := []string{"HK", "Zlinsky"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListRegions() = %v, want %v", got, want)
	}

	empty, err := ListRegions(t.TempDir())
	if err != nil || len(empty) != 0 {
		t.Errorf("ListRegions(empty) = %v, %v", empty, err)
	}
}
