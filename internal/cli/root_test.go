package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/medianshift/pkg/errors"
	"github.com/matzehuels/medianshift/pkg/loader"
	"github.com/matzehuels/medianshift/pkg/observability"
	"github.com/matzehuels/medianshift/pkg/report"
)

// writeRegion creates a four-vertex ring region named T.
func writeRegion(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	nodes := "label weight name\n1 10 Alpha\n2 20 Beta\n3 5 Gamma\n4\n"
	edges := "v1 v2 cost\n1 2 3\n2 3 4\n3 4 2\n1 4 6\n"
	if err := os.WriteFile(loader.NodesPath(dir, "T"), []byte(nodes), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(loader.EdgesPath(dir, "T"), []byte(edges), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// execute runs the root command with isolated config and cache dirs.
func execute(t *testing.T, args ...string) (*CLI, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return c, c.execute(context.Background(), root)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()

	want := []string{"run", "solve", "regions", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "verbose", "metrics-file"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag --%s missing", flag)
		}
	}
}

func TestRunCommand(t *testing.T) {
	dataDir := writeRegion(t)
	resultsDir := t.TempDir()

	_, err := execute(t, "run", "T", "-p", "1",
		"--data-dir", dataDir,
		"--results-dir", resultsDir,
		"--precision", "0.05")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, prefix := range []string{report.PrefixFirstChange, report.PrefixAllChanges} {
		data, err := os.ReadFile(filepath.Join(resultsDir, prefix+"-result.txt"))
		if err != nil {
			t.Fatalf("missing %s report: %v", prefix, err)
		}
		if !strings.Contains(string(data), "region: T p: 1") {
			t.Errorf("%s report:\n%s", prefix, data)
		}
	}
}

func TestRunCommandRequiresMedians(t *testing.T) {
	if _, err := execute(t, "run", "T", "--data-dir", writeRegion(t)); err == nil {
		t.Error("run without -p should fail")
	}
}

func TestSolveCommandWritesLPAndMetrics(t *testing.T) {
	dataDir := writeRegion(t)
	dir := t.TempDir()
	lpPath := filepath.Join(dir, "model.lp")
	metricsPath := filepath.Join(dir, "medianshift.prom")

	_, err := execute(t, "solve", "T", "-p", "2",
		"--data-dir", dataDir,
		"--strategy", "both",
		"--lp-out", lpPath,
		"--metrics-file", metricsPath,
		"--no-cache")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}

	lp, err := os.ReadFile(lpPath)
	if err != nil || !strings.HasPrefix(string(lp), `\ p-median`) {
		t.Errorf("LP file = %q, %v", lp, err)
	}
	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	for _, strategy := range []string{"exact", "bruteforce"} {
		if !strings.Contains(string(prom), `strategy="`+strategy+`"`) {
			t.Errorf("metrics missing %s solves:\n%s", strategy, prom)
		}
	}
}

func TestSolveCommandCenterObjective(t *testing.T) {
	lpPath := filepath.Join(t.TempDir(), "center.lp")

	_, err := execute(t, "solve", "T", "-p", "1",
		"--data-dir", writeRegion(t),
		"--objective", "center",
		"--strategy", "both",
		"--lp-out", lpPath,
		"--no-cache")
	if err != nil {
		t.Fatalf("solve --objective center: %v", err)
	}
	lp, err := os.ReadFile(lpPath)
	if err != nil || !strings.HasPrefix(string(lp), `\ p-center`) {
		t.Errorf("LP file = %q, %v", lp, err)
	}

	_, err = execute(t, "solve", "T", "-p", "1", "--data-dir", writeRegion(t), "--objective", "minimax", "--no-cache")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown objective = %v, want INVALID_INPUT", err)
	}
}

func TestMetricsWrittenOnFailure(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "medianshift.prom")

	_, err := execute(t, "solve", "T", "-p", "2",
		"--data-dir", writeRegion(t),
		"--strategy", "exact",
		"--node-limit", "1",
		"--metrics-file", metricsPath,
		"--no-cache")
	if !errors.Is(err, errors.ErrCodeSolver) {
		t.Fatalf("solve with node limit 1 = %v, want SOLVER", err)
	}

	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(prom), `medianshift_solves_total{status="error",strategy="exact"} 1`) {
		t.Errorf("failed solve not counted:\n%s", prom)
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := execute(t, "regions", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Error("missing --config file should fail")
	}
}

func TestConfigFileApplies(t *testing.T) {
	dataDir := writeRegion(t)
	cfgPath := writeConfig(t, "data_dir = \""+filepath.ToSlash(dataDir)+"\"\ncache = \"none\"\n")

	c, err := execute(t, "regions", "--config", cfgPath)
	if err != nil {
		t.Fatalf("regions: %v", err)
	}
	if c.Config.DataDir != filepath.ToSlash(dataDir) || c.Config.Cache != CacheNone {
		t.Errorf("config not loaded: %+v", c.Config)
	}
}
