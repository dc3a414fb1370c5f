// ABOUTME: Tests for the root command
// ABOUTME: Verifies argument handling, flag precedence, output, and exit codes

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hpcutil/pestr/internal/config"
)

// isolateConfig points config resolution at an empty directory so the
// developer's real config file cannot leak into tests.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	configPath = ""
	t.Cleanup(func() { configPath = "" })
}

func TestRunRoot_FilledReservation(t *testing.T) {
	isolateConfig(t)

	var out, errOut bytes.Buffer
	exitCode := runRoot(nil, []string{"512", "16"}, &out, &errOut)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", exitCode, errOut.String())
	}
	if !strings.Contains(out.String(), "64 nodes (8192 CPU cores)") {
		t.Errorf("expected reservation summary, got:\n%s", out.String())
	}
	if strings.Contains(out.String(), "warning") {
		t.Errorf("unexpected warning for a filled reservation:\n%s", out.String())
	}
}

func TestRunRoot_UnfilledReservationWarns(t *testing.T) {
	isolateConfig(t)

	var out, errOut bytes.Buffer
	exitCode := runRoot(nil, []string{"128", "12"}, &out, &errOut)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "warning: reservation is not filled") {
		t.Errorf("expected warning, got:\n%s", out.String())
	}
}

func TestRunRoot_Suggest(t *testing.T) {
	isolateConfig(t)
	t.Setenv("PESTR_SEARCH_CONSERVE_NODES", "true")
	suggest = true
	defer func() { suggest = false }()

	var out, errOut bytes.Buffer
	exitCode := runRoot(nil, []string{"128", "12"}, &out, &errOut)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "alternate geometries that fill the reservation:") {
		t.Errorf("expected alternates heading, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "104 x 16 (13 nodes; 1664 CPU cores)") {
		t.Errorf("expected 104 x 16 alternate, got:\n%s", out.String())
	}
}

func TestRunRoot_JSONOutput(t *testing.T) {
	isolateConfig(t)
	jsonOutput = true
	suggest = true
	defer func() {
		jsonOutput = false
		suggest = false
	}()

	var out, errOut bytes.Buffer
	exitCode := runRoot(nil, []string{"128", "12"}, &out, &errOut)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}

	var doc map[string]any
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	res, ok := doc["reservation"].(map[string]any)
	if !ok {
		t.Fatal("expected reservation object")
	}
	if res["nodes"] != float64(13) {
		t.Errorf("expected 13 nodes, got %v", res["nodes"])
	}
	if _, ok := doc["alternatives"].([]any); !ok {
		t.Error("expected alternatives array")
	}
}

func TestRunRoot_Hyperthreading(t *testing.T) {
	isolateConfig(t)
	hyperthreading = true
	defer func() { hyperthreading = false }()

	var out, errOut bytes.Buffer
	exitCode := runRoot(nil, []string{"128", "2"}, &out, &errOut)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "1 node (256 CPU cores)") {
		t.Errorf("expected hyperthreaded single-node summary, got:\n%s", out.String())
	}
}

func TestRunRoot_EnvCPUsPerNode(t *testing.T) {
	isolateConfig(t)
	t.Setenv("PESTR_CPUS_PER_NODE", "36")

	var out, errOut bytes.Buffer
	exitCode := runRoot(nil, []string{"36", "1"}, &out, &errOut)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "1 node (36 CPU cores)") {
		t.Errorf("expected env-configured node size, got:\n%s", out.String())
	}
}

func TestRunRoot_FlagOverridesEnv(t *testing.T) {
	isolateConfig(t)
	t.Setenv("PESTR_CPUS_PER_NODE", "36")

	if err := rootCmd.ParseFlags([]string{"--cpus-per-node", "64"}); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	exitCode := runRoot(rootCmd.Flags(), []string{"64", "1"}, &out, &errOut)

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}
	if !strings.Contains(out.String(), "1 node (64 CPU cores)") {
		t.Errorf("expected flag to override env, got:\n%s", out.String())
	}
}

func TestRunRoot_UsageErrors(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing args", nil},
		{"one arg", []string{"128"}},
		{"zero PEs", []string{"0", "4"}},
		{"negative threads", []string{"4", "-1"}},
		{"non-numeric", []string{"abc", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			exitCode := runRoot(nil, tt.args, &out, &errOut)

			if exitCode != 2 {
				t.Errorf("expected exit code 2, got %d", exitCode)
			}
			if errOut.Len() == 0 {
				t.Error("expected an error message on stderr")
			}
		})
	}
}

func TestRunRoot_MissingConfigFile(t *testing.T) {
	configPath = "/nonexistent/pestr.yaml"
	defer func() { configPath = "" }()

	var out, errOut bytes.Buffer
	exitCode := runRoot(nil, []string{"128", "12"}, &out, &errOut)

	if exitCode != 2 {
		t.Errorf("expected exit code 2 for missing explicit config, got %d", exitCode)
	}
}

func TestResolveConfig_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg, err := resolveConfig(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CPUsPerNode != config.DefaultCPUsPerNode {
		t.Errorf("expected default CPUs per node, got %d", cfg.CPUsPerNode)
	}
	if cfg.Search.PERadius != config.DefaultPERadius {
		t.Errorf("expected default PE radius, got %g", cfg.Search.PERadius)
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		input string
		want  int
		valid bool
	}{
		{"1", 1, true},
		{"512", 512, true},
		{"0", 0, false},
		{"-8", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, err := parsePositiveInt("PES", tt.input)
		if tt.valid && (err != nil || got != tt.want) {
			t.Errorf("parsePositiveInt(%q) = %d, %v; want %d", tt.input, got, err, tt.want)
		}
		if !tt.valid && err == nil {
			t.Errorf("parsePositiveInt(%q) expected error, got nil", tt.input)
		}
	}
}
