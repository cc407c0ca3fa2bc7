package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"inventory-valuation/core/engine"
	"inventory-valuation/core/output"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/config"
	"inventory-valuation/internal/errors"
)

func init() {
	color.NoColor = true
}

// run executes the CLI against an isolated config file
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), config.FileName)

	original := config.Get()
	t.Cleanup(func() { config.Set(original) })

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValuateDefaults(t *testing.T) {
	out, _, err := run(t, "valuate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"$31,000.00", "Under-Absorbed", "Source: defaults"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestValuateFlagsOverrideScenario(t *testing.T) {
	scenarioPath := filepath.Join(t.TempDir(), "q3.yaml")
	if err := os.WriteFile(scenarioPath, []byte("name: Q3\nclosing_inventory_units: 2000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "valuate", "--scenario", scenarioPath, "--closing-inventory-units", "500", "--format", "json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report struct {
		Title     string `json:"title"`
		Valuation struct {
			TotalInventoryValue string `json:"total_inventory_value"`
		} `json:"valuation"`
		Metadata struct {
			Source string `json:"source"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if report.Valuation.TotalInventoryValue != "15500" {
		t.Errorf("expected 500 units at 31, got %s", report.Valuation.TotalInventoryValue)
	}
	if report.Title != "Q3" {
		t.Errorf("expected scenario name as title, got %q", report.Title)
	}
	if report.Metadata.Source != scenarioPath+" + flags" {
		t.Errorf("unexpected source %q", report.Metadata.Source)
	}
}

func TestValuateZeroDenominator(t *testing.T) {
	out, stderr, err := run(t, "valuate", "--budgeted-activity-level", "0")
	if !errors.IsType(err, errors.TypeDivisionByZero) {
		t.Fatalf("expected DIVISION_BY_ZERO, got %v", err)
	}
	if out != "" {
		t.Errorf("no figures should be printed, got %q", out)
	}
	if !strings.Contains(stderr, "Please ensure all input values are greater than zero") {
		t.Errorf("missing validation message in %q", stderr)
	}
}

func TestValuateWithholdsVariances(t *testing.T) {
	out, _, err := run(t, "valuate", "--budgeted-units", "0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"$31,000.00", "withheld", "Please ensure all input values are greater than zero"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "Expenditure Variance") {
		t.Error("expenditure variance should be withheld")
	}
}

func TestValuateRejectsBadInput(t *testing.T) {
	tests := [][]string{
		{"valuate", "--actual-overheads", "lots"},
		{"valuate", "--actual-overheads", "-1"},
		{"valuate", "--basis", "floor_space"},
		{"valuate", "--format", "docx"},
		{"valuate", "--currency", "JPY"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args[1:], " "), func(t *testing.T) {
			if _, _, err := run(t, args...); !errors.IsType(err, errors.TypeInput) {
				t.Fatalf("expected INPUT_ERROR, got %v", err)
			}
		})
	}
}

func TestValuateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuation.xlsx")
	if _, _, err := run(t, "valuate", "--format", "xlsx", "--out", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Error("expected an xlsx archive")
	}
}

type failingFormatter struct{}

func (failingFormatter) Format() output.Format { return "broken" }
func (failingFormatter) ContentType() string   { return "text/plain" }
func (failingFormatter) Render(w io.Writer, _ *output.Report) error {
	io.WriteString(w, "partial")
	return errors.New(errors.TypeRender, "formatter failed")
}

func TestWriteReportRemovesFileOnRenderError(t *testing.T) {
	registry := output.NewRegistry()
	if err := registry.Register(failingFormatter{}); err != nil {
		t.Fatal(err)
	}
	eng := engine.New(engine.Config{Version: "test"}, registry, zap.NewNop())

	report, err := eng.Valuate(context.Background(), engine.Request{Inputs: types.DefaultInputs()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "valuation.txt")
	if err := writeReport(eng, path, report, "broken"); !errors.IsType(err, errors.TypeRender) {
		t.Fatalf("expected RENDER_ERROR, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("partial output should be removed, stat err %v", err)
	}
}

func TestOAR(t *testing.T) {
	out, _, err := run(t, "oar", "--budgeted-overheads", "90000", "--basis", "direct_labour_hours")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Overhead Absorption Rate: $3.00 per direct labour hour") {
		t.Errorf("unexpected output %q", out)
	}

	if _, _, err := run(t, "oar", "--budgeted-activity-level", "0"); !errors.IsType(err, errors.TypeDivisionByZero) {
		t.Errorf("expected DIVISION_BY_ZERO, got %v", err)
	}
}

func TestAbsorption(t *testing.T) {
	out, _, err := run(t, "absorption", "--actual-activity-level", "32000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Total Over-Absorbed Overheads: $3,000.00") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestVarianceJSON(t *testing.T) {
	out, _, err := run(t, "variance", "--json", "--over-under", "-1000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Total          string `json:"total"`
		Reconciliation struct {
			Reconciled bool `json:"reconciled"`
		} `json:"reconciliation"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Total != "-1000" || !resp.Reconciliation.Reconciled {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestBases(t *testing.T) {
	out, _, err := run(t, "bases")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "* machine_hours") || !strings.Contains(out, "direct_labour_hours") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.json")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "config", "init"})
	if err := root.Execute(); !errors.IsType(err, errors.TypeConfig) {
		t.Errorf("expected CONFIG_ERROR without --force, got %v", err)
	}

	out.Reset()
	root = NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", cfgPath, "config", "show"})
	if err := root.Execute(); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out.String(), `"default_format": "cli"`) {
		t.Errorf("unexpected config output %q", out.String())
	}
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "inventory-valuation version "+Version+"\n" {
		t.Errorf("unexpected output %q", out)
	}
}
