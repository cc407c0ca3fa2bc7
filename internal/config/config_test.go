package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Valuation.Currency != types.CurrencyUSD {
		t.Errorf("unexpected currency %s", cfg.Valuation.Currency)
	}
	if cfg.Output.DefaultFormat != "cli" {
		t.Errorf("unexpected format %s", cfg.Output.DefaultFormat)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Valuation.Currency = types.CurrencyGBP
	cfg.Valuation.Defaults.BudgetedOverheads = decimal.NewFromInt(90000)
	cfg.Valuation.Defaults.ActivityBasis = types.BasisDirectLabourHours
	cfg.Server.Addr = ":9090"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Valuation.Currency != types.CurrencyGBP {
		t.Errorf("currency not persisted: %s", loaded.Valuation.Currency)
	}
	if !loaded.Valuation.Defaults.BudgetedOverheads.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("defaults not persisted: %s", loaded.Valuation.Defaults.BudgetedOverheads)
	}
	if loaded.Valuation.Defaults.ActivityBasis != types.BasisDirectLabourHours {
		t.Errorf("basis not persisted: %s", loaded.Valuation.Defaults.ActivityBasis)
	}
	if loaded.Server.Addr != ":9090" {
		t.Errorf("addr not persisted: %s", loaded.Server.Addr)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`{"output": {"default_format": "markdown"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.DefaultFormat != "markdown" {
		t.Errorf("unexpected format %s", cfg.Output.DefaultFormat)
	}
	if !cfg.Valuation.Defaults.BudgetedUnits.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("defaults lost: %s", cfg.Valuation.Defaults.BudgetedUnits)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"malformed":      `{"valuation": `,
		"currency":       `{"valuation": {"currency": "JPY"}}`,
		"negative input": `{"valuation": {"defaults": {"actual_overheads": -1}}}`,
		"basis":          `{"valuation": {"defaults": {"activity_basis": "floor_space"}}}`,
		"timeout":        `{"server": {"read_timeout_seconds": -5}}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.IsType(err, errors.TypeConfig) {
				t.Fatalf("expected CONFIG_ERROR, got %v", err)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	original := Get()
	defer Set(original)

	cfg := Default()
	cfg.Output.ShowNotes = false
	Set(cfg)

	if Get().Output.ShowNotes {
		t.Error("Set did not replace the global configuration")
	}
}
