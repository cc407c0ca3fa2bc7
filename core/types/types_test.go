package types

import (
	"testing"

	"github.com/shopspring/decimal"

	"inventory-valuation/internal/errors"
)

func TestParseActivityBasis(t *testing.T) {
	tests := []struct {
		in      string
		want    ActivityBasis
		wantErr bool
	}{
		{"machine_hours", BasisMachineHours, false},
		{"Machine Hours", BasisMachineHours, false},
		{"direct-labour-hours", BasisDirectLabourHours, false},
		{"  UNITS PRODUCED ", BasisUnitsProduced, false},
		{"", DefaultBasis, false},
		{"labour", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseActivityBasis(tt.in)
			if tt.wantErr {
				if !errors.IsType(err, errors.TypeInput) {
					t.Fatalf("expected INPUT_ERROR, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestBasisLabels(t *testing.T) {
	for _, b := range AllBases() {
		if !b.IsValid() {
			t.Errorf("%s should be valid", b)
		}
		if b.Label() == string(b) {
			t.Errorf("%s has no display label", b)
		}
	}
	if BasisMachineHours.Unit() != "machine hour" {
		t.Errorf("unexpected unit %q", BasisMachineHours.Unit())
	}
}

func TestValidateRejectsNegativeInputs(t *testing.T) {
	in := DefaultInputs()
	in.ActualOverheads = decimal.NewFromInt(-1)
	in.DirectLabourPerUnit = decimal.NewFromInt(-5)

	err := in.Validate()
	if !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("expected INPUT_ERROR, got %v", err)
	}
	e, _ := errors.As(err)
	fields, _ := e.Context["fields"].([]string)
	if len(fields) != 2 || fields[0] != "direct_labour_per_unit" || fields[1] != "actual_overheads" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestValidateAllowsZeroDenominators(t *testing.T) {
	in := DefaultInputs()
	in.BudgetedActivityLevel = decimal.Zero
	in.BudgetedUnits = decimal.Zero

	if err := in.Validate(); err != nil {
		t.Fatalf("zero denominators are the calculator's concern, got %v", err)
	}
}

func TestValidateRejectsUnknownBasis(t *testing.T) {
	in := DefaultInputs()
	in.ActivityBasis = "floor_space"
	if !errors.IsType(in.Validate(), errors.TypeInput) {
		t.Fatal("expected INPUT_ERROR for unknown basis")
	}
}

func TestSignConventions(t *testing.T) {
	if NatureOf(decimal.Zero) != Favourable {
		t.Error("zero variance is favourable")
	}
	if NatureOf(decimal.NewFromInt(-1)) != Adverse {
		t.Error("negative variance is adverse")
	}
	if StatusOf(decimal.NewFromInt(5)) != OverAbsorbed {
		t.Error("positive is over-absorbed")
	}
	if StatusOf(decimal.NewFromInt(-5)) != UnderAbsorbed {
		t.Error("negative is under-absorbed")
	}
	if StatusOf(decimal.Zero) != ExactlyAbsorbed {
		t.Error("zero is exact")
	}
}

func TestCurrencyFormat(t *testing.T) {
	tests := []struct {
		currency Currency
		amount   string
		want     string
	}{
		{CurrencyUSD, "31000", "$31,000.00"},
		{CurrencyUSD, "-1000", "-$1,000.00"},
		{CurrencyGBP, "4", "£4.00"},
		{CurrencyUSD, "-0.001", "$0.00"},
		{CurrencyEUR, "1234567.891", "€1,234,567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.currency.Format(decimal.RequireFromString(tt.amount))
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(decimal.NewFromInt(30000)); got != "30,000" {
		t.Errorf("expected 30,000, got %s", got)
	}
	if got := FormatQuantity(decimal.RequireFromString("1.5")); got != "1.5" {
		t.Errorf("expected 1.5, got %s", got)
	}
}

func TestInputsSet(t *testing.T) {
	in := DefaultInputs()
	for _, f := range in.Fields() {
		if err := in.Set(f.Key, decimal.NewFromInt(7)); err != nil {
			t.Fatalf("set %s: %v", f.Key, err)
		}
	}
	for _, f := range in.Fields() {
		if !f.Value.Equal(decimal.NewFromInt(7)) {
			t.Errorf("%s was not set", f.Key)
		}
	}

	if err := in.Set("overheads", decimal.Zero); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected INPUT_ERROR for unknown key, got %v", err)
	}
}

func TestParseCurrency(t *testing.T) {
	for in, want := range map[string]Currency{"": CurrencyUSD, "gbp": CurrencyGBP, " EUR ": CurrencyEUR} {
		got, err := ParseCurrency(in)
		if err != nil || got != want {
			t.Errorf("ParseCurrency(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseCurrency("JPY"); !errors.IsType(err, errors.TypeInput) {
		t.Errorf("expected INPUT_ERROR, got %v", err)
	}
}
