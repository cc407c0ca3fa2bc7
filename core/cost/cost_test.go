package cost

import (
	"testing"

	"github.com/shopspring/decimal"

	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertEqual(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestPrimeCost(t *testing.T) {
	assertEqual(t, "primeCost", PrimeCost(d("10.00"), d("15.00")), "25.00")
	assertEqual(t, "primeCost zero", PrimeCost(decimal.Zero, decimal.Zero), "0")
}

func TestOverheadAbsorptionRate(t *testing.T) {
	tests := []struct {
		name     string
		overhead string
		activity string
		want     string
	}{
		{"worked example", "120000", "30000", "4"},
		{"fractional", "1000", "3", "333.3333333333333333"},
		{"zero overheads", "0", "500", "0"},
		{"small activity", "50", "0.5", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oar, err := OverheadAbsorptionRate(d(tt.overhead), d(tt.activity))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertEqual(t, "oar", oar, tt.want)
			if oar.IsNegative() {
				t.Errorf("OAR must not be negative, got %s", oar)
			}
		})
	}
}

func TestOverheadAbsorptionRateZeroActivity(t *testing.T) {
	for _, overhead := range []string{"0", "1", "120000"} {
		_, err := OverheadAbsorptionRate(d(overhead), decimal.Zero)
		if !errors.IsType(err, errors.TypeDivisionByZero) {
			t.Errorf("overhead %s: expected DIVISION_BY_ZERO, got %v", overhead, err)
		}
	}
}

func TestFullCostAndInventoryValue(t *testing.T) {
	oar := d("4.00")

	assertEqual(t, "absorbedPerUnit", AbsorbedOverheadPerUnit(oar, d("1.5")), "6.00")

	full := FullCost(d("25.00"), oar, d("1.5"))
	assertEqual(t, "fullCost", full, "31.00")

	assertEqual(t, "inventoryValue", InventoryValue(d("1000"), full), "31000.00")
	assertEqual(t, "inventoryValue empty", InventoryValue(decimal.Zero, full), "0")
}

func TestAbsorptionVariance(t *testing.T) {
	tests := []struct {
		name       string
		activity   string
		overheads  string
		absorbed   string
		variance   string
		wantStatus types.AbsorptionStatus
	}{
		{"under absorbed", "31000", "125000", "124000", "-1000", types.UnderAbsorbed},
		{"over absorbed", "32000", "125000", "128000", "3000", types.OverAbsorbed},
		{"exact", "31250", "125000", "125000", "0", types.ExactlyAbsorbed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := AbsorptionVariance(d(tt.activity), d("4.00"), d(tt.overheads))
			assertEqual(t, "absorbed", a.AbsorbedTotal, tt.absorbed)
			assertEqual(t, "variance", a.Variance, tt.variance)
			if a.Status != tt.wantStatus {
				t.Errorf("expected %s, got %s", tt.wantStatus, a.Status)
			}
		})
	}
}

func TestVarianceDecomposition(t *testing.T) {
	dec, err := VarianceDecomposition(d("120000"), d("125000"), d("30000"), d("31000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "oarPerUnit", dec.OARPerUnit, "4")
	assertEqual(t, "expenditure", dec.Expenditure.Amount, "-5000")
	assertEqual(t, "volume", dec.Volume.Amount, "4000")

	if dec.Expenditure.Nature != types.Adverse {
		t.Errorf("overspend should be adverse, got %s", dec.Expenditure.Nature)
	}
	if dec.Volume.Nature != types.Favourable {
		t.Errorf("output above budget should be favourable, got %s", dec.Volume.Nature)
	}
}

func TestVarianceDecompositionSignConvention(t *testing.T) {
	dec, err := VarianceDecomposition(d("120000"), d("110000"), d("30000"), d("28000"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Expenditure.Nature != types.Favourable {
		t.Errorf("underspend should be favourable, got %s", dec.Expenditure.Nature)
	}
	if dec.Volume.Nature != types.Adverse {
		t.Errorf("output below budget should be adverse, got %s", dec.Volume.Nature)
	}
}

func TestVarianceDecompositionZeroUnits(t *testing.T) {
	_, err := VarianceDecomposition(d("120000"), d("125000"), decimal.Zero, d("31000"))
	if !errors.IsType(err, errors.TypeDivisionByZero) {
		t.Fatalf("expected DIVISION_BY_ZERO, got %v", err)
	}
}

func TestReconciliationIdentity(t *testing.T) {
	tests := []struct {
		name                                     string
		budgetedOH, actualOH, budgetedU, actualU string
	}{
		{"worked example", "120000", "125000", "30000", "31000"},
		{"favourable both", "90000", "85000", "1500", "1600"},
		{"output shortfall", "50000", "52000", "2000", "1700"},
		{"nothing produced", "10000", "9000", "400", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// units are the activity basis, so actual activity == actual units
			oar, err := OverheadAbsorptionRate(d(tt.budgetedOH), d(tt.budgetedU))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			abs := AbsorptionVariance(d(tt.actualU), oar, d(tt.actualOH))

			dec, err := VarianceDecomposition(d(tt.budgetedOH), d(tt.actualOH), d(tt.budgetedU), d(tt.actualU))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			rec := Reconcile(dec, abs.Variance)
			if !rec.Reconciled {
				t.Errorf("expected reconciliation, difference %s (total %s vs %s)",
					rec.Difference, rec.VarianceTotal, rec.OverUnderAbsorption)
			}
		})
	}
}

func TestReconcileReportsDifference(t *testing.T) {
	dec := types.Decomposition{
		Expenditure: types.NewVariance(d("-5000")),
		Volume:      types.NewVariance(d("4000")),
	}
	rec := Reconcile(dec, d("-1500"))
	if rec.Reconciled {
		t.Fatal("expected a difference")
	}
	assertEqual(t, "difference", rec.Difference, "500")
}

func TestEvaluateWorkedExample(t *testing.T) {
	v, err := Evaluate(types.DefaultInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "primeCost", v.PrimeCost, "25")
	assertEqual(t, "oar", v.OverheadAbsorptionRate, "4")
	assertEqual(t, "absorbedPerUnit", v.AbsorbedOverheadPerUnit, "6")
	assertEqual(t, "fullCost", v.FullCostPerUnit, "31")
	assertEqual(t, "inventory", v.TotalInventoryValue, "31000")
	assertEqual(t, "absorbedTotal", v.Absorption.AbsorbedTotal, "124000")
	assertEqual(t, "overUnder", v.Absorption.Variance, "-1000")
	assertEqual(t, "expenditure", v.Variances.Expenditure.Amount, "-5000")
	assertEqual(t, "volume", v.Variances.Volume.Amount, "4000")

	if v.Absorption.Status != types.UnderAbsorbed {
		t.Errorf("expected under-absorbed, got %s", v.Absorption.Status)
	}
	if !v.Reconciliation.Reconciled {
		t.Errorf("expected worked example to reconcile, difference %s", v.Reconciliation.Difference)
	}

	if len(v.Lineage) != 10 {
		t.Fatalf("expected 10 lineage lines, got %d", len(v.Lineage))
	}
	oarLine, ok := v.Line(KeyOAR)
	if !ok {
		t.Fatal("missing OAR lineage line")
	}
	if oarLine.Substituted != "120000 / 30000" {
		t.Errorf("unexpected substitution %q", oarLine.Substituted)
	}
}

func TestEvaluateWithholdsFiguresOnZeroActivity(t *testing.T) {
	in := types.DefaultInputs()
	in.BudgetedActivityLevel = decimal.Zero

	v, err := Evaluate(in)
	if !errors.IsType(err, errors.TypeDivisionByZero) {
		t.Fatalf("expected DIVISION_BY_ZERO, got %v", err)
	}
	if v != nil {
		t.Error("no figures should be returned")
	}
}

func TestEvaluateWithholdsVariancesOnZeroBudgetedUnits(t *testing.T) {
	in := types.DefaultInputs()
	in.BudgetedUnits = decimal.Zero

	v, err := Evaluate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "primeCost", v.PrimeCost, "25")
	assertEqual(t, "oar", v.OverheadAbsorptionRate, "4")
	assertEqual(t, "totalInventoryValue", v.TotalInventoryValue, "31000")
	assertEqual(t, "overUnder", v.Absorption.Variance, "-1000")

	if v.Variances != nil || v.Reconciliation != nil {
		t.Errorf("variance analysis should be withheld, got %+v %+v", v.Variances, v.Reconciliation)
	}
	want := []string{KeyOARPerUnit, KeyExpenditureVariance, KeyVolumeVariance}
	if len(v.Withheld) != len(want) {
		t.Fatalf("expected withheld %v, got %v", want, v.Withheld)
	}
	for i, key := range want {
		if v.Withheld[i] != key {
			t.Errorf("withheld[%d] = %s, want %s", i, v.Withheld[i], key)
		}
		if _, ok := v.Line(key); ok {
			t.Errorf("lineage should not contain %s", key)
		}
	}
	if _, ok := v.Line(KeyTotalInventoryValue); !ok {
		t.Error("lineage should keep the inventory figures")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	in := types.DefaultInputs()
	in.ActivityPerUnit = d("1.75")
	in.BudgetedOverheads = d("98765.43")

	first, err := Evaluate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Evaluate(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first.Lineage {
		a, b := first.Lineage[i], second.Lineage[i]
		if a.Key != b.Key || !a.Value.Equal(b.Value) || a.Substituted != b.Substituted {
			t.Errorf("line %s differs between runs: %s vs %s", a.Key, a.Value, b.Value)
		}
	}
}
