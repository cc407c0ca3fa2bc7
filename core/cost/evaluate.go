package cost

import (
	"fmt"

	"github.com/shopspring/decimal"

	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

// Lineage keys, in evaluation order
const (
	KeyPrimeCost               = "prime_cost"
	KeyOAR                     = "overhead_absorption_rate"
	KeyAbsorbedOverheadPerUnit = "absorbed_overhead_per_unit"
	KeyFullCostPerUnit         = "full_cost_per_unit"
	KeyTotalInventoryValue     = "total_inventory_value"
	KeyAbsorbedOverheadTotal   = "absorbed_overhead_total"
	KeyOverUnderAbsorption     = "over_under_absorption"
	KeyOARPerUnit              = "oar_per_unit"
	KeyExpenditureVariance     = "expenditure_variance"
	KeyVolumeVariance          = "volume_variance"
)

// Evaluate runs every formula over in, in order. A zero budgeted activity
// level stops the pass and no figures are returned. A zero budgeted units
// only withholds the variance analysis, which is listed in Withheld.
func Evaluate(in types.Inputs) (*types.Valuation, error) {
	oar, err := OverheadAbsorptionRate(in.BudgetedOverheads, in.BudgetedActivityLevel)
	if err != nil {
		return nil, err
	}

	prime := PrimeCost(in.DirectMaterialsPerUnit, in.DirectLabourPerUnit)
	absorbedPerUnit := AbsorbedOverheadPerUnit(oar, in.ActivityPerUnit)
	full := FullCost(prime, oar, in.ActivityPerUnit)
	total := InventoryValue(in.ClosingInventoryUnits, full)
	absorption := AbsorptionVariance(in.ActualActivityLevel, oar, in.ActualOverheads)

	v := &types.Valuation{
		Inputs:                  in,
		PrimeCost:               prime,
		OverheadAbsorptionRate:  oar,
		AbsorbedOverheadPerUnit: absorbedPerUnit,
		FullCostPerUnit:         full,
		TotalInventoryValue:     total,
		Absorption:              absorption,
	}

	v.Lineage = []types.FormulaLine{
		line(KeyPrimeCost, "Prime Cost per Unit",
			"Direct Materials + Direct Labour",
			sub("%s + %s", in.DirectMaterialsPerUnit, in.DirectLabourPerUnit), prime),
		line(KeyOAR, "Overhead Absorption Rate",
			"Budgeted Overheads / Budgeted Activity",
			sub("%s / %s", in.BudgetedOverheads, in.BudgetedActivityLevel), oar),
		line(KeyAbsorbedOverheadPerUnit, "Absorbed Overhead per Unit",
			"OAR x Activity per Unit",
			sub("%s x %s", oar, in.ActivityPerUnit), absorbedPerUnit),
		line(KeyFullCostPerUnit, "Full Cost per Unit",
			"Prime Cost + Absorbed Overhead per Unit",
			sub("%s + %s", prime, absorbedPerUnit), full),
		line(KeyTotalInventoryValue, "Total Closing Inventory Value",
			"Closing Inventory Units x Full Cost per Unit",
			sub("%s x %s", in.ClosingInventoryUnits, full), total),
		line(KeyAbsorbedOverheadTotal, "Absorbed Overheads",
			"Actual Activity x OAR",
			sub("%s x %s", in.ActualActivityLevel, oar), absorption.AbsorbedTotal),
		line(KeyOverUnderAbsorption, "Over/(Under) Absorption",
			"(Actual Activity x OAR) - Actual Overheads",
			sub("%s - %s", absorption.AbsorbedTotal, in.ActualOverheads), absorption.Variance),
	}

	decomposition, err := VarianceDecomposition(in.BudgetedOverheads, in.ActualOverheads, in.BudgetedUnits, in.ActualUnits)
	if err != nil {
		if !errors.IsType(err, errors.TypeDivisionByZero) {
			return nil, err
		}
		v.Withheld = []string{KeyOARPerUnit, KeyExpenditureVariance, KeyVolumeVariance}
		return v, nil
	}

	reconciliation := Reconcile(decomposition, absorption.Variance)
	v.Variances = &decomposition
	v.Reconciliation = &reconciliation
	v.Lineage = append(v.Lineage,
		line(KeyOARPerUnit, "OAR per Budgeted Unit",
			"Budgeted Overheads / Budgeted Units",
			sub("%s / %s", in.BudgetedOverheads, in.BudgetedUnits), decomposition.OARPerUnit),
		line(KeyExpenditureVariance, "Expenditure Variance",
			"Budgeted Overheads - Actual Overheads",
			sub("%s - %s", in.BudgetedOverheads, in.ActualOverheads), decomposition.Expenditure.Amount),
		line(KeyVolumeVariance, "Volume Variance",
			"(Actual Units - Budgeted Units) x OAR per Unit",
			sub("(%s - %s) x %s", in.ActualUnits, in.BudgetedUnits, decomposition.OARPerUnit), decomposition.Volume.Amount),
	)

	return v, nil
}

func line(key, label, formula, substituted string, value decimal.Decimal) types.FormulaLine {
	return types.FormulaLine{
		Key:         key,
		Label:       label,
		Formula:     formula,
		Substituted: substituted,
		Value:       value,
	}
}

func sub(format string, values ...decimal.Decimal) string {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v.String()
	}
	return fmt.Sprintf(format, args...)
}
