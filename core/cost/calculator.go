// Package cost implements the costing arithmetic.
// Every function is pure: same inputs, same outputs, no shared state.
package cost

import (
	"github.com/shopspring/decimal"

	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

// PrimeCost is direct materials plus direct labour per unit
func PrimeCost(materials, labour decimal.Decimal) decimal.Decimal {
	return materials.Add(labour)
}

// OverheadAbsorptionRate is budgeted overheads per unit of budgeted activity
func OverheadAbsorptionRate(budgetedOverheads, budgetedActivity decimal.Decimal) (decimal.Decimal, error) {
	if budgetedActivity.IsZero() {
		return decimal.Zero, errors.DivisionByZero("budgeted activity level")
	}
	return budgetedOverheads.Div(budgetedActivity), nil
}

// AbsorbedOverheadPerUnit charges activityPerUnit at the OAR
func AbsorbedOverheadPerUnit(oar, activityPerUnit decimal.Decimal) decimal.Decimal {
	return oar.Mul(activityPerUnit)
}

// FullCost is prime cost plus absorbed overhead per unit
func FullCost(primeCost, oar, activityPerUnit decimal.Decimal) decimal.Decimal {
	return primeCost.Add(AbsorbedOverheadPerUnit(oar, activityPerUnit))
}

// InventoryValue values units at full cost. Both are expected to be non-negative.
func InventoryValue(units, fullCost decimal.Decimal) decimal.Decimal {
	return units.Mul(fullCost)
}

// AbsorptionVariance compares overhead absorbed on actual activity with actual overhead
func AbsorptionVariance(actualActivity, oar, actualOverheads decimal.Decimal) types.Absorption {
	absorbed := actualActivity.Mul(oar)
	variance := absorbed.Sub(actualOverheads)
	return types.Absorption{
		AbsorbedTotal: absorbed,
		Variance:      variance,
		Status:        types.StatusOf(variance),
	}
}

// VarianceDecomposition splits over/under absorption into an expenditure
// variance (budget less actual spend) and a volume variance (output above
// budget at the per-unit rate).
func VarianceDecomposition(budgetedOH, actualOH, budgetedUnits, actualUnits decimal.Decimal) (types.Decomposition, error) {
	if budgetedUnits.IsZero() {
		return types.Decomposition{}, errors.DivisionByZero("budgeted units")
	}

	perUnit := budgetedOH.Div(budgetedUnits)
	return types.Decomposition{
		OARPerUnit:  perUnit,
		Expenditure: types.NewVariance(budgetedOH.Sub(actualOH)),
		Volume:      types.NewVariance(actualUnits.Sub(budgetedUnits).Mul(perUnit)),
	}, nil
}

// Reconcile checks expenditure plus volume variance against over/under absorption
func Reconcile(d types.Decomposition, overUnder decimal.Decimal) types.Reconciliation {
	total := d.Total()
	diff := total.Sub(overUnder)
	return types.Reconciliation{
		OverUnderAbsorption: overUnder,
		VarianceTotal:       total,
		Difference:          diff,
		Reconciled:          diff.Round(2).IsZero(),
	}
}
