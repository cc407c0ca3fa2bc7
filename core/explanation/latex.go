// Package explanation - LaTeX equations
// Renders the key formulas with the evaluated figures substituted.
package explanation

import (
	"strings"

	"github.com/shopspring/decimal"

	"inventory-valuation/core/cost"
	"inventory-valuation/core/types"
)

// Equation is a symbolic formula and its substituted form, both LaTeX
type Equation struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Symbolic    string `json:"symbolic"`
	Substituted string `json:"substituted"`
}

// String joins the symbolic and substituted forms
func (e Equation) String() string {
	return e.Symbolic + " " + e.Substituted
}

// Equations returns the OAR, full cost, inventory and absorption equations,
// followed by the variance equations when they were computed
func Equations(v *types.Valuation, c types.Currency) []Equation {
	in := v.Inputs
	unit := in.ActivityBasis.Unit()

	eqs := []Equation{
		{
			Key:      cost.KeyOAR,
			Label:    "Overhead Absorption Rate",
			Symbolic: `OAR = \frac{\text{Budgeted Overheads}}{\text{Budgeted Activity}}`,
			Substituted: `= \frac{` + money(c, in.BudgetedOverheads) + `}{\text{` +
				types.FormatQuantity(in.BudgetedActivityLevel) + " " + strings.ToLower(in.ActivityBasis.Label()) +
				`}} = ` + money(c, v.OverheadAbsorptionRate) + `\text{ per ` + unit + `}`,
		},
		{
			Key:      cost.KeyFullCostPerUnit,
			Label:    "Full Cost per Unit",
			Symbolic: `\text{Full Cost} = \text{Prime Cost} + (OAR \times \text{Activity per Unit})`,
			Substituted: `= ` + money(c, v.PrimeCost) + ` + (` + money(c, v.OverheadAbsorptionRate) +
				` \times ` + types.FormatQuantity(in.ActivityPerUnit) + `) = ` + money(c, v.FullCostPerUnit),
		},
		{
			Key:      cost.KeyTotalInventoryValue,
			Label:    "Total Closing Inventory Value",
			Symbolic: `\text{Inventory Value} = \text{Closing Units} \times \text{Full Cost per Unit}`,
			Substituted: `= ` + types.FormatQuantity(in.ClosingInventoryUnits) + ` \times ` +
				money(c, v.FullCostPerUnit) + ` = ` + money(c, v.TotalInventoryValue),
		},
		{
			Key:      cost.KeyOverUnderAbsorption,
			Label:    "Over/Under Absorption",
			Symbolic: `\text{Under/Over Absorption} = (\text{Actual Activity} \times OAR) - \text{Actual Overheads}`,
			Substituted: `= (\text{` + types.FormatQuantity(in.ActualActivityLevel) + `} \times ` +
				money(c, v.OverheadAbsorptionRate) + `) - ` + money(c, in.ActualOverheads) +
				` = ` + money(c, v.Absorption.Variance),
		},
	}
	if v.Variances == nil {
		return eqs
	}

	return append(eqs,
		Equation{
			Key:      cost.KeyExpenditureVariance,
			Label:    "Expenditure Variance",
			Symbolic: `\text{Expenditure Variance} = \text{Budgeted Overheads} - \text{Actual Overheads}`,
			Substituted: `= ` + money(c, in.BudgetedOverheads) + ` - ` + money(c, in.ActualOverheads) +
				` = ` + money(c, v.Variances.Expenditure.Amount),
		},
		Equation{
			Key:      cost.KeyVolumeVariance,
			Label:    "Volume Variance",
			Symbolic: `\text{Volume Variance} = (\text{Actual Units} - \text{Budgeted Units}) \times \frac{\text{Budgeted Overheads}}{\text{Budgeted Units}}`,
			Substituted: `= (` + types.FormatQuantity(in.ActualUnits) + ` - ` + types.FormatQuantity(in.BudgetedUnits) +
				`) \times ` + money(c, v.Variances.OARPerUnit) + ` = ` + money(c, v.Variances.Volume.Amount),
		},
	)
}

// money formats amount for LaTeX math mode
func money(c types.Currency, amount decimal.Decimal) string {
	return latexEscaper.Replace(c.Format(amount))
}

var latexEscaper = strings.NewReplacer(
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`€`, `\text{€}`,
	`£`, `\pounds `,
)
