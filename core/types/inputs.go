// Package types - Calculation inputs
package types

import (
	"strings"

	"github.com/shopspring/decimal"

	"inventory-valuation/internal/errors"
)

// Inputs is the flat set of figures a single valuation pass is computed from.
// Amounts are per unit where the name says so, otherwise period totals.
type Inputs struct {
	// Direct costs per unit
	DirectMaterialsPerUnit decimal.Decimal `json:"direct_materials_per_unit"`
	DirectLabourPerUnit    decimal.Decimal `json:"direct_labour_per_unit"`

	// Budget
	BudgetedOverheads     decimal.Decimal `json:"budgeted_overheads"`
	BudgetedActivityLevel decimal.Decimal `json:"budgeted_activity_level"`
	BudgetedUnits         decimal.Decimal `json:"budgeted_units"`

	// Inventory
	ActivityPerUnit       decimal.Decimal `json:"activity_per_unit"`
	ClosingInventoryUnits decimal.Decimal `json:"closing_inventory_units"`

	// Actuals
	ActualOverheads     decimal.Decimal `json:"actual_overheads"`
	ActualActivityLevel decimal.Decimal `json:"actual_activity_level"`
	ActualUnits         decimal.Decimal `json:"actual_units"`

	// ActivityBasis is what budgeted and actual activity are measured in
	ActivityBasis ActivityBasis `json:"activity_basis"`
}

// Field is a named input value
type Field struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Money bool            `json:"money"`
}

// Fields lists the numeric inputs in entry order
func (in Inputs) Fields() []Field {
	activity := in.ActivityBasis.Label()
	return []Field{
		{"direct_materials_per_unit", "Direct Materials per Unit", in.DirectMaterialsPerUnit, true},
		{"direct_labour_per_unit", "Direct Labour per Unit", in.DirectLabourPerUnit, true},
		{"budgeted_overheads", "Budgeted Production Overheads", in.BudgetedOverheads, true},
		{"budgeted_activity_level", "Budgeted Activity Level (" + activity + ")", in.BudgetedActivityLevel, false},
		{"budgeted_units", "Budgeted Units", in.BudgetedUnits, false},
		{"activity_per_unit", activity + " per Unit", in.ActivityPerUnit, false},
		{"closing_inventory_units", "Closing Finished Goods Inventory (Units)", in.ClosingInventoryUnits, false},
		{"actual_overheads", "Actual Total Production Overheads", in.ActualOverheads, true},
		{"actual_activity_level", "Actual Total " + activity, in.ActualActivityLevel, false},
		{"actual_units", "Actual Units", in.ActualUnits, false},
	}
}

// Set assigns the figure named by key, as listed by Fields
func (in *Inputs) Set(key string, v decimal.Decimal) error {
	dst := map[string]*decimal.Decimal{
		"direct_materials_per_unit": &in.DirectMaterialsPerUnit,
		"direct_labour_per_unit":    &in.DirectLabourPerUnit,
		"budgeted_overheads":        &in.BudgetedOverheads,
		"budgeted_activity_level":   &in.BudgetedActivityLevel,
		"budgeted_units":            &in.BudgetedUnits,
		"activity_per_unit":         &in.ActivityPerUnit,
		"closing_inventory_units":   &in.ClosingInventoryUnits,
		"actual_overheads":          &in.ActualOverheads,
		"actual_activity_level":     &in.ActualActivityLevel,
		"actual_units":              &in.ActualUnits,
	}[key]
	if dst == nil {
		return errors.Newf(errors.TypeInput, "unknown input %q", key)
	}
	*dst = v
	return nil
}

// Validate checks what the calculator expects its callers to guarantee:
// every figure is non-negative and the basis is known. Zero denominators are
// left to the calculator, which reports them as division by zero.
func (in Inputs) Validate() error {
	var negative []string
	for _, f := range in.Fields() {
		if f.Value.IsNegative() {
			negative = append(negative, f.Key)
		}
	}

	if len(negative) > 0 {
		return errors.Newf(errors.TypeInput, "inputs must not be negative: %s", strings.Join(negative, ", ")).
			WithContext("fields", negative)
	}

	if !in.ActivityBasis.IsValid() {
		return errors.Newf(errors.TypeInput, "unknown activity basis %q", in.ActivityBasis).
			WithContext("allowed", AllBases())
	}

	return nil
}

// DefaultInputs returns the worked example figures
func DefaultInputs() Inputs {
	return Inputs{
		DirectMaterialsPerUnit: decimal.NewFromInt(10),
		DirectLabourPerUnit:    decimal.NewFromInt(15),
		BudgetedOverheads:      decimal.NewFromInt(120000),
		BudgetedActivityLevel:  decimal.NewFromInt(30000),
		BudgetedUnits:          decimal.NewFromInt(30000),
		ActivityPerUnit:        decimal.RequireFromString("1.5"),
		ClosingInventoryUnits:  decimal.NewFromInt(1000),
		ActualOverheads:        decimal.NewFromInt(125000),
		ActualActivityLevel:    decimal.NewFromInt(31000),
		ActualUnits:            decimal.NewFromInt(31000),
		ActivityBasis:          DefaultBasis,
	}
}
