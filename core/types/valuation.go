// Package types - Valuation results
package types

import "github.com/shopspring/decimal"

// VarianceNature tags a variance as favourable or adverse
type VarianceNature string

const (
	Favourable VarianceNature = "favourable"
	Adverse    VarianceNature = "adverse"
)

// NatureOf applies the sign convention: zero or positive is favourable
func NatureOf(amount decimal.Decimal) VarianceNature {
	if amount.IsNegative() {
		return Adverse
	}
	return Favourable
}

// AbsorptionStatus describes absorbed overhead against actual overhead
type AbsorptionStatus string

const (
	OverAbsorbed    AbsorptionStatus = "over_absorbed"
	UnderAbsorbed   AbsorptionStatus = "under_absorbed"
	ExactlyAbsorbed AbsorptionStatus = "exact"
)

// StatusOf classifies an over/under absorption amount
func StatusOf(variance decimal.Decimal) AbsorptionStatus {
	switch variance.Sign() {
	case 1:
		return OverAbsorbed
	case -1:
		return UnderAbsorbed
	default:
		return ExactlyAbsorbed
	}
}

// Label returns the display label
func (s AbsorptionStatus) Label() string {
	switch s {
	case OverAbsorbed:
		return "Over-Absorbed"
	case UnderAbsorbed:
		return "Under-Absorbed"
	default:
		return "Exactly Absorbed"
	}
}

// Absorption is the over/under absorption check
type Absorption struct {
	// AbsorbedTotal is actual activity charged at the OAR
	AbsorbedTotal decimal.Decimal `json:"absorbed_total"`

	// Variance is AbsorbedTotal less actual overheads
	Variance decimal.Decimal `json:"variance"`

	Status AbsorptionStatus `json:"status"`
}

// Variance is a single tagged variance
type Variance struct {
	Amount decimal.Decimal `json:"amount"`
	Nature VarianceNature  `json:"nature"`
}

// NewVariance tags amount with its nature
func NewVariance(amount decimal.Decimal) Variance {
	return Variance{Amount: amount, Nature: NatureOf(amount)}
}

// Decomposition splits total over/under absorption into expenditure and volume
type Decomposition struct {
	// OARPerUnit is budgeted overheads over budgeted units
	OARPerUnit decimal.Decimal `json:"oar_per_unit"`

	Expenditure Variance `json:"expenditure"`
	Volume      Variance `json:"volume"`
}

// Total returns expenditure plus volume variance
func (d Decomposition) Total() decimal.Decimal {
	return d.Expenditure.Amount.Add(d.Volume.Amount)
}

// Reconciliation compares the decomposed variances with over/under absorption
type Reconciliation struct {
	OverUnderAbsorption decimal.Decimal `json:"over_under_absorption"`
	VarianceTotal       decimal.Decimal `json:"variance_total"`
	Difference          decimal.Decimal `json:"difference"`

	// Reconciled is true when Difference is zero to the cent
	Reconciled bool `json:"reconciled"`
}

// FormulaLine records how one derived figure was computed
type FormulaLine struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Formula     string          `json:"formula"`
	Substituted string          `json:"substituted"`
	Value       decimal.Decimal `json:"value"`
}

// Valuation is the full output of one evaluation pass
type Valuation struct {
	Inputs Inputs `json:"inputs"`

	PrimeCost               decimal.Decimal `json:"prime_cost"`
	OverheadAbsorptionRate  decimal.Decimal `json:"overhead_absorption_rate"`
	AbsorbedOverheadPerUnit decimal.Decimal `json:"absorbed_overhead_per_unit"`
	FullCostPerUnit         decimal.Decimal `json:"full_cost_per_unit"`
	TotalInventoryValue     decimal.Decimal `json:"total_inventory_value"`

	Absorption Absorption `json:"absorption"`

	// Variances and Reconciliation are nil when budgeted units is zero
	Variances      *Decomposition  `json:"variances,omitempty"`
	Reconciliation *Reconciliation `json:"reconciliation,omitempty"`

	// Withheld lists the lineage keys left out for a zero denominator
	Withheld []string `json:"withheld,omitempty"`

	// Lineage lists every derived figure in evaluation order
	Lineage []FormulaLine `json:"lineage"`
}

// Line returns the lineage entry for key
func (v *Valuation) Line(key string) (FormulaLine, bool) {
	for _, l := range v.Lineage {
		if l.Key == key {
			return l, true
		}
	}
	return FormulaLine{}, false
}
