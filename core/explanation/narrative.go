// Package explanation - Audit narrative
// Explains what the figures mean for the financial statements and the audit file.
package explanation

import (
	"fmt"
	"strings"

	"inventory-valuation/core/types"
)

// Standard narrative text
const (
	Rationale = "As per FRS 102, Section 13, inventory must be valued at the lower of cost and net realisable value. " +
		"The 'cost' of finished goods includes all costs of purchase, costs of conversion, and other costs incurred " +
		"in bringing the inventories to their present location and condition. This valuation focuses on the cost of " +
		"conversion by systematically absorbing production overheads."

	AuditDocumentation = "This figure is to be reported in the Statement of Financial Position (Balance Sheet). " +
		"As per ISA (UK) 500, this calculation provides the audit evidence for the valuation of finished goods " +
		"inventory. The consistent application of a 'systematic and rational' absorption basis satisfies the " +
		"auditor's requirement for a reliable cost figure."

	RequiredAction = "Any material over/under absorption variance must be investigated. The figure is typically " +
		"taken to the Statement of Profit or Loss as an adjustment to the cost of sales."

	// ValidationMessage is shown instead of figures when a denominator is zero
	ValidationMessage = "Please ensure all input values are greater than zero to perform calculations."

	// WithheldNote replaces the variance analysis when budgeted units is zero
	WithheldNote = "Variance analysis withheld: budgeted units is zero. " + ValidationMessage
)

// Finding is a headline result with its explanation
type Finding struct {
	Title  string               `json:"title"`
	Detail string               `json:"detail"`
	Nature types.VarianceNature `json:"nature,omitempty"`
}

// Narrative is the audit commentary for one valuation
type Narrative struct {
	Rationale          string    `json:"rationale"`
	Justification      string    `json:"justification"`
	AuditDocumentation string    `json:"audit_documentation"`
	Absorption         Finding   `json:"absorption"`
	Variances          []Finding `json:"variances,omitempty"`
	Reconciliation     string    `json:"reconciliation"`
	RequiredAction     string    `json:"required_action"`
}

// NewNarrative builds the commentary for v
func NewNarrative(v *types.Valuation, c types.Currency) *Narrative {
	n := &Narrative{
		Rationale:          Rationale,
		Justification:      v.Inputs.ActivityBasis.Justification(),
		AuditDocumentation: AuditDocumentation,
		Absorption:         AbsorptionFinding(v.Absorption, c),
		Reconciliation:     WithheldNote,
		RequiredAction:     RequiredAction,
	}
	if v.Variances != nil && v.Reconciliation != nil {
		n.Variances = []Finding{
			ExpenditureFinding(v.Variances.Expenditure, c),
			VolumeFinding(v.Variances.Volume, c),
		}
		n.Reconciliation = ReconciliationNote(*v.Reconciliation, c)
	}
	return n
}

// AbsorptionFinding describes an over/under absorption result
func AbsorptionFinding(a types.Absorption, c types.Currency) Finding {
	switch a.Status {
	case types.OverAbsorbed:
		return Finding{
			Title:  "Total Over-Absorbed Overheads: " + c.Format(a.Variance),
			Detail: "This indicates the company absorbed more overheads than were actually incurred. This is generally a favourable variance.",
			Nature: types.Favourable,
		}
	case types.UnderAbsorbed:
		return Finding{
			Title:  "Total Under-Absorbed Overheads: " + c.Format(a.Variance.Neg()),
			Detail: "This indicates the company absorbed fewer overheads than were actually incurred. This is an adverse variance.",
			Nature: types.Adverse,
		}
	default:
		return Finding{
			Title:  "No over or under absorption.",
			Detail: "Absorbed overheads equal actual overheads.",
		}
	}
}

// ExpenditureFinding describes the expenditure variance
func ExpenditureFinding(v types.Variance, c types.Currency) Finding {
	detail := "Actual overhead spend was below budget."
	if v.Nature == types.Adverse {
		detail = "Actual overhead spend exceeded budget."
	}
	if v.Amount.IsZero() {
		detail = "Actual overhead spend matched budget."
	}
	return Finding{
		Title:  fmt.Sprintf("Expenditure Variance: %s %s", c.Format(v.Amount.Abs()), natureLabel(v.Nature)),
		Detail: detail,
		Nature: v.Nature,
	}
}

// VolumeFinding describes the volume variance
func VolumeFinding(v types.Variance, c types.Currency) Finding {
	detail := "Actual output exceeded budgeted output, absorbing more overhead than planned."
	if v.Nature == types.Adverse {
		detail = "Actual output fell short of budgeted output, absorbing less overhead than planned."
	}
	if v.Amount.IsZero() {
		detail = "Actual output matched budgeted output."
	}
	return Finding{
		Title:  fmt.Sprintf("Volume Variance: %s %s", c.Format(v.Amount.Abs()), natureLabel(v.Nature)),
		Detail: detail,
		Nature: v.Nature,
	}
}

// ReconciliationNote states whether the variances explain the over/under absorption
func ReconciliationNote(r types.Reconciliation, c types.Currency) string {
	if r.Reconciled {
		return fmt.Sprintf("Expenditure and volume variances (%s) reconcile to the over/under absorption (%s).",
			c.Format(r.VarianceTotal), c.Format(r.OverUnderAbsorption))
	}
	return fmt.Sprintf("Expenditure and volume variances (%s) differ from the over/under absorption (%s) by %s. "+
		"The variances reconcile only when actual activity is measured in the same units as output.",
		c.Format(r.VarianceTotal), c.Format(r.OverUnderAbsorption), c.Format(r.Difference))
}

// ToMarkdown returns the narrative as markdown sections
func (n *Narrative) ToMarkdown() string {
	var sb strings.Builder

	sb.WriteString("## Accountant's Rationale\n\n")
	sb.WriteString(n.Rationale + "\n\n")
	sb.WriteString("**Justification:** " + n.Justification + "\n\n")

	sb.WriteString("## Audit Documentation\n\n")
	sb.WriteString(n.AuditDocumentation + "\n\n")

	sb.WriteString("## Audit Check: Over/Under Absorption\n\n")
	sb.WriteString("**" + n.Absorption.Title + "**\n\n")
	sb.WriteString(n.Absorption.Detail + "\n\n")

	for _, f := range n.Variances {
		sb.WriteString("- **" + f.Title + "** " + f.Detail + "\n")
	}
	sb.WriteString("\n" + n.Reconciliation + "\n\n")

	sb.WriteString("**Required Audit Action:** " + n.RequiredAction + "\n")

	return sb.String()
}

func natureLabel(n types.VarianceNature) string {
	if n == types.Adverse {
		return "(A)"
	}
	return "(F)"
}
