package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"inventory-valuation/core/explanation"
	"inventory-valuation/core/types"
)

const (
	boxTop    = "┌─────────────────────────────────────────────────────────────────────────┐"
	boxRule   = "├─────────────────────────────────────────────────────────────────────────┤"
	boxBottom = "└─────────────────────────────────────────────────────────────────────────┘"
)

var (
	favourable = color.New(color.FgGreen).SprintFunc()
	adverse    = color.New(color.FgRed).SprintFunc()
	heading    = color.New(color.Bold).SprintFunc()
)

// CLIFormatter renders a boxed summary table for terminals
type CLIFormatter struct{}

func (f *CLIFormatter) Format() Format      { return FormatCLI }
func (f *CLIFormatter) ContentType() string { return "text/plain; charset=utf-8" }

// Render writes the summary table, then formulas and notes when enabled
func (f *CLIFormatter) Render(w io.Writer, report *Report) error {
	v := report.Valuation
	c := report.Currency
	in := v.Inputs

	tw := &tableWriter{w: w}
	tw.line(boxTop)
	tw.title(report.Title)
	tw.line(boxRule)

	tw.section("1. Direct Costs")
	tw.row("Direct Materials per Unit", c.Format(in.DirectMaterialsPerUnit))
	tw.row("Direct Labour per Unit", c.Format(in.DirectLabourPerUnit))
	tw.row("Prime Cost per Unit", c.Format(v.PrimeCost))
	tw.line(boxRule)

	tw.section("2. Overhead Absorption (" + in.ActivityBasis.Label() + ")")
	tw.row("Budgeted Production Overheads", c.Format(in.BudgetedOverheads))
	tw.row("Budgeted Activity Level", types.FormatQuantity(in.BudgetedActivityLevel))
	tw.row("OAR per "+in.ActivityBasis.Unit(), c.Format(v.OverheadAbsorptionRate))
	tw.line(boxRule)

	tw.section("3. Inventory Valuation")
	tw.row(in.ActivityBasis.Label()+" per Unit", types.FormatQuantity(in.ActivityPerUnit))
	tw.row("Absorbed Overhead per Unit", c.Format(v.AbsorbedOverheadPerUnit))
	tw.row("Full Cost per Unit", c.Format(v.FullCostPerUnit))
	tw.row("Closing Inventory (Units)", types.FormatQuantity(in.ClosingInventoryUnits))
	tw.line(boxRule)
	tw.emphasis("TOTAL CLOSING INVENTORY VALUE", c.Format(v.TotalInventoryValue))
	tw.line(boxRule)

	tw.section("4. Over/Under Absorption")
	tw.row("Actual Overheads", c.Format(in.ActualOverheads))
	tw.row("Actual "+in.ActivityBasis.Label(), types.FormatQuantity(in.ActualActivityLevel))
	tw.row("Absorbed Overheads", c.Format(v.Absorption.AbsorbedTotal))
	tw.tagged(v.Absorption.Status.Label(), c.Format(v.Absorption.Variance.Abs()), absorptionNature(v.Absorption.Status))
	tw.line(boxRule)

	tw.section("5. Variance Analysis")
	if v.Variances != nil && v.Reconciliation != nil {
		tw.row("OAR per Budgeted Unit", c.Format(v.Variances.OARPerUnit))
		tw.tagged("Expenditure Variance", signed(c, v.Variances.Expenditure), v.Variances.Expenditure.Nature)
		tw.tagged("Volume Variance", signed(c, v.Variances.Volume), v.Variances.Volume.Nature)
		reconciled := "reconciled"
		if !v.Reconciliation.Reconciled {
			reconciled = "difference " + c.Format(v.Reconciliation.Difference)
		}
		tw.row("Reconciliation", reconciled)
	} else {
		tw.row("Variances", "withheld")
	}
	tw.line(boxBottom)
	if len(v.Withheld) > 0 {
		tw.plain(explanation.ValidationMessage)
	}

	if report.Options.ShowFormulas {
		tw.blank()
		tw.plain(heading("Workings"))
		for _, l := range v.Lineage {
			tw.plain(fmt.Sprintf("  %-30s %s = %s = %s", l.Label, l.Formula, l.Substituted, l.Value.Round(4).String()))
		}
	}

	if report.Options.ShowNotes && report.Narrative != nil {
		n := report.Narrative
		tw.blank()
		tw.plain(heading("Justification: ") + n.Justification)
		tw.plain(heading(n.Absorption.Title) + " " + n.Absorption.Detail)
		tw.plain(n.Reconciliation)
		tw.plain(heading("Required Audit Action: ") + n.RequiredAction)
	}

	if report.Metadata.Source != "" {
		tw.blank()
		tw.plain("Source: " + report.Metadata.Source)
	}
	if report.Metadata.InputHash != "" {
		tw.plain("Inputs: " + shortHash(report.Metadata.InputHash))
	}

	return tw.err
}

func signed(c types.Currency, v types.Variance) string {
	return c.Format(v.Amount.Abs()) + " " + natureSuffix(v.Nature)
}

func natureSuffix(n types.VarianceNature) string {
	if n == types.Adverse {
		return "(A)"
	}
	return "(F)"
}

func absorptionNature(s types.AbsorptionStatus) types.VarianceNature {
	switch s {
	case types.OverAbsorbed:
		return types.Favourable
	case types.UnderAbsorbed:
		return types.Adverse
	default:
		return ""
	}
}

// tableWriter writes boxed rows and remembers the first write error
type tableWriter struct {
	w   io.Writer
	err error
}

func (t *tableWriter) printf(format string, args ...interface{}) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *tableWriter) line(s string)  { t.printf("%s\n", s) }
func (t *tableWriter) plain(s string) { t.printf("%s\n", s) }
func (t *tableWriter) blank()         { t.printf("\n") }

func (t *tableWriter) title(s string) {
	t.printf("│ %-71s │\n", truncate(s, 71))
}

func (t *tableWriter) section(s string) {
	t.printf("│ %s │\n", heading(fmt.Sprintf("%-71s", truncate(s, 71))))
}

func (t *tableWriter) row(label, value string) {
	t.printf("│   %-48s %20s │\n", truncate(label, 48), value)
}

func (t *tableWriter) emphasis(label, value string) {
	t.printf("│ %s │\n", heading(fmt.Sprintf("%-50s %20s", label, value)))
}

func (t *tableWriter) tagged(label, value string, nature types.VarianceNature) {
	cell := fmt.Sprintf("%20s", value)
	switch nature {
	case types.Favourable:
		cell = favourable(cell)
	case types.Adverse:
		cell = adverse(cell)
	}
	t.printf("│   %-48s %s │\n", truncate(label, 48), cell)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
