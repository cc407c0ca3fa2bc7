package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"inventory-valuation/core/explanation"
	"inventory-valuation/core/types"
)

// JSONFormatter renders the report as JSON. Decimals are encoded as strings.
// Equations and narrative are left out when their option is off.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format() Format      { return FormatJSON }
func (f *JSONFormatter) ContentType() string { return "application/json" }

func (f *JSONFormatter) Render(w io.Writer, report *Report) error {
	out := *report
	if !out.Options.ShowFormulas {
		out.Equations = nil
	}
	if !out.Options.ShowNotes {
		out.Narrative = nil
	}

	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(&out)
}

// MarkdownFormatter renders a markdown working paper
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format() Format      { return FormatMarkdown }
func (f *MarkdownFormatter) ContentType() string { return "text/markdown; charset=utf-8" }

func (f *MarkdownFormatter) Render(w io.Writer, report *Report) error {
	v := report.Valuation
	c := report.Currency
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Title)
	fmt.Fprintf(&b, "- Activity basis: %s\n", v.Inputs.ActivityBasis.Label())
	fmt.Fprintf(&b, "- Currency: %s\n", c)
	if report.Metadata.Source != "" {
		fmt.Fprintf(&b, "- Source: %s\n", report.Metadata.Source)
	}
	if report.Metadata.Timestamp != "" {
		fmt.Fprintf(&b, "- Prepared: %s\n", report.Metadata.Timestamp)
	}
	if report.Metadata.InputHash != "" {
		fmt.Fprintf(&b, "- Inputs: `%s`\n", shortHash(report.Metadata.InputHash))
	}

	fmt.Fprintf(&b, "\n## Inputs\n\n")
	fmt.Fprintf(&b, "| Input | Value |\n")
	fmt.Fprintf(&b, "| --- | ---: |\n")
	for _, field := range v.Inputs.Fields() {
		fmt.Fprintf(&b, "| %s | %s |\n", field.Label, fieldValue(c, field))
	}

	fmt.Fprintf(&b, "\n## Results\n\n")
	fmt.Fprintf(&b, "| Figure | Formula | Value |\n")
	fmt.Fprintf(&b, "| --- | --- | ---: |\n")
	for _, l := range v.Lineage {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", l.Label, l.Formula, c.Format(l.Value))
	}

	fmt.Fprintf(&b, "\n**Total Closing Inventory Value: %s**\n", c.Format(v.TotalInventoryValue))

	fmt.Fprintf(&b, "\n## Variances\n\n")
	fmt.Fprintf(&b, "| Variance | Amount | Nature |\n")
	fmt.Fprintf(&b, "| --- | ---: | --- |\n")
	fmt.Fprintf(&b, "| %s | %s | %s |\n", v.Absorption.Status.Label(), c.Format(v.Absorption.Variance), natureOrDash(absorptionNature(v.Absorption.Status)))
	if v.Variances != nil {
		fmt.Fprintf(&b, "| Expenditure | %s | %s |\n", c.Format(v.Variances.Expenditure.Amount), v.Variances.Expenditure.Nature)
		fmt.Fprintf(&b, "| Volume | %s | %s |\n", c.Format(v.Variances.Volume.Amount), v.Variances.Volume.Nature)
	} else {
		fmt.Fprintf(&b, "\n> %s\n", explanation.WithheldNote)
	}

	if report.Options.ShowFormulas {
		fmt.Fprintf(&b, "\n## Workings\n")
		for _, e := range report.Equations {
			fmt.Fprintf(&b, "\n### %s\n\n$$\n%s\n%s\n$$\n", e.Label, e.Symbolic, e.Substituted)
		}
	}

	if report.Options.ShowNotes && report.Narrative != nil {
		fmt.Fprintf(&b, "\n%s", report.Narrative.ToMarkdown())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// LaTeXFormatter renders a standalone LaTeX document of the workings
type LaTeXFormatter struct{}

func (f *LaTeXFormatter) Format() Format      { return FormatLaTeX }
func (f *LaTeXFormatter) ContentType() string { return "application/x-latex" }

func (f *LaTeXFormatter) Render(w io.Writer, report *Report) error {
	var b strings.Builder

	b.WriteString("\\documentclass{article}\n")
	b.WriteString("\\usepackage[utf8]{inputenc}\n")
	b.WriteString("\\usepackage{amsmath}\n")
	b.WriteString("\\begin{document}\n\n")
	fmt.Fprintf(&b, "\\section*{%s}\n\n", latexText(report.Title))
	fmt.Fprintf(&b, "Absorption basis: %s.\n\n", latexText(report.Valuation.Inputs.ActivityBasis.Label()))

	for _, e := range report.Equations {
		fmt.Fprintf(&b, "\\subsection*{%s}\n", latexText(e.Label))
		fmt.Fprintf(&b, "\\[\n%s\n\\]\n\\[\n%s\n\\]\n\n", e.Symbolic, e.Substituted)
	}

	if report.Options.ShowNotes && report.Narrative != nil {
		n := report.Narrative
		b.WriteString("\\subsection*{Audit Notes}\n")
		fmt.Fprintf(&b, "%s\n\n", latexText(n.Justification))
		fmt.Fprintf(&b, "\\textbf{%s} %s\n\n", latexText(n.Absorption.Title), latexText(n.Absorption.Detail))
		fmt.Fprintf(&b, "%s\n\n", latexText(n.RequiredAction))
	}

	b.WriteString("\\end{document}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

var latexTextEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`$`, `\$`,
	`%`, `\%`,
	`&`, `\&`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`£`, `\pounds{}`,
)

func latexText(s string) string {
	return latexTextEscaper.Replace(s)
}

func fieldValue(c types.Currency, f types.Field) string {
	if f.Money {
		return c.Format(f.Value)
	}
	return types.FormatQuantity(f.Value)
}

func natureOrDash(n types.VarianceNature) string {
	if n == "" {
		return "-"
	}
	return string(n)
}
