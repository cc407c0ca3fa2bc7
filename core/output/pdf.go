package output

import (
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"inventory-valuation/core/explanation"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

var (
	pdfGrey      = &props.Color{Red: 80, Green: 80, Blue: 80}
	pdfHeaderBg  = &props.Color{Red: 33, Green: 37, Blue: 41}
	pdfSummaryBg = &props.Color{Red: 240, Green: 240, Blue: 240}
	pdfGreen     = &props.Color{Red: 20, Green: 120, Blue: 40}
	pdfRed       = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// PDFFormatter renders a one-page working paper as PDF
type PDFFormatter struct{}

func (f *PDFFormatter) Format() Format      { return FormatPDF }
func (f *PDFFormatter) ContentType() string { return "application/pdf" }

func (f *PDFFormatter) Render(w io.Writer, report *Report) error {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)
	v := report.Valuation
	c := report.Currency

	pdfTitle(m, report)

	pdfSectionHeader(m, "Inputs", "Value")
	for _, field := range v.Inputs.Fields() {
		pdfRow(m, field.Label, fieldValue(c, field), nil)
	}
	m.AddRows(row.New(4))

	pdfSectionHeader(m, "Figure", "Value")
	for _, l := range v.Lineage {
		pdfRow(m, l.Label+"  ("+l.Formula+")", c.Format(l.Value), nil)
	}
	pdfSummary(m, "Total Closing Inventory Value", c.Format(v.TotalInventoryValue))
	m.AddRows(row.New(4))

	pdfSectionHeader(m, "Variance", "Amount")
	pdfRow(m, v.Absorption.Status.Label(), c.Format(v.Absorption.Variance), natureColor(absorptionNature(v.Absorption.Status)))
	if v.Variances != nil {
		pdfRow(m, "Expenditure Variance", signed(c, v.Variances.Expenditure), natureColor(v.Variances.Expenditure.Nature))
		pdfRow(m, "Volume Variance", signed(c, v.Variances.Volume), natureColor(v.Variances.Volume.Nature))
	} else {
		pdfParagraph(m, explanation.WithheldNote)
	}

	if report.Options.ShowNotes && report.Narrative != nil {
		n := report.Narrative
		m.AddRows(row.New(4))
		for _, note := range []string{n.Justification, n.AuditDocumentation, n.Absorption.Title + ". " + n.Absorption.Detail, n.Reconciliation, n.RequiredAction} {
			pdfParagraph(m, note)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return errors.Render("generate pdf", err)
	}
	if _, err := w.Write(doc.GetBytes()); err != nil {
		return errors.Render("write pdf", err)
	}
	return nil
}

func pdfTitle(m core.Maroto, report *Report) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(report.Title, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
			),
		),
		row.New(8).Add(
			col.New(6).Add(
				text.New("Absorption basis: "+report.Valuation.Inputs.ActivityBasis.Label(), props.Text{Size: 9, Color: pdfGrey}),
			),
			col.New(6).Add(
				text.New(report.Metadata.Timestamp, props.Text{Size: 9, Align: align.Right, Color: pdfGrey}),
			),
		),
		row.New(4),
	)
}

func pdfSectionHeader(m core.Maroto, label, value string) {
	style := props.Text{Size: 9, Style: fontstyle.Bold, Color: &props.Color{Red: 255, Green: 255, Blue: 255}}
	right := style
	right.Align = align.Right
	cell := &props.Cell{BackgroundColor: pdfHeaderBg}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New(label, style)).WithStyle(cell),
			col.New(4).Add(text.New(value, right)).WithStyle(cell),
		),
	)
}

func pdfRow(m core.Maroto, label, value string, valueColor *props.Color) {
	m.AddRows(
		row.New(6).Add(
			col.New(8).Add(text.New(label, props.Text{Size: 8})),
			col.New(4).Add(text.New(value, props.Text{Size: 8, Align: align.Right, Color: valueColor})),
		),
	)
}

func pdfSummary(m core.Maroto, label, value string) {
	bold := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
	cell := &props.Cell{BackgroundColor: pdfSummaryBg}
	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New(label, bold)).WithStyle(cell),
			col.New(4).Add(text.New(value, bold)).WithStyle(cell),
		),
	)
}

func pdfParagraph(m core.Maroto, s string) {
	m.AddRows(
		row.New(14).Add(
			col.New(12).Add(text.New(s, props.Text{Size: 8})),
		),
	)
}

func natureColor(n types.VarianceNature) *props.Color {
	switch n {
	case types.Favourable:
		return pdfGreen
	case types.Adverse:
		return pdfRed
	default:
		return nil
	}
}
