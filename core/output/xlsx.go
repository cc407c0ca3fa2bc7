package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"inventory-valuation/core/explanation"
	"inventory-valuation/core/types"
	"inventory-valuation/internal/errors"
)

const valuationSheet = "Valuation"

type varianceRow struct {
	label  string
	amount float64
	nature types.VarianceNature
}

// XLSXFormatter renders an Excel workbook with inputs, results and variances
type XLSXFormatter struct{}

func (f *XLSXFormatter) Format() Format { return FormatXLSX }
func (f *XLSXFormatter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f *XLSXFormatter) Render(w io.Writer, report *Report) error {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName(wb.GetSheetName(0), valuationSheet); err != nil {
		return errors.Render("set sheet name", err)
	}

	styles, err := newSheetStyles(wb)
	if err != nil {
		return errors.Render("create styles", err)
	}

	for col, width := range map[string]float64{"A": 44, "B": 18, "C": 52, "D": 14} {
		if err := wb.SetColWidth(valuationSheet, col, col, width); err != nil {
			return errors.Render("set column width", err)
		}
	}

	sw := &sheetWriter{f: wb, sheet: valuationSheet, row: 1}
	v := report.Valuation
	in := v.Inputs

	sw.cell("A", report.Title, styles.title)
	sw.next()
	sw.cell("A", "Activity basis: "+in.ActivityBasis.Label(), 0)
	sw.next()
	sw.cell("A", "Currency: "+report.Currency.String(), 0)
	sw.skip(2)

	sw.header(styles.header, "Input", "Value")
	for _, field := range in.Fields() {
		style := styles.quantity
		if field.Money {
			style = styles.money
		}
		sw.cell("A", field.Label, styles.body)
		sw.cell("B", field.Value.InexactFloat64(), style)
		sw.next()
	}
	sw.next()

	sw.header(styles.header, "Figure", "Value", "Formula")
	for _, l := range v.Lineage {
		sw.cell("A", l.Label, styles.body)
		sw.cell("B", l.Value.InexactFloat64(), styles.money)
		sw.cell("C", l.Formula, styles.body)
		sw.next()
	}
	sw.cell("A", "Total Closing Inventory Value", styles.total)
	sw.cell("B", v.TotalInventoryValue.InexactFloat64(), styles.totalMoney)
	sw.skip(2)

	sw.header(styles.header, "Variance", "Amount", "", "Nature")
	variances := []varianceRow{
		{v.Absorption.Status.Label(), v.Absorption.Variance.InexactFloat64(), absorptionNature(v.Absorption.Status)},
	}
	if v.Variances != nil {
		variances = append(variances,
			varianceRow{"Expenditure Variance", v.Variances.Expenditure.Amount.InexactFloat64(), v.Variances.Expenditure.Nature},
			varianceRow{"Volume Variance", v.Variances.Volume.Amount.InexactFloat64(), v.Variances.Volume.Nature},
		)
	}
	for _, row := range variances {
		sw.cell("A", row.label, styles.body)
		sw.cell("B", row.amount, styles.money)
		sw.cell("D", natureOrDash(row.nature), styles.body)
		sw.next()
	}
	if v.Variances == nil {
		sw.merged("A", "D", explanation.WithheldNote, styles.note)
		sw.next()
	}

	if report.Options.ShowNotes && report.Narrative != nil {
		n := report.Narrative
		sw.next()
		for _, note := range []string{n.Justification, n.Absorption.Title + ". " + n.Absorption.Detail, n.Reconciliation, n.RequiredAction} {
			sw.merged("A", "D", note, styles.note)
			sw.next()
		}
	}

	if sw.err != nil {
		return errors.Render("write cells", sw.err)
	}
	if err := wb.Write(w); err != nil {
		return errors.Render("write workbook", err)
	}
	return nil
}

type sheetStyles struct {
	title, header, body, money, quantity, total, totalMoney, note int
}

type styleDef struct {
	dst   *int
	style *excelize.Style
}

func newSheetStyles(f *excelize.File) (*sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "#CCCCCC", Style: 1},
		{Type: "right", Color: "#CCCCCC", Style: 1},
		{Type: "top", Color: "#CCCCCC", Style: 1},
		{Type: "bottom", Color: "#CCCCCC", Style: 1},
	}

	s := &sheetStyles{}
	defs := []styleDef{
		{&s.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}}},
		{&s.header, &excelize.Style{
			Font:   &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Border: border,
		}},
		{&s.body, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: border}},
		{&s.money, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: border, NumFmt: 4}},
		{&s.quantity, &excelize.Style{Font: &excelize.Font{Size: 10}, Border: border, NumFmt: 3}},
		{&s.total, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}},
		{&s.totalMoney, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: 4}},
		{&s.note, &excelize.Style{
			Font:      &excelize.Font{Size: 10},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		}},
	}

	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return nil, err
		}
		*d.dst = id
	}
	return s, nil
}

// sheetWriter fills rows top to bottom and remembers the first error
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (s *sheetWriter) ref(col string) string {
	return fmt.Sprintf("%s%d", col, s.row)
}

func (s *sheetWriter) next()      { s.row++ }
func (s *sheetWriter) skip(n int) { s.row += n }

func (s *sheetWriter) cell(col string, value interface{}, style int) {
	if s.err != nil {
		return
	}
	ref := s.ref(col)
	if s.err = s.f.SetCellValue(s.sheet, ref, value); s.err != nil {
		return
	}
	if style != 0 {
		s.err = s.f.SetCellStyle(s.sheet, ref, ref, style)
	}
}

func (s *sheetWriter) header(style int, labels ...string) {
	cols := []string{"A", "B", "C", "D"}
	for i, label := range labels {
		s.cell(cols[i], label, style)
	}
	s.next()
}

func (s *sheetWriter) merged(from, to, value string, style int) {
	if s.err != nil {
		return
	}
	if s.err = s.f.MergeCell(s.sheet, s.ref(from), s.ref(to)); s.err != nil {
		return
	}
	s.cell(from, value, style)
	if s.err == nil {
		s.err = s.f.SetRowHeight(s.sheet, s.row, 42)
	}
}
