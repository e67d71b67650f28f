package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/seenimoa/equityscope/internal/analysis"
)

// ════════════════════════════════════════════════════════════════════
// PDF export (go-pdf/fpdf, core fonts only)
// ════════════════════════════════════════════════════════════════════

const (
	pdfFont      = "Helvetica"
	pdfPageWidth = 190.0 // A4 minus 10mm margins
	pdfLine      = 5.0
)

// pdfWriter wraps an fpdf document with the report's heading, paragraph and
// table styles. tr converts UTF-8 text to the cp1252 encoding of the core
// fonts.
type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDFWriter(title string) *pdfWriter {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.SetTitle(title, true)
	pdf.SetCreator("equityscope", true)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(pdfFont, "I", 7)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func renderPDF(w io.Writer, d Document) error {
	pw := newPDFWriter(d.Title)
	pdf := pw.pdf

	pdf.SetFont(pdfFont, "B", 16)
	pdf.SetTextColor(20, 20, 40)
	pdf.MultiCell(0, 8, pw.tr(d.Title), "", "L", false)
	pdf.SetFont(pdfFont, "", 8)
	pdf.SetTextColor(110, 110, 110)
	meta := "Generated " + ReportTimestamp(d.GeneratedAt)
	if d.Model != "" {
		meta += " | Model: " + d.Model
	}
	pdf.CellFormat(0, 5, pw.tr(meta), "", 1, "L", false, 0, "")
	pdf.SetDrawColor(59, 130, 246)
	pdf.Line(10, pdf.GetY()+1, 200, pdf.GetY()+1)
	pdf.Ln(4)

	if d.Company != nil {
		pw.company(d)
	}

	r := d.Report
	for _, id := range r.Present() {
		pw.heading(fmt.Sprintf("%d | %s", int(id), id.Title()))
		switch id {
		case analysis.SectionSnapshot:
			s := r.Snapshot
			pw.pairs([][2]string{
				{"Rating", analysis.Value(s.Rating)},
				{"Confidence", analysis.Value(s.Confidence)},
				{"Target Price", analysis.Value(s.TargetPrice)},
				{"Upside Estimate", analysis.Value(s.ImpliedUpside)},
				{"Market Cap", analysis.Value(s.MarketCap)},
				{"Share Price", analysis.Value(s.SharePrice)},
			})
		case analysis.SectionKeyMetrics:
			pw.table(r.KeyMetrics)
		case analysis.SectionFundamentalDrivers:
			f := r.FundamentalDrivers
			pw.paragraph("Growth Engines", analysis.Value(f.GrowthEngines))
			pw.paragraph("Cost Structure", analysis.Value(f.CostStructure))
			pw.paragraph("Capital Allocation", analysis.Value(f.CapitalAllocation))
		case analysis.SectionThesisAssessment:
			t := r.ThesisAssessment
			pw.bullets("Supporting Points", t.SupportingPoints)
			pw.bullets("Risks", t.Risks)
			pw.paragraph("Net Verdict", analysis.Value(t.NetVerdict))
		case analysis.SectionMacroSector:
			m := r.MacroSector
			pw.paragraph("Sector Cycle Position", analysis.Value(m.SectorCycle))
			pw.paragraph("Macro Sensitivities", analysis.Value(m.MacroSensitivities))
			pw.paragraph("Competitive Moat", analysis.Value(m.CompetitiveMoat))
		case analysis.SectionCatalystMap:
			pw.table(r.CatalystMap)
		case analysis.SectionScenarioAnalysis:
			pw.table(r.ScenarioAnalysis)
		case analysis.SectionInvestmentSummary:
			s := r.InvestmentSummary
			pw.bullets("", s.Bullets)
			pw.paragraph("Final Call", analysis.Value(s.FinalCall))
		}
	}

	if len(d.Headlines) > 0 {
		pw.heading("Headlines")
		items := make([]string, len(d.Headlines))
		for i, a := range d.Headlines {
			items[i] = fmt.Sprintf("%s (%s, %s)", a.Title, a.Source, a.PublishedAt.Format("Jan 2, 2006"))
		}
		pw.bullets("", items)
	}

	pdf.Ln(4)
	pdf.SetFont(pdfFont, "I", 7)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(0, 4, pw.tr(Disclaimer), "T", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func (pw *pdfWriter) company(d Document) {
	pdf := pw.pdf
	ov := NewOverview(d.Company)

	pdf.SetFont(pdfFont, "B", 13)
	pdf.SetTextColor(20, 20, 40)
	head := fmt.Sprintf("%s  %s  %s", ov.Name, ov.Symbol, ov.Exchange)
	if ov.Price != "" {
		head += fmt.Sprintf("  %s (%s)", ov.Price, ov.Change)
	}
	pdf.MultiCell(0, 7, pw.tr(head), "", "L", false)

	if ov.Summary != "" {
		pdf.SetFont(pdfFont, "", 9)
		pdf.SetTextColor(50, 50, 50)
		pdf.MultiCell(0, 4.5, pw.tr(ov.Summary), "", "L", false)
		pdf.Ln(1)
	}

	pw.pairs([][2]string{
		{"CEO", ov.CEO},
		{"Location", ov.Location},
		{"Employees", ov.Employees},
		{"Industry", ov.Industry},
		{"IPO Date", ov.IPODate},
		{"Website", ov.WebsiteLabel},
	})

	metrics := CompanyMetrics(d.Company)
	pairs := make([][2]string, len(metrics))
	for i, m := range metrics {
		pairs[i] = [2]string{m.Label, m.Value}
	}
	pw.heading("Financial Overview")
	pw.pairs(pairs)
}

func (pw *pdfWriter) heading(text string) {
	pdf := pw.pdf
	pdf.Ln(2)
	pdf.SetFont(pdfFont, "B", 12)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 7, pw.tr(text), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

// pairs lays out label/value pairs two per line. Empty values are skipped.
func (pw *pdfWriter) pairs(kv [][2]string) {
	pdf := pw.pdf
	col := pdfPageWidth / 2
	n := 0
	for _, p := range kv {
		if p[1] == "" {
			continue
		}
		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(32, pdfLine, pw.tr(p[0]), "", 0, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 9)
		pdf.SetTextColor(20, 20, 20)
		ln := 0
		if n%2 == 1 {
			ln = 1
		}
		pdf.CellFormat(col-32, pdfLine, truncate(pdf, pw.tr(p[1]), col-34), "", ln, "L", false, 0, "")
		n++
	}
	if n%2 == 1 {
		pdf.Ln(pdfLine)
	}
	pdf.Ln(1)
}

func (pw *pdfWriter) paragraph(label, text string) {
	if text == "" {
		return
	}
	pdf := pw.pdf
	if label != "" {
		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetTextColor(70, 70, 70)
		pdf.CellFormat(0, pdfLine, pw.tr(label), "", 1, "L", false, 0, "")
	}
	pdf.SetFont(pdfFont, "", 9)
	pdf.SetTextColor(20, 20, 20)
	pdf.MultiCell(0, pdfLine, pw.tr(text), "", "L", false)
	pdf.Ln(1)
}

func (pw *pdfWriter) bullets(label string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf := pw.pdf
	if label != "" {
		pdf.SetFont(pdfFont, "B", 9)
		pdf.SetTextColor(70, 70, 70)
		pdf.CellFormat(0, pdfLine, pw.tr(label), "", 1, "L", false, 0, "")
	}
	pdf.SetFont(pdfFont, "", 9)
	pdf.SetTextColor(20, 20, 20)
	for _, it := range items {
		pdf.SetX(14)
		pdf.CellFormat(4, pdfLine, "-", "", 0, "L", false, 0, "")
		pdf.MultiCell(pdfPageWidth-8, pdfLine, pw.tr(it), "", "L", false)
	}
	pdf.Ln(1)
}

// table draws t with equal column widths. Rows are padded to the widest row
// and every row grows to fit its tallest wrapped cell.
func (pw *pdfWriter) table(t *analysis.Table) {
	pdf := pw.pdf
	cols := t.Width()
	if cols == 0 {
		return
	}
	colW := pdfPageWidth / float64(cols)
	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()

	drawRow := func(row []string, header bool) {
		style := ""
		if header {
			style = "B"
			pdf.SetFillColor(226, 232, 240)
		}
		pdf.SetFont(pdfFont, style, 8)
		pdf.SetTextColor(20, 20, 20)

		cells := make([]string, cols)
		lines := 1
		for i := 0; i < cols && i < len(row); i++ {
			cells[i] = pw.tr(row[i])
			if n := len(pdf.SplitText(cells[i], colW-2)); n > lines {
				lines = n
			}
		}
		h := float64(lines)*4 + 2

		y := pdf.GetY()
		if y+h > pageH-bottom {
			pdf.AddPage()
			y = pdf.GetY()
		}
		x := 10.0
		for _, c := range cells {
			fill := "D"
			if header {
				fill = "FD"
			}
			pdf.SetDrawColor(203, 213, 225)
			pdf.Rect(x, y, colW, h, fill)
			pdf.SetXY(x+1, y+1)
			pdf.MultiCell(colW-2, 4, c, "", "L", false)
			x += colW
		}
		pdf.SetXY(10, y+h)
	}

	drawRow(t.Headers, true)
	for _, row := range t.Rows {
		drawRow(row, false)
	}
	pdf.Ln(3)
}

// truncate shortens an already-translated string to fit width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 3 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return strings.TrimSpace(s) + "..."
}
