// Package report renders an analysis, together with the company data it was
// built from, as HTML, plain text, JSON or PDF.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/seenimoa/equityscope/internal/analysis"
	"github.com/seenimoa/equityscope/pkg/models"
	"github.com/seenimoa/equityscope/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Formats
// ════════════════════════════════════════════════════════════════════

// Format specifies the output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	// ErrUnknownFormat is returned for a format name Render does not support.
	ErrUnknownFormat = errors.New("report: unknown format")
	// ErrEmptyDocument is returned when a document has neither an analysis
	// nor company data.
	ErrEmptyDocument = errors.New("report: nothing to render")
)

// ParseFormat maps a user-supplied name ("html", "PDF", "txt") to a Format.
// An empty name selects HTML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "text/html; charset=utf-8"
}

// Extension returns the file extension, with dot, for f.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatText:
		return ".txt"
	case FormatJSON:
		return ".json"
	}
	return ".html"
}

// ════════════════════════════════════════════════════════════════════
// Document
// ════════════════════════════════════════════════════════════════════

// Document is everything a rendered report can show. Report and Company are
// both optional but at least one must be set.
type Document struct {
	Title       string               `json:"title"`
	CompanyName string               `json:"companyName,omitempty"`
	Symbol      string               `json:"symbol,omitempty"`
	Model       string               `json:"model,omitempty"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Report      *analysis.Report     `json:"report,omitempty"`
	Company     *models.CompanyData  `json:"company,omitempty"`
	Headlines   []models.NewsArticle `json:"headlines,omitempty"`
}

// normalize fills the title, name and symbol from the company data when the
// caller left them blank.
func (d Document) normalize() Document {
	if d.Company != nil {
		if d.CompanyName == "" {
			d.CompanyName = d.Company.Name()
		}
		if d.Symbol == "" {
			d.Symbol = d.Company.Symbol()
		}
	}
	d.Symbol = utils.NormalizeTicker(d.Symbol)
	if d.Title == "" {
		switch {
		case d.CompanyName != "" && d.Symbol != "":
			d.Title = fmt.Sprintf("%s (%s) Equity Research", d.CompanyName, d.Symbol)
		case d.CompanyName != "":
			d.Title = d.CompanyName + " Equity Research"
		default:
			d.Title = "Equity Research"
		}
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now()
	}
	return d
}

// ════════════════════════════════════════════════════════════════════
// Render
// ════════════════════════════════════════════════════════════════════

// Render writes doc to w in format f.
func Render(w io.Writer, doc Document, f Format) error {
	if doc.Report == nil && doc.Company == nil {
		return ErrEmptyDocument
	}
	doc = doc.normalize()

	switch f {
	case FormatHTML:
		return renderHTML(w, doc)
	case FormatText:
		_, err := io.WriteString(w, renderText(doc))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatPDF:
		return renderPDF(w, doc)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// ReportTimestamp formats t for report headers.
func ReportTimestamp(t time.Time) string {
	return t.In(utils.Eastern).Format("02 Jan 2006, 03:04 PM MST")
}

// ════════════════════════════════════════════════════════════════════
// HTML renderer
// ════════════════════════════════════════════════════════════════════

// htmlView is the template model passed to ReportTemplate.
type htmlView struct {
	Document
	Timestamp  string
	Overview   *Overview
	Metrics    []Metric
	Chart      template.HTML
	Trend      template.HTML
	Disclaimer string
}

var funcs = template.FuncMap{
	"str": func(v any) string {
		switch p := v.(type) {
		case *string:
			return analysis.Value(p)
		case *analysis.Rating:
			return analysis.Value(p)
		case *analysis.Confidence:
			return analysis.Value(p)
		}
		return fmt.Sprint(v)
	},
	"heading": func(id analysis.SectionID) string {
		return fmt.Sprintf("%d | %s", int(id), id.Title())
	},
	"ratingClass": func(r *analysis.Rating) string {
		return "rating-" + cssWord(analysis.Value(r), "buy", "hold", "sell")
	},
	"confidenceClass": func(c *analysis.Confidence) string {
		return "confidence-" + cssWord(analysis.Value(c), "high", "medium", "low")
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(funcs).Parse(ReportTemplate))

// cssWord returns the lower-cased value when it is one of allowed, else
// "unknown".
func cssWord(v string, allowed ...string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return "unknown"
}

func renderHTML(w io.Writer, d Document) error {
	view := htmlView{
		Document:   d,
		Timestamp:  ReportTimestamp(d.GeneratedAt),
		Disclaimer: Disclaimer,
	}
	if d.Company != nil {
		ov := NewOverview(d.Company)
		view.Overview = &ov
		view.Metrics = CompanyMetrics(d.Company)
		view.Chart = ChartWidget(ov.Symbol, ov.Exchange).Embed()
		if series, labels := FinancialSeries(d.Company); series != nil {
			view.Trend = template.HTML(TrendChart(series, labels, DefaultChartConfig()))
		}
	}

	if err := reportTmpl.Execute(w, view); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Plain-text renderer
// ════════════════════════════════════════════════════════════════════

func renderText(d Document) string {
	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s", ReportTimestamp(d.GeneratedAt)))
	if d.Model != "" {
		sb.WriteString(fmt.Sprintf(" | Model: %s", d.Model))
	}
	sb.WriteString("\n" + line + "\n")

	if d.Company != nil {
		ov := NewOverview(d.Company)
		sb.WriteString(fmt.Sprintf("\n  %s (%s) %s\n", ov.Name, ov.Symbol, ov.Exchange))
		if ov.Sector != "" || ov.Industry != "" {
			sb.WriteString(fmt.Sprintf("  Sector: %s | Industry: %s\n", ov.Sector, ov.Industry))
		}
		if ov.Price != "" {
			sb.WriteString(fmt.Sprintf("  Price: %s (%s)\n", ov.Price, ov.Change))
		}
		sb.WriteString(thinLine + "\n")
		for _, m := range CompanyMetrics(d.Company) {
			sb.WriteString(fmt.Sprintf("    %-16s %s\n", m.Label, m.Value))
		}
		sb.WriteString(thinLine + "\n")
	}

	r := d.Report
	for _, id := range r.Present() {
		sb.WriteString(fmt.Sprintf("\n  ■ %d | %s\n", int(id), strings.ToUpper(id.Title())))
		switch id {
		case analysis.SectionSnapshot:
			s := r.Snapshot
			writePair(&sb, "Market Cap", analysis.Value(s.MarketCap))
			writePair(&sb, "Share Price", analysis.Value(s.SharePrice))
			writePair(&sb, "Target Price", analysis.Value(s.TargetPrice))
			writePair(&sb, "Upside Estimate", analysis.Value(s.ImpliedUpside))
			writePair(&sb, "Rating", analysis.Value(s.Rating))
			writePair(&sb, "Confidence", analysis.Value(s.Confidence))
		case analysis.SectionKeyMetrics:
			writeTable(&sb, r.KeyMetrics)
		case analysis.SectionFundamentalDrivers:
			f := r.FundamentalDrivers
			writeParagraph(&sb, "Growth Engines", analysis.Value(f.GrowthEngines))
			writeParagraph(&sb, "Cost Structure", analysis.Value(f.CostStructure))
			writeParagraph(&sb, "Capital Allocation", analysis.Value(f.CapitalAllocation))
		case analysis.SectionThesisAssessment:
			t := r.ThesisAssessment
			writeBullets(&sb, "Supporting Points", t.SupportingPoints)
			writeBullets(&sb, "Risks", t.Risks)
			writePair(&sb, "Net Verdict", analysis.Value(t.NetVerdict))
		case analysis.SectionMacroSector:
			m := r.MacroSector
			writeParagraph(&sb, "Sector Cycle", analysis.Value(m.SectorCycle))
			writeParagraph(&sb, "Macro Sensitivities", analysis.Value(m.MacroSensitivities))
			writeParagraph(&sb, "Competitive Moat", analysis.Value(m.CompetitiveMoat))
		case analysis.SectionCatalystMap:
			writeTable(&sb, r.CatalystMap)
		case analysis.SectionScenarioAnalysis:
			writeTable(&sb, r.ScenarioAnalysis)
		case analysis.SectionInvestmentSummary:
			s := r.InvestmentSummary
			writeBullets(&sb, "Key Points", s.Bullets)
			writePair(&sb, "Final Call", analysis.Value(s.FinalCall))
		}
		sb.WriteString(thinLine + "\n")
	}

	if len(d.Headlines) > 0 {
		sb.WriteString("\n  ■ HEADLINES\n")
		for _, a := range d.Headlines {
			sb.WriteString(fmt.Sprintf("    - %s (%s, %s)\n", a.Title, a.Source, a.PublishedAt.Format("2006-01-02")))
		}
		sb.WriteString(thinLine + "\n")
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  " + Disclaimer + "\n")
	sb.WriteString(line + "\n")

	return sb.String()
}

// Disclaimer closes every rendered report.
const Disclaimer = "AI-generated research for informational purposes only. Not financial advice."

func writePair(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("    %-16s %s\n", label+":", value))
}

func writeParagraph(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("    %s\n      %s\n", label, value))
}

func writeBullets(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("    %s\n", label))
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("      - %s\n", it))
	}
}

// writeTable pads columns to the widest cell. Rows shorter than the widest
// row are padded with blanks so ragged input still lines up.
func writeTable(sb *strings.Builder, t *analysis.Table) {
	width := t.Width()
	cols := make([]int, width)
	measure := func(row []string) {
		for i, c := range row {
			if n := len([]rune(c)); n > cols[i] {
				cols[i] = n
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	write := func(row []string) {
		sb.WriteString("   ")
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(" " + cell + strings.Repeat(" ", cols[i]-len([]rune(cell))) + " |")
		}
		sb.WriteString("\n")
	}
	write(t.Headers)
	sep := make([]string, width)
	for i, w := range cols {
		sep[i] = strings.Repeat("-", w)
	}
	write(sep)
	for _, row := range t.Rows {
		write(row)
	}
}
