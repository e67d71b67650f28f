package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/equityscope/internal/analysis"
	"github.com/seenimoa/equityscope/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func str(s string) *string { return &s }

func sampleCompany() *models.CompanyData {
	return &models.CompanyData{
		Profile: models.CompanyProfile{
			Symbol:            "TSLA",
			CompanyName:       "Tesla, Inc.",
			ExchangeShortName: "NASDAQ",
			Industry:          "Auto - Manufacturers",
			Sector:            "Consumer Cyclical",
			Website:           "https://www.tesla.com",
			Description:       "Tesla designs electric vehicles. It sells energy storage. It operates in two segments. It was founded in 2003.",
			CEO:               "Elon Musk",
			FullTimeEmployees: 140473,
			City:              "Austin",
			State:             "TX",
			IPODate:           "2010-06-29",
		},
		Quote: models.Quote{
			Symbol:    "TSLA",
			Name:      "Tesla, Inc.",
			Price:     248.5,
			ChangePct: -1.25,
			YearHigh:  299.29,
			YearLow:   138.8,
			MarketCap: 7.9e11,
			Volume:    98_760_000,
			EPS:       4.3,
			PE:        57.8,
		},
		KeyMetrics: []models.KeyMetrics{{
			Date:              "2023-12-31",
			RevenuePerShare:   30.46,
			ROE:               0.2794,
			ROIC:              0.1532,
			DebtToEquity:      0.08,
			CurrentRatio:      1.73,
			FreeCashFlowYield: 0.0096,
			PBRatio:           12.4,
			EVToEBITDA:        55.3,
		}},
		IncomeStatements: []models.IncomeStatement{
			{Date: "2023-12-31", CalendarYear: "2023", Revenue: 96.77e9, NetIncome: 15e9},
			{Date: "2022-12-31", CalendarYear: "2022", Revenue: 81.46e9, NetIncome: 12.6e9},
		},
		CashFlowStatements: []models.CashFlowStatement{
			{Date: "2023-12-31", FreeCashFlow: 4.36e9},
		},
	}
}

func sampleReport() *analysis.Report {
	rating := analysis.RatingBuy
	conf := analysis.ConfidenceHigh
	return &analysis.Report{
		Snapshot: &analysis.Snapshot{
			MarketCap:     str("$800B"),
			TargetPrice:   str("$310"),
			ImpliedUpside: str("25%"),
			Rating:        &rating,
			Confidence:    &conf,
		},
		KeyMetrics: &analysis.Table{
			Headers: []string{"Metric", "TTM"},
			Rows:    [][]string{{"Revenue growth", "12%"}, {"Gross margin", "18%", "extra"}},
		},
		ThesisAssessment: &analysis.ThesisAssessment{
			SupportingPoints: []string{"Energy storage ramp"},
			Risks:            []string{"Price cuts <margin>"},
			NetVerdict:       str("Bullish - cost lead"),
		},
		InvestmentSummary: &analysis.InvestmentSummary{
			Bullets:   []string{"One", "Two"},
			FinalCall: str("Buy, 12 months, High"),
		},
	}
}

func sampleDocument() Document {
	return Document{
		Report:      sampleReport(),
		Company:     sampleCompany(),
		Model:       "google/gemini-2.5-flash",
		GeneratedAt: time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC),
		Headlines: []models.NewsArticle{{
			Title:       "Tesla deliveries beat",
			URL:         "https://example.com/a",
			Source:      "Example Wire",
			PublishedAt: time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func renderDoc(t *testing.T, doc Document, f Format) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, doc, f))
	return buf.String()
}

// ════════════════════════════════════════════════════════════════════
// Formats
// ════════════════════════════════════════════════════════════════════

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatHTML},
		{"HTML", FormatHTML},
		{"pdf", FormatPDF},
		{" txt ", FormatText},
		{"json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, ".txt", FormatText.Extension())
	assert.Equal(t, "text/html; charset=utf-8", FormatHTML.ContentType())
}

func TestRenderErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Render(&buf, Document{}, FormatHTML), ErrEmptyDocument)

	err := Render(&buf, Document{Report: &analysis.Report{}}, Format("rtf"))
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}

// ════════════════════════════════════════════════════════════════════
// HTML
// ════════════════════════════════════════════════════════════════════

func TestRenderHTMLSections(t *testing.T) {
	out := renderDoc(t, sampleDocument(), FormatHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Tesla, Inc. (TSLA) Equity Research", doc.Find("title").Text())

	var ids []string
	doc.Find(".card[id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids = append(ids, id)
	})
	assert.Equal(t, []string{
		"chart", "financials", "snapshot", "key-metrics",
		"thesis-assessment", "investment-summary", "headlines",
	}, ids)

	assert.Equal(t, "1 | Snapshot", strings.TrimSpace(doc.Find("#snapshot h2").Text()))
	assert.True(t, doc.Find("#snapshot .tile.rating-buy").Length() == 1)
	assert.True(t, doc.Find("#snapshot .confidence-high").Length() == 1)
	assert.Zero(t, doc.Find("#fundamental-drivers").Length())
	assert.Zero(t, doc.Find("#macro-sector").Length())

	// ragged row is rendered as written
	rows := doc.Find("#key-metrics tbody tr")
	require.Equal(t, 2, rows.Length())
	assert.Equal(t, 3, rows.Eq(1).Find("td").Length())

	assert.Equal(t, "Price cuts <margin>", doc.Find("#thesis-assessment .risks li").Text())
	assert.Contains(t, doc.Find("#investment-summary .final-call").Text(), "Buy, 12 months, High")
}

func TestRenderHTMLCompany(t *testing.T) {
	out := renderDoc(t, sampleDocument(), FormatHTML)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Tesla, Inc.", doc.Find("#company h2").Text())
	assert.Equal(t, "$248.50", doc.Find("#company .price").Text())
	assert.Equal(t, "-1.25%", strings.TrimSpace(doc.Find("#company .down").Text()))
	assert.Equal(t, "Tesla designs electric vehicles. It sells energy storage. It operates in two segments.",
		doc.Find("#company .description").Text())

	labels := doc.Find(".metrics .row .label").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	assert.Len(t, labels, 14)
	assert.Equal(t, "Market Cap", labels[0])

	href, ok := doc.Find("#company .details a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://www.tesla.com", href)
	assert.Equal(t, "www.tesla.com", doc.Find("#company .details a").Text())

	script := doc.Find("#chart script")
	src, _ := script.Attr("src")
	assert.Equal(t, TradingViewScript, src)
	assert.Contains(t, script.Text(), `"symbol":"NASDAQ:TSLA"`)
}

func TestRenderHTMLReportOnly(t *testing.T) {
	doc := Document{CompanyName: "Apple Inc.", Symbol: "aapl", Report: &analysis.Report{
		CatalystMap: &analysis.Table{Headers: []string{"Date", "Event"}, Rows: [][]string{}},
	}}
	out := renderDoc(t, doc, FormatHTML)

	q, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	assert.Zero(t, q.Find("#company").Length())
	assert.Zero(t, q.Find("#chart").Length())
	assert.Equal(t, "6 | Catalyst Map", q.Find("#catalyst-map h2").Text())
	assert.Equal(t, "Apple Inc. (AAPL) Equity Research", q.Find("h1").Text())
}

// ════════════════════════════════════════════════════════════════════
// Text / JSON / PDF
// ════════════════════════════════════════════════════════════════════

func TestRenderText(t *testing.T) {
	out := renderDoc(t, sampleDocument(), FormatText)

	assert.Contains(t, out, "Tesla, Inc. (TSLA) Equity Research")
	assert.Contains(t, out, "Model: google/gemini-2.5-flash")
	assert.Contains(t, out, "■ 1 | SNAPSHOT")
	assert.Contains(t, out, "    Rating:          Buy\n")
	assert.Contains(t, out, " Revenue growth | 12% |       |")
	assert.Contains(t, out, "- Tesla deliveries beat (Example Wire, 2025-03-13)")
	assert.NotContains(t, out, "FUNDAMENTAL DRIVERS")
	assert.Less(t, strings.Index(out, "SNAPSHOT"), strings.Index(out, "INVESTMENT SUMMARY"))
	assert.Contains(t, out, Disclaimer)
}

func TestRenderJSON(t *testing.T) {
	out := renderDoc(t, sampleDocument(), FormatJSON)

	var got struct {
		Title  string `json:"title"`
		Symbol string `json:"symbol"`
		Report struct {
			Snapshot struct {
				MarketCap string `json:"marketCap"`
				Rating    string `json:"rating"`
			} `json:"snapshot"`
			MacroSector *json.RawMessage `json:"macroSector"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "TSLA", got.Symbol)
	assert.Equal(t, "$800B", got.Report.Snapshot.MarketCap)
	assert.Equal(t, "Buy", got.Report.Snapshot.Rating)
	assert.Nil(t, got.Report.MacroSector)
}

func TestRenderPDF(t *testing.T) {
	doc := sampleDocument()
	doc.Report.MacroSector = &analysis.MacroSector{CompetitiveMoat: str("Scale, “brand” and €5bn of cash")}
	out := renderDoc(t, doc, FormatPDF)

	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	assert.Contains(t, out, "%%EOF")
}

// ════════════════════════════════════════════════════════════════════
// Metrics & charts
// ════════════════════════════════════════════════════════════════════

func TestCompanyMetrics(t *testing.T) {
	got := CompanyMetrics(sampleCompany())
	want := []Metric{
		{"Market Cap", "$790.00B"},
		{"P/E Ratio", "57.8"},
		{"EPS", "$4.30"},
		{"52W High", "$299"},
		{"52W Low", "$139"},
		{"Volume", "98.8M"},
		{"Revenue/Share", "$30.5"},
		{"ROE", "27.94%"},
		{"ROIC", "15.32%"},
		{"Debt/Equity", "0.1"},
		{"Current Ratio", "1.7"},
		{"FCF Yield", "0.96%"},
		{"P/B Ratio", "12.4"},
		{"EV/EBITDA", "55.3"},
	}
	assert.Equal(t, want, got)

	noMetrics := sampleCompany()
	noMetrics.KeyMetrics = nil
	assert.Len(t, CompanyMetrics(noMetrics), 6)
	assert.Nil(t, CompanyMetrics(nil))
}

func TestNewOverview(t *testing.T) {
	d := sampleCompany()
	ov := NewOverview(d)

	assert.Equal(t, "Austin, TX", ov.Location)
	assert.Equal(t, "140,473", ov.Employees)
	assert.Equal(t, "www.tesla.com", ov.WebsiteLabel)
	assert.True(t, ov.Truncated)
	assert.False(t, ov.Up)
	assert.Equal(t, "NASDAQ:TSLA", ov.TVSymbol)

	d.Profile = models.CompanyProfile{Symbol: "XYZ"}
	ov = NewOverview(d)
	assert.Equal(t, "N/A", ov.CEO)
	assert.Equal(t, "N/A", ov.Location)
	assert.Equal(t, "N/A", ov.Employees)
	assert.Equal(t, "N/A", ov.WebsiteLabel)
	assert.False(t, ov.Truncated)
}

func TestChartWidget(t *testing.T) {
	w := ChartWidget("aapl", "")
	assert.Equal(t, "NASDAQ:AAPL", w.Symbol)
	assert.Equal(t, "D", w.Interval)
	assert.Equal(t, "3", w.Style)
	assert.Equal(t, "dark", w.Theme)
	assert.True(t, w.Autosize)
	assert.True(t, w.HideVolume)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(w.JSON()), &decoded))
	assert.Equal(t, "exchange", decoded["timezone"])
	assert.Equal(t, true, decoded["hide_side_toolbar"])
	assert.Equal(t, []any{}, decoded["watchlist"])

	assert.Contains(t, string(w.Embed()), "height:400px")
}

func TestFinancialSeries(t *testing.T) {
	series, labels := FinancialSeries(sampleCompany())
	require.Len(t, series, 3)
	assert.Equal(t, []string{"2022", "2023"}, labels)
	assert.Equal(t, []float64{81.46e9, 96.77e9}, series[0].Values)
	assert.True(t, series[2].Values[0] != series[2].Values[0], "missing cash flow is NaN")
	assert.Equal(t, 4.36e9, series[2].Values[1])

	one := sampleCompany()
	one.IncomeStatements = one.IncomeStatements[:1]
	s, l := FinancialSeries(one)
	assert.Nil(t, s)
	assert.Nil(t, l)
}

func TestTrendChart(t *testing.T) {
	series, labels := FinancialSeries(sampleCompany())
	svg := TrendChart(series, labels, ChartConfig{})

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "Financial History")
	assert.Contains(t, svg, "Free Cash Flow")
	assert.Equal(t, 2, strings.Count(svg, "<path"), "FCF has a single point and draws no line")

	assert.Contains(t, TrendChart(nil, nil, ChartConfig{}), "No data")
	assert.Contains(t, TrendChart([]Series{{Name: "x", Values: []float64{1}}}, nil, ChartConfig{}), "No data points")
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "&lt;a href=&quot;x&quot;&gt;&amp;", escapeXML(`<a href="x">&`))
}
