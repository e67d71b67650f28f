package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/seenimoa/equityscope/pkg/models"
	"github.com/seenimoa/equityscope/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// TradingView advanced-chart widget
// ════════════════════════════════════════════════════════════════════

// TradingViewScript is the embed script the widget config is handed to.
const TradingViewScript = "https://s3.tradingview.com/external-embedding/embed-widget-advanced-chart.js"

// ChartHeight is the widget container height.
const ChartHeight = "400px"

// WidgetConfig is the JSON the TradingView embed script reads from its own
// script body.
type WidgetConfig struct {
	AllowSymbolChange bool           `json:"allow_symbol_change"`
	Calendar          bool           `json:"calendar"`
	Details           bool           `json:"details"`
	HideSideToolbar   bool           `json:"hide_side_toolbar"`
	HideTopToolbar    bool           `json:"hide_top_toolbar"`
	HideLegend        bool           `json:"hide_legend"`
	HideVolume        bool           `json:"hide_volume"`
	Hotlist           bool           `json:"hotlist"`
	Interval          string         `json:"interval"`
	Locale            string         `json:"locale"`
	SaveImage         bool           `json:"save_image"`
	Style             string         `json:"style"`
	Symbol            string         `json:"symbol"`
	Theme             string         `json:"theme"`
	Timezone          string         `json:"timezone"`
	Watchlist         []string       `json:"watchlist"`
	WithDateRanges    bool           `json:"withdateranges"`
	Studies           []string       `json:"studies"`
	Autosize          bool           `json:"autosize"`
	Overrides         map[string]any `json:"overrides"`
}

// ChartWidget returns the daily dark-theme area chart config for symbol on
// exchange. An empty exchange means NASDAQ.
func ChartWidget(symbol, exchange string) WidgetConfig {
	return WidgetConfig{
		HideSideToolbar: true,
		HideVolume:      true,
		Interval:        "D",
		Locale:          "en",
		SaveImage:       true,
		Style:           "3",
		Symbol:          utils.TradingViewSymbol(exchange, symbol),
		Theme:           "dark",
		Timezone:        "exchange",
		Watchlist:       []string{},
		Studies:         []string{},
		Autosize:        true,
		Overrides: map[string]any{
			"mainSeriesProperties.barStyle.upColor":            "#CCD3DA",
			"mainSeriesProperties.barStyle.downColor":          "#4054b2",
			"mainSeriesProperties.candleStyle.upColor":         "#CCD3DA",
			"mainSeriesProperties.candleStyle.downColor":       "#4054b2",
			"mainSeriesProperties.candleStyle.drawWick":        true,
			"mainSeriesProperties.candleStyle.drawBorder":      true,
			"mainSeriesProperties.candleStyle.borderColor":     "#E4E4E4",
			"mainSeriesProperties.candleStyle.borderUpColor":   "#f9fafb",
			"mainSeriesProperties.candleStyle.borderDownColor": "#4054b2",
			"mainSeriesProperties.candleStyle.wickUpColor":     "#c4c5c6",
			"mainSeriesProperties.candleStyle.wickDownColor":   "#4054b2",
		},
	}
}

// JSON returns the config as the script body expects it.
func (w WidgetConfig) JSON() string {
	b, err := json.Marshal(w)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Embed returns the widget container markup with the config inlined.
func (w WidgetConfig) Embed() template.HTML {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<div class="tradingview-widget-container" style="height:%s;width:100%%">`, ChartHeight))
	sb.WriteString(`<div class="tradingview-widget-container__widget" style="height:calc(100% - 32px);width:100%"></div>`)
	sb.WriteString(`<div class="tradingview-widget-copyright"><a href="https://www.tradingview.com/" rel="noopener nofollow" target="_blank"><span>Track all markets on TradingView</span></a></div>`)
	sb.WriteString(fmt.Sprintf(`<script type="text/javascript" src="%s" async>%s</script>`,
		TradingViewScript, strings.ReplaceAll(w.JSON(), "</", `<\/`)))
	sb.WriteString(`</div>`)
	return template.HTML(sb.String())
}

// ════════════════════════════════════════════════════════════════════
// SVG trend chart: annual revenue, net income and free cash flow
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	GridColor    string
	TextColor    string
	FontSize     int
	Title        string
}

// DefaultChartConfig matches the dark report palette.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       300,
		MarginTop:    40,
		MarginRight:  30,
		MarginBottom: 40,
		MarginLeft:   80,
		BgColor:      "#000717",
		GridColor:    "#1e293b",
		TextColor:    "#cbd5e1",
		FontSize:     11,
	}
}

func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// Series is a named data series. NaN values are skipped.
type Series struct {
	Name   string
	Values []float64
	Color  string
}

// FinancialSeries builds revenue, net income and free cash flow series from
// d, oldest year first. It returns nil when there are fewer than two periods.
func FinancialSeries(d *models.CompanyData) ([]Series, []string) {
	if d == nil || len(d.IncomeStatements) < 2 {
		return nil, nil
	}
	n := len(d.IncomeStatements)
	labels := make([]string, n)
	revenue := make([]float64, n)
	income := make([]float64, n)
	fcf := make([]float64, n)

	cash := make(map[string]float64, len(d.CashFlowStatements))
	for _, c := range d.CashFlowStatements {
		cash[c.Date] = c.FreeCashFlow
	}
	for i, s := range d.IncomeStatements {
		j := n - 1 - i
		labels[j] = s.CalendarYear
		if labels[j] == "" && len(s.Date) >= 4 {
			labels[j] = s.Date[:4]
		}
		revenue[j] = s.Revenue
		income[j] = s.NetIncome
		fcf[j] = math.NaN()
		if v, ok := cash[s.Date]; ok {
			fcf[j] = v
		}
	}
	return []Series{
		{Name: "Revenue", Values: revenue, Color: "#3b82f6"},
		{Name: "Net Income", Values: income, Color: "#22c55e"},
		{Name: "Free Cash Flow", Values: fcf, Color: "#f59e0b"},
	}, labels
}

// TrendChart draws series as an SVG line chart with currency-formatted axis
// labels.
func TrendChart(series []Series, labels []string, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}
	if cfg.Title == "" {
		cfg.Title = "Financial History"
	}

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	maxLen := 0
	for _, s := range series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if maxLen < 2 || minVal > maxVal {
		return emptySVG(cfg, "No data points")
	}
	if minVal > 0 {
		minVal = 0
	}

	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	gridLines := 4
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, escapeXML(utils.FormatCurrency(val))))
	}

	xAt := func(i int) float64 {
		return float64(px) + float64(i)*float64(pw)/float64(maxLen-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	palette := []string{"#3b82f6", "#22c55e", "#f59e0b", "#ef4444"}
	for si, s := range series {
		color := s.Color
		if color == "" {
			color = palette[si%len(palette)]
		}

		var path []string
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cmd := "L"
			if len(path) == 0 {
				cmd = "M"
			}
			path = append(path, fmt.Sprintf("%s%.1f,%.1f", cmd, xAt(i), yAt(v)))
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`, xAt(i), yAt(v), color))
		}
		if len(path) > 1 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(path, " "), color))
		}

		ly := py + 10 + si*16
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.Name)))
	}

	for i := 0; i < len(labels) && i < maxLen; i++ {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
			xAt(i), py+ph+18, cfg.FontSize, cfg.TextColor, escapeXML(labels[i])))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="100%%" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="%s"/><text x="%d" y="%d" text-anchor="middle" fill="#64748b" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.BgColor, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
