package report

import (
	"fmt"
	"strings"

	"github.com/seenimoa/equityscope/pkg/models"
	"github.com/seenimoa/equityscope/pkg/utils"
)

// DescriptionSentences is how much of a company description is shown before
// the "Show more" toggle.
const DescriptionSentences = 3

// Metric is one label/value row of the company metrics grid.
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CompanyMetrics returns the metrics grid for d: quote figures first, then
// ratios from the most recent key-metrics period when one exists.
func CompanyMetrics(d *models.CompanyData) []Metric {
	if d == nil {
		return nil
	}
	q := d.Quote
	out := []Metric{
		{"Market Cap", utils.FormatCurrency(q.MarketCap)},
		{"P/E Ratio", utils.FormatRatio(q.PE)},
		{"EPS", utils.FormatPrice(q.EPS)},
		{"52W High", wholeDollars(q.YearHigh)},
		{"52W Low", wholeDollars(q.YearLow)},
		{"Volume", utils.FormatVolume(q.Volume)},
	}

	km := d.LatestMetrics()
	if km == nil {
		return out
	}
	revPerShare := utils.NA
	if km.RevenuePerShare != 0 {
		revPerShare = fmt.Sprintf("$%.1f", km.RevenuePerShare)
	}
	return append(out,
		Metric{"Revenue/Share", revPerShare},
		Metric{"ROE", utils.FormatPercent(km.ROE)},
		Metric{"ROIC", utils.FormatPercent(km.ROIC)},
		Metric{"Debt/Equity", utils.FormatRatio(km.DebtToEquity)},
		Metric{"Current Ratio", utils.FormatRatio(km.CurrentRatio)},
		Metric{"FCF Yield", utils.FormatPercent(km.FreeCashFlowYield)},
		Metric{"P/B Ratio", utils.FormatRatio(km.PBRatio)},
		Metric{"EV/EBITDA", utils.FormatRatio(km.EVToEBITDA)},
	)
}

func wholeDollars(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

// Overview is the company header card: identity, price, a shortened
// description and the small details grid.
type Overview struct {
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Exchange     string `json:"exchange"`
	Sector       string `json:"sector"`
	Industry     string `json:"industry"`
	Price        string `json:"price"`
	Change       string `json:"change"`
	Up           bool   `json:"up"`
	Summary      string `json:"summary"`
	Description  string `json:"description"`
	Truncated    bool   `json:"truncated"`
	CEO          string `json:"ceo"`
	Location     string `json:"location"`
	Employees    string `json:"employees"`
	IPODate      string `json:"ipoDate"`
	Website      string `json:"website"`
	WebsiteLabel string `json:"websiteLabel"`
	TVSymbol     string `json:"tvSymbol"`
}

// NewOverview builds the header card for d. Missing details read "N/A".
func NewOverview(d *models.CompanyData) Overview {
	p, q := d.Profile, d.Quote

	exchange := p.ExchangeShortName
	if exchange == "" {
		exchange = q.Exchange
	}
	ov := Overview{
		Name:        d.Name(),
		Symbol:      d.Symbol(),
		Exchange:    exchange,
		Sector:      p.Sector,
		Industry:    p.Industry,
		Description: p.Description,
		Summary:     utils.TruncateSentences(p.Description, DescriptionSentences),
		Truncated:   utils.NeedsExpansion(p.Description, DescriptionSentences),
		CEO:         orNA(p.CEO),
		IPODate:     orNA(p.IPODate),
		Website:     p.Website,
		TVSymbol:    utils.TradingViewSymbol(exchange, d.Symbol()),
	}
	if q.Price != 0 {
		ov.Price = utils.FormatPrice(q.Price)
		ov.Change = utils.FormatChange(q.ChangePct)
		ov.Up = q.ChangePct >= 0
	}

	loc := make([]string, 0, 2)
	for _, part := range []string{p.City, p.State} {
		if part != "" {
			loc = append(loc, part)
		}
	}
	ov.Location = orNA(strings.Join(loc, ", "))

	ov.Employees = utils.NA
	if p.FullTimeEmployees > 0 {
		ov.Employees = utils.FormatInteger(p.FullTimeEmployees)
	}
	ov.WebsiteLabel = orNA(utils.StripScheme(p.Website))
	return ov
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return utils.NA
	}
	return s
}
