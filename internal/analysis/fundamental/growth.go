// Package fundamental derives growth and margin figures from reported
// statements.
package fundamental

import (
	"math"

	"github.com/seenimoa/equityscope/pkg/models"
	"github.com/seenimoa/equityscope/pkg/utils"
)

// Growth holds ratios (0.12 = 12%) computed from annual statements. A zero
// field means the statements could not support it.
type Growth struct {
	RevenueYoY   float64 `json:"revenue_yoy"`
	NetIncomeYoY float64 `json:"net_income_yoy"`
	EPSYoY       float64 `json:"eps_yoy"`
	RevenueCAGR  float64 `json:"revenue_cagr"`
	CAGRYears    int     `json:"cagr_years"`
	GrossMargin  float64 `json:"gross_margin"`
	NetMargin    float64 `json:"net_margin"`
	FCFMargin    float64 `json:"fcf_margin"`
}

// ComputeGrowth reads d's statements, which are ordered newest first.
func ComputeGrowth(d *models.CompanyData) Growth {
	var g Growth
	if d == nil || len(d.IncomeStatements) == 0 {
		return g
	}
	inc := d.IncomeStatements

	if len(inc) >= 2 {
		g.RevenueYoY = utils.GrowthRate(inc[0].Revenue, inc[1].Revenue)
		g.NetIncomeYoY = signedGrowth(inc[0].NetIncome, inc[1].NetIncome)
		g.EPSYoY = signedGrowth(inc[0].EPS, inc[1].EPS)

		years := len(inc) - 1
		if c := utils.CAGR(inc[years].Revenue, inc[0].Revenue, float64(years)); c != 0 {
			g.RevenueCAGR, g.CAGRYears = c, years
		}
	}

	latest := inc[0]
	if latest.Revenue > 0 {
		g.GrossMargin = latest.GrossMargin
		if g.GrossMargin == 0 && latest.GrossProfit != 0 {
			g.GrossMargin = latest.GrossProfit / latest.Revenue
		}
		g.NetMargin = latest.NetMargin
		if g.NetMargin == 0 && latest.NetIncome != 0 {
			g.NetMargin = latest.NetIncome / latest.Revenue
		}
		if cf := matchingCashFlow(d, latest.CalendarYear); cf != nil {
			g.FCFMargin = cf.FreeCashFlow / latest.Revenue
		}
	}
	return g
}

// signedGrowth is a growth rate measured against |previous|, so a loss
// narrowing from -10 to -5 reads as +50%.
func signedGrowth(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / math.Abs(previous)
}

func matchingCashFlow(d *models.CompanyData, year string) *models.CashFlowStatement {
	for i := range d.CashFlowStatements {
		if d.CashFlowStatements[i].CalendarYear == year {
			return &d.CashFlowStatements[i]
		}
	}
	return nil
}
