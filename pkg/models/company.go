// Package models defines the core data structures used throughout equityscope.
package models

import (
	"sort"
	"time"
)

// SearchResult is one match from a company search.
type SearchResult struct {
	Symbol   string `json:"symbol"`             // e.g., "TSLA"
	Name     string `json:"name"`               // e.g., "Tesla, Inc."
	Exchange string `json:"exchange,omitempty"` // e.g., "NASDAQ"
	Currency string `json:"currency,omitempty"`
}

// CompanyProfile is the descriptive record for a listed company.
type CompanyProfile struct {
	Symbol            string  `json:"symbol"`
	CompanyName       string  `json:"company_name"`
	Currency          string  `json:"currency"`
	Exchange          string  `json:"exchange"`            // e.g., "NASDAQ Global Select"
	ExchangeShortName string  `json:"exchange_short_name"` // e.g., "NASDAQ"
	Industry          string  `json:"industry"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	CEO               string  `json:"ceo"`
	FullTimeEmployees int64   `json:"full_time_employees"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	IPODate           string  `json:"ipo_date"` // e.g., "2010-06-29"
	Image             string  `json:"image,omitempty"`
	Beta              float64 `json:"beta"`
}

// Quote is the latest trading snapshot.
type Quote struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	Price             float64   `json:"price"`
	Change            float64   `json:"change"`
	ChangePct         float64   `json:"change_pct"` // already in percent, e.g. 2.45
	DayLow            float64   `json:"day_low"`
	DayHigh           float64   `json:"day_high"`
	YearHigh          float64   `json:"year_high"`
	YearLow           float64   `json:"year_low"`
	MarketCap         float64   `json:"market_cap"`
	PriceAvg50        float64   `json:"price_avg_50"`
	PriceAvg200       float64   `json:"price_avg_200"`
	Exchange          string    `json:"exchange"`
	Volume            int64     `json:"volume"`
	AvgVolume         int64     `json:"avg_volume"`
	Open              float64   `json:"open"`
	PrevClose         float64   `json:"prev_close"`
	EPS               float64   `json:"eps"`
	PE                float64   `json:"pe"`
	SharesOutstanding float64   `json:"shares_outstanding"`
	Timestamp         time.Time `json:"timestamp"`
}

// KeyMetrics holds per-period valuation and return ratios. Ratios are
// fractions (0.25 = 25%).
type KeyMetrics struct {
	Date                 string  `json:"date"`
	CalendarYear         string  `json:"calendar_year"`
	Period               string  `json:"period"`
	RevenuePerShare      float64 `json:"revenue_per_share"`
	NetIncomePerShare    float64 `json:"net_income_per_share"`
	FreeCashFlowPerShare float64 `json:"free_cash_flow_per_share"`
	BookValuePerShare    float64 `json:"book_value_per_share"`
	MarketCap            float64 `json:"market_cap"`
	EnterpriseValue      float64 `json:"enterprise_value"`
	PERatio              float64 `json:"pe_ratio"`
	PriceToSales         float64 `json:"price_to_sales"`
	PBRatio              float64 `json:"pb_ratio"`
	EVToSales            float64 `json:"ev_to_sales"`
	EVToEBITDA           float64 `json:"ev_to_ebitda"`
	FreeCashFlowYield    float64 `json:"free_cash_flow_yield"`
	DebtToEquity         float64 `json:"debt_to_equity"`
	CurrentRatio         float64 `json:"current_ratio"`
	DividendYield        float64 `json:"dividend_yield"`
	ROIC                 float64 `json:"roic"`
	ROE                  float64 `json:"roe"`
}

// IncomeStatement is one annual or quarterly income statement.
type IncomeStatement struct {
	Date            string  `json:"date"`
	CalendarYear    string  `json:"calendar_year"`
	Period          string  `json:"period"`
	Currency        string  `json:"currency"`
	Revenue         float64 `json:"revenue"`
	CostOfRevenue   float64 `json:"cost_of_revenue"`
	GrossProfit     float64 `json:"gross_profit"`
	GrossMargin     float64 `json:"gross_margin"`
	OperatingIncome float64 `json:"operating_income"`
	OperatingMargin float64 `json:"operating_margin"`
	EBITDA          float64 `json:"ebitda"`
	NetIncome       float64 `json:"net_income"`
	NetMargin       float64 `json:"net_margin"`
	EPS             float64 `json:"eps"`
	EPSDiluted      float64 `json:"eps_diluted"`
	RAndD           float64 `json:"r_and_d"`
	WeightedShares  float64 `json:"weighted_shares"`
}

// CashFlowStatement is one annual or quarterly cash flow statement.
type CashFlowStatement struct {
	Date                   string  `json:"date"`
	CalendarYear           string  `json:"calendar_year"`
	Period                 string  `json:"period"`
	NetIncome              float64 `json:"net_income"`
	StockBasedCompensation float64 `json:"stock_based_compensation"`
	OperatingCashFlow      float64 `json:"operating_cash_flow"`
	CapitalExpenditure     float64 `json:"capital_expenditure"` // negative outflow
	FreeCashFlow           float64 `json:"free_cash_flow"`
	DividendsPaid          float64 `json:"dividends_paid"`
	StockRepurchased       float64 `json:"stock_repurchased"`
}

// CompanyData bundles everything fetched for one symbol. Statement slices are
// ordered newest first.
type CompanyData struct {
	Profile            CompanyProfile      `json:"profile"`
	Quote              Quote               `json:"quote"`
	KeyMetrics         []KeyMetrics        `json:"key_metrics"`
	IncomeStatements   []IncomeStatement   `json:"income_statements"`
	CashFlowStatements []CashFlowStatement `json:"cash_flow_statements"`
}

// Name returns the profile name, falling back to the quote name and symbol.
func (d *CompanyData) Name() string {
	switch {
	case d.Profile.CompanyName != "":
		return d.Profile.CompanyName
	case d.Quote.Name != "":
		return d.Quote.Name
	case d.Profile.Symbol != "":
		return d.Profile.Symbol
	}
	return d.Quote.Symbol
}

// Symbol returns the ticker from the profile or quote.
func (d *CompanyData) Symbol() string {
	if d.Profile.Symbol != "" {
		return d.Profile.Symbol
	}
	return d.Quote.Symbol
}

// LatestMetrics returns the most recent key metrics, or nil.
func (d *CompanyData) LatestMetrics() *KeyMetrics {
	if len(d.KeyMetrics) == 0 {
		return nil
	}
	return &d.KeyMetrics[0]
}

// SortNewestFirst orders every statement slice by date, newest first.
// Providers do not all agree on ordering.
func (d *CompanyData) SortNewestFirst() {
	sort.SliceStable(d.KeyMetrics, func(i, j int) bool { return d.KeyMetrics[i].Date > d.KeyMetrics[j].Date })
	sort.SliceStable(d.IncomeStatements, func(i, j int) bool { return d.IncomeStatements[i].Date > d.IncomeStatements[j].Date })
	sort.SliceStable(d.CashFlowStatements, func(i, j int) bool { return d.CashFlowStatements[i].Date > d.CashFlowStatements[j].Date })
}
