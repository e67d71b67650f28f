package fmp

import (
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/equityscope/pkg/models"
)

// --- FMP API response types ---

// fmpSearchResult represents a search result from FMP.
type fmpSearchResult struct {
	Symbol            string `json:"symbol"`
	Name              string `json:"name"`
	Currency          string `json:"currency"`
	StockExchange     string `json:"stockExchange"`
	ExchangeShortName string `json:"exchangeShortName"`
}

// fmpProfile represents company profile from FMP.
type fmpProfile struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	MktCap            float64 `json:"mktCap"`
	CompanyName       string  `json:"companyName"`
	Currency          string  `json:"currency"`
	Exchange          string  `json:"exchange"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Industry          string  `json:"industry"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	CEO               string  `json:"ceo"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	FullTimeEmployees string  `json:"fullTimeEmployees"`
	City              string  `json:"city"`
	State             string  `json:"state"`
	Image             string  `json:"image"`
	IPODate           string  `json:"ipoDate"`
}

// fmpQuote represents a real-time quote from FMP.
type fmpQuote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ChangesPercentage float64 `json:"changesPercentage"`
	Change            float64 `json:"change"`
	DayLow            float64 `json:"dayLow"`
	DayHigh           float64 `json:"dayHigh"`
	YearHigh          float64 `json:"yearHigh"`
	YearLow           float64 `json:"yearLow"`
	MarketCap         float64 `json:"marketCap"`
	PriceAvg50        float64 `json:"priceAvg50"`
	PriceAvg200       float64 `json:"priceAvg200"`
	Volume            int64   `json:"volume"`
	AvgVolume         int64   `json:"avgVolume"`
	Exchange          string  `json:"exchange"`
	Open              float64 `json:"open"`
	PreviousClose     float64 `json:"previousClose"`
	EPS               float64 `json:"eps"`
	PE                float64 `json:"pe"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	Timestamp         int64   `json:"timestamp"`
}

// fmpKeyMetrics represents key financial metrics from FMP.
type fmpKeyMetrics struct {
	Symbol               string  `json:"symbol"`
	Date                 string  `json:"date"`
	CalendarYear         string  `json:"calendarYear"`
	Period               string  `json:"period"`
	RevenuePerShare      float64 `json:"revenuePerShare"`
	NetIncomePerShare    float64 `json:"netIncomePerShare"`
	FreeCashFlowPerShare float64 `json:"freeCashFlowPerShare"`
	BookValuePerShare    float64 `json:"bookValuePerShare"`
	MarketCap            float64 `json:"marketCap"`
	EnterpriseValue      float64 `json:"enterpriseValue"`
	PERatio              float64 `json:"peRatio"`
	PriceToSalesRatio    float64 `json:"priceToSalesRatio"`
	PBRatio              float64 `json:"pbRatio"`
	EVToSales            float64 `json:"evToSales"`
	EVToEBITDA           float64 `json:"enterpriseValueOverEBITDA"`
	FreeCashFlowYield    float64 `json:"freeCashFlowYield"`
	DebtToEquity         float64 `json:"debtToEquity"`
	CurrentRatio         float64 `json:"currentRatio"`
	DividendYield        float64 `json:"dividendYield"`
	ROIC                 float64 `json:"roic"`
	ROE                  float64 `json:"roe"`
}

// fmpIncomeStatement represents an income statement from FMP.
type fmpIncomeStatement struct {
	Date                 string  `json:"date"`
	Symbol               string  `json:"symbol"`
	ReportedCurrency     string  `json:"reportedCurrency"`
	CalendarYear         string  `json:"calendarYear"`
	Period               string  `json:"period"` // "FY" or "Q1", "Q2", etc.
	Revenue              float64 `json:"revenue"`
	CostOfRevenue        float64 `json:"costOfRevenue"`
	GrossProfit          float64 `json:"grossProfit"`
	GrossProfitRatio     float64 `json:"grossProfitRatio"`
	ResearchAndDev       float64 `json:"researchAndDevelopmentExpenses"`
	OperatingIncome      float64 `json:"operatingIncome"`
	OperatingIncomeRatio float64 `json:"operatingIncomeRatio"`
	EBITDA               float64 `json:"ebitda"`
	NetIncome            float64 `json:"netIncome"`
	NetIncomeRatio       float64 `json:"netIncomeRatio"`
	EPS                  float64 `json:"eps"`
	EPSDiluted           float64 `json:"epsdiluted"`
	WeightedAverageShs   float64 `json:"weightedAverageShsOut"`
}

// fmpCashFlow represents a cash flow statement from FMP.
type fmpCashFlow struct {
	Date                   string  `json:"date"`
	Symbol                 string  `json:"symbol"`
	CalendarYear           string  `json:"calendarYear"`
	Period                 string  `json:"period"`
	NetIncome              float64 `json:"netIncome"`
	StockBasedCompensation float64 `json:"stockBasedCompensation"`
	OperatingCashFlow      float64 `json:"operatingCashFlow"`
	CapitalExpenditure     float64 `json:"capitalExpenditure"`
	FreeCashFlow           float64 `json:"freeCashFlow"`
	DividendsPaid          float64 `json:"dividendsPaid"`
	CommonStockRepurchased float64 `json:"commonStockRepurchased"`
}

// --- Conversions to domain models ---

func (r fmpSearchResult) toModel() models.SearchResult {
	exchange := r.ExchangeShortName
	if exchange == "" {
		exchange = r.StockExchange
	}
	return models.SearchResult{Symbol: r.Symbol, Name: r.Name, Exchange: exchange, Currency: r.Currency}
}

func (p fmpProfile) toModel() models.CompanyProfile {
	employees, _ := strconv.ParseInt(strings.TrimSpace(p.FullTimeEmployees), 10, 64)
	return models.CompanyProfile{
		Symbol:            p.Symbol,
		CompanyName:       p.CompanyName,
		Currency:          p.Currency,
		Exchange:          p.Exchange,
		ExchangeShortName: p.ExchangeShortName,
		Industry:          p.Industry,
		Sector:            p.Sector,
		Country:           p.Country,
		Website:           p.Website,
		Description:       p.Description,
		CEO:               p.CEO,
		FullTimeEmployees: employees,
		City:              p.City,
		State:             p.State,
		IPODate:           p.IPODate,
		Image:             p.Image,
		Beta:              p.Beta,
	}
}

func (q fmpQuote) toModel() models.Quote {
	out := models.Quote{
		Symbol:            q.Symbol,
		Name:              q.Name,
		Price:             q.Price,
		Change:            q.Change,
		ChangePct:         q.ChangesPercentage,
		DayLow:            q.DayLow,
		DayHigh:           q.DayHigh,
		YearHigh:          q.YearHigh,
		YearLow:           q.YearLow,
		MarketCap:         q.MarketCap,
		PriceAvg50:        q.PriceAvg50,
		PriceAvg200:       q.PriceAvg200,
		Exchange:          q.Exchange,
		Volume:            q.Volume,
		AvgVolume:         q.AvgVolume,
		Open:              q.Open,
		PrevClose:         q.PreviousClose,
		EPS:               q.EPS,
		PE:                q.PE,
		SharesOutstanding: q.SharesOutstanding,
	}
	if q.Timestamp > 0 {
		out.Timestamp = time.Unix(q.Timestamp, 0).UTC()
	}
	return out
}

func (m fmpKeyMetrics) toModel() models.KeyMetrics {
	return models.KeyMetrics{
		Date:                 m.Date,
		CalendarYear:         m.CalendarYear,
		Period:               m.Period,
		RevenuePerShare:      m.RevenuePerShare,
		NetIncomePerShare:    m.NetIncomePerShare,
		FreeCashFlowPerShare: m.FreeCashFlowPerShare,
		BookValuePerShare:    m.BookValuePerShare,
		MarketCap:            m.MarketCap,
		EnterpriseValue:      m.EnterpriseValue,
		PERatio:              m.PERatio,
		PriceToSales:         m.PriceToSalesRatio,
		PBRatio:              m.PBRatio,
		EVToSales:            m.EVToSales,
		EVToEBITDA:           m.EVToEBITDA,
		FreeCashFlowYield:    m.FreeCashFlowYield,
		DebtToEquity:         m.DebtToEquity,
		CurrentRatio:         m.CurrentRatio,
		DividendYield:        m.DividendYield,
		ROIC:                 m.ROIC,
		ROE:                  m.ROE,
	}
}

func (s fmpIncomeStatement) toModel() models.IncomeStatement {
	return models.IncomeStatement{
		Date:            s.Date,
		CalendarYear:    s.CalendarYear,
		Period:          s.Period,
		Currency:        s.ReportedCurrency,
		Revenue:         s.Revenue,
		CostOfRevenue:   s.CostOfRevenue,
		GrossProfit:     s.GrossProfit,
		GrossMargin:     s.GrossProfitRatio,
		OperatingIncome: s.OperatingIncome,
		OperatingMargin: s.OperatingIncomeRatio,
		EBITDA:          s.EBITDA,
		NetIncome:       s.NetIncome,
		NetMargin:       s.NetIncomeRatio,
		EPS:             s.EPS,
		EPSDiluted:      s.EPSDiluted,
		RAndD:           s.ResearchAndDev,
		WeightedShares:  s.WeightedAverageShs,
	}
}

func (s fmpCashFlow) toModel() models.CashFlowStatement {
	return models.CashFlowStatement{
		Date:                   s.Date,
		CalendarYear:           s.CalendarYear,
		Period:                 s.Period,
		NetIncome:              s.NetIncome,
		StockBasedCompensation: s.StockBasedCompensation,
		OperatingCashFlow:      s.OperatingCashFlow,
		CapitalExpenditure:     s.CapitalExpenditure,
		FreeCashFlow:           s.FreeCashFlow,
		DividendsPaid:          s.DividendsPaid,
		StockRepurchased:       s.CommonStockRepurchased,
	}
}

func convert[F any, T any](in []F, fn func(F) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
