package datasource

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/equityscope/pkg/models"
)

// Mock is the testing-mode market-data source. Search is keyword driven and
// CompanyData always returns the Tesla dataset, whatever symbol is asked for.
type Mock struct {
	// Delay simulates network latency.
	Delay time.Duration
}

// NewMock returns a mock source with no delay.
func NewMock() *Mock { return &Mock{} }

// Name identifies the data source.
func (m *Mock) Name() string { return "mock" }

var mockCompanies = []models.SearchResult{
	{Symbol: "TSLA", Name: "Tesla, Inc.", Exchange: "NASDAQ", Currency: "USD"},
	{Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Currency: "USD"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Exchange: "NASDAQ", Currency: "USD"},
}

// SearchCompany returns Tesla alone for "tesla"/"tsla" queries and the
// three sample companies otherwise.
func (m *Mock) SearchCompany(ctx context.Context, query string) ([]models.SearchResult, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	if strings.Contains(q, "tesla") || strings.Contains(q, "tsla") {
		return mockCompanies[:1:1], nil
	}
	out := make([]models.SearchResult, len(mockCompanies))
	copy(out, mockCompanies)
	return out, nil
}

// CompanyData returns a fresh copy of the Tesla dataset.
func (m *Mock) CompanyData(ctx context.Context, _ string) (*models.CompanyData, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return teslaData(), nil
}

func (m *Mock) wait(ctx context.Context) error {
	if m.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func teslaData() *models.CompanyData {
	return &models.CompanyData{
		Profile: models.CompanyProfile{
			Symbol:            "TSLA",
			CompanyName:       "Tesla, Inc.",
			Currency:          "USD",
			Exchange:          "NASDAQ Global Select",
			ExchangeShortName: "NASDAQ",
			Industry:          "Auto - Manufacturers",
			Sector:            "Consumer Cyclical",
			Country:           "US",
			Website:           "https://www.tesla.com",
			Description: "Tesla, Inc. designs, develops, manufactures, leases, and sells electric vehicles, and energy generation and storage systems in the United States, China, and internationally. " +
				"The company operates in two segments, Automotive, and Energy Generation and Storage. " +
				"The Automotive segment offers electric vehicles, as well as sells automotive regulatory credits, and non-warranty after-sales vehicle, used vehicles, body shop and parts, supercharging, retail merchandise, and vehicle insurance services. " +
				"The Energy Generation and Storage segment engages in the design, manufacture, installation, sale, and leasing of solar energy generation and energy storage products. " +
				"Tesla, Inc. was incorporated in 2003 and is headquartered in Austin, Texas.",
			CEO:               "Mr. Elon R. Musk",
			FullTimeEmployees: 125665,
			City:              "Austin",
			State:             "TX",
			IPODate:           "2010-06-29",
			Image:             "https://images.financialmodelingprep.com/symbol/TSLA.png",
			Beta:              2.33,
		},
		Quote: models.Quote{
			Symbol:            "TSLA",
			Name:              "Tesla, Inc.",
			Price:             328.50,
			Change:            6.12,
			ChangePct:         1.90,
			DayLow:            320.11,
			DayHigh:           331.84,
			YearHigh:          488.54,
			YearLow:           182.00,
			MarketCap:         1.0583e12,
			PriceAvg50:        315.42,
			PriceAvg200:       301.77,
			Exchange:          "NASDAQ",
			Volume:            98_450_000,
			AvgVolume:         112_300_000,
			Open:              322.40,
			PrevClose:         322.38,
			EPS:               2.04,
			PE:                161.0,
			SharesOutstanding: 3.2217e9,
			Timestamp:         time.Date(2025, 7, 25, 20, 0, 0, 0, time.UTC),
		},
		KeyMetrics: []models.KeyMetrics{
			{Date: "2024-12-31", CalendarYear: "2024", Period: "FY", RevenuePerShare: 30.39, NetIncomePerShare: 2.23, FreeCashFlowPerShare: 1.12, BookValuePerShare: 22.62, MarketCap: 1.2963e12, EnterpriseValue: 1.2816e12, PERatio: 181.1, PriceToSales: 13.3, PBRatio: 17.9, EVToSales: 13.1, EVToEBITDA: 86.2, FreeCashFlowYield: 0.0028, DebtToEquity: 0.19, CurrentRatio: 2.02, ROIC: 0.078, ROE: 0.104},
			{Date: "2023-12-31", CalendarYear: "2023", Period: "FY", RevenuePerShare: 30.43, NetIncomePerShare: 4.73, FreeCashFlowPerShare: 1.40, BookValuePerShare: 19.76, MarketCap: 7.908e11, EnterpriseValue: 7.753e11, PERatio: 52.6, PriceToSales: 8.2, PBRatio: 12.6, EVToSales: 8.0, EVToEBITDA: 52.4, FreeCashFlowYield: 0.0056, DebtToEquity: 0.17, CurrentRatio: 1.73, ROIC: 0.098, ROE: 0.235},
			{Date: "2022-12-31", CalendarYear: "2022", Period: "FY", RevenuePerShare: 25.89, NetIncomePerShare: 3.98, FreeCashFlowPerShare: 2.41, BookValuePerShare: 14.27, MarketCap: 3.889e11, EnterpriseValue: 3.737e11, PERatio: 30.9, PriceToSales: 4.8, PBRatio: 8.6, EVToSales: 4.6, EVToEBITDA: 21.4, FreeCashFlowYield: 0.0196, DebtToEquity: 0.13, CurrentRatio: 1.53, ROIC: 0.205, ROE: 0.280},
			{Date: "2021-12-31", CalendarYear: "2021", Period: "FY", RevenuePerShare: 17.93, NetIncomePerShare: 1.87, FreeCashFlowPerShare: 1.66, BookValuePerShare: 9.61, MarketCap: 1.0614e12, EnterpriseValue: 1.0485e12, PERatio: 192.2, PriceToSales: 19.6, PBRatio: 36.8, EVToSales: 19.4, EVToEBITDA: 110.1, FreeCashFlowYield: 0.0047, DebtToEquity: 0.25, CurrentRatio: 1.38, ROIC: 0.133, ROE: 0.199},
			{Date: "2020-12-31", CalendarYear: "2020", Period: "FY", RevenuePerShare: 10.58, NetIncomePerShare: 0.25, FreeCashFlowPerShare: 1.07, BookValuePerShare: 7.59, MarketCap: 6.689e11, EnterpriseValue: 6.651e11, PERatio: 1067.4, PriceToSales: 21.3, PBRatio: 30.1, EVToSales: 21.2, EVToEBITDA: 152.3, FreeCashFlowYield: 0.0041, DebtToEquity: 0.59, CurrentRatio: 1.88, ROIC: 0.043, ROE: 0.030},
		},
		IncomeStatements: []models.IncomeStatement{
			{Date: "2024-12-31", CalendarYear: "2024", Period: "FY", Currency: "USD", Revenue: 97.69e9, CostOfRevenue: 80.24e9, GrossProfit: 17.45e9, GrossMargin: 0.1786, OperatingIncome: 7.08e9, OperatingMargin: 0.0724, EBITDA: 14.71e9, NetIncome: 7.09e9, NetMargin: 0.0726, EPS: 2.23, EPSDiluted: 2.04, RAndD: 4.54e9, WeightedShares: 3.197e9},
			{Date: "2023-12-31", CalendarYear: "2023", Period: "FY", Currency: "USD", Revenue: 96.77e9, CostOfRevenue: 79.11e9, GrossProfit: 17.66e9, GrossMargin: 0.1825, OperatingIncome: 8.89e9, OperatingMargin: 0.0919, EBITDA: 14.80e9, NetIncome: 15.00e9, NetMargin: 0.1550, EPS: 4.73, EPSDiluted: 4.30, RAndD: 3.97e9, WeightedShares: 3.174e9},
			{Date: "2022-12-31", CalendarYear: "2022", Period: "FY", Currency: "USD", Revenue: 81.46e9, CostOfRevenue: 60.61e9, GrossProfit: 20.85e9, GrossMargin: 0.2560, OperatingIncome: 13.66e9, OperatingMargin: 0.1677, EBITDA: 17.66e9, NetIncome: 12.58e9, NetMargin: 0.1544, EPS: 3.98, EPSDiluted: 3.62, RAndD: 3.08e9, WeightedShares: 3.130e9},
			{Date: "2021-12-31", CalendarYear: "2021", Period: "FY", Currency: "USD", Revenue: 53.82e9, CostOfRevenue: 40.22e9, GrossProfit: 13.61e9, GrossMargin: 0.2528, OperatingIncome: 6.52e9, OperatingMargin: 0.1212, EBITDA: 9.63e9, NetIncome: 5.52e9, NetMargin: 0.1026, EPS: 1.87, EPSDiluted: 1.63, RAndD: 2.59e9, WeightedShares: 2.959e9},
			{Date: "2020-12-31", CalendarYear: "2020", Period: "FY", Currency: "USD", Revenue: 31.54e9, CostOfRevenue: 24.91e9, GrossProfit: 6.63e9, GrossMargin: 0.2102, OperatingIncome: 1.99e9, OperatingMargin: 0.0632, EBITDA: 4.22e9, NetIncome: 0.72e9, NetMargin: 0.0229, EPS: 0.25, EPSDiluted: 0.21, RAndD: 1.49e9, WeightedShares: 2.880e9},
		},
		CashFlowStatements: []models.CashFlowStatement{
			{Date: "2024-12-31", CalendarYear: "2024", Period: "FY", NetIncome: 7.09e9, StockBasedCompensation: 1.99e9, OperatingCashFlow: 14.92e9, CapitalExpenditure: -11.34e9, FreeCashFlow: 3.58e9},
			{Date: "2023-12-31", CalendarYear: "2023", Period: "FY", NetIncome: 15.00e9, StockBasedCompensation: 1.81e9, OperatingCashFlow: 13.26e9, CapitalExpenditure: -8.90e9, FreeCashFlow: 4.36e9},
			{Date: "2022-12-31", CalendarYear: "2022", Period: "FY", NetIncome: 12.58e9, StockBasedCompensation: 1.56e9, OperatingCashFlow: 14.72e9, CapitalExpenditure: -7.17e9, FreeCashFlow: 7.55e9},
			{Date: "2021-12-31", CalendarYear: "2021", Period: "FY", NetIncome: 5.52e9, StockBasedCompensation: 2.12e9, OperatingCashFlow: 11.50e9, CapitalExpenditure: -6.48e9, FreeCashFlow: 5.02e9},
			{Date: "2020-12-31", CalendarYear: "2020", Period: "FY", NetIncome: 0.72e9, StockBasedCompensation: 1.73e9, OperatingCashFlow: 5.94e9, CapitalExpenditure: -3.16e9, FreeCashFlow: 2.78e9},
		},
	}
}
