// Package research runs the dashboard's use cases: company search, the
// company overview, and LLM-generated equity research parsed into a typed
// report.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/equityscope/internal/analysis"
	"github.com/seenimoa/equityscope/internal/analysis/fundamental"
	"github.com/seenimoa/equityscope/internal/analysis/sentiment"
	"github.com/seenimoa/equityscope/internal/config"
	"github.com/seenimoa/equityscope/internal/datasource"
	"github.com/seenimoa/equityscope/internal/llm"
	"github.com/seenimoa/equityscope/internal/report"
	"github.com/seenimoa/equityscope/pkg/models"
	"github.com/seenimoa/equityscope/pkg/utils"
)

var (
	// ErrEmptyQuery is returned by Search for a blank query.
	ErrEmptyQuery = errors.New("research: search query is empty")
	// ErrNoSymbol is returned when a request carries no ticker.
	ErrNoSymbol = errors.New("research: symbol is required")
)

// ProviderFunc builds the completion backend for one request.
type ProviderFunc func(o llm.Overrides) (llm.Provider, error)

// Options wires a Service. Market and Provider are required.
type Options struct {
	Market   datasource.MarketData
	News     *datasource.News
	Provider ProviderFunc
	Parser   *analysis.Parser
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	market   datasource.MarketData
	news     *datasource.News
	provider ProviderFunc
	parser   *analysis.Parser
	now      func() time.Time
}

// New returns a Service using opts. A nil Parser means analysis.NewParser().
func New(opts Options) *Service {
	p := opts.Parser
	if p == nil {
		p = analysis.NewParser()
	}
	return &Service{
		market:   opts.Market,
		news:     opts.News,
		provider: opts.Provider,
		parser:   p,
		now:      time.Now,
	}
}

// NewFromConfig wires the market source, headline feed and completion
// backend selected by cfg.
func NewFromConfig(cfg *config.Config) (*Service, error) {
	market, err := datasource.New(cfg)
	if err != nil {
		return nil, err
	}
	llmCfg, testing := cfg.LLM, cfg.TestingMode
	return New(Options{
		Market: market,
		News:   datasource.NewNews(cfg.News),
		Provider: func(o llm.Overrides) (llm.Provider, error) {
			return llm.NewProvider(llmCfg, testing, o)
		},
	}), nil
}

// MarketSource returns the name of the market-data source in use.
func (s *Service) MarketSource() string { return s.market.Name() }

// ════════════════════════════════════════════════════════════════════
// Search & company overview
// ════════════════════════════════════════════════════════════════════

// Search returns companies matching query.
func (s *Service) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	results, err := s.market.SearchCompany(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return results, nil
}

// Company is everything the dashboard shows above the analysis.
type Company struct {
	Data         *models.CompanyData  `json:"data"`
	Overview     report.Overview      `json:"overview"`
	Metrics      []report.Metric      `json:"metrics"`
	Chart        report.WidgetConfig  `json:"chart"`
	Headlines    []models.NewsArticle `json:"headlines"`
	Tone         *sentiment.Summary   `json:"tone,omitempty"` // nil without headlines
	MarketStatus string               `json:"marketStatus"`
}

// Company fetches data and headlines for symbol concurrently. A headline
// failure is logged and leaves Headlines empty; a data failure fails the call.
func (s *Service) Company(ctx context.Context, symbol string) (*Company, error) {
	symbol = utils.NormalizeTicker(symbol)
	if symbol == "" {
		return nil, ErrNoSymbol
	}

	var (
		data      *models.CompanyData
		headlines []models.NewsArticle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.market.CompanyData(gctx, symbol)
		if err != nil {
			return fmt.Errorf("company data %s: %w", symbol, err)
		}
		data = d
		return nil
	})
	if s.news.Enabled() {
		g.Go(func() error {
			h, err := s.news.Headlines(gctx, symbol)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("headlines unavailable")
				return nil
			}
			headlines = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ov := report.NewOverview(data)
	if headlines == nil {
		headlines = []models.NewsArticle{}
	}
	return &Company{
		Data:         data,
		Overview:     ov,
		Metrics:      report.CompanyMetrics(data),
		Chart:        report.ChartWidget(ov.Symbol, ov.Exchange),
		Headlines:    headlines,
		Tone:         sentiment.Summarize(headlines, s.now()),
		MarketStatus: utils.MarketStatusAt(s.now()),
	}, nil
}

// ════════════════════════════════════════════════════════════════════
// Analysis
// ════════════════════════════════════════════════════════════════════

// Request asks for one analysis. Provider, APIKey and Model override the
// configured backend for this request only. WithData fetches company data
// first and adds a reference-data block to the prompt.
type Request struct {
	CompanyName string `json:"companyName" validate:"omitempty,max=200"`
	Symbol      string `json:"symbol" validate:"required,max=20"`
	Provider    string `json:"provider,omitempty" validate:"omitempty,oneof=openrouter openai anthropic gemini ollama mock"`
	APIKey      string `json:"apiKey,omitempty" validate:"omitempty,max=512"`
	Model       string `json:"model,omitempty" validate:"omitempty,max=200"`
	WithData    bool   `json:"withData,omitempty"`
}

// Analysis is one generated and parsed research report. Fallback holds the
// reason the structured parse was abandoned, if it was.
type Analysis struct {
	ID          uuid.UUID        `json:"id"`
	CompanyName string           `json:"companyName"`
	Symbol      string           `json:"symbol"`
	Provider    string           `json:"provider"`
	Model       string           `json:"model"`
	Report      *analysis.Report `json:"report"`
	Raw         string           `json:"raw"`
	Strategy    string           `json:"strategy"`
	Fallback    string           `json:"fallback,omitempty"`
	GeneratedAt time.Time        `json:"generatedAt"`
	Latency     time.Duration    `json:"latency"`
	Usage       llm.Usage        `json:"usage"`
}

// Analyze prompts the model for req and parses its answer.
func (s *Service) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	symbol := utils.NormalizeTicker(req.Symbol)
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	var data *models.CompanyData
	if req.WithData {
		d, err := s.market.CompanyData(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("company data %s: %w", symbol, err)
		}
		data = d
	}
	return s.analyze(ctx, req, data)
}

// AnalyzeCompany is Analyze using an overview already fetched by Company,
// whose data is offered to the model as reference.
func (s *Service) AnalyzeCompany(ctx context.Context, req Request, c *Company) (*Analysis, error) {
	if c == nil || c.Data == nil {
		return s.Analyze(ctx, req)
	}
	return s.analyze(ctx, req, c.Data)
}

func (s *Service) analyze(ctx context.Context, req Request, data *models.CompanyData) (*Analysis, error) {
	symbol := utils.NormalizeTicker(req.Symbol)
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	name := strings.TrimSpace(req.CompanyName)
	if name == "" && data != nil {
		name = data.Name()
	}
	if name == "" {
		name = symbol
	}

	provider, err := s.provider(llm.Overrides{Provider: req.Provider, APIKey: req.APIKey, Model: req.Model})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	prompt := analysis.BuildPrompt(analysis.PromptInput{
		CompanyName: name,
		Symbol:      symbol,
		Facts:       Facts(data),
	})
	messages := []llm.Message{
		llm.SystemMessage(analysis.SystemPrompt),
		llm.UserMessage(prompt),
	}

	log.Info().Str("symbol", symbol).Str("provider", provider.Name()).Msg("requesting analysis")
	resp, err := provider.Chat(ctx, messages, nil)
	if err != nil {
		return nil, fmt.Errorf("analysis %s: %w", symbol, err)
	}

	res := s.parser.ParseResult(resp.Content)
	a := &Analysis{
		ID:          uuid.New(),
		CompanyName: name,
		Symbol:      symbol,
		Provider:    provider.Name(),
		Model:       resp.Model,
		Report:      res.Report,
		Raw:         resp.Content,
		Strategy:    res.Strategy,
		GeneratedAt: s.now(),
		Latency:     resp.Latency,
		Usage:       resp.Usage,
	}
	if res.Err != nil {
		a.Fallback = res.Err.Error()
	}

	log.Info().
		Str("id", a.ID.String()).
		Str("symbol", symbol).
		Str("model", a.Model).
		Str("strategy", a.Strategy).
		Int("sections", len(a.Report.Present())).
		Int("tokens", a.Usage.TotalTokens).
		Dur("latency", a.Latency).
		Msg("analysis complete")
	return a, nil
}

// Facts is the reference-data block offered to the model for d. It returns
// nil for nil data.
func Facts(d *models.CompanyData) []analysis.Fact {
	if d == nil {
		return nil
	}
	q, p := d.Quote, d.Profile
	facts := []analysis.Fact{
		{Label: "Share Price", Value: nonZero(q.Price, utils.FormatPrice)},
		{Label: "Market Cap", Value: nonZero(q.MarketCap, utils.FormatCurrency)},
		{Label: "P/E (TTM)", Value: nonZero(q.PE, utils.FormatRatio)},
		{Label: "52W Range", Value: ""},
		{Label: "Sector", Value: p.Sector},
		{Label: "Industry", Value: p.Industry},
	}
	if q.YearLow > 0 && q.YearHigh > 0 {
		facts[3].Value = fmt.Sprintf("%s - %s", utils.FormatPrice(q.YearLow), utils.FormatPrice(q.YearHigh))
	}
	if len(d.IncomeStatements) > 0 {
		facts = append(facts, analysis.Fact{
			Label: "Revenue (FY" + d.IncomeStatements[0].CalendarYear + ")",
			Value: nonZero(d.IncomeStatements[0].Revenue, utils.FormatCurrency),
		})
		g := fundamental.ComputeGrowth(d)
		facts = append(facts,
			analysis.Fact{Label: "Revenue Growth (YoY)", Value: nonZero(g.RevenueYoY, utils.FormatPercent)},
			analysis.Fact{Label: "Net Margin", Value: nonZero(g.NetMargin, utils.FormatPercent)},
			analysis.Fact{Label: "Free Cash Flow Margin", Value: nonZero(g.FCFMargin, utils.FormatPercent)},
		)
	}
	return facts
}

func nonZero(v float64, format func(float64) string) string {
	if v == 0 {
		return ""
	}
	return format(v)
}

// ════════════════════════════════════════════════════════════════════
// Combined research run
// ════════════════════════════════════════════════════════════════════

// Result pairs a company overview with its analysis.
type Result struct {
	Company  *Company  `json:"company"`
	Analysis *Analysis `json:"analysis"`
}

// Research fetches the company overview and generates the analysis
// concurrently. Either failure fails the run and cancels the other call.
func (s *Service) Research(ctx context.Context, req Request) (*Result, error) {
	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.Company(gctx, req.Symbol)
		res.Company = c
		return err
	})
	g.Go(func() error {
		a, err := s.analyze(gctx, req, nil)
		res.Analysis = a
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Document assembles a renderable report from a run. Either part may be nil.
func Document(a *Analysis, c *Company) report.Document {
	var doc report.Document
	if a != nil {
		doc.CompanyName = a.CompanyName
		doc.Symbol = a.Symbol
		doc.Model = a.Model
		doc.GeneratedAt = a.GeneratedAt
		doc.Report = a.Report
	}
	if c != nil {
		doc.Company = c.Data
		doc.Headlines = c.Headlines
	}
	return doc
}
