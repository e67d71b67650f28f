// Package datasource selects the market-data source for a run and fetches
// company headlines. Live runs use Financial Modeling Prep; testing mode
// uses a fixed in-memory dataset.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/seenimoa/equityscope/internal/config"
	"github.com/seenimoa/equityscope/internal/providers/fmp"
	"github.com/seenimoa/equityscope/pkg/models"
)

// MarketData is the company data a research run needs.
type MarketData interface {
	// Name returns the source identifier, e.g. "fmp" or "mock".
	Name() string

	// SearchCompany returns companies whose name or ticker matches query.
	SearchCompany(ctx context.Context, query string) ([]models.SearchResult, error)

	// CompanyData returns profile, quote and annual history for symbol.
	CompanyData(ctx context.Context, symbol string) (*models.CompanyData, error)
}

var _ MarketData = (*fmp.Client)(nil)

// ErrUnknownSource is returned by New for an unrecognised market.provider.
var ErrUnknownSource = errors.New("datasource: unknown market data provider")

// HTTPClient is the shared client for outbound data requests.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// DefaultUserAgent is sent with feed requests; some publishers reject Go's default.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// New returns the market-data source selected by cfg. Testing mode always
// returns the mock source.
func New(cfg *config.Config) (MarketData, error) {
	if cfg.TestingMode {
		return NewMock(), nil
	}
	switch cfg.Market.Provider {
	case "fmp", "":
		return fmp.New(cfg.Market.FMPKey,
			fmp.WithBaseURL(cfg.Market.BaseURL),
			fmp.WithHTTPClient(HTTPClient),
			fmp.WithSearchLimit(cfg.Market.SearchLimit),
			fmp.WithHistoryLimit(cfg.Market.HistoryLimit),
		), nil
	case "mock":
		return NewMock(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Market.Provider)
}
