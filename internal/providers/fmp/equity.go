package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/equityscope/pkg/models"
)

// SearchCompany looks up companies by name or ticker.
func (c *Client) SearchCompany(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(c.searchLimit))

	var results []fmpSearchResult
	if err := c.getJSON(ctx, "/search", params, &results); err != nil {
		return nil, fmt.Errorf("fmp search %q: %w", query, err)
	}
	return convert(results, fmpSearchResult.toModel), nil
}

// Profile returns the company profile for symbol.
func (c *Client) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	var results []fmpProfile
	if err := c.getJSON(ctx, "/profile/"+url.PathEscape(symbol), nil, &results); err != nil {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("fmp profile %s: %w", symbol, ErrSymbolNotFound)
	}
	p := results[0].toModel()
	return &p, nil
}

// Quote returns the latest quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var results []fmpQuote
	if err := c.getJSON(ctx, "/quote/"+url.PathEscape(symbol), nil, &results); err != nil {
		return nil, fmt.Errorf("fmp quote %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("fmp quote %s: %w", symbol, ErrSymbolNotFound)
	}
	q := results[0].toModel()
	return &q, nil
}
