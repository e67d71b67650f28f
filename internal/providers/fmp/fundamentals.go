package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/equityscope/pkg/models"
)

func annual(limit int) url.Values {
	params := url.Values{}
	params.Set("period", "annual")
	params.Set("limit", strconv.Itoa(limit))
	return params
}

// KeyMetrics returns up to limit annual key-metric records, newest first.
func (c *Client) KeyMetrics(ctx context.Context, symbol string, limit int) ([]models.KeyMetrics, error) {
	var results []fmpKeyMetrics
	if err := c.getJSON(ctx, "/key-metrics/"+url.PathEscape(symbol), annual(limit), &results); err != nil {
		return nil, fmt.Errorf("fmp key metrics %s: %w", symbol, err)
	}
	return convert(results, fmpKeyMetrics.toModel), nil
}

// IncomeStatements returns up to limit annual income statements, newest first.
func (c *Client) IncomeStatements(ctx context.Context, symbol string, limit int) ([]models.IncomeStatement, error) {
	var results []fmpIncomeStatement
	if err := c.getJSON(ctx, "/income-statement/"+url.PathEscape(symbol), annual(limit), &results); err != nil {
		return nil, fmt.Errorf("fmp income statement %s: %w", symbol, err)
	}
	return convert(results, fmpIncomeStatement.toModel), nil
}

// CashFlowStatements returns up to limit annual cash flow statements, newest first.
func (c *Client) CashFlowStatements(ctx context.Context, symbol string, limit int) ([]models.CashFlowStatement, error) {
	var results []fmpCashFlow
	if err := c.getJSON(ctx, "/cash-flow-statement/"+url.PathEscape(symbol), annual(limit), &results); err != nil {
		return nil, fmt.Errorf("fmp cash flow %s: %w", symbol, err)
	}
	return convert(results, fmpCashFlow.toModel), nil
}

// CompanyData fetches profile, quote, key metrics and both statements
// concurrently. Any single failure fails the whole call.
func (c *Client) CompanyData(ctx context.Context, symbol string) (*models.CompanyData, error) {
	var (
		data    models.CompanyData
		profile *models.CompanyProfile
		quote   *models.Quote
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile, err = c.Profile(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		quote, err = c.Quote(gctx, symbol)
		return err
	})
	g.Go(func() (err error) {
		data.KeyMetrics, err = c.KeyMetrics(gctx, symbol, c.historyLimit)
		return err
	})
	g.Go(func() (err error) {
		data.IncomeStatements, err = c.IncomeStatements(gctx, symbol, c.historyLimit)
		return err
	})
	g.Go(func() (err error) {
		data.CashFlowStatements, err = c.CashFlowStatements(gctx, symbol, c.historyLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.Profile = *profile
	data.Quote = *quote
	data.SortNewestFirst()
	return &data, nil
}
