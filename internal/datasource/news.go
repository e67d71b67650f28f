package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/equityscope/internal/config"
	"github.com/seenimoa/equityscope/pkg/models"
	"github.com/seenimoa/equityscope/pkg/utils"
)

// News reads per-symbol headlines from an RSS or Atom feed.
type News struct {
	enabled bool
	feedURL string // {symbol} is replaced with the escaped ticker
	limit   int
	parser  *gofeed.Parser
}

// NewNews creates a headline reader from the news config section.
func NewNews(cfg config.NewsConfig) *News {
	p := gofeed.NewParser()
	p.Client = HTTPClient
	p.UserAgent = DefaultUserAgent
	return &News{
		enabled: cfg.Enabled && cfg.FeedURL != "",
		feedURL: cfg.FeedURL,
		limit:   cfg.Limit,
		parser:  p,
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "rss" }

// Enabled reports whether headlines are configured.
func (n *News) Enabled() bool { return n != nil && n.enabled }

// Headlines returns recent articles for ticker, newest first. A disabled
// reader returns nil without error.
func (n *News) Headlines(ctx context.Context, ticker string) ([]models.NewsArticle, error) {
	if !n.Enabled() {
		return nil, nil
	}
	symbol := utils.NormalizeTicker(ticker)
	if symbol == "" {
		return nil, nil
	}

	feedURL := strings.ReplaceAll(n.feedURL, "{symbol}", url.QueryEscape(symbol))
	articles, err := n.fetchRSS(ctx, feedURL, symbol)
	if err != nil {
		return nil, err
	}

	sortArticlesByDate(articles)
	if n.limit > 0 && len(articles) > n.limit {
		articles = articles[:n.limit]
	}
	return articles, nil
}

// --- Internal helpers ---

// fetchRSS parses a feed and returns its articles, dropping duplicate links.
func (n *News) fetchRSS(ctx context.Context, feedURL, symbol string) ([]models.NewsArticle, error) {
	feed, err := n.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed for %s: %w", symbol, err)
	}

	source := feed.Title
	if source == "" {
		if u, err := url.Parse(feedURL); err == nil {
			source = u.Host
		}
	}

	seen := make(map[string]bool, len(feed.Items))
	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(cleanHTML(item.Title))
		if title == "" || seen[item.Link] {
			continue
		}
		if item.Link != "" {
			seen[item.Link] = true
		}

		a := models.NewsArticle{
			Title:   title,
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
			Tickers: []string{symbol},
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			a.PublishedAt = *item.UpdatedParsed
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortArticlesByDate sorts articles by published date (newest first).
func sortArticlesByDate(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
