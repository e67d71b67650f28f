package sentiment

import (
	"testing"
	"time"

	"github.com/seenimoa/equityscope/pkg/models"
)

func TestScoreHeadlinePositive(t *testing.T) {
	score, conf := ScoreHeadline("Tesla shares rally as deliveries beat estimates")
	if score <= 0 {
		t.Errorf("expected positive score, got %.4f", score)
	}
	if conf <= 0.1 {
		t.Errorf("expected keyword confidence, got %.4f", conf)
	}
}

func TestScoreHeadlineNegative(t *testing.T) {
	score, conf := ScoreHeadline("Stocks plunge amid fraud investigation concerns")
	if score >= 0 {
		t.Errorf("expected negative score, got %.4f", score)
	}
	if conf != 0.8 {
		t.Errorf("expected confidence 0.8 for four keywords, got %.4f", conf)
	}
}

func TestScoreHeadlineNeutral(t *testing.T) {
	score, conf := ScoreHeadline("Company opens new office in Austin")
	if score != 0 {
		t.Errorf("expected zero score, got %.4f", score)
	}
	if conf != 0.1 {
		t.Errorf("expected confidence 0.1, got %.4f", conf)
	}
}

func TestScoreHeadlineMatchesWordStarts(t *testing.T) {
	if s, _ := ScoreHeadline("Shares surged after the report"); s <= 0 {
		t.Errorf("expected \"surged\" to count as positive, got %.4f", s)
	}
	// "fall" must not match inside another word.
	if s, _ := ScoreHeadline("Nightfall release date announced"); s != 0 {
		t.Errorf("expected no match inside a word, got %.4f", s)
	}
}

func TestScoreArticle(t *testing.T) {
	a := models.NewsArticle{
		Title:       "Apple soars to record high",
		Summary:     "Analysts upgrade the stock",
		Source:      "Wire",
		URL:         "https://example.com/a",
		PublishedAt: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	s := ScoreArticle(a)
	if s.Score != 1 {
		t.Errorf("expected score 1, got %.4f", s.Score)
	}
	if s.Label != Positive {
		t.Errorf("expected %s, got %s", Positive, s.Label)
	}
	if s.Headline != a.Title || s.Source != "Wire" || s.URL != a.URL {
		t.Errorf("article fields not carried over: %+v", s)
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	articles := []models.NewsArticle{
		{Title: "Stock surges on strong earnings beat", PublishedAt: now},
		{Title: "Upbeat growth outlook", PublishedAt: now.Add(-6 * time.Hour)},
		{Title: "Shares slump after recall", PublishedAt: now.Add(-72 * time.Hour)},
		{Title: "Board meets on Tuesday", PublishedAt: now.Add(-2 * time.Hour)},
	}

	sum := Summarize(articles, now)
	if sum == nil {
		t.Fatal("expected a summary")
	}
	if sum.Score <= 0.3 {
		t.Errorf("expected recent positive headlines to dominate, got %.4f", sum.Score)
	}
	if sum.Label != Positive {
		t.Errorf("expected %s, got %s", Positive, sum.Label)
	}
	if sum.Positive != 2 || sum.Negative != 1 {
		t.Errorf("expected 2 positive and 1 negative, got %d and %d", sum.Positive, sum.Negative)
	}
	if len(sum.Headlines) != 4 {
		t.Errorf("expected 4 scored headlines, got %d", len(sum.Headlines))
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if sum := Summarize(nil, time.Now()); sum != nil {
		t.Errorf("expected nil summary, got %+v", sum)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, Positive},
		{0.2, SlightlyPositive},
		{0, Neutral},
		{-0.2, SlightlyNegative},
		{-0.9, Negative},
	}
	for _, tt := range tests {
		if got := label(tt.score); got != tt.want {
			t.Errorf("label(%.1f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
