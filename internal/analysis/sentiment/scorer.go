// Package sentiment gives recent headlines a keyword-based tone. It runs
// offline and never calls a model, so the dashboard can show the tone of the
// news next to the generated report.
package sentiment

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/seenimoa/equityscope/pkg/models"
)

// Tone labels.
const (
	Positive         = "Positive"
	SlightlyPositive = "Slightly Positive"
	Neutral          = "Neutral"
	SlightlyNegative = "Slightly Negative"
	Negative         = "Negative"
)

// halfLife is how quickly an older headline loses weight in Summarize.
const halfLife = 24 * time.Hour

// Keyword weights. Entries match at the start of a word, so "surge" also
// matches "surges" and "surged".
var positiveWords = map[string]float64{
	"bullish": 0.7, "rally": 0.6, "rallies": 0.6, "surge": 0.7, "soar": 0.7,
	"upbeat": 0.5, "upgrade": 0.6, "outperform": 0.6, "record high": 0.7,
	"all-time high": 0.7, "beat": 0.5, "beats estimate": 0.6, "tops": 0.4,
	"exceed": 0.5, "raises guidance": 0.7, "strong": 0.4, "growth": 0.4,
	"recovery": 0.5, "expansion": 0.4, "profit": 0.3, "dividend": 0.4,
	"buyback": 0.5, "approval": 0.4, "partnership": 0.3, "jump": 0.5,
}

var negativeWords = map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6, "tumble": 0.6,
	"downgrade": 0.6, "underperform": 0.6, "selloff": 0.7, "sell-off": 0.7,
	"weak": 0.4, "decline": 0.5, "loss": 0.4, "fall": 0.4, "drop": 0.4,
	"miss": 0.5, "cuts guidance": 0.7, "layoff": 0.5, "recall": 0.5,
	"lawsuit": 0.5, "probe": 0.5, "investigation": 0.5, "fraud": 0.8,
	"bankruptcy": 0.9, "default": 0.7, "warning": 0.5, "concern": 0.3,
}

// Score is the tone of a single headline.
type Score struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	Score       float64   `json:"score"`      // -1 (negative) to +1 (positive)
	Confidence  float64   `json:"confidence"` // 0.1 without keywords, at most 0.85
	Label       string    `json:"label"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Summary is the time-weighted tone of a set of headlines.
type Summary struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
	Headlines  []Score `json:"headlines"`
	Positive   int     `json:"positive"`
	Negative   int     `json:"negative"`
}

// ScoreHeadline rates a headline from -1.0 (negative) to +1.0 (positive).
// Confidence grows with the number of keywords found.
func ScoreHeadline(headline string) (score float64, confidence float64) {
	text := " " + strings.Join(words(headline), " ")

	var pos, neg float64
	matches := 0
	for w, weight := range positiveWords {
		if strings.Contains(text, " "+w) {
			pos += weight
			matches++
		}
	}
	for w, weight := range negativeWords {
		if strings.Contains(text, " "+w) {
			neg += weight
			matches++
		}
	}
	if matches == 0 || pos+neg == 0 {
		return 0, 0.1
	}

	score = (pos - neg) / (pos + neg)
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// words lower-cases s and splits it on anything but letters, digits and
// hyphens.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

// ScoreArticle scores the title and summary of a news article.
func ScoreArticle(a models.NewsArticle) Score {
	text := a.Title
	if a.Summary != "" {
		text += " " + a.Summary
	}
	s, c := ScoreHeadline(text)
	return Score{
		Headline:    a.Title,
		Source:      a.Source,
		URL:         a.URL,
		Score:       s,
		Confidence:  c,
		Label:       label(s),
		PublishedAt: a.PublishedAt,
	}
}

// Summarize scores articles and weighs each by confidence and age, halving
// the weight every 24 hours before now. It returns nil for no articles.
func Summarize(articles []models.NewsArticle, now time.Time) *Summary {
	if len(articles) == 0 {
		return nil
	}

	sum := &Summary{Headlines: make([]Score, 0, len(articles))}
	var weighted, totalWeight, confSum float64
	for _, a := range articles {
		s := ScoreArticle(a)
		sum.Headlines = append(sum.Headlines, s)
		switch {
		case s.Score > 0:
			sum.Positive++
		case s.Score < 0:
			sum.Negative++
		}

		age := now.Sub(s.PublishedAt)
		if age < 0 || s.PublishedAt.IsZero() {
			age = 0
		}
		w := math.Exp(-math.Ln2*age.Hours()/halfLife.Hours()) * s.Confidence
		weighted += s.Score * w
		totalWeight += w
		confSum += s.Confidence
	}

	if totalWeight > 0 {
		sum.Score = weighted / totalWeight
	}
	sum.Confidence = confSum / float64(len(articles))
	sum.Label = label(sum.Score)
	return sum
}

func label(score float64) string {
	switch {
	case score > 0.3:
		return Positive
	case score > 0.1:
		return SlightlyPositive
	case score < -0.3:
		return Negative
	case score < -0.1:
		return SlightlyNegative
	}
	return Neutral
}
