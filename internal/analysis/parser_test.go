package analysis

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullReport = `SECTION_1_SNAPSHOT
Market Cap: $800B
Share Price: $248.50
Target Price: $290.00
Upside Estimate: 16.7%
Rating: Buy
Confidence: High

SECTION_2_KEY_METRICS
Metric|TTM|3-yr CAGR|Sector Median|Delta vs Median
Revenue growth|12%|35%|8%|+4pp
Gross margin|18.2%|21.0%|15.0%|+3.2pp
FCF margin|4.1%|7.5%|5.0%|-0.9pp
P/E (NTM)|85x|n/a|18x|+67x
EV/EBITDA (NTM)|48x|n/a|11x|+37x

SECTION_3_FUNDAMENTAL_DRIVERS
Growth Engines: Vehicle deliveries, energy storage and software revenue.
Cost Structure: Manufacturing scale keeps unit costs falling despite price cuts.
Capital Allocation: Capex focused on new factories and AI compute.

SECTION_4_THESIS_ASSESSMENT
Supporting Points:
- Energy storage deployments growing above 100% a year
- Industry-leading cost per vehicle
- Optionality in autonomy and robotics
Risks:
- Price competition from Chinese OEMs
- Key person dependence
Net Verdict: Bullish - execution outweighs the valuation premium

SECTION_5_MACRO_SECTOR
Sector Cycle: EV adoption is in an early growth phase with cyclical softness.
Macro Sensitivities: Rates drive auto financing costs and demand.
Competitive Moat: Scale, vertical integration and charging network.

SECTION_6_CATALYST_MAP
Date/Window|Event|Expected Impact|ST/LT
Q3 2025|Earnings release|Margin update|ST
H2 2025|Robotaxi launch|Platform rerating|LT
2026|Next-gen vehicle|Volume growth|LT

SECTION_7_SCENARIO_ANALYSIS
Case|Assumptions|Valuation|Probability|Price Target
Bear|Margins compress|25x EPS|25%|$150
Base|Steady growth|60x EPS|50%|$290
Bull|Autonomy succeeds|90x EPS|25%|$420
Risk-reward|Probability-weighted upside|$288|100%|$288

SECTION_8_INVESTMENT_SUMMARY
Key Points:
- Cost leadership in EVs
- Energy business scaling fast
- Premium valuation
- Autonomy optionality
- Balance sheet strength
Final Call: Buy, 12 months, High confidence
`

const legacyReport = `Investment memo

1 | Snapshot
Mkt Cap: $1.2T
Share Price: $190.10
Target Price: $220
Upside Estimate: 15.7%
Rating: BUY
Confidence: medium

2 | Key Metrics (TTM)
Metric | Value | Sector
--- | --- | ---
Revenue Growth | 8% | 6%
Net Margin	21%
Note |

3 | Fundamental Drivers
Services keep compounding.
`

func strPtr(s string) *string { return &s }

func ratingPtr(r Rating) *Rating { return &r }

func confidencePtr(c Confidence) *Confidence { return &c }

func TestParseAllSections(t *testing.T) {
	res := NewParser().ParseResult(fullReport)
	require.NoError(t, res.Err)
	assert.Equal(t, StrategyStructured, res.Strategy)

	r := res.Report
	require.NotNil(t, r)
	assert.Equal(t, AllSections(), r.Present())

	require.NotNil(t, r.Snapshot)
	assert.Equal(t, "$800B", Value(r.Snapshot.MarketCap))
	assert.Equal(t, "$248.50", Value(r.Snapshot.SharePrice))
	assert.Equal(t, "$290.00", Value(r.Snapshot.TargetPrice))
	assert.Equal(t, "16.7%", Value(r.Snapshot.ImpliedUpside))
	assert.Equal(t, RatingBuy, *r.Snapshot.Rating)
	assert.Equal(t, ConfidenceHigh, *r.Snapshot.Confidence)

	assert.Equal(t, []string{"Metric", "TTM", "3-yr CAGR", "Sector Median", "Delta vs Median"}, r.KeyMetrics.Headers)
	assert.Len(t, r.KeyMetrics.Rows, 5)
	assert.Equal(t, []string{"P/E (NTM)", "85x", "n/a", "18x", "+67x"}, r.KeyMetrics.Rows[3])

	assert.Equal(t, "Manufacturing scale keeps unit costs falling despite price cuts.", Value(r.FundamentalDrivers.CostStructure))

	assert.Equal(t, []string{
		"Energy storage deployments growing above 100% a year",
		"Industry-leading cost per vehicle",
		"Optionality in autonomy and robotics",
		// "Risks:" has a colon, so the risk bullets are read into this list too.
		"Price competition from Chinese OEMs",
		"Key person dependence",
	}, r.ThesisAssessment.SupportingPoints)
	assert.Equal(t, []string{"Price competition from Chinese OEMs", "Key person dependence"}, r.ThesisAssessment.Risks)
	assert.Equal(t, "Bullish - execution outweighs the valuation premium", Value(r.ThesisAssessment.NetVerdict))

	assert.Equal(t, "Scale, vertical integration and charging network.", Value(r.MacroSector.CompetitiveMoat))

	assert.Len(t, r.CatalystMap.Rows, 3)
	assert.Equal(t, []string{"Case", "Assumptions", "Valuation", "Probability", "Price Target"}, r.ScenarioAnalysis.Headers)
	assert.Equal(t, []string{"Risk-reward", "Probability-weighted upside", "$288", "100%", "$288"}, r.ScenarioAnalysis.Rows[3])

	assert.Len(t, r.InvestmentSummary.Bullets, 5)
	assert.Equal(t, "Buy, 12 months, High confidence", Value(r.InvestmentSummary.FinalCall))
}

func TestParseMissingSectionTag(t *testing.T) {
	for _, id := range AllSections() {
		t.Run(id.Tag(), func(t *testing.T) {
			doc := strings.Replace(fullReport, id.Tag(), "", 1)

			res := NewParser().ParseResult(doc)
			require.NoError(t, res.Err)
			assert.Equal(t, StrategyStructured, res.Strategy)
			assert.NotContains(t, res.Report.Present(), id)
			assert.Len(t, res.Report.Present(), 7)
		})
	}
}

func TestParseEndToEnd(t *testing.T) {
	input := "SECTION_1_SNAPSHOT\nMarket Cap: $800B\nRating: Buy\nConfidence: High\n\nSECTION_2_KEY_METRICS\nMetric|TTM\nRevenue growth|12%"

	got := Parse(input)

	want := &Report{
		Snapshot: &Snapshot{
			MarketCap:  strPtr("$800B"),
			Rating:     ratingPtr(RatingBuy),
			Confidence: confidencePtr(ConfidenceHigh),
		},
		KeyMetrics: &Table{
			Headers: []string{"Metric", "TTM"},
			Rows:    [][]string{{"Revenue growth", "12%"}},
		},
	}
	assert.Equal(t, want, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"snapshot": {"marketCap": "$800B", "rating": "Buy", "confidence": "High"},
		"keyMetrics": {"headers": ["Metric", "TTM"], "rows": [["Revenue growth", "12%"]]}
	}`, string(data))
}

func TestParseIdempotent(t *testing.T) {
	inputs := []string{fullReport, legacyReport, "", "SECTION_9_UNKNOWN\nfoo"}
	for _, in := range inputs {
		first := Parse(in)
		second := Parse(in)
		assert.Equal(t, first, second)
		assert.NotSame(t, first, second)
	}
}

func TestParseFallsBackToLegacy(t *testing.T) {
	res := NewParser().ParseResult(legacyReport)

	assert.Equal(t, StrategyLegacy, res.Strategy)
	assert.ErrorIs(t, res.Err, ErrNoSections)
	assert.Equal(t, ParseLegacy(legacyReport), res.Report)
}

func TestParseFallbackOnPrimaryFailure(t *testing.T) {
	// Both layouts in one document, so the primary strategy has work to do
	// before it fails.
	doc := fullReport + "\n" + legacyReport

	panicking := *structured
	panicking.table = func(string) Table { panic("boom") }

	failing := *structured
	failing.value = func(string, string) (*string, error) { return nil, errors.New("bad label") }

	tests := []struct {
		name    string
		primary *Strategy
		input   string
		wantErr error
	}{
		{name: "panic", primary: &panicking, input: doc, wantErr: ErrParsePanic},
		{name: "extractor error", primary: &failing, input: doc},
		{name: "invalid utf8", primary: structured, input: doc + "\xff\xfe", wantErr: ErrInvalidText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parser{primary: tt.primary, fallback: legacy}

			res := p.ParseResult(tt.input)

			require.Error(t, res.Err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.Err, tt.wantErr)
			}
			assert.Equal(t, StrategyLegacy, res.Strategy)
			assert.Equal(t, ParseLegacy(tt.input), res.Report)
			assert.NotNil(t, res.Report.Snapshot)
			assert.Nil(t, res.Report.ThesisAssessment)
		})
	}
}

func TestParseNeverFails(t *testing.T) {
	for _, in := range []string{"", "   ", "hello world", "\xff", "SECTION_"} {
		r := Parse(in)
		require.NotNil(t, r)
		assert.True(t, r.Empty())
	}
}

func TestParseLegacy(t *testing.T) {
	r := ParseLegacy(legacyReport)

	require.NotNil(t, r.Snapshot)
	assert.Equal(t, "$1.2T", Value(r.Snapshot.MarketCap))
	assert.Equal(t, "$190.10", Value(r.Snapshot.SharePrice))
	assert.Equal(t, "$220", Value(r.Snapshot.TargetPrice))
	assert.Equal(t, "15.7%", Value(r.Snapshot.ImpliedUpside))
	assert.Equal(t, RatingBuy, *r.Snapshot.Rating)
	assert.Equal(t, ConfidenceMedium, *r.Snapshot.Confidence)

	require.NotNil(t, r.KeyMetrics)
	assert.Equal(t, []string{"Metric", "Value", "Sector"}, r.KeyMetrics.Headers)
	assert.Equal(t, [][]string{
		{"Revenue Growth", "8%", "6%"},
		{"Net Margin", "21%"},
	}, r.KeyMetrics.Rows)

	assert.Equal(t, []SectionID{SectionSnapshot, SectionKeyMetrics}, r.Present())
}

func TestParseLegacyRatingWords(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		rating     *Rating
		confidence *Confidence
	}{
		{"upper case", "Rating: SELL\nConfidence: LOW", ratingPtr(RatingSell), confidencePtr(ConfidenceLow)},
		{"no colon", "rating hold\nconfidence high", ratingPtr(RatingHold), confidencePtr(ConfidenceHigh)},
		{"unknown words", "Rating: Strong Buy\nConfidence: n/a", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseLegacy("1 | Snapshot\n" + tt.body)
			require.NotNil(t, r.Snapshot)
			assert.Equal(t, tt.rating, r.Snapshot.Rating)
			assert.Equal(t, tt.confidence, r.Snapshot.Confidence)
		})
	}
}

func TestParseLegacyEmptySnapshot(t *testing.T) {
	r := ParseLegacy("Memo\n1 | Snapshot\n2 | Key Metrics\n")

	require.NotNil(t, r.Snapshot)
	assert.Equal(t, &Snapshot{}, r.Snapshot)
	assert.Nil(t, r.KeyMetrics)

	// The structured layout treats an empty tagged section as absent.
	s := Parse("SECTION_1_SNAPSHOT\nSECTION_8_INVESTMENT_SUMMARY\nFinal Call: Hold")
	assert.Nil(t, s.Snapshot)
	require.NotNil(t, s.InvestmentSummary)
}

func TestParseStructuredKeepsRatingAsWritten(t *testing.T) {
	r := Parse("SECTION_1_SNAPSHOT\nRating: strong buy\nConfidence: Medium")

	require.NotNil(t, r.Snapshot)
	assert.Equal(t, Rating("strong buy"), *r.Snapshot.Rating)
	assert.False(t, r.Snapshot.Rating.Valid())
	assert.True(t, r.Snapshot.Confidence.Valid())
}

func TestParseEmptySectionIsAbsent(t *testing.T) {
	r := Parse("SECTION_1_SNAPSHOT\n\nSECTION_2_KEY_METRICS\nA|B\n1|2")

	assert.Nil(t, r.Snapshot)
	require.NotNil(t, r.KeyMetrics)
	assert.Equal(t, []string{"A", "B"}, r.KeyMetrics.Headers)
}

func TestParseTableWithoutPipesIsAbsent(t *testing.T) {
	r := Parse("SECTION_6_CATALYST_MAP\nNo catalysts identified.\nSECTION_8_INVESTMENT_SUMMARY\nFinal Call: Hold")

	assert.Nil(t, r.CatalystMap)
	require.NotNil(t, r.InvestmentSummary)
	assert.Nil(t, r.InvestmentSummary.Bullets)
	assert.Equal(t, "Hold", Value(r.InvestmentSummary.FinalCall))
}

func TestParseSectionTagsCaseInsensitive(t *testing.T) {
	r := Parse("section_3_fundamental_drivers\ngrowth engines: Cloud\nsection_5_macro_sector\nCOMPETITIVE MOAT: Network effects")

	require.NotNil(t, r.FundamentalDrivers)
	assert.Equal(t, "Cloud", Value(r.FundamentalDrivers.GrowthEngines))
	assert.Nil(t, r.FundamentalDrivers.CostStructure)
	require.NotNil(t, r.MacroSector)
	assert.Equal(t, "Network effects", Value(r.MacroSector.CompetitiveMoat))
}
