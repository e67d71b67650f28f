package llm

import (
	"context"
	"time"
)

// MockAnalysis is the canned completion returned in testing mode. It always
// describes Tesla, whatever company was requested.
const MockAnalysis = `SECTION_1_SNAPSHOT
Market Cap: $1.05T
Share Price: $328.50
Target Price: $365.00
Upside Estimate: 11.1%
Rating: Buy
Confidence: Medium

SECTION_2_KEY_METRICS
Metric|TTM|3-yr CAGR|Sector Median|Delta vs Median
Revenue growth|1.2%|18.4%|6.5%|-5.3pp
Gross margin|17.9%|21.6%|19.8%|-1.9pp
FCF margin|3.8%|6.9%|5.1%|-1.3pp
P/E (NTM)|142.0x|n/a|18.5x|+123.5x
EV/EBITDA (NTM)|78.3x|n/a|11.2x|+67.1x

SECTION_3_FUNDAMENTAL_DRIVERS
Growth Engines: Energy storage deployments, the lower-cost vehicle platform and full self-driving software subscriptions carry the growth case while core auto volumes are flat.
Cost Structure: Price cuts compressed automotive margins; per-unit cost reductions from the new platform and in-house cells are the main lever for recovery.
Capital Allocation: Capex stays elevated for AI compute and new factories, funded from operating cash flow with a net cash balance sheet and no buybacks.

SECTION_4_THESIS_ASSESSMENT
Supporting Points:
- Storage revenue is growing faster than any other segment with rising margins
- Autonomy and robotaxi optionality is not in consensus estimates
- Net cash position funds the capex cycle without dilution
Risks:
- Auto demand softness and further price cuts
- Regulatory delays for unsupervised self-driving
Net Verdict: Bullish - optionality in software and storage outweighs near-term auto margin pressure

SECTION_5_MACRO_SECTOR
Sector Cycle: EV adoption is in a slower mid-cycle phase with incumbents scaling back plans and Chinese competitors gaining share.
Macro Sensitivities: Financing rates drive affordability; tariffs and EV credit policy move unit economics.
Competitive Moat: Manufacturing scale, the charging network and fleet driving data remain hard to replicate.

SECTION_6_CATALYST_MAP
Date/Window|Event|Expected Impact|ST/LT
Q3 2025|Quarterly deliveries|Medium|ST
H2 2025|Robotaxi service expansion|High|LT
2026|Lower-cost model ramp|High|LT

SECTION_7_SCENARIO_ANALYSIS
Case|Assumptions|Valuation|Probability|Price Target
Bear|Auto margins stay below 15%, autonomy delayed|60x EPS|25%|$190
Base|Storage growth plus gradual autonomy rollout|95x EPS|50%|$365
Bull|Robotaxi scales across major cities|140x EPS|25%|$540
Risk-reward|Probability-weighted upside|11%|100%|$365

SECTION_8_INVESTMENT_SUMMARY
Key Points:
- Storage is becoming a second profit engine
- Auto margins are near the bottom of the cycle
- Autonomy offers asymmetric upside
- Balance sheet supports heavy investment
- Valuation already prices in substantial success
Final Call: Buy, 12 months, Medium confidence`

// MockProvider returns MockAnalysis after an optional delay. It needs no
// network access or API key.
type MockProvider struct {
	Delay time.Duration
}

// NewMockProvider creates a mock provider that answers after delay.
func NewMockProvider(delay time.Duration) *MockProvider {
	return &MockProvider{Delay: delay}
}

func (p *MockProvider) Name() string                   { return ProviderMock }
func (p *MockProvider) Models() []string               { return []string{"mock"} }
func (p *MockProvider) Ping(ctx context.Context) error { return nil }

// Chat waits for Delay (or ctx) and returns the canned analysis.
func (p *MockProvider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	start := time.Now()
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	model := "mock"
	if opts != nil && opts.Model != "" {
		model = opts.Model
	}
	return &Response{
		Content:      MockAnalysis,
		FinishReason: FinishStop,
		Model:        model,
		Provider:     ProviderMock,
		Latency:      time.Since(start),
	}, nil
}
