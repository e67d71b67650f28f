package analysis

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent as the system message with every analysis request.
const SystemPrompt = "You are a professional financial analyst. Respond with plain text only, following the exact format provided. Do not use markdown, bold, italic, or any formatting. Use simple text with consistent structure."

const analysisPrompt = `## ROLE
You are a senior buy-side equity analyst at a Tier-1 investment fund. Your analysis will be processed by software, so strict adherence to the format is crucial.

## INPUT
Company: %s
Symbol: %s
%s
## OUTPUT FORMAT REQUIREMENTS
- Use ONLY plain text, no markdown formatting
- Use consistent section headers exactly as shown
- Use pipe (|) separators for tables
- Use simple bullet points with dashes (-)
- No bold, italic, or other formatting
- Keep responses concise and data-focused

## ANALYSIS STRUCTURE

SECTION_1_SNAPSHOT
Market Cap: [value]
Share Price: [value]
Target Price: [value]
Upside Estimate: [value]
Rating: [Buy/Hold/Sell]
Confidence: [High/Medium/Low]

SECTION_2_KEY_METRICS
Metric|TTM|3-yr CAGR|Sector Median|Delta vs Median
Revenue growth|[value]|[value]|[value]|[value]
Gross margin|[value]|[value]|[value]|[value]
FCF margin|[value]|[value]|[value]|[value]
P/E (NTM)|[value]|[value]|[value]|[value]
EV/EBITDA (NTM)|[value]|[value]|[value]|[value]

SECTION_3_FUNDAMENTAL_DRIVERS
Growth Engines: [single paragraph description]
Cost Structure: [single paragraph description]
Capital Allocation: [single paragraph description]

SECTION_4_THESIS_ASSESSMENT
Supporting Points:
- [point 1]
- [point 2]
- [point 3]
Risks:
- [risk 1]
- [risk 2]
Net Verdict: [Bullish/Bearish/Neutral] - [single sentence justification]

SECTION_5_MACRO_SECTOR
Sector Cycle: [single paragraph description]
Macro Sensitivities: [single paragraph description]
Competitive Moat: [single paragraph description]

SECTION_6_CATALYST_MAP
Date/Window|Event|Expected Impact|ST/LT
[date]|[event]|[impact]|[timeframe]
[date]|[event]|[impact]|[timeframe]
[date]|[event]|[impact]|[timeframe]

SECTION_7_SCENARIO_ANALYSIS
Case|Assumptions|Valuation|Probability|Price Target
Bear|[assumptions]|[valuation]|[probability]|[target]
Base|[assumptions]|[valuation]|[probability]|[target]
Bull|[assumptions]|[valuation]|[probability]|[target]
Risk-reward|Probability-weighted upside|[value]|100%%|[weighted target]

SECTION_8_INVESTMENT_SUMMARY
Key Points:
- [bullet 1]
- [bullet 2]
- [bullet 3]
- [bullet 4]
- [bullet 5]
Final Call: [Buy/Hold/Sell], [timeframe], [confidence level]`

// Fact is one line of reference data given to the model, e.g. "Share Price: $248.50".
type Fact struct {
	Label string
	Value string
}

// PromptInput identifies the company to analyse. Facts are optional.
type PromptInput struct {
	CompanyName string
	Symbol      string
	Facts       []Fact
}

// BuildPrompt returns the user message for an analysis request.
func BuildPrompt(in PromptInput) string {
	return fmt.Sprintf(analysisPrompt, in.CompanyName, in.Symbol, referenceBlock(in.Facts))
}

func referenceBlock(facts []Fact) string {
	var b strings.Builder
	for _, f := range facts {
		if strings.TrimSpace(f.Value) == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("\n## REFERENCE DATA (latest market data, use where relevant)\n")
		}
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	return b.String()
}
