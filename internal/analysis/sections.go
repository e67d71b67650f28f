package analysis

import "fmt"

// SectionID identifies one of the eight report sections. The numeric value
// matches the number in the section tag.
type SectionID int

const (
	SectionSnapshot SectionID = iota + 1
	SectionKeyMetrics
	SectionFundamentalDrivers
	SectionThesisAssessment
	SectionMacroSector
	SectionCatalystMap
	SectionScenarioAnalysis
	SectionInvestmentSummary
)

var sectionNames = map[SectionID]struct{ tag, title string }{
	SectionSnapshot:           {"SECTION_1_SNAPSHOT", "Snapshot"},
	SectionKeyMetrics:         {"SECTION_2_KEY_METRICS", "Key Metrics"},
	SectionFundamentalDrivers: {"SECTION_3_FUNDAMENTAL_DRIVERS", "Fundamental Drivers"},
	SectionThesisAssessment:   {"SECTION_4_THESIS_ASSESSMENT", "Thesis Assessment"},
	SectionMacroSector:        {"SECTION_5_MACRO_SECTOR", "Macro & Sector"},
	SectionCatalystMap:        {"SECTION_6_CATALYST_MAP", "Catalyst Map"},
	SectionScenarioAnalysis:   {"SECTION_7_SCENARIO_ANALYSIS", "Scenario Analysis"},
	SectionInvestmentSummary:  {"SECTION_8_INVESTMENT_SUMMARY", "Investment Summary"},
}

// AllSections returns every section in display order.
func AllSections() []SectionID {
	return []SectionID{
		SectionSnapshot,
		SectionKeyMetrics,
		SectionFundamentalDrivers,
		SectionThesisAssessment,
		SectionMacroSector,
		SectionCatalystMap,
		SectionScenarioAnalysis,
		SectionInvestmentSummary,
	}
}

// Tag returns the machine tag the model is asked to emit, e.g. SECTION_1_SNAPSHOT.
func (id SectionID) Tag() string {
	if n, ok := sectionNames[id]; ok {
		return n.tag
	}
	return fmt.Sprintf("SECTION_%d_UNKNOWN", int(id))
}

// Title returns the human-readable heading used when rendering.
func (id SectionID) Title() string {
	if n, ok := sectionNames[id]; ok {
		return n.title
	}
	return fmt.Sprintf("Section %d", int(id))
}

func (id SectionID) String() string { return id.Tag() }

// Labels the model is asked to write before each value.
const (
	labelMarketCap          = "Market Cap"
	labelSharePrice         = "Share Price"
	labelTargetPrice        = "Target Price"
	labelUpsideEstimate     = "Upside Estimate"
	labelRating             = "Rating"
	labelConfidence         = "Confidence"
	labelGrowthEngines      = "Growth Engines"
	labelCostStructure      = "Cost Structure"
	labelCapitalAllocation  = "Capital Allocation"
	labelNetVerdict         = "Net Verdict"
	labelSectorCycle        = "Sector Cycle"
	labelMacroSensitivities = "Macro Sensitivities"
	labelCompetitiveMoat    = "Competitive Moat"
	labelFinalCall          = "Final Call"

	headerSupportingPoints = "Supporting Points:"
	headerRisks            = "Risks:"
	headerKeyPoints        = "Key Points:"
)
