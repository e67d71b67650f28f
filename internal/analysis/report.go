// Package analysis turns the plain-text equity research narrative returned by a
// language model into a typed Report.
//
// The model is prompted to emit eight tagged sections (SECTION_1_SNAPSHOT through
// SECTION_8_INVESTMENT_SUMMARY). Each section body is made of "Label: value"
// lines, dash bullets, or pipe-delimited tables. Parsing is a single stateless
// pass; if the structured pass fails the whole text is re-read with the older
// heading-based layout ("1 | Snapshot", "2 | Key Metrics").
package analysis

import "strings"

// Rating is the analyst call in the snapshot section.
type Rating string

const (
	RatingBuy  Rating = "Buy"
	RatingHold Rating = "Hold"
	RatingSell Rating = "Sell"
)

// Valid reports whether r is one of Buy, Hold or Sell.
func (r Rating) Valid() bool {
	switch r {
	case RatingBuy, RatingHold, RatingSell:
		return true
	}
	return false
}

// Confidence is the analyst's conviction in the rating.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Valid reports whether c is one of High, Medium or Low.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Report is the parsed research narrative. A nil section means its marker
// was not present in the source text.
type Report struct {
	Snapshot           *Snapshot           `json:"snapshot,omitempty"`
	KeyMetrics         *Table              `json:"keyMetrics,omitempty"`
	FundamentalDrivers *FundamentalDrivers `json:"fundamentalDrivers,omitempty"`
	ThesisAssessment   *ThesisAssessment   `json:"thesisAssessment,omitempty"`
	MacroSector        *MacroSector        `json:"macroSector,omitempty"`
	CatalystMap        *Table              `json:"catalystMap,omitempty"`
	ScenarioAnalysis   *Table              `json:"scenarioAnalysis,omitempty"`
	InvestmentSummary  *InvestmentSummary  `json:"investmentSummary,omitempty"`
}

// Snapshot holds the headline valuation figures.
type Snapshot struct {
	MarketCap     *string     `json:"marketCap,omitempty"`
	SharePrice    *string     `json:"sharePrice,omitempty"`
	TargetPrice   *string     `json:"targetPrice,omitempty"`
	ImpliedUpside *string     `json:"impliedUpside,omitempty"`
	Rating        *Rating     `json:"rating,omitempty"`
	Confidence    *Confidence `json:"confidence,omitempty"`
}

// Table is a pipe-delimited block. Rows are kept as written and may be
// shorter or longer than Headers.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// FundamentalDrivers holds one free-text paragraph per driver.
type FundamentalDrivers struct {
	GrowthEngines     *string `json:"growthEngines,omitempty"`
	CostStructure     *string `json:"costStructure,omitempty"`
	CapitalAllocation *string `json:"capitalAllocation,omitempty"`
}

// ThesisAssessment weighs the bull case against the risks.
type ThesisAssessment struct {
	SupportingPoints []string `json:"supportingPoints,omitempty"`
	Risks            []string `json:"risks,omitempty"`
	NetVerdict       *string  `json:"netVerdict,omitempty"`
}

// MacroSector places the company in its sector and macro context.
type MacroSector struct {
	SectorCycle        *string `json:"sectorCycle,omitempty"`
	MacroSensitivities *string `json:"macroSensitivities,omitempty"`
	CompetitiveMoat    *string `json:"competitiveMoat,omitempty"`
}

// InvestmentSummary is the closing recap.
type InvestmentSummary struct {
	Bullets   []string `json:"bullets,omitempty"`
	FinalCall *string  `json:"finalCall,omitempty"`
}

// Empty reports whether no section was found.
func (r *Report) Empty() bool {
	return r == nil || len(r.Present()) == 0
}

// Present returns the IDs of the sections that were found, in display order.
func (r *Report) Present() []SectionID {
	if r == nil {
		return nil
	}
	var ids []SectionID
	for _, id := range AllSections() {
		if r.has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Report) has(id SectionID) bool {
	switch id {
	case SectionSnapshot:
		return r.Snapshot != nil
	case SectionKeyMetrics:
		return r.KeyMetrics != nil
	case SectionFundamentalDrivers:
		return r.FundamentalDrivers != nil
	case SectionThesisAssessment:
		return r.ThesisAssessment != nil
	case SectionMacroSector:
		return r.MacroSector != nil
	case SectionCatalystMap:
		return r.CatalystMap != nil
	case SectionScenarioAnalysis:
		return r.ScenarioAnalysis != nil
	case SectionInvestmentSummary:
		return r.InvestmentSummary != nil
	}
	return false
}

// Width returns the widest row or header count, for renderers that need a
// rectangular grid.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	w := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Value dereferences an optional field, returning "" when absent.
func Value[T ~string](p *T) string {
	if p == nil {
		return ""
	}
	return string(*p)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
