package analysis

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Strategy names reported by Parser.ParseResult.
const (
	StrategyStructured = "structured"
	StrategyLegacy     = "legacy"
)

var (
	// ErrNoSections is returned by the structured strategy when the text
	// carries no SECTION_n_ tag at all.
	ErrNoSections = errors.New("analysis: no section tags found")
	// ErrInvalidText is returned when the input is not valid UTF-8.
	ErrInvalidText = errors.New("analysis: text is not valid UTF-8")
	// ErrParsePanic wraps a panic recovered while parsing.
	ErrParsePanic = errors.New("analysis: parser panicked")
)

var anySectionTag = regexp.MustCompile(`(?i)SECTION_\d+_`)

// Strategy describes one layout of the narrative. All strategies share the same
// section splitter and extractors and differ only in the patterns fed to them
// and the sections they cover.
type Strategy struct {
	name string

	// markers maps each covered section to a pattern whose first group is
	// the section body.
	markers map[SectionID]*regexp.Regexp

	snapshot snapshotLabels

	value      func(text, label string) (*string, error)
	rating     func(text string) (*string, error)
	confidence func(text string) (*string, error)
	table      func(text string) Table

	// check rejects a document before any section is read.
	check func(doc string) error

	// keepEmpty reports a matched heading as present even when its body is
	// blank.
	keepEmpty bool
}

type snapshotLabels struct {
	marketCap, sharePrice, targetPrice, upside string
}

var structured = &Strategy{
	name:    StrategyStructured,
	markers: tagMarkers(),
	snapshot: snapshotLabels{
		marketCap:   labelMarketCap,
		sharePrice:  labelSharePrice,
		targetPrice: labelTargetPrice,
		upside:      labelUpsideEstimate,
	},
	value:      keyValue,
	rating:     func(text string) (*string, error) { return keyValue(text, labelRating) },
	confidence: func(text string) (*string, error) { return keyValue(text, labelConfidence) },
	table:      pipeTable,
	check: func(doc string) error {
		if !utf8.ValidString(doc) {
			return ErrInvalidText
		}
		if !anySectionTag.MatchString(doc) {
			return ErrNoSections
		}
		return nil
	},
}

// legacy reads the older "1 | Snapshot" / "2 | Key Metrics" layout. Only the
// first two sections are recovered.
var legacy = &Strategy{
	name: StrategyLegacy,
	markers: map[SectionID]*regexp.Regexp{
		SectionSnapshot:   regexp.MustCompile(`(?is)1 \| Snapshot(.*?)(?:2 \| Key Metrics|\z)`),
		SectionKeyMetrics: regexp.MustCompile(`(?is)2 \| Key Metrics[^\n]*\n(.*?)(?:3 \| Fundamental|\z)`),
	},
	snapshot: snapshotLabels{
		marketCap:   "mkt cap",
		sharePrice:  "share price",
		targetPrice: "target price",
		upside:      "upside estimate",
	},
	value: legacyValue,
	rating: func(text string) (*string, error) {
		return legacyWord(text, "rating", "buy", "hold", "sell")
	},
	confidence: func(text string) (*string, error) {
		return legacyWord(text, "confidence", "high", "medium", "low")
	},
	table:     legacyTable,
	keepEmpty: true,
}

func tagMarkers() map[SectionID]*regexp.Regexp {
	m := make(map[SectionID]*regexp.Regexp, len(sectionNames))
	for _, id := range AllSections() {
		m[id] = regexp.MustCompile(`(?is)` + regexp.QuoteMeta(id.Tag()) + `(.*?)(?:SECTION_\d+_|\z)`)
	}
	return m
}

// Name returns StrategyStructured or StrategyLegacy.
func (s *Strategy) Name() string { return s.name }

// Covers reports whether the strategy can recover section id.
func (s *Strategy) Covers(id SectionID) bool {
	_, ok := s.markers[id]
	return ok
}

// section returns the trimmed body of section id. A missing marker reports
// false, and so does an empty body unless the strategy keeps empty sections.
func (s *Strategy) section(doc string, id SectionID) (string, bool) {
	re, ok := s.markers[id]
	if !ok {
		return "", false
	}
	m := re.FindStringSubmatch(doc)
	if m == nil {
		return "", false
	}
	body := strings.TrimSpace(m[1])
	return body, body != "" || s.keepEmpty
}

func (s *Strategy) parse(doc string) (*Report, error) {
	if s.check != nil {
		if err := s.check(doc); err != nil {
			return nil, err
		}
	}

	r := &Report{}
	for _, id := range AllSections() {
		body, ok := s.section(doc, id)
		if !ok {
			continue
		}
		if err := s.fill(r, id, body); err != nil {
			return nil, fmt.Errorf("%s: %w", id.Title(), err)
		}
	}
	return r, nil
}

func (s *Strategy) fill(r *Report, id SectionID, body string) error {
	switch id {
	case SectionSnapshot:
		snap, err := s.parseSnapshot(body)
		if err != nil {
			return err
		}
		r.Snapshot = snap

	case SectionKeyMetrics:
		r.KeyMetrics = s.parseTable(body)

	case SectionFundamentalDrivers:
		v, err := s.values(body, labelGrowthEngines, labelCostStructure, labelCapitalAllocation)
		if err != nil {
			return err
		}
		r.FundamentalDrivers = &FundamentalDrivers{GrowthEngines: v[0], CostStructure: v[1], CapitalAllocation: v[2]}

	case SectionThesisAssessment:
		support, err := bulletList(body, headerSupportingPoints)
		if err != nil {
			return err
		}
		risks, err := bulletList(body, headerRisks)
		if err != nil {
			return err
		}
		verdict, err := s.value(body, labelNetVerdict)
		if err != nil {
			return err
		}
		r.ThesisAssessment = &ThesisAssessment{SupportingPoints: support, Risks: risks, NetVerdict: verdict}

	case SectionMacroSector:
		v, err := s.values(body, labelSectorCycle, labelMacroSensitivities, labelCompetitiveMoat)
		if err != nil {
			return err
		}
		r.MacroSector = &MacroSector{SectorCycle: v[0], MacroSensitivities: v[1], CompetitiveMoat: v[2]}

	case SectionCatalystMap:
		r.CatalystMap = s.parseTable(body)

	case SectionScenarioAnalysis:
		r.ScenarioAnalysis = s.parseTable(body)

	case SectionInvestmentSummary:
		bullets, err := bulletList(body, headerKeyPoints)
		if err != nil {
			return err
		}
		call, err := s.value(body, labelFinalCall)
		if err != nil {
			return err
		}
		r.InvestmentSummary = &InvestmentSummary{Bullets: bullets, FinalCall: call}

	default:
		return fmt.Errorf("unknown section %d", int(id))
	}
	return nil
}

func (s *Strategy) parseSnapshot(body string) (*Snapshot, error) {
	l := s.snapshot
	v, err := s.values(body, l.marketCap, l.sharePrice, l.targetPrice, l.upside)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{MarketCap: v[0], SharePrice: v[1], TargetPrice: v[2], ImpliedUpside: v[3]}

	rating, err := s.rating(body)
	if err != nil {
		return nil, err
	}
	if rating != nil {
		r := Rating(*rating)
		snap.Rating = &r
	}

	confidence, err := s.confidence(body)
	if err != nil {
		return nil, err
	}
	if confidence != nil {
		c := Confidence(*confidence)
		snap.Confidence = &c
	}
	return snap, nil
}

// parseTable returns nil when no header row was found.
func (s *Strategy) parseTable(body string) *Table {
	t := s.table(body)
	if len(t.Headers) == 0 {
		return nil
	}
	return &t
}

func (s *Strategy) values(text string, labels ...string) ([]*string, error) {
	out := make([]*string, len(labels))
	for i, label := range labels {
		v, err := s.value(text, label)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", label, err)
		}
		out[i] = v
	}
	return out, nil
}
