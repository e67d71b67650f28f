package analysis

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Result is the outcome of one parse.
type Result struct {
	Report *Report
	// Strategy is the name of the strategy that produced Report.
	Strategy string
	// Err is the structured-strategy failure that caused the fallback, or nil.
	Err error
}

// Parser runs the structured strategy and falls back to the legacy one on
// any failure. It holds no mutable state and is safe for concurrent use.
type Parser struct {
	primary  *Strategy
	fallback *Strategy
}

// NewParser returns a parser using the structured and legacy strategies.
func NewParser() *Parser {
	return &Parser{primary: structured, fallback: legacy}
}

var defaultParser = NewParser()

// Parse converts raw model output into a Report. It never fails: the worst
// case is a Report with every section absent.
func Parse(raw string) *Report {
	return defaultParser.Parse(raw)
}

// ParseLegacy parses raw with the legacy heading layout only.
func ParseLegacy(raw string) *Report {
	r, err := run(legacy, raw)
	if err != nil {
		log.Warn().Err(err).Msg("legacy analysis parse failed")
		return &Report{}
	}
	return r
}

// Parse converts raw model output into a Report.
func (p *Parser) Parse(raw string) *Report {
	return p.ParseResult(raw).Report
}

// ParseResult is Parse, also reporting which strategy was used and why the
// structured one was abandoned. Partial structured results are never merged
// into the fallback.
func (p *Parser) ParseResult(raw string) Result {
	r, err := run(p.primary, raw)
	if err == nil {
		return Result{Report: r, Strategy: p.primary.Name()}
	}

	log.Warn().Err(err).
		Int("length", len(raw)).
		Msg("structured analysis parse failed, falling back to legacy parser")

	fb, fbErr := run(p.fallback, raw)
	if fbErr != nil {
		log.Warn().Err(fbErr).Msg("legacy analysis parse failed")
		fb = &Report{}
	}
	return Result{Report: fb, Strategy: p.fallback.Name(), Err: err}
}

func run(s *Strategy, raw string) (r *Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r = nil
			err = fmt.Errorf("%w: %s: %v", ErrParsePanic, s.Name(), rec)
		}
	}()
	return s.parse(raw)
}
