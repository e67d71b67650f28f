package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/equityscope/internal/analysis"
	"github.com/seenimoa/equityscope/internal/llm"
	"github.com/seenimoa/equityscope/internal/report"
	"github.com/seenimoa/equityscope/internal/research"
	"github.com/seenimoa/equityscope/pkg/utils"
)

const (
	companyTimeout = 30 * time.Second
	// analysisSlack covers the company-data fetch on top of the LLM timeout.
	analysisSlack = 30 * time.Second
	maxBodyBytes  = 4 << 20
)

// ════════════════════════════════════════════════════════════════════
// Request / Response types
// ════════════════════════════════════════════════════════════════════

// ParseRequest is the body for POST /api/v1/parse.
type ParseRequest struct {
	Text   string `json:"text" validate:"required,max=200000"`
	Legacy bool   `json:"legacy,omitempty"`
}

// ParseResponse is the data returned by POST /api/v1/parse.
type ParseResponse struct {
	Report   *analysis.Report     `json:"report"`
	Strategy string               `json:"strategy"`
	Fallback string               `json:"fallback,omitempty"`
	Sections []analysis.SectionID `json:"sections"`
}

// ReportRequest is the body for POST /api/v1/report. At least one of
// Analysis and Company must be set, and carry something to render.
type ReportRequest struct {
	Title    string             `json:"title,omitempty" validate:"max=200"`
	Analysis *research.Analysis `json:"analysis,omitempty" validate:"required_without=Company"`
	Company  *research.Company  `json:"company,omitempty"`
}

// renderable reports whether the request has report sections or company data.
func (req ReportRequest) renderable() bool {
	if req.Analysis != nil && len(req.Analysis.Report.Present()) > 0 {
		return true
	}
	return req.Company != nil && req.Company.Data != nil
}

// ModelsResponse is the data returned by GET /api/v1/models.
type ModelsResponse struct {
	Provider string           `json:"provider"`
	Model    string           `json:"model"`
	Groups   []llm.ModelGroup `json:"groups"`
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeBody decodes and validates a JSON request body into dst. The
// returned message is suitable for a 400 response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return "invalid request body", false
	}
	if err := validate.Struct(dst); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request: " + err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required without %s", fe.Field(), strings.ToLower(fe.Param())))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cfg, svc := s.state()
	now := time.Now()
	writeData(w, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"market_status": utils.MarketStatusAt(now),
		"time_et":       report.ReportTimestamp(now),
		"market_source": svc.MarketSource(),
		"llm_provider":  cfg.LLM.Provider,
		"testing_mode":  cfg.TestingMode,
		"ws_clients":    s.wsHub.ClientCount(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	_, svc := s.state()
	ctx, cancel := context.WithTimeout(r.Context(), companyTimeout)
	defer cancel()

	results, err := svc.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, results)
}

func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	_, svc := s.state()
	ctx, cancel := context.WithTimeout(r.Context(), companyTimeout)
	defer cancel()

	c, err := svc.Company(ctx, chi.URLParam(r, "symbol"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeData(w, c)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req research.Request
	if msg, ok := decodeBody(w, r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	cfg, svc := s.state()
	symbol := utils.NormalizeTicker(req.Symbol)
	ctx, cancel := context.WithTimeout(r.Context(), cfg.LLM.Timeout()+analysisSlack)
	defer cancel()

	s.wsHub.Broadcast(WSMessage{
		Type: EventAnalysisStarted,
		Data: map[string]any{"symbol": symbol, "companyName": req.CompanyName},
	})

	a, err := svc.Analyze(ctx, req)
	if err != nil {
		s.wsHub.Broadcast(WSMessage{
			Type: EventAnalysisFailed,
			Data: map[string]any{"symbol": symbol, "error": err.Error()},
		})
		writeFailure(w, r, err)
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: EventAnalysisComplete,
		Data: map[string]any{
			"id":       a.ID,
			"symbol":   a.Symbol,
			"model":    a.Model,
			"strategy": a.Strategy,
			"sections": a.Report.Present(),
		},
	})
	writeData(w, a)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if msg, ok := decodeBody(w, r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var resp ParseResponse
	if req.Legacy {
		resp.Report = analysis.ParseLegacy(req.Text)
		resp.Strategy = analysis.StrategyLegacy
	} else {
		res := s.parser.ParseResult(req.Text)
		resp.Report, resp.Strategy = res.Report, res.Strategy
		if res.Err != nil {
			resp.Fallback = res.Err.Error()
		}
	}
	resp.Sections = resp.Report.Present()
	writeData(w, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	var req ReportRequest
	if msg, ok := decodeBody(w, r, &req); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if !req.renderable() {
		writeError(w, http.StatusBadRequest, "analysis report or company data is required")
		return
	}

	doc := research.Document(req.Analysis, req.Company)
	doc.Title = req.Title

	var buf bytes.Buffer
	if err := report.Render(&buf, doc, format); err != nil {
		writeFailure(w, r, err)
		return
	}

	name := "research"
	if doc.Symbol != "" {
		name = strings.ToLower(doc.Symbol) + "-research"
	} else if req.Company != nil && req.Company.Overview.Symbol != "" {
		name = strings.ToLower(req.Company.Overview.Symbol) + "-research"
	}
	disposition := "attachment"
	if format == report.FormatHTML {
		disposition = "inline"
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, name+format.Extension()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Msg("failed to write report")
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.state()
	writeData(w, ModelsResponse{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		Groups:   llm.Catalog(),
	})
}
