package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/equityscope/internal/config"
	"github.com/seenimoa/equityscope/internal/logger"
	"github.com/seenimoa/equityscope/internal/research"
)

// configMu serialises writes to the config file.
var configMu sync.Mutex

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"` // path to the active config file
}

// handleGetConfig returns the running configuration. API keys are excluded
// by their json:"-" tags.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.state()
	writeData(w, ConfigResponse{
		Config:     cfg,
		ConfigFile: config.ConfigFilePath(),
	})
}

// handleUpdateConfig merges a partial configuration into the running one,
// validates it, rebuilds the research service, and persists it to disk.
// Nothing changes when any step fails.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	configMu.Lock()
	defer configMu.Unlock()

	current, _ := s.state()
	next := *current
	mergeConfig(&next, &incoming)
	if err := next.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	svc, err := research.NewFromConfig(&next)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfgPath := config.ConfigFilePath()
	if err := config.SaveToFile(&next, cfgPath); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
		return
	}

	s.mu.Lock()
	s.cfg, s.svc = &next, svc
	s.mu.Unlock()

	// The log format is applied on restart; the level applies now.
	zerolog.SetGlobalLevel(logger.ParseLevel(next.Logging.Level))
	log.Info().
		Str("path", cfgPath).
		Str("provider", next.LLM.Provider).
		Str("model", next.LLM.Model).
		Str("market", svc.MarketSource()).
		Msg("configuration updated")

	writeData(w, ConfigResponse{
		Config:     &next,
		ConfigFile: cfgPath,
	})
}

// handleGetConfigKeys returns the masked status of every API key.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	cfg, _ := s.state()
	writeData(w, config.CheckAPIKeys(cfg))
}

// mergeConfig copies non-zero/non-empty values from src into dst. Secrets
// are never taken from a request body.
func mergeConfig(dst, src *config.Config) {
	// LLM
	if src.LLM.Provider != "" {
		dst.LLM.Provider = src.LLM.Provider
	}
	if src.LLM.BaseURL != "" {
		dst.LLM.BaseURL = src.LLM.BaseURL
	}
	if src.LLM.OllamaURL != "" {
		dst.LLM.OllamaURL = src.LLM.OllamaURL
	}
	if src.LLM.Model != "" {
		dst.LLM.Model = src.LLM.Model
	}
	if src.LLM.Temperature != 0 {
		dst.LLM.Temperature = src.LLM.Temperature
	}
	if src.LLM.MaxTokens != 0 {
		dst.LLM.MaxTokens = src.LLM.MaxTokens
	}
	if src.LLM.TimeoutSec != 0 {
		dst.LLM.TimeoutSec = src.LLM.TimeoutSec
	}
	if src.LLM.AppTitle != "" {
		dst.LLM.AppTitle = src.LLM.AppTitle
	}
	if src.LLM.Referer != "" {
		dst.LLM.Referer = src.LLM.Referer
	}

	// Market data
	if src.Market.Provider != "" {
		dst.Market.Provider = src.Market.Provider
	}
	if src.Market.BaseURL != "" {
		dst.Market.BaseURL = src.Market.BaseURL
	}
	if src.Market.HistoryLimit != 0 {
		dst.Market.HistoryLimit = src.Market.HistoryLimit
	}
	if src.Market.SearchLimit != 0 {
		dst.Market.SearchLimit = src.Market.SearchLimit
	}

	// News. Enabled can only be switched on here; turning the feed off takes
	// an edit of the config file.
	if src.News.Enabled {
		dst.News.Enabled = true
	}
	if src.News.FeedURL != "" {
		dst.News.FeedURL = src.News.FeedURL
	}
	if src.News.Limit != 0 {
		dst.News.Limit = src.News.Limit
	}

	// API
	if src.API.Host != "" {
		dst.API.Host = src.API.Host
	}
	if src.API.Port != 0 {
		dst.API.Port = src.API.Port
	}
	if len(src.API.CORSOrigins) > 0 {
		dst.API.CORSOrigins = src.API.CORSOrigins
	}

	// Logging
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
}
