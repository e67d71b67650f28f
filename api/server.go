// Package api provides the HTTP server for equityscope.
//
// It exposes company search, the company overview, LLM analysis, report
// export and configuration endpoints, a WebSocket event stream, and the
// embedded dashboard.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/equityscope/internal/analysis"
	"github.com/seenimoa/equityscope/internal/config"
	"github.com/seenimoa/equityscope/internal/research"
	"github.com/seenimoa/equityscope/web"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	parser  *analysis.Parser
	wsHub   *WSHub
	serveUI bool // when true, serve the embedded dashboard at /
	version string

	// mu guards cfg and svc, both replaced by PUT /api/v1/config.
	mu  sync.RWMutex
	cfg *config.Config
	svc *research.Service
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	svc, err := research.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("research service setup failed: %w", err)
	}
	return newServer(cfg, svc), nil
}

func newServer(cfg *config.Config, svc *research.Service) *Server {
	srv := &Server{
		cfg:     cfg,
		svc:     svc,
		parser:  analysis.NewParser(),
		wsHub:   NewWSHub(),
		serveUI: true,
		version: "dev",
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded dashboard is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// SetVersion sets the version reported by /health.
func (s *Server) SetVersion(v string) {
	if v != "" {
		s.version = v
	}
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// state returns the current config and service.
func (s *Server) state() (*config.Config, *research.Service) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, s.svc
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	cfg, _ := s.state()
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLM.Timeout() + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Bool("ui", s.serveUI).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Company lookup
		r.Get("/search", s.handleSearch)
		r.Get("/company/{symbol}", s.handleCompany)

		// Analysis
		r.Post("/analysis", s.handleAnalysis)
		r.Post("/parse", s.handleParse)
		r.Post("/report", s.handleReport)
		r.Get("/models", s.handleModels)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	if s.serveUI {
		assets, err := web.Assets()
		if err != nil {
			log.Error().Err(err).Msg("embedded dashboard unavailable")
		} else {
			mountUI(r, assets)
		}
	}

	return r
}

// mountUI serves the embedded dashboard. Unknown paths outside /api fall
// back to index.html.
func mountUI(r chi.Router, assets fs.FS) {
	fileServer := http.FileServerFS(assets)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := assets.Open(rPath)
		if err != nil {
			serveIndexHTML(w, assets)
			return
		}
		f.Close()

		if strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		}
		fileServer.ServeHTTP(w, r)
	})
}

func serveIndexHTML(w http.ResponseWriter, assets fs.FS) {
	data, err := fs.ReadFile(assets, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ════════════════════════════════════════════════════════════════════
// Response envelope
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: v})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeFailure reports err with the status statusFor picks.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Int("status", status).
		Msg("request failed")
	writeError(w, status, err.Error())
}
