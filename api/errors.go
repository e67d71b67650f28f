package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/seenimoa/equityscope/internal/llm"
	"github.com/seenimoa/equityscope/internal/providers/fmp"
	"github.com/seenimoa/equityscope/internal/report"
	"github.com/seenimoa/equityscope/internal/research"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var httpErr *fmp.HTTPError
	switch {
	case errors.Is(err, research.ErrEmptyQuery),
		errors.Is(err, research.ErrNoSymbol),
		errors.Is(err, report.ErrUnknownFormat),
		errors.Is(err, report.ErrEmptyDocument),
		errors.Is(err, llm.ErrUnknownProvider),
		errors.Is(err, llm.ErrInvalidModel),
		errors.Is(err, llm.ErrContextLength):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrNoAPIKey),
		errors.Is(err, fmp.ErrNoAPIKey):
		return http.StatusUnauthorized
	case errors.Is(err, fmp.ErrSymbolNotFound):
		return http.StatusNotFound
	case errors.Is(err, llm.ErrRateLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrProviderDown),
		errors.Is(err, llm.ErrEmptyCompletion),
		errors.Is(err, fmp.ErrAPI),
		errors.As(err, &httpErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
