// Package api exposes the summary generator over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gosummary/internal/model"
	"github.com/hyperifyio/gosummary/internal/summary"
)

// maxRequestBytes bounds the JSON request body.
const maxRequestBytes = 1 << 20

// Generator is the capability the server needs from the orchestrator.
type Generator interface {
	Generate(ctx context.Context, req summary.Request) (model.SummaryResult, error)
}

// Info describes the running configuration for /health.
type Info struct {
	AppName         string
	Version         string
	LLMProvider     string
	LLMModel        string
	LLMConfigured   bool
	ProviderEnabled bool
}

type Server struct {
	generator Generator
	info      Info
	now       func() time.Time
}

func NewServer(generator Generator, info Info) *Server {
	if info.AppName == "" {
		info.AppName = "gosummary"
	}
	return &Server{generator: generator, info: info, now: time.Now}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)
	r.Post("/api/generate-summary", s.generateSummary)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("http_request_id", middleware.GetReqID(r.Context())).
			Dur("took", time.Since(started)).
			Msg("http request")
	})
}

type healthResponse struct {
	Status                string `json:"status"`
	AppName               string `json:"app_name"`
	Version               string `json:"version"`
	ContentProviderActive bool   `json:"exa_api_connected"`
	LLMConfigured         bool   `json:"anthropic_api_connected"`
	LLMProvider           string `json:"llm_provider,omitempty"`
	LLMModel              string `json:"llm_model,omitempty"`
	Timestamp             string `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.info.LLMConfigured {
		status = "degraded"
	}
	writeJSONStatus(w, healthResponse{
		Status:                status,
		AppName:               s.info.AppName,
		Version:               s.info.Version,
		ContentProviderActive: s.info.ProviderEnabled,
		LLMConfigured:         s.info.LLMConfigured,
		LLMProvider:           s.info.LLMProvider,
		LLMModel:              s.info.LLMModel,
		Timestamp:             s.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

func (s *Server) generateSummary(w http.ResponseWriter, r *http.Request) {
	var req summary.Request
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	res, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		log.Warn().Err(err).Int("status", status).Msg("summary generation failed")
		writeError(w, status, http.StatusText(status), err.Error())
		return
	}
	writeJSONStatus(w, res, http.StatusOK)
}

// statusFor maps orchestrator errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, summary.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, summary.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, summary.ErrExhausted):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error      string `json:"error"`
	Detail     string `json:"detail,omitempty"`
	StatusCode int    `json:"status_code"`
}

func writeError(w http.ResponseWriter, status int, msg, detail string) {
	writeJSONStatus(w, errorResponse{Error: msg, Detail: detail, StatusCode: status}, status)
}

func writeJSONStatus(w http.ResponseWriter, value any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(value)
}
