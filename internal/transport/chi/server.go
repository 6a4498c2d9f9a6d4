// Package chi exposes the agent over HTTP: the agent card, one POST route
// per entrypoint, and the usual health and metrics endpoints.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/acislab/ichatbio-idigbio-agent/internal/agent"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain"
	"github.com/acislab/ichatbio-idigbio-agent/internal/logger"
	"github.com/acislab/ichatbio-idigbio-agent/internal/metrics"
)

// Server handles the agent's HTTP surface.
type Server struct {
	agent  *agent.Agent
	logger *zap.Logger
}

// NewServer creates an HTTP server over the agent.
func NewServer(a *agent.Agent, log *zap.Logger) *Server {
	return &Server{agent: a, logger: log}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router(apiKeys []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/.well-known/agent.json", s.AgentCard)
	r.Post("/entrypoints/{entrypoint}", s.RunEntrypoint)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// runRequest is the body of POST /entrypoints/{entrypoint}.
type runRequest struct {
	Request string `json:"request"`
}

// runResponse is the transcript of one run.
type runResponse struct {
	Entrypoint string    `json:"entrypoint"`
	Messages   []Message `json:"messages"`
}

// AgentCard handles GET /.well-known/agent.json.
func (s *Server) AgentCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agent.Card())
}

// RunEntrypoint handles POST /entrypoints/{entrypoint}.
func (s *Server) RunEntrypoint(w http.ResponseWriter, r *http.Request) {
	entrypoint := chi.URLParam(r, "entrypoint")

	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Request == "" {
		writeError(w, http.StatusBadRequest, "A request message is required")
		return
	}

	responder := &CollectingResponder{}
	if err := s.agent.Run(r.Context(), responder, entrypoint, req.Request); err != nil {
		if errors.Is(err, domain.ErrUnknownEntrypoint) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		logger.FromContext(r.Context()).Error("entrypoint run failed",
			zap.String("entrypoint", entrypoint),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		Entrypoint: entrypoint,
		Messages:   responder.Messages,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// requestLogger attaches the base logger, tagged with the request id, to the
// request context.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLog := log
			if reqID := chiMiddleware.GetReqID(r.Context()); reqID != "" {
				reqLog = log.With(zap.String("request_id", reqID))
			}
			next.ServeHTTP(w, r.WithContext(logger.ContextWithLogger(r.Context(), reqLog)))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
