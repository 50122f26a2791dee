// Package server wires the pipeline handlers into an HTTP surface. Routing
// here is deliberately thin; all request semantics live in the ops packages.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"epic-coverage/internal/common/config"
	"epic-coverage/internal/common/logger"
	"epic-coverage/internal/common/observability"
	"epic-coverage/internal/llm"
	analyzeepic "epic-coverage/internal/ops/analyze"
	"epic-coverage/internal/ops/suggeststories"
)

// NewRouter builds the full route table with middleware applied.
func NewRouter(cfg *config.Config, client *llm.Client, log logger.Logger, obs *observability.Observability) http.Handler {
	mux := http.NewServeMux()

	analyzeCfg := analyzeepic.DefaultConfig(cfg.Pipeline.IncludeLikelihood)
	analyzeCfg.Temperature = cfg.OpenAI.AnalyzeTemperature

	suggestCfg := suggeststories.DefaultConfig()
	suggestCfg.Temperature = cfg.OpenAI.SuggestTemperature
	suggestCfg.MaxTokens = cfg.OpenAI.SuggestMaxTokens

	mux.Handle("POST /api/analyze-epic", analyzeepic.NewHandler(analyzeCfg, client, log))
	mux.Handle("POST /api/suggest-stories", suggeststories.NewHandler(suggestCfg, client, log))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	return withMiddleware(mux, log, obs)
}

// Server owns the listener lifecycle.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func New(cfg config.ServerConfig, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
		},
		logger: log,
	}
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down", nil)
	return s.httpServer.Shutdown(ctx)
}
