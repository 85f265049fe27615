// Package api exposes the call flow over HTTP: request/response mapping
// only, no call semantics of its own.
package api

import (
	"log/slog"
	"net/http"

	"ai-sales-agent/internal/call"
	"ai-sales-agent/internal/response"
	"ai-sales-agent/internal/voice"
	"ai-sales-agent/libs/store"
)

// Server wires the orchestrator, response sources and voice gateway into
// HTTP handlers.
type Server struct {
	orch        *call.Orchestrator
	ruleSource  response.Source
	ragSource   response.Source
	voice       *voice.Gateway
	archive     *store.Store // nil when no archive is configured
	tokenSecret string       // empty disables bearer-token checks
	logger      *slog.Logger
	mux         *http.ServeMux
}

func New(orch *call.Orchestrator, ruleSource, ragSource response.Source, vg *voice.Gateway, archive *store.Store, tokenSecret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		orch:        orch,
		ruleSource:  ruleSource,
		ragSource:   ragSource,
		voice:       vg,
		archive:     archive,
		tokenSecret: tokenSecret,
		logger:      logger,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api", s.handleAPIInfo)
	s.mux.HandleFunc("POST /start-call", s.handleStartCall)
	s.mux.HandleFunc("POST /respond/{id}", s.handleTurn(func() response.Source { return s.ruleSource }))
	s.mux.HandleFunc("POST /respond-rag/{id}", s.handleTurn(func() response.Source { return s.ragSource }))
	s.mux.HandleFunc("POST /respond-audio/{id}", s.handleAudioTurn)
	s.mux.HandleFunc("GET /conversation/{id}", s.handleConversation)
	s.mux.HandleFunc("GET /rag-status", s.handleRAGStatus)
	s.mux.HandleFunc("GET /call-records/{id}", s.handleCallRecord)
	s.mux.HandleFunc("GET /calls/{id}/stream", s.handleStream)
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = Recover(s.logger, h)
	h = AccessLog(s.logger, h)
	return h
}
