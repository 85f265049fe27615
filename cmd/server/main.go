package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ai-sales-agent/internal/api"
	"ai-sales-agent/internal/call"
	"ai-sales-agent/internal/factory"
	"ai-sales-agent/internal/rag"
	"ai-sales-agent/internal/response"
	"ai-sales-agent/internal/voice"
	"ai-sales-agent/libs/config"
	"ai-sales-agent/libs/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.LoadFromEnv()
	ctx := context.Background()

	// Voice vendors are optional: a missing TTS/STT server degrades to
	// text-only operation instead of refusing to start.
	tts, err := factory.NewTTS(cfg)
	if err != nil {
		logger.Warn("tts disabled", "err", err)
	}
	stt, err := factory.NewSTT(cfg)
	if err != nil {
		logger.Warn("stt disabled", "err", err)
	}
	voiceGateway := voice.NewGateway(tts, stt, cfg.VoiceOutputDir, logger)

	// The retrieval source follows the same rule: a pipeline that cannot be
	// built leaves the source unavailable and the service running on rules.
	ragSource := buildRetrievalSource(ctx, cfg, logger)
	ruleSource := response.NewRuleBased()

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("create data dir", "err", err)
			os.Exit(1)
		}
	}
	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("open call archive", "path", cfg.DatabasePath, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	registry := call.NewRegistry()
	orch := call.NewOrchestrator(registry, call.NewEndDetector(), archiveAdapter{st}, logger)

	srv := api.New(orch, ruleSource, ragSource, voiceGateway, st, cfg.CallTokenSecret, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("sales agent listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "err", err)
	}
}

// buildRetrievalSource wires embedder + LLM + knowledge base into the RAG
// pipeline. Every failure path returns an unavailable source carrying the
// reason the status endpoint reports.
func buildRetrievalSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) response.Source {
	llm, err := factory.NewLLM(ctx, cfg)
	if err != nil {
		logger.Warn("rag disabled", "err", err)
		return response.NewRetrieval(nil, err.Error())
	}
	embedder, err := factory.NewEmbedder(ctx, cfg)
	if err != nil {
		logger.Warn("rag disabled", "err", err)
		return response.NewRetrieval(nil, err.Error())
	}
	pipeline, err := rag.New(ctx, llm, embedder, cfg.KnowledgeFile, logger)
	if err != nil {
		logger.Warn("rag disabled", "err", err)
		return response.NewRetrieval(nil, err.Error())
	}
	logger.Info("rag pipeline ready")
	return response.NewRetrieval(pipeline, "")
}

// archiveAdapter maps call snapshots onto store records.
type archiveAdapter struct {
	st *store.Store
}

func (a archiveAdapter) ArchiveCall(ctx context.Context, snap call.Snapshot) error {
	rec := store.CallRecord{
		ID:           snap.ID,
		CustomerName: snap.CustomerName,
		PhoneNumber:  snap.PhoneNumber,
		StartedAt:    snap.StartedAt,
		EndedAt:      snap.EndedAt,
	}
	for _, t := range snap.Turns {
		rec.Turns = append(rec.Turns, store.TurnRecord{
			Speaker: string(t.Speaker),
			Text:    t.Text,
			At:      t.At,
		})
	}
	return a.st.ArchiveCall(ctx, rec)
}
