package rag

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-sales-agent/libs/interfaces"
)

// fakeEmbedder maps text to a fixed two-dimensional vector so retrieval is
// deterministic: anything mentioning price lands on one axis, everything
// else on the other.
type fakeEmbedder struct {
	err error
}

func (e *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if strings.Contains(strings.ToLower(text), "price") {
		return []float32{1, 0}, nil
	}
	return []float32{0, 1}, nil
}

type fakeLLM struct {
	answer     string
	err        error
	lastPrompt string
}

func (l *fakeLLM) Generate(_ context.Context, prompt string, _ ...interfaces.LLMOption) (string, error) {
	l.lastPrompt = prompt
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(new(strings.Builder), nil))
}

func writeKnowledgeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write knowledge file: %v", err)
	}
	return path
}

func TestPipelineAnswerGroundsPromptOnRelevantChunk(t *testing.T) {
	knowledge := "The price is $299 for the full bootcamp.\n\nClasses run evenings and weekends."
	llm := &fakeLLM{answer: "  It costs $299.  "}
	p, err := New(context.Background(), llm, &fakeEmbedder{}, writeKnowledgeFile(t, knowledge), discardLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	answer, err := p.Answer(context.Background(), "what is the price?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if answer != "It costs $299." {
		t.Fatalf("answer not trimmed: %q", answer)
	}
	if !strings.Contains(llm.lastPrompt, "The price is $299") {
		t.Fatalf("prompt missing retrieved chunk:\n%s", llm.lastPrompt)
	}
	if !strings.Contains(llm.lastPrompt, "what is the price?") {
		t.Fatalf("prompt missing question:\n%s", llm.lastPrompt)
	}
}

func TestPipelineFallsBackToBuiltinContent(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	p, err := New(context.Background(), llm, &fakeEmbedder{}, filepath.Join(t.TempDir(), "missing.txt"), discardLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if p.index.Len() == 0 {
		t.Fatal("built-in content produced no chunks")
	}

	if _, err := p.Answer(context.Background(), "anything"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !strings.Contains(llm.lastPrompt, "AI Mastery Bootcamp") {
		t.Fatalf("prompt missing built-in context:\n%s", llm.lastPrompt)
	}
}

func TestPipelineRequiresLLMAndEmbedder(t *testing.T) {
	if _, err := New(context.Background(), nil, &fakeEmbedder{}, "", discardLogger()); err == nil {
		t.Fatal("expected error without llm")
	}
	if _, err := New(context.Background(), &fakeLLM{}, nil, "", discardLogger()); err == nil {
		t.Fatal("expected error without embedder")
	}
}

func TestPipelineBuildFailsWhenEmbeddingFails(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("embedding service down")}
	if _, err := New(context.Background(), &fakeLLM{}, emb, "", discardLogger()); err == nil {
		t.Fatal("expected build error when embedding fails")
	}
}

func TestPipelineAnswerPropagatesGenerateError(t *testing.T) {
	llm := &fakeLLM{err: errors.New("model offline")}
	p, err := New(context.Background(), llm, &fakeEmbedder{}, "", discardLogger())
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if _, err := p.Answer(context.Background(), "price?"); err == nil {
		t.Fatal("expected generate error to propagate")
	}
}
