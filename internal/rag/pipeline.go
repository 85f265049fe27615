// Package rag builds and queries the retrieval-augmented generation
// pipeline: knowledge-base chunks are embedded into an in-process vector
// index, and answers are generated by an LLM grounded on the most similar
// chunks.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"ai-sales-agent/libs/interfaces"
)

// topK retrieval results per question; kept small for focused context.
const topK = 2

const promptTemplate = `You are a professional AI Sales Agent for the AI Mastery Bootcamp. Provide concise, direct responses that are informative but brief.

RESPONSE GUIDELINES:
- Keep responses under 4 sentences maximum
- Be direct and to the point
- Focus on the most important information
- Include specific details when relevant
- End with a brief call-to-action if appropriate
- Be professional and helpful

COURSE CONTEXT:
%s

Customer Question: %s

Provide a brief, focused response (maximum 3-4 sentences) that directly addresses their question:`

const defaultCourseContent = `AI Mastery Bootcamp - 12-week comprehensive AI training program
Price: $499 (Special offer: $299)
Features: LLMs, Computer Vision, MLOps, Job placement assistance
Hands-on projects, Industry mentorship, Certificate completion
Flexible learning, 24/7 support, Money-back guarantee`

// Pipeline answers customer questions grounded on the course knowledge base.
type Pipeline struct {
	llm      interfaces.LLM
	embedder interfaces.Embedder
	index    *Index
	logger   *slog.Logger
}

// New loads the knowledge base (falling back to the built-in course summary
// when knowledgeFile is absent), chunks it and embeds every chunk. An
// embedding failure at build time is returned: a pipeline that cannot
// vectorize its corpus is unavailable, not degraded.
func New(ctx context.Context, llm interfaces.LLM, embedder interfaces.Embedder, knowledgeFile string, logger *slog.Logger) (*Pipeline, error) {
	if llm == nil || embedder == nil {
		return nil, fmt.Errorf("llm and embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	content := defaultCourseContent
	if knowledgeFile != "" {
		if data, err := os.ReadFile(knowledgeFile); err == nil {
			content = string(data)
			logger.Info("loaded knowledge base", "file", knowledgeFile, "bytes", len(data))
		} else {
			logger.Warn("knowledge file not readable, using built-in content", "file", knowledgeFile, "err", err)
		}
	}

	chunks := SplitText(content, defaultChunkSize, defaultOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("knowledge base is empty")
	}

	index := NewIndex()
	for _, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed knowledge chunk: %w", err)
		}
		index.Add(chunk, vec)
	}
	logger.Info("rag index built", "chunks", index.Len())

	return &Pipeline{llm: llm, embedder: embedder, index: index, logger: logger}, nil
}

// Answer retrieves the most relevant chunks for the question and asks the
// LLM for a grounded reply.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	qvec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	contextChunks := p.index.Search(qvec, topK)
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contextChunks, "\n\n"), question)

	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
