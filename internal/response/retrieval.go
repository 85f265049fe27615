package response

import (
	"context"
	"strings"
)

// RetrievalPipeline is the external retrieval-augmented generation
// collaborator. Latency and correctness are its responsibility; it may
// return an error at any time.
type RetrievalPipeline interface {
	Answer(ctx context.Context, question string) (string, error)
}

const (
	msgNotFound = "I apologize, but I couldn't find specific information about that. Could you please rephrase your question or ask about our AI Mastery Bootcamp features, pricing, or curriculum?"

	msgTechnical = "I'm experiencing some technical difficulties accessing the course information. Please try again or contact us directly at info@aimasterybootcamp.com"

	msgUnavailable = "RAG system is not available. Please switch to Custom mode for responses."

	// thinkClose marks the end of a model "thinking" preamble; everything up
	// to and including it is stripped from answers.
	thinkClose = "</think>"

	// minAnswerLen: anything shorter is treated as no answer.
	minAnswerLen = 6

	// maxSegments/keepSegments bound reply length for voice playback. This
	// is a presentation constraint on the generated text, not retrieval
	// behavior.
	maxSegments  = 4
	keepSegments = 3
)

// Retrieval delegates to a RAG pipeline. A nil pipeline means the source is
// not configured; runtime pipeline failures degrade to fixed messages and
// are never surfaced as errors.
type Retrieval struct {
	pipeline RetrievalPipeline
	reason   string
}

var _ Source = (*Retrieval)(nil)

// NewRetrieval wraps a pipeline. When pipeline is nil, reason explains why
// the source is unavailable (shown by the status endpoint).
func NewRetrieval(pipeline RetrievalPipeline, reason string) *Retrieval {
	return &Retrieval{pipeline: pipeline, reason: reason}
}

func (r *Retrieval) Available() bool { return r.pipeline != nil }

func (r *Retrieval) UnavailableReason() string {
	if r.pipeline != nil {
		return ""
	}
	return r.reason
}

func (r *Retrieval) Respond(ctx context.Context, message string) Reply {
	if r.pipeline == nil {
		return Reply{Text: msgUnavailable, Outcome: OutcomeUnavailable, Reason: r.reason}
	}

	answer, err := r.pipeline.Answer(ctx, message)
	if err != nil {
		return Reply{Text: msgTechnical, Outcome: OutcomeDegraded, Reason: err.Error()}
	}

	answer = stripThinking(answer)
	if len(answer) < minAnswerLen {
		return Reply{Text: msgNotFound, Outcome: OutcomeDegraded, Reason: "empty or too-short answer"}
	}

	return Reply{Text: capSentences(answer), Outcome: OutcomeOK}
}

// stripThinking drops everything up to and including the last closing
// thinking marker.
func stripThinking(answer string) string {
	if idx := strings.LastIndex(answer, thinkClose); idx >= 0 {
		answer = answer[idx+len(thinkClose):]
	}
	return strings.TrimSpace(answer)
}

// capSentences truncates answers that split into more than maxSegments
// sentence-like segments to the first keepSegments, closing with a period.
func capSentences(answer string) string {
	segments := strings.Split(answer, ". ")
	if len(segments) <= maxSegments {
		return answer
	}
	return strings.Join(segments[:keepSegments], ". ") + "."
}
