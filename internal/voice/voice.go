// Package voice adapts TTS/STT vendors for the call flow. Speech failures
// never block or fail the turn protocol: speaking falls back to text logging
// and listening reports a typed outcome instead of raising.
package voice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-sales-agent/libs/interfaces"
)

// ListenOutcome classifies the result of a speech-to-text attempt.
type ListenOutcome int

const (
	// Heard: Text holds a real customer utterance.
	Heard ListenOutcome = iota
	// NoResponse: no speech in the audio.
	NoResponse
	// NotUnderstood: speech present but not transcribable.
	NotUnderstood
	// Failed: the recognizer itself errored.
	Failed
)

// ListenResult is the typed replacement for the legacy sentinel strings.
// Only Heard results may be fed into the turn protocol.
type ListenResult struct {
	Text    string
	Outcome ListenOutcome
}

// Sentinel renders the legacy wire strings for response compatibility. The
// transport uses these in JSON payloads; they are never treated as customer
// content.
func (r ListenResult) Sentinel() string {
	switch r.Outcome {
	case Heard:
		return r.Text
	case NoResponse:
		return "No response"
	case NotUnderstood:
		return "Could not understand"
	default:
		return "Error occurred"
	}
}

// Gateway wraps the configured TTS and STT vendors.
type Gateway struct {
	tts    interfaces.TTS
	stt    interfaces.STT
	outDir string
	logger *slog.Logger
}

func NewGateway(tts interfaces.TTS, stt interfaces.STT, outDir string, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if outDir == "" {
		outDir = "out"
	}
	return &Gateway{tts: tts, stt: stt, outDir: outDir, logger: logger}
}

// Speak synthesizes text into a WAV file under the out directory and reports
// whether audio was produced. Any failure degrades to logging the text so
// the turn still completes.
func (g *Gateway) Speak(ctx context.Context, callID, text string) bool {
	if g.tts == nil {
		g.fallback(text)
		return false
	}

	if err := os.MkdirAll(g.outDir, 0755); err != nil {
		g.logger.Warn("create voice out dir", "err", err)
		g.fallback(text)
		return false
	}

	fname := filepath.Join(g.outDir, fmt.Sprintf("agent-%s-%d.wav", callID, time.Now().UnixNano()))
	f, err := os.Create(fname)
	if err != nil {
		g.logger.Warn("create voice file", "err", err)
		g.fallback(text)
		return false
	}
	defer f.Close()

	if err := g.tts.SpeakStream(ctx, text, f); err != nil {
		// Fallback: non-streaming synthesis before giving up on audio.
		audio, err2 := g.tts.Speak(ctx, text)
		if err2 != nil || len(audio) == 0 {
			g.logger.Warn("tts failed", "stream_err", err, "speak_err", err2)
			os.Remove(fname)
			g.fallback(text)
			return false
		}
		if _, err3 := f.Write(audio); err3 != nil {
			g.logger.Warn("write voice file", "err", err3)
			g.fallback(text)
			return false
		}
	}

	g.logger.Info("spoke reply", "call_id", callID, "file", fname)
	return true
}

func (g *Gateway) fallback(text string) {
	g.logger.Info("voice fallback", "text", text)
}

// Listen transcribes customer audio. Outcomes other than Heard must not be
// fed into the turn protocol.
func (g *Gateway) Listen(ctx context.Context, audio []byte) ListenResult {
	if g.stt == nil {
		return ListenResult{Outcome: Failed}
	}
	if len(audio) == 0 {
		return ListenResult{Outcome: NoResponse}
	}

	text, conf, err := g.stt.Recognize(ctx, audio)
	if err != nil {
		g.logger.Warn("stt failed", "err", err)
		return ListenResult{Outcome: Failed}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ListenResult{Outcome: NotUnderstood}
	}
	g.logger.Info("recognized speech", "confidence", conf, "chars", len(text))
	return ListenResult{Text: text, Outcome: Heard}
}
