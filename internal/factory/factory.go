package factory

import (
	"context"
	"errors"
	"fmt"

	"ai-sales-agent/libs/config"
	"ai-sales-agent/libs/interfaces"
	"ai-sales-agent/libs/vendors/gemini"
	"ai-sales-agent/libs/vendors/ollama"
	"ai-sales-agent/libs/vendors/piper"
	"ai-sales-agent/libs/vendors/whisper"
)

func NewTTS(cfg *config.Config) (interfaces.TTS, error) {
	switch cfg.TTSVendor {
	case "piper":
		if ep := cfg.Vendor("piper", "endpoint"); ep != "" {
			return piper.NewWithEndpoint(ep), nil
		}
		return piper.New(), nil
	default:
		return nil, fmt.Errorf("unknown tts vendor %q", cfg.TTSVendor)
	}
}

func NewSTT(cfg *config.Config) (interfaces.STT, error) {
	switch cfg.STTVendor {
	case "whisper":
		if ep := cfg.Vendor("whisper", "endpoint"); ep != "" {
			return whisper.NewWithEndpoint(ep), nil
		}
		return whisper.New(), nil
	default:
		return nil, fmt.Errorf("unknown stt vendor %q", cfg.STTVendor)
	}
}

func NewLLM(ctx context.Context, cfg *config.Config) (interfaces.LLM, error) {
	switch cfg.LLMVendor {
	case "ollama":
		return newOllama(cfg), nil
	case "gemini":
		return newGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm vendor %q", cfg.LLMVendor)
	}
}

func NewEmbedder(ctx context.Context, cfg *config.Config) (interfaces.Embedder, error) {
	switch cfg.EmbeddingVendor {
	case "ollama":
		return newOllama(cfg), nil
	case "gemini":
		return newGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown embedding vendor %q", cfg.EmbeddingVendor)
	}
}

func newOllama(cfg *config.Config) *ollama.Client {
	c := ollama.NewWithEndpointModel(cfg.Vendor("ollama", "endpoint"), cfg.Vendor("ollama", "model"))
	return c.WithEmbedModel(cfg.Vendor("ollama", "embed_model"))
}

func newGemini(ctx context.Context, cfg *config.Config) (*gemini.Client, error) {
	key := cfg.Vendor("gemini", "api_key")
	if key == "" {
		return nil, errors.New("gemini vendor selected but GEMINI_API_KEY not set")
	}
	return gemini.New(ctx, key, cfg.Vendor("gemini", "model"), cfg.Vendor("gemini", "embed_model"))
}
