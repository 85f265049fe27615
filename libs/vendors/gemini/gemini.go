package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"ai-sales-agent/libs/interfaces"
)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultEmbedModel = "text-embedding-004"
)

// Client provides LLM and embedding capabilities through the Gemini API.
type Client struct {
	client     *genai.Client
	model      string
	embedModel string
}

var (
	_ interfaces.LLM      = (*Client)(nil)
	_ interfaces.Embedder = (*Client)(nil)
)

// New creates a Gemini client. apiKey is required; model and embedModel fall
// back to sensible defaults when empty.
func New(ctx context.Context, apiKey, model, embedModel string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	if model == "" {
		model = defaultModel
	}
	if embedModel == "" {
		embedModel = defaultEmbedModel
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("new gemini client: %w", err)
	}
	return &Client{client: c, model: model, embedModel: embedModel}, nil
}

func (g *Client) Generate(ctx context.Context, prompt string, opts ...interfaces.LLMOption) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return resp.Text(), nil
}

func (g *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini embed: empty vector")
	}
	return resp.Embeddings[0].Values, nil
}
