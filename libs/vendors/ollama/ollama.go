package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-sales-agent/libs/interfaces"
)

const (
	defaultGenerateEndpoint = "http://localhost:11434/api/generate"
	defaultModel            = "tinyllama"
	defaultEmbedModel       = "nomic-embed-text"
)

// Client talks to the local Ollama HTTP API. It serves both as the LLM used
// by the retrieval pipeline and as the Embedder that vectorizes the
// knowledge base.
type Client struct {
	generateEndpoint string
	embedEndpoint    string
	model            string
	embedModel       string
	client           *http.Client
}

var (
	_ interfaces.LLM      = (*Client)(nil)
	_ interfaces.Embedder = (*Client)(nil)
)

// New returns a client configured for the local Ollama HTTP API.
func New() *Client {
	return NewWithEndpointModel(defaultGenerateEndpoint, defaultModel)
}

// NewWithEndpointModel creates an Ollama client with custom generate endpoint and model.
func NewWithEndpointModel(endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = defaultGenerateEndpoint
	}
	if model == "" {
		model = defaultModel
	}
	embedEndpoint := strings.Replace(endpoint, "/api/generate", "/api/embeddings", 1)
	if embedEndpoint == endpoint {
		embedEndpoint = strings.TrimSuffix(endpoint, "/") + "/api/embeddings"
	}
	return &Client{
		generateEndpoint: endpoint,
		embedEndpoint:    embedEndpoint,
		model:            model,
		embedModel:       defaultEmbedModel,
		client:           &http.Client{Timeout: 30 * time.Second},
	}
}

// WithEmbedModel overrides the model used for the embeddings endpoint.
func (o *Client) WithEmbedModel(model string) *Client {
	if model != "" {
		o.embedModel = model
	}
	return o
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
}

func (o *Client) Generate(ctx context.Context, prompt string, opts ...interfaces.LLMOption) (string, error) {
	reqBody := generateRequest{Model: o.model, Prompt: prompt, Stream: false}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.generateEndpoint, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("new ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("post to ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}

	return out.Response, nil
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (o *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	b, err := json.Marshal(embedRequest{Model: o.embedModel, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.embedEndpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("new embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to ollama embeddings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama embeddings returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embeddings returned empty vector")
	}
	return out.Embedding, nil
}
