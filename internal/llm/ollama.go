package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaClient implements Client for an Ollama server's chat endpoint
type OllamaClient struct {
	client *api.Client
	config *Config
}

// NewOllamaClient creates a client for config.BaseURL (default http://localhost:11434)
func NewOllamaClient(config *Config, httpClient *http.Client) (*OllamaClient, error) {
	base := config.BaseURL
	if base == "" {
		base = DefaultOllamaBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaClient{
		client: api.NewClient(baseURL, httpClient),
		config: config,
	}, nil
}

// GenerateContent sends a non-streaming chat request and returns the assistant message
func (c *OllamaClient) GenerateContent(ctx context.Context, req *Request, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	var messages []api.Message
	if req.System != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.System})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.User})

	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    modelName,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var reply strings.Builder
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		reply.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat failed: %w", err)
	}
	return reply.String(), nil
}

// GetModel returns the model name for a tier
func (c *OllamaClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Provider returns ProviderOllama
func (c *OllamaClient) Provider() Provider {
	return ProviderOllama
}

// Close is a no-op
func (c *OllamaClient) Close() error {
	return nil
}
