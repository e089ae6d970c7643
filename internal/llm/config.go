// Package llm provides centralized LLM configuration and client abstractions.
// Providers are selected by configuration; callers depend only on the Client interface.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, basic summarization
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: structured writing feedback
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: long documents, rewriting
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGroq is the Groq hosted chat-completions API (OpenAI compatible)
	ProviderGroq Provider = "groq"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOllama is a local or self-hosted Ollama server
	ProviderOllama Provider = "ollama"
)

// Default endpoints for providers reached over plain HTTP.
const (
	DefaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	DefaultOllamaBaseURL = "http://localhost:11434"
)

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	BaseURL  string
}

// DefaultConfig returns the default configuration (Groq, Llama 3.3 70B)
func DefaultConfig() *Config {
	return DefaultGroqConfig()
}

// DefaultGroqConfig returns the default Groq configuration
func DefaultGroqConfig() *Config {
	return &Config{
		Provider: ProviderGroq,
		BaseURL:  DefaultGroqBaseURL,
		Models: map[ModelTier]string{
			TierLite:     "llama-3.1-8b-instant",
			TierStandard: "llama-3.3-70b-versatile",
			TierAdvanced: "llama-3.3-70b-versatile",
		},
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// DefaultOllamaConfig returns the default Ollama configuration
func DefaultOllamaConfig() *Config {
	return &Config{
		Provider: ProviderOllama,
		BaseURL:  DefaultOllamaBaseURL,
		Models: map[ModelTier]string{
			TierLite:     "llama3.2",
			TierStandard: "llama3.1",
			TierAdvanced: "llama3.1",
		},
	}
}

// ConfigFor returns the default configuration of a named provider.
func ConfigFor(name string) (*Config, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case "", ProviderGroq:
		return DefaultGroqConfig(), nil
	case ProviderGemini:
		return DefaultGeminiConfig(), nil
	case ProviderOllama:
		return DefaultOllamaConfig(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", name)
	}
}

// APIKeyEnv names the environment variable holding the provider's API key.
// Ollama needs no key and returns "".
func (p Provider) APIKeyEnv() string {
	switch p {
	case ProviderGroq:
		return "GROQ_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models:   make(map[ModelTier]string),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// WithBaseURL returns a new Config pointing at a different endpoint
func (c *Config) WithBaseURL(baseURL string) *Config {
	newConfig := c.WithModel(TierStandard, c.GetModel(TierStandard))
	newConfig.BaseURL = baseURL
	return newConfig
}
