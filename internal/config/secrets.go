package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jonathan/writing-optimizer/internal/llm"
)

// Secrets holds API keys read from a TOML secrets file such as:
//
//	GROQ_API_KEY = "gsk_..."
//	GEMINI_API_KEY = "..."
type Secrets struct {
	GroqAPIKey   string `toml:"GROQ_API_KEY"`
	GeminiAPIKey string `toml:"GEMINI_API_KEY"`
}

// LoadSecrets decodes a secrets file. A missing file yields empty secrets.
func LoadSecrets(path string) (*Secrets, error) {
	var s Secrets
	if path == "" {
		return &s, nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return &s, nil
	}
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse secrets file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in secrets file %s: %s", path, strings.Join(keys, ", "))
	}
	return &s, nil
}

// For returns the stored key of a provider.
func (s *Secrets) For(provider llm.Provider) string {
	if s == nil {
		return ""
	}
	switch provider {
	case llm.ProviderGroq:
		return s.GroqAPIKey
	case llm.ProviderGemini:
		return s.GeminiAPIKey
	}
	return ""
}

// ResolveAPIKey picks the provider key from, in order, the explicit flag value,
// the secrets file, then the provider's environment variable.
func ResolveAPIKey(provider llm.Provider, flagValue string, secrets *Secrets) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(secrets.For(provider)); v != "" {
		return v
	}
	if env := provider.APIKeyEnv(); env != "" {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}
