// Package config loads, validates and merges the CLI/server configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/writing-optimizer/internal/llm"
	"github.com/jonathan/writing-optimizer/internal/readability"
	"github.com/jonathan/writing-optimizer/internal/schemas"
	"github.com/jonathan/writing-optimizer/internal/tokenize"
	"github.com/jonathan/writing-optimizer/internal/types"
	"github.com/jonathan/writing-optimizer/internal/wordfreq"
)

// Default values applied by Defaults.
const (
	DefaultStyle         = types.StyleGeneral
	DefaultTargetClarity = 70
	DefaultListenAddr    = "127.0.0.1:8501"
	DefaultSecretsFile   = "secrets.toml"
	DefaultLLMTimeout    = 60 * time.Second
	DefaultDocsTimeout   = 30 * time.Second
)

// Duration is a time.Duration written as a string ("45s") in JSON.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d.Duration = v
		return nil
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds")
	}
	d.Duration = time.Duration(secs * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or CLI flags.
type Config struct {
	// Language model
	Provider   string   `json:"provider,omitempty"` // groq, gemini, ollama
	Model      string   `json:"model,omitempty"`    // overrides the provider's standard-tier model
	BaseURL    string   `json:"base_url,omitempty"` // provider endpoint override
	LLMTimeout Duration `json:"llm_timeout,omitempty"`

	// Secrets and credentials
	SecretsFile     string   `json:"secrets_file,omitempty"`     // TOML file holding API keys
	CredentialsFile string   `json:"credentials_file,omitempty"` // OAuth client descriptor
	TokenFile       string   `json:"token_file,omitempty"`       // cached OAuth token
	DocsTimeout     Duration `json:"docs_timeout,omitempty"`

	// Analysis
	Style         string `json:"style,omitempty"`
	TargetClarity *int   `json:"target_clarity,omitempty"`
	TopN          int    `json:"top_n,omitempty"`
	Stopwords     string `json:"stopwords,omitempty"` // english, none
	Syllables     string `json:"syllables,omitempty"` // vowel-groups, letters-per-3
	Language      string `json:"language,omitempty"`  // BCP-47 tag for case folding
	MinWordLength int    `json:"min_word_length,omitempty"`

	// Server
	ListenAddr string `json:"listen_addr,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	target := DefaultTargetClarity
	return Config{
		Provider:        string(llm.ProviderGroq),
		LLMTimeout:      Duration{DefaultLLMTimeout},
		SecretsFile:     DefaultSecretsFile,
		CredentialsFile: "credentials.json",
		TokenFile:       "token.json",
		DocsTimeout:     Duration{DefaultDocsTimeout},
		Style:           string(DefaultStyle),
		TargetClarity:   &target,
		TopN:            wordfreq.DefaultTopN,
		Stopwords:       wordfreq.StopwordsEnglish,
		Syllables:       readability.AlgorithmVowelGroups,
		MinWordLength:   1,
		ListenAddr:      DefaultListenAddr,
	}
}

// LoadConfig loads configuration from a JSON file. Unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := schemas.Validate(schemas.Config, data); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks that configured values are usable. Empty fields are allowed;
// they are filled by MergeWithDefaults.
func (c *Config) Validate() error {
	if c.Provider != "" {
		if _, err := llm.ConfigFor(c.Provider); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.Style != "" {
		if _, err := types.ParseStyle(c.Style); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.TargetClarity != nil {
		if err := types.ValidateClarityTarget(*c.TargetClarity); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.TopN < 0 {
		return fmt.Errorf("config error: 'top_n' must be non-negative")
	}
	if c.MinWordLength < 0 {
		return fmt.Errorf("config error: 'min_word_length' must be non-negative")
	}
	if c.LLMTimeout.Duration < 0 || c.DocsTimeout.Duration < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}
	if c.Stopwords != "" {
		if _, err := wordfreq.Stopwords(c.Stopwords); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.Syllables != "" {
		if _, err := readability.SyllableAlgorithm(c.Syllables); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if c.Language != "" {
		if _, err := tokenize.NewFolder(c.Language); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.BaseURL, defaults.BaseURL)
	mergeString(&result.SecretsFile, defaults.SecretsFile)
	mergeString(&result.CredentialsFile, defaults.CredentialsFile)
	mergeString(&result.TokenFile, defaults.TokenFile)
	mergeString(&result.Style, defaults.Style)
	mergeString(&result.Stopwords, defaults.Stopwords)
	mergeString(&result.Syllables, defaults.Syllables)
	mergeString(&result.Language, defaults.Language)
	mergeString(&result.ListenAddr, defaults.ListenAddr)

	if result.TargetClarity == nil && defaults.TargetClarity != nil {
		target := *defaults.TargetClarity
		result.TargetClarity = &target
	}
	if result.TopN == 0 {
		result.TopN = defaults.TopN
	}
	if result.MinWordLength == 0 {
		result.MinWordLength = defaults.MinWordLength
	}
	if result.LLMTimeout.Duration == 0 {
		result.LLMTimeout = defaults.LLMTimeout
	}
	if result.DocsTimeout.Duration == 0 {
		result.DocsTimeout = defaults.DocsTimeout
	}
	return result
}

// ApplyEnv overrides fields from WRITING_OPTIMIZER_* environment variables.
func (c *Config) ApplyEnv() {
	c.Provider = EnvString("WRITING_OPTIMIZER_PROVIDER", c.Provider)
	c.Model = EnvString("WRITING_OPTIMIZER_MODEL", c.Model)
	c.BaseURL = EnvString("WRITING_OPTIMIZER_BASE_URL", c.BaseURL)
	c.SecretsFile = EnvString("WRITING_OPTIMIZER_SECRETS_FILE", c.SecretsFile)
	c.CredentialsFile = EnvString("WRITING_OPTIMIZER_CREDENTIALS_FILE", c.CredentialsFile)
	c.TokenFile = EnvString("WRITING_OPTIMIZER_TOKEN_FILE", c.TokenFile)
	c.ListenAddr = EnvString("WRITING_OPTIMIZER_LISTEN_ADDR", c.ListenAddr)
	c.Language = EnvString("WRITING_OPTIMIZER_LANGUAGE", c.Language)
	c.LLMTimeout.Duration = EnvDuration("WRITING_OPTIMIZER_LLM_TIMEOUT", c.LLMTimeout.Duration)
	c.DocsTimeout.Duration = EnvDuration("WRITING_OPTIMIZER_DOCS_TIMEOUT", c.DocsTimeout.Duration)
}

// Target returns the target clarity, or the default when unset.
func (c *Config) Target() int {
	if c.TargetClarity == nil {
		return DefaultTargetClarity
	}
	return *c.TargetClarity
}

// LLMConfig builds the provider configuration, applying model and endpoint overrides.
func (c *Config) LLMConfig() (*llm.Config, error) {
	cfg, err := llm.ConfigFor(c.Provider)
	if err != nil {
		return nil, err
	}
	if c.Model != "" {
		cfg = cfg.WithModel(llm.TierStandard, c.Model)
	}
	if c.BaseURL != "" {
		cfg = cfg.WithBaseURL(c.BaseURL)
	}
	return cfg, nil
}

// ReadabilityOptions resolves the named syllable algorithm.
func (c *Config) ReadabilityOptions() (readability.Options, error) {
	counter, err := readability.SyllableAlgorithm(c.Syllables)
	if err != nil {
		return readability.Options{}, err
	}
	return readability.Options{Syllables: counter}, nil
}

// WordFreqOptions resolves the named stopword set and the remaining annotation options.
func (c *Config) WordFreqOptions() (wordfreq.Options, error) {
	sw, err := wordfreq.Stopwords(c.Stopwords)
	if err != nil {
		return wordfreq.Options{}, err
	}
	return wordfreq.Options{
		TopN:      c.TopN,
		Stopwords: sw,
		MinLength: c.MinWordLength,
		Language:  c.Language,
	}, nil
}
