package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/writing-optimizer/internal/config"
	"github.com/jonathan/writing-optimizer/internal/feedback"
	"github.com/jonathan/writing-optimizer/internal/gdocs"
	"github.com/jonathan/writing-optimizer/internal/llm"
	"github.com/jonathan/writing-optimizer/internal/metrics"
	"github.com/jonathan/writing-optimizer/internal/pipeline"
	"github.com/jonathan/writing-optimizer/internal/session"
)

// Persistent flags shared by every command.
var (
	configPath  string
	logLevel    string
	logFormat   string
	provider    string
	model       string
	baseURL     string
	apiKey      string
	secretsFile string
	credentials string
	tokenFile   string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config.json (values can be overridden by other flags)")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	pf.StringVar(&provider, "provider", "", "Language model provider: groq, gemini, ollama")
	pf.StringVar(&model, "model", "", "Model name override for the provider")
	pf.StringVar(&baseURL, "base-url", "", "Provider endpoint override")
	pf.StringVar(&apiKey, "api-key", "", "Provider API key (defaults to the secrets file, then GROQ_API_KEY/GEMINI_API_KEY)")
	pf.StringVar(&secretsFile, "secrets", "", "TOML secrets file holding provider API keys")
	pf.StringVar(&credentials, "credentials", "", "Google OAuth client file")
	pf.StringVar(&tokenFile, "token", "", "Cached Google OAuth token file")
}

// setupLogging installs the default slog logger on stderr.
func setupLogging(cmd *cobra.Command, _ []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(logFormat) {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case "text", "":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	default:
		return fmt.Errorf("invalid --log-format %q (want text or json)", logFormat)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadConfig merges defaults, the config file, the environment and flags, in
// increasing order of precedence.
func loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	overrides := map[*string]string{
		&cfg.Provider:        provider,
		&cfg.Model:           model,
		&cfg.BaseURL:         baseURL,
		&cfg.SecretsFile:     secretsFile,
		&cfg.CredentialsFile: credentials,
		&cfg.TokenFile:       tokenFile,
	}
	for dst, v := range overrides {
		if v != "" {
			*dst = v
		}
	}

	merged := cfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// newLLMClient resolves the provider configuration and API key.
func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, err
	}

	secrets, err := config.LoadSecrets(cfg.SecretsFile)
	if err != nil {
		return nil, err
	}
	key := config.ResolveAPIKey(llmCfg.Provider, apiKey, secrets)
	if key == "" && llmCfg.Provider.APIKeyEnv() != "" {
		return nil, fmt.Errorf("no API key for %s: pass --api-key, add it to %s or set %s",
			llmCfg.Provider, cfg.SecretsFile, llmCfg.Provider.APIKeyEnv())
	}

	client, err := llm.NewClient(ctx, llmCfg, key)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", llmCfg.Provider, err)
	}
	slog.Debug("language model ready", "provider", client.Provider(), "model", client.GetModel(llm.TierStandard))
	return client, nil
}

// newFeedbackClient wraps the language model with the feedback prompt and decoder.
func newFeedbackClient(client llm.Client, cfg *config.Config, m *metrics.Metrics) *feedback.Client {
	opts := []feedback.Option{feedback.WithTimeout(cfg.LLMTimeout.Duration)}
	if m != nil {
		opts = append(opts, feedback.WithObserver(m.ObserveLLM))
	}
	return feedback.New(client, opts...)
}

// newGateway authenticates against the Docs API. With interactive set, a missing
// token starts the browser consent flow; otherwise it is an AuthError.
func newGateway(ctx context.Context, cfg *config.Config, out io.Writer, interactive bool, m *metrics.Metrics) (*gdocs.Gateway, error) {
	oauthCfg, err := gdocs.LoadOAuthConfig(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	auth := gdocs.SelectAuth(oauthCfg, cfg.TokenFile, out)
	if _, ok := auth.(*gdocs.InteractiveConsentAuth); ok && !interactive {
		return nil, &gdocs.AuthError{Message: fmt.Sprintf("no cached token at %s; run the auth command first", cfg.TokenFile)}
	}

	opts := []gdocs.GatewayOption{gdocs.WithTimeout(cfg.DocsTimeout.Duration)}
	if m != nil {
		opts = append(opts, gdocs.WithObserver(m.ObserveDocs))
	}
	return gdocs.NewGateway(ctx, auth, opts...)
}

// newAssistant wires the analysis pipeline. docs may be nil.
func newAssistant(cfg *config.Config, docs pipeline.DocumentGateway, fb pipeline.FeedbackClient, store session.Store) (*pipeline.Assistant, error) {
	rOpts, err := cfg.ReadabilityOptions()
	if err != nil {
		return nil, err
	}
	wOpts, err := cfg.WordFreqOptions()
	if err != nil {
		return nil, err
	}
	return pipeline.NewAssistant(pipeline.Options{
		Docs:          docs,
		Feedback:      fb,
		Store:         store,
		Readability:   rOpts,
		WordFreq:      wOpts,
		TargetClarity: cfg.Target(),
	})
}

// commandContext bounds a CLI command by an overall deadline.
func commandContext(cmd *cobra.Command, cfg *config.Config) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	budget := cfg.LLMTimeout.Duration + cfg.DocsTimeout.Duration*2 + 30*time.Second
	return context.WithTimeout(ctx, budget)
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
