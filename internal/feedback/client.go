// Package feedback asks a language model for qualitative writing feedback and
// decodes the reply into a validated AnalysisResult.
package feedback

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/writing-optimizer/internal/llm"
	"github.com/jonathan/writing-optimizer/internal/prompts"
	"github.com/jonathan/writing-optimizer/internal/types"
)

// Sampling and timeout defaults for a feedback call.
const (
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.4
	DefaultMaxTokens   = 512
)

// Client requests feedback for one document at a time. Each call is a single
// attempt that re-sends the full text.
type Client struct {
	llm         llm.Client
	tier        llm.ModelTier
	timeout     time.Duration
	temperature float32
	maxTokens   int
	observe     func(time.Duration, error)
}

// Option configures a Client
type Option func(*Client)

// WithTimeout bounds each provider call. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTier selects the model tier used for feedback
func WithTier(tier llm.ModelTier) Option {
	return func(c *Client) { c.tier = tier }
}

// WithSampling overrides temperature and the output token limit
func WithSampling(temperature float32, maxTokens int) Option {
	return func(c *Client) {
		c.temperature = temperature
		c.maxTokens = maxTokens
	}
}

// WithObserver registers a callback invoked after every provider call with its latency and error.
func WithObserver(fn func(time.Duration, error)) Option {
	return func(c *Client) { c.observe = fn }
}

// New wraps an llm.Client
func New(client llm.Client, opts ...Option) *Client {
	c := &Client{
		llm:         client,
		tier:        llm.TierStandard,
		timeout:     DefaultTimeout,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Analyze returns the model's clarity score, tone and suggestions for text.
// Errors are *types.ValidationError for bad input, *ProviderError when the call
// fails or times out, and *ParseError when the reply does not decode.
func (c *Client) Analyze(ctx context.Context, text string, style types.WritingStyle, targetClarity int) (*types.AnalysisResult, error) {
	if err := types.RequireText("text", text); err != nil {
		return nil, err
	}
	if err := types.ValidateClarityTarget(targetClarity); err != nil {
		return nil, err
	}
	if style == "" {
		style = types.StyleGeneral
	}
	if !style.Valid() {
		return nil, &types.ValidationError{Field: "style", Message: "unknown writing style " + strconv.Quote(string(style))}
	}

	req, err := BuildRequest(text, style, targetClarity)
	if err != nil {
		return nil, err
	}
	req.Temperature = c.temperature
	req.MaxTokens = c.maxTokens

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.llm.GenerateContent(callCtx, req, c.tier)
	elapsed := time.Since(start)
	if c.observe != nil {
		c.observe(elapsed, err)
	}
	slog.Debug("feedback call", "provider", c.llm.Provider(), "model", c.llm.GetModel(c.tier),
		"duration", elapsed, "ok", err == nil)

	if err != nil {
		timedOut := llm.IsTimeout(err) || errors.Is(callCtx.Err(), context.DeadlineExceeded)
		msg := "language model call failed"
		if timedOut {
			msg = "language model call timed out after " + c.timeout.String()
		}
		return nil, &ProviderError{Message: msg, Timeout: timedOut, Cause: err}
	}

	return Decode(raw)
}

// BuildRequest renders the system and user prompts for a document.
func BuildRequest(text string, style types.WritingStyle, targetClarity int) (*llm.Request, error) {
	guidance, err := prompts.StyleGuidance(string(style))
	if err != nil {
		return nil, err
	}
	system, err := prompts.Get(prompts.FeedbackFile, prompts.KeySystem)
	if err != nil {
		return nil, err
	}
	user, err := prompts.Render(prompts.FeedbackFile, prompts.KeyAnalyze, map[string]string{
		"Style":         string(style),
		"StyleGuidance": guidance,
		"TargetClarity": strconv.Itoa(targetClarity),
		"Document":      strings.TrimSpace(text),
	})
	if err != nil {
		return nil, err
	}
	return &llm.Request{System: system, User: user}, nil
}
