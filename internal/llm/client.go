package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"

	"github.com/diffscope/diffscope/internal/config"
)

// Provider identifies the configured LLM backend.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderNone   Provider = "none"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 2000
)

// Client is the multi-provider completion client. A Client built without
// an API key is a valid no-op client whose Enabled reports false; every
// completion then errors, which the analyzer treats as "no result".
type Client struct {
	provider Provider
	openai   *openai.Client
	gemini   *GeminiClient
	throttle *Throttle
	cache    *Cache
	logger   *slog.Logger
	model    string
	enabled  bool
}

// NewClient builds a client from configuration. Never returns a nil
// client on a missing key; only a provider SDK failure is an error.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	logger := slog.Default().With("component", "llm")

	c := &Client{
		provider: ProviderNone,
		logger:   logger,
		throttle: NewThrottle(cfg.AI.RequestsPerMinute),
	}

	if !cfg.AI.Enabled {
		logger.Debug("ai assistance disabled by configuration")
		return c, nil
	}

	switch Provider(cfg.AI.Provider) {
	case ProviderOpenAI:
		if cfg.AI.OpenAIKey == "" {
			logger.Warn("openai provider selected but no API key configured, run 'dscope configure'")
			return c, nil
		}
		c.provider = ProviderOpenAI
		c.openai = openai.NewClient(cfg.AI.OpenAIKey)
		c.model = cfg.AI.OpenAIModel
		if c.model == "" {
			c.model = "gpt-4o-mini"
		}
	case ProviderGemini:
		if cfg.AI.GeminiKey == "" {
			logger.Warn("gemini provider selected but no API key configured, run 'dscope configure'")
			return c, nil
		}
		gc, err := NewGeminiClient(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		c.provider = ProviderGemini
		c.gemini = gc
		c.model = gc.model
	default:
		logger.Debug("no llm provider configured", "provider", cfg.AI.Provider)
		return c, nil
	}

	c.enabled = true
	if cfg.AI.CacheDir != "" {
		cache, err := OpenCache(cfg.AI.CacheDir, cfg.AI.CacheTTL)
		if err != nil {
			logger.Warn("response cache unavailable", "error", err)
		} else {
			c.cache = cache
		}
	}

	logger.Info("llm client initialized", "provider", c.provider, "model", c.model)
	return c, nil
}

// Enabled reports whether a provider is configured and ready.
func (c *Client) Enabled() bool { return c.enabled }

// ProviderName returns the active provider.
func (c *Client) ProviderName() Provider { return c.provider }

// Model returns the configured model name, or "" when disabled.
func (c *Client) Model() string { return c.model }

// Close releases the response cache, if any.
func (c *Client) Close() error {
	if c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// Complete sends a prompt and returns the raw text response.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, false)
}

// CompleteJSON sends a prompt and returns a response constrained to a
// single JSON object where the provider supports it.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, true)
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, wantJSON bool) (string, error) {
	if !c.enabled {
		return "", fmt.Errorf("llm client not enabled")
	}

	if c.cache != nil {
		if resp, ok := c.cache.Get(systemPrompt, userPrompt); ok {
			c.logger.Debug("cache hit", "prompt_length", len(userPrompt))
			return resp, nil
		}
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return "", fmt.Errorf("throttle wait: %w", err)
	}

	var resp string
	var err error
	switch c.provider {
	case ProviderGemini:
		if wantJSON {
			resp, err = c.gemini.CompleteJSON(ctx, systemPrompt, userPrompt)
		} else {
			resp, err = c.gemini.Complete(ctx, systemPrompt, userPrompt)
		}
	case ProviderOpenAI:
		resp, err = c.completeOpenAI(ctx, systemPrompt, userPrompt, wantJSON)
	default:
		return "", fmt.Errorf("no provider configured")
	}
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		c.cache.Put(systemPrompt, userPrompt, resp)
	}
	return resp, nil
}

func (c *Client) completeOpenAI(ctx context.Context, systemPrompt, userPrompt string, wantJSON bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	if wantJSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.openai.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug("openai completion",
		"model", c.model,
		"prompt_length", len(userPrompt),
		"response_length", len(content),
		"tokens_used", resp.Usage.TotalTokens,
	)
	return content, nil
}
