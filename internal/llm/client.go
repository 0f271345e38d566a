package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"inkwell/internal/domain"
)

const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
	requestTimeout     = 60 * time.Second
)

// ClientConfig configures the completion endpoint. Endpoint and APIKey
// are required; APIVersion and Deployment have config-level defaults.
type ClientConfig struct {
	Endpoint   string // base URL, e.g. https://example.openai.azure.com/
	APIKey     string
	APIVersion string
	Deployment string
	Logger     *slog.Logger
}

// Client calls an Azure-OpenAI-style chat completions deployment.
type Client struct {
	endpoint   string
	apiKey     string
	apiVersion string
	deployment string
	prompts    *PromptRegistry
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a completion client with the embedded prompt
// registry.
func NewClient(cfg ClientConfig) (*Client, error) {
	prompts, err := NewPromptRegistry()
	if err != nil {
		return nil, err
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
		deployment: cfg.Deployment,
		prompts:    prompts,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     cfg.Logger,
	}, nil
}

// Configured reports whether endpoint and credential are both set.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.apiKey != ""
}

// Complete renders the prompt for an action and returns the assistant
// text. All downstream failures surface as domain.ErrUpstream.
func (c *Client) Complete(ctx context.Context, action Action, content, language, tone string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: AI completion endpoint is not configured", domain.ErrUpstream)
	}

	userPrompt, err := c.prompts.Render(action, content, language, tone)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(&ChatRequest{
		Messages: []Message{
			{Role: "system", Content: c.prompts.System()},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	url := fmt.Sprintf("%sopenai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("%w: completion API returned %d: %s", domain.ErrUpstream, resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: malformed completion response: %v", domain.ErrUpstream, err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: completion response contained no content", domain.ErrUpstream)
	}

	c.logger.Debug("completion finished",
		"action", action,
		"duration_ms", time.Since(start).Milliseconds(),
		"total_tokens", chatResp.Usage.TotalTokens,
	)

	return chatResp.Choices[0].Message.Content, nil
}
