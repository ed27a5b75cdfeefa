// Package openrouter generates article summaries through the OpenRouter
// chat completions API.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/deusflow/newsmin/internal/summary"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	Referer        = "https://github.com/deusflow/newsmin"
	AppTitle       = "News Minimalist"
)

type Client struct {
	client *openai.Client
	model  string
}

var _ summary.Generator = (*Client)(nil)

// NewClient builds an OpenAI-compatible client pointed at baseURL. An empty
// baseURL means DefaultBaseURL.
func NewClient(apiKey, model, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	if model == "" {
		return nil, errors.New("openrouter: model is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	config.HTTPClient = &http.Client{
		Timeout:   60 * time.Second,
		Transport: &headerTransport{base: http.DefaultTransport},
	}

	return &Client{client: openai.NewClientWithConfig(config), model: model}, nil
}

func (c *Client) Name() string { return "openrouter" }

// Summarize asks the model for a short summary of one article. The reply is
// returned as-is apart from surrounding whitespace.
func (c *Client) Summarize(ctx context.Context, title, description string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: summary.Prompt(title, description),
			},
		},
		MaxTokens:   summary.MaxTokens,
		Temperature: summary.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenRouter")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// headerTransport adds the attribution headers OpenRouter uses for app
// rankings.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", Referer)
	req.Header.Set("X-Title", AppTitle)
	return t.base.RoundTrip(req)
}
