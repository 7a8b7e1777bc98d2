// Package openai implements domain.TextGenerator on the OpenAI chat
// completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/upkeep-planner-service/internal/domain"
	"github.com/couchcryptid/upkeep-planner-service/internal/observability"
)

const (
	provider       = "openai"
	defaultBaseURL = "https://api.openai.com"
	temperature    = 0.3
)

// ErrEmptyCompletion means the API answered without any choice content.
var ErrEmptyCompletion = errors.New("openai returned no completion")

// Client calls the chat completions endpoint. One attempt per call; the
// assistant falls back to templates on any error.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a chat completions client.
func NewClient(apiKey, model string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// Generate returns the first choice's message content.
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	start := time.Now()
	answer, err := c.complete(ctx, messages)
	c.metrics.UpstreamDuration.WithLabelValues(provider, "chat").Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrEmptyCompletion):
		c.metrics.UpstreamRequests.WithLabelValues(provider, "chat", "empty").Inc()
	case err != nil:
		c.metrics.UpstreamRequests.WithLabelValues(provider, "chat", "error").Inc()
	default:
		c.metrics.UpstreamRequests.WithLabelValues(provider, "chat", "success").Inc()
	}
	return answer, err
}

func (c *Client) complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Temperature: temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai API error: status %d: %s", resp.StatusCode, msg)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}

type completionRequest struct {
	Model       string               `json:"model"`
	Temperature float64              `json:"temperature"`
	Messages    []domain.ChatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
}
