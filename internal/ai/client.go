// Package ai wraps the OpenAI-compatible chat completion API used for
// report analysis and the health chat assistant.
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// Completer is the narrow collaborator interface the services depend on.
// Tests substitute a fake; production uses *Client.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// Client wraps the OpenAI SDK with retry logic and logging
type Client struct {
	client     *openai.Client
	model      string
	logger     *zap.Logger
	maxRetries int
	baseDelay  time.Duration
}

var _ Completer = (*Client)(nil)

// NewClient creates a new generative model client. baseURL is optional and
// overrides the default API endpoint (for gateways or compatible providers).
func NewClient(apiKey, model, baseURL string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" || model == "" {
		return nil, fmt.Errorf("apiKey and model are required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &Client{
		client:     &client,
		model:      model,
		logger:     logger,
		maxRetries: 3,
		baseDelay:  time.Second,
	}, nil
}

// Complete sends a chat completion request with retry logic
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	startTime := time.Now()
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Info("retrying model request",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		result, err := c.complete(ctx, messages)
		if err == nil {
			c.logger.Info("model request completed",
				zap.Duration("processing_time", time.Since(startTime)),
				zap.Int("attempts", attempt+1),
			)
			return result, nil
		}

		lastErr = err
		if !c.isRetryable(err) {
			c.logger.Error("non-retryable model error",
				zap.Error(err),
				zap.Int("attempt", attempt+1),
			)
			break
		}

		c.logger.Warn("model request failed, will retry",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
		)
	}

	c.logger.Error("model request failed after retries",
		zap.Error(lastErr),
		zap.Duration("total_time", time.Since(startTime)),
		zap.Int("max_retries", c.maxRetries),
	)

	return "", fmt.Errorf("model request failed after %d attempts: %w", c.maxRetries, lastErr)
}

// complete performs a single chat completion request
func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	requestStart := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from model")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty content in response")
	}

	c.logger.Info("model token usage",
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("request_time", time.Since(requestStart)),
	)

	return content, nil
}

// isRetryable determines if an error should trigger a retry
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Don't retry authentication errors
	if strings.Contains(errStr, "authentication") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "401") {
		return false
	}

	// Don't retry invalid request errors
	if strings.Contains(errStr, "invalid") || strings.Contains(errStr, "bad request") || strings.Contains(errStr, "400") {
		return false
	}

	// Retry everything else (rate limits, timeouts, network errors)
	return true
}
