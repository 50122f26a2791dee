// Package llm issues chat-completion requests to the external
// text-generation endpoint with a single fixed retry on transient failure.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"epic-coverage/internal/common/errors"
	"epic-coverage/internal/common/logger"
	"epic-coverage/internal/common/metrics"
	"epic-coverage/internal/common/observability"
)

// RetryPolicy is the named retry policy: at most MaxAttempts total attempts
// with a fixed Backoff between them. No circuit breaker, no exponential
// backoff.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy matches the production setting.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 2,
	Backoff:     600 * time.Millisecond,
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Policy  RetryPolicy
}

// Request carries one prompt pair plus sampling parameters.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int // 0 means no cap
}

type Client struct {
	config  Config
	client  *http.Client
	logger  logger.Logger
	tracing *observability.Tracing
}

func NewClient(config Config, log logger.Logger, tracing *observability.Tracing) *Client {
	if config.Policy.MaxAttempts == 0 {
		config.Policy = DefaultRetryPolicy
	}
	if tracing == nil {
		tracing = observability.NewNoopTracing()
	}
	return &Client{
		config: config,
		client: &http.Client{
			// No client timeout: the surrounding transport owns deadlines.
		},
		logger:  log.With(map[string]interface{}{"component": "llm"}),
		tracing: tracing,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt pair and returns the raw textual content of the
// first choice. A missing credential fails immediately with a configuration
// error and no network call. A 429 or 5xx status is retried exactly once
// after the fixed backoff; any other failure, or a failed retry, becomes an
// upstream error carrying the status and a truncated body excerpt.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.config.APIKey == "" {
		return "", errors.NewMissingCredentialError()
	}

	ctx, span := c.tracing.Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", c.config.Model))

	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature:    req.Temperature,
		MaxTokens:      req.MaxTokens,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	var lastStatus int
	var lastBody string

	for attempt := 1; attempt <= c.config.Policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(c.config.Policy.Backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("call openai: %w", ctx.Err())
			}
		}

		status, respBody, err := c.attempt(ctx, body)
		if err != nil {
			metrics.UpstreamAttempts.WithLabelValues("transport_error").Inc()
			return "", fmt.Errorf("call openai: %w", err)
		}

		if status >= 200 && status < 300 {
			metrics.UpstreamAttempts.WithLabelValues("success").Inc()
			return extractContent(respBody), nil
		}

		lastStatus = status
		lastBody = string(respBody)

		if !errors.IsRetryableStatus(status) {
			break
		}
		metrics.UpstreamAttempts.WithLabelValues("retryable_status").Inc()
		c.logger.Warn("upstream returned retryable status", map[string]interface{}{
			"status":  status,
			"attempt": attempt,
		})
	}

	metrics.UpstreamAttempts.WithLabelValues("failed").Inc()
	return "", errors.NewUpstreamError(lastStatus, lastBody)
}

func (c *Client) attempt(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// extractContent pulls choices[0].message.content. An undecodable or empty
// success body yields an empty string; the validator downstream turns that
// into defaults.
func extractContent(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if len(parsed.Choices) == 0 {
		return ""
	}
	return parsed.Choices[0].Message.Content
}
