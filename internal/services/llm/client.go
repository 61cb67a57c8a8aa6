package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	jsonResponseType      = "json_object"
	defaultHTTPTimeout    = 60 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryAttempts  = 3
)

// Config captures the runtime settings required to talk to the completion API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps an OpenRouter-style chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryMaxAttempts = attempts
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a completion client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimSpace(cfg.BaseURL),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = "https://openrouter.ai/api/v1/chat/completions"
	}
	return client
}

// Configured reports whether the client has an API key and can make requests.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// CompleteJSON issues a JSON-only chat completion request with the supplied
// prompts and returns the raw JSON payload produced by the model.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, true, "llm complete json")
}

// CompleteText issues a free-text chat completion request.
func (c *Client) CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, systemPrompt, userPrompt, false, "llm complete text")
}

func (c *Client) complete(ctx context.Context, systemPrompt, userPrompt string, jsonOnly bool, op string) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" {
		return "", errors.New(op + ": system prompt required")
	}
	if userPrompt == "" {
		return "", errors.New(op + ": user prompt required")
	}
	if !c.Configured() {
		return "", errors.New(op + ": api key required")
	}
	payload := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
	}
	if jsonOnly {
		payload.ResponseFormat = map[string]string{"type": jsonResponseType}
	}
	return c.completionContentWithRetry(ctx, payload, op)
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Client) completionContentWithRetry(ctx context.Context, payload chatCompletionRequest, op string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		content, err := c.sendOnce(ctx, payload, op)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.retryMaxAttempts {
			return "", err
		}
		if sleepErr := c.sleep(ctx, c.delayFor(attempt)); sleepErr != nil {
			return "", sleepErr
		}
	}
	return "", fmt.Errorf("%s: failed after %d attempts: %w", op, c.retryMaxAttempts, lastErr)
}

func (c *Client) sendOnce(ctx context.Context, payload chatCompletionRequest, op string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if completion.Error != nil && completion.Error.Message != "" {
		return "", fmt.Errorf("%s: provider error: %s", op, completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s: empty choices", op)
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: empty content (finish_reason=%q, refusal=%q)",
			op, completion.Choices[0].FinishReason, completion.Choices[0].Message.Refusal)
	}
	return content, nil
}

func retryable(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "empty content") || strings.Contains(err.Error(), "empty choices")
}

func (c *Client) delayFor(attempt int) time.Duration {
	delay := c.retryBaseDelay << (attempt - 1)
	if delay > c.retryMaxDelay {
		delay = c.retryMaxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if c.sleeper != nil {
		c.sleeper(delay)
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
