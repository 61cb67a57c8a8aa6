package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"macrowatch/internal/config"
)

const userAgent = "macrowatch/0.1"

// Result describes one delivery attempt.
type Result struct {
	Target  string `json:"target"`
	Sent    bool   `json:"sent"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

// Service is the outbound delivery channel. Send delivers a report summary;
// when no target is configured the send is recorded as skipped, never as an
// error.
type Service interface {
	Send(ctx context.Context, title, message string) (Result, error)
	Target() string
}

// NewService builds a delivery channel backed by ntfy when configured.
// When no topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notify.Topic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notify.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Target() string { return n.endpoint }

func (n *ntfyService) Send(ctx context.Context, title, message string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return Result{Target: n.endpoint}, fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Title", strings.TrimSpace(title))
	req.Header.Set("Tags", "chart_with_upwards_trend,macrowatch")

	resp, err := n.client.Do(req)
	if err != nil {
		return Result{Target: n.endpoint}, fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Target: n.endpoint}, fmt.Errorf("send notification: http %d", resp.StatusCode)
	}
	return Result{Target: n.endpoint, Sent: true}, nil
}

type noopService struct{}

func (noopService) Target() string { return "" }

func (noopService) Send(context.Context, string, string) (Result, error) {
	return Result{Skipped: true, Reason: "no target configured"}, nil
}
