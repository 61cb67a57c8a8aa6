package webfetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"macrowatch/internal/services"
	"macrowatch/internal/textutil"
)

const (
	userAgent    = "macrowatch/0.1 (+https://github.com/macrowatch/macrowatch)"
	maxBodyBytes = 8 << 20
)

// Extract is the readable content pulled from a fetched page.
type Extract struct {
	Title string
	Text  string
}

// Client is the generic web-fetch collaborator. FetchHTML returns the raw
// page markup; FetchText returns extracted readable text capped at maxChars.
type Client interface {
	FetchHTML(ctx context.Context, url string) (string, error)
	FetchText(ctx context.Context, url string, maxChars int) (Extract, error)
}

// HTTPClient fetches pages over plain HTTP with a fixed timeout.
type HTTPClient struct {
	client *http.Client
}

// NewHTTPClient builds a fetcher with the given request timeout.
func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// FetchHTML retrieves the raw markup of a page.
func (c *HTTPClient) FetchHTML(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "webfetch", "build request", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "webfetch", "fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternal, "webfetch", "fetch", url+": http "+resp.Status, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "webfetch", "read body", url, err)
	}
	return string(body), nil
}

// FetchText retrieves a page and reduces it to title plus readable paragraph
// text, capped at maxChars characters.
func (c *HTTPClient) FetchText(ctx context.Context, url string, maxChars int) (Extract, error) {
	markup, err := c.FetchHTML(ctx, url)
	if err != nil {
		return Extract{}, err
	}
	return ExtractFromHTML(markup, maxChars), nil
}

// ExtractFromHTML reduces markup to its title and paragraph text.
func ExtractFromHTML(markup string, maxChars int) Extract {
	page := ParsePage(markup)
	text := strings.Join(page.Paragraphs, "\n\n")
	if maxChars > 0 {
		text = textutil.Truncate(text, maxChars)
	}
	return Extract{Title: page.Title, Text: text}
}
