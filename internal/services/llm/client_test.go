package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(url string, attempts int) *Client {
	return NewClient(
		Config{APIKey: "test-key", BaseURL: url, Model: "test-model"},
		WithRetryMaxAttempts(attempts),
		WithRetryBackoff(time.Millisecond, time.Millisecond),
		WithSleeper(func(time.Duration) {}),
	)
}

func TestCompleteJSONSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: %q", got)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	content, err := client.CompleteJSON(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != `{"ok":true}` {
		t.Fatalf("content: %q", content)
	}
}

func TestCompleteRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"done"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5)
	content, err := client.CompleteText(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != "done" || calls.Load() != 3 {
		t.Fatalf("content=%q calls=%d", content, calls.Load())
	}
}

func TestCompleteDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 5)
	if _, err := client.CompleteText(context.Background(), "system", "user"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("http 401 must not be retried, got %d calls", calls.Load())
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{})
	if client.Configured() {
		t.Fatal("client without key must not report configured")
	}
	if _, err := client.CompleteJSON(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDecodeJSONToleratesFences(t *testing.T) {
	var parsed struct {
		Headline string `json:"headline"`
	}
	content := "```json\n{\"headline\":\"CPI in line\"}\n```"
	if err := DecodeJSON(content, &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if parsed.Headline != "CPI in line" {
		t.Fatalf("parsed: %+v", parsed)
	}
}

func TestDecodeJSONRejectsProseOnly(t *testing.T) {
	var target map[string]any
	if err := DecodeJSON("I cannot produce JSON", &target); err == nil {
		t.Fatal("expected decode error")
	}
}
