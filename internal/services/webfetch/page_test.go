package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const samplePage = `<!doctype html>
<html><head>
<title>US CPI rises 0.3% in July | Example News</title>
<meta property="og:title" content="US CPI rises 0.3% in July">
<meta property="article:published_time" content="2026-08-12T12:45:00Z">
<meta name="description" content="Consumer prices rose in July.">
</head><body>
<script>var ignored = true;</script>
<p>US consumer prices rose 0.3% in July, matching expectations.</p>
<p>Economists had forecast a 0.3% increase.</p>
<a href="/markets/us/cpi-article/">full story</a>
<a href="https://other.example.com/x">external</a>
</body></html>`

func TestParsePage(t *testing.T) {
	page := ParsePage(samplePage)

	if !strings.Contains(page.Title, "US CPI rises") {
		t.Fatalf("title: %q", page.Title)
	}
	if page.Meta["og:title"] != "US CPI rises 0.3% in July" {
		t.Fatalf("og:title: %q", page.Meta["og:title"])
	}
	if page.Meta["article:published_time"] != "2026-08-12T12:45:00Z" {
		t.Fatalf("published_time: %q", page.Meta["article:published_time"])
	}
	if len(page.Paragraphs) != 2 {
		t.Fatalf("paragraphs: %v", page.Paragraphs)
	}
	if strings.Contains(strings.Join(page.Paragraphs, " "), "ignored") {
		t.Fatal("script content leaked into paragraphs")
	}
	if len(page.Links) != 2 {
		t.Fatalf("links: %v", page.Links)
	}
}

func TestParsePageEmptyInput(t *testing.T) {
	page := ParsePage("")
	if page.Title != "" || len(page.Paragraphs) != 0 {
		t.Fatalf("expected empty page: %+v", page)
	}
}

func TestExtractFromHTMLCaps(t *testing.T) {
	extract := ExtractFromHTML(samplePage, 20)
	if len([]rune(extract.Text)) > 20 {
		t.Fatalf("text not capped: %q", extract.Text)
	}
}

func TestFetchTextHTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	client := NewHTTPClient(5 * time.Second)
	extract, err := client.FetchText(context.Background(), server.URL, 0)
	if err != nil {
		t.Fatalf("fetch text: %v", err)
	}
	if !strings.Contains(extract.Text, "matching expectations") {
		t.Fatalf("text: %q", extract.Text)
	}
}

func TestFetchHTMLErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewHTTPClient(5 * time.Second)
	if _, err := client.FetchHTML(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for 404")
	}
}
