package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Solar Panel Basics</title></head>
<body>
<article>
<h1>Solar Panel Basics</h1>
<p>Photovoltaic cells convert sunlight directly into electricity. A typical
residential installation uses twenty to thirty panels wired in series.</p>
<p>Inverters transform the direct current output into alternating current
that household appliances can use. Modern inverters reach efficiencies
above ninety seven percent.</p>
</article>
</body>
</html>`

func TestExecExtractsReadableText(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 0)
	res, err := c.Exec(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !strings.Contains(res.Text, "Photovoltaic cells") {
		t.Fatalf("extracted text missing article body: %q", res.Text)
	}
	if res.URL != srv.URL {
		t.Fatalf("result URL = %q", res.URL)
	}
}

func TestExecTruncatesToMaxChars(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 50)
	res, err := c.Exec(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(res.Text) > 50 {
		t.Fatalf("text not truncated: %d chars", len(res.Text))
	}
}

func TestExecTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()
	// article text of 3-byte runes offset by one ASCII byte, so a naive
	// byte cut would land mid-rune
	page := `<!DOCTYPE html><html><head><title>日本</title></head><body><article><p>a` +
		strings.Repeat("日", 200) + `</p></article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	c := NewClient(5*time.Second, 101)
	res, err := c.Exec(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(res.Text) > 101 {
		t.Fatalf("text not truncated: %d bytes", len(res.Text))
	}
	if !utf8.ValidString(res.Text) {
		t.Fatalf("truncated text contains invalid UTF-8: %q", res.Text)
	}
}

func TestExecRejectsEmptyURL(t *testing.T) {
	t.Parallel()
	c := NewClient(time.Second, 100)
	if _, err := c.Exec(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for blank url")
	}
}

func TestExecNonOKStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(time.Second, 100)
	if _, err := c.Exec(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error for 404 response")
	}
}
