package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

const (
	DefaultTimeout  = 15 * time.Second
	MaxCharsDefault = 20000
)

// Result holds the readable content extracted from a fetched page.
type Result struct {
	URL    string `json:"url"`
	Title  string `json:"title"`
	Byline string `json:"byline"`
	Text   string `json:"text"`
}

// Fetcher extracts the main readable text from a web page.
type Fetcher interface {
	Exec(ctx context.Context, link string) (Result, error)
}

// Client fetches pages over plain HTTP and runs readability extraction.
type Client struct {
	Timeout    time.Duration
	MaxChars   int
	UserAgent  string
	httpClient *http.Client
}

func NewClient(timeout time.Duration, maxChars int) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}
	return &Client{
		Timeout:    timeout,
		MaxChars:   maxChars,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Exec(ctx context.Context, link string) (Result, error) {
	if strings.TrimSpace(link) == "" {
		return Result{}, errors.New("invalid url")
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return Result{}, fmt.Errorf("invalid url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch %s: %w", link, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetch %s returned status: %d", link, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return Result{}, fmt.Errorf("readability extraction failed for %s: %w", link, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > c.MaxChars {
		// back up to a rune boundary so the cut never produces invalid UTF-8
		cut := c.MaxChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	return Result{
		URL:    link,
		Title:  strings.TrimSpace(article.Title),
		Byline: strings.TrimSpace(article.Byline),
		Text:   text,
	}, nil
}
