package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/edvm/autoblogger/tools/search/models"
)

const defaultBaseURL = "https://api.tavily.com"

// Client talks to the Tavily search API.
// https://docs.tavily.com/docs/rest-api/api-reference
type Client struct {
	apiKey  string
	BaseURL string
}

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, BaseURL: defaultBaseURL}
}

type request struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth,omitempty"`
	Topic             string   `json:"topic,omitempty"`
	TimeRange         string   `json:"time_range,omitempty"`
	Days              int      `json:"days,omitempty"`
	MaxResults        int      `json:"max_results,omitempty"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent bool     `json:"include_raw_content"`
	IncludeImages     bool     `json:"include_images"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
}

type response struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		RawContent    string  `json:"raw_content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
	Images []string `json:"images"`
}

func (c *Client) Search(ctx context.Context, query string, cfg models.Config) (models.Response, error) {
	cfg.Normalize()

	body := request{
		Query:             query,
		SearchDepth:       cfg.Depth,
		Topic:             cfg.Topic,
		TimeRange:         cfg.TimeRange,
		MaxResults:        cfg.MaxResults,
		IncludeAnswer:     cfg.IncludeAnswer,
		IncludeRawContent: cfg.IncludeRaw,
		IncludeImages:     cfg.IncludeImages,
		IncludeDomains:    cfg.IncludeDomains,
		ExcludeDomains:    cfg.ExcludeDomains,
	}
	// days only applies to the news topic
	if cfg.Topic == "news" {
		body.Days = cfg.Days
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.BaseURL, "/") + "/search"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpClient := &http.Client{Timeout: cfg.Timeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Response{}, fmt.Errorf("tavily API returned status: %d", resp.StatusCode)
	}

	var raw response
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.Response{}, fmt.Errorf("failed to parse response: %w", err)
	}

	out := models.Response{
		Query:  raw.Query,
		Answer: raw.Answer,
		Images: raw.Images,
	}
	for _, r := range raw.Results {
		content := r.Content
		if cfg.IncludeRaw && r.RawContent != "" {
			content = r.RawContent
		}
		out.Results = append(out.Results, models.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}
	return out, nil
}
