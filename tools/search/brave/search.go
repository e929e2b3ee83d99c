package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/edvm/autoblogger/tools/search/models"
)

const defaultBaseURL = "https://api.search.brave.com/res/v1/web/search"

// Client talks to the Brave web search API.
// https://api.search.brave.com/app/documentation/web-search
type Client struct {
	apiKey  string
	BaseURL string
}

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, BaseURL: defaultBaseURL}
}

// freshness maps the common time range names onto Brave freshness codes.
func freshness(timeRange string) string {
	switch timeRange {
	case "day":
		return "pd"
	case "week":
		return "pw"
	case "month":
		return "pm"
	case "year":
		return "py"
	default:
		return ""
	}
}

func (c *Client) Search(ctx context.Context, query string, cfg models.Config) (models.Response, error) {
	cfg.Normalize()

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprintf("%d", cfg.MaxResults))
	if f := freshness(cfg.TimeRange); f != "" {
		params.Set("freshness", f)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	httpClient := &http.Client{Timeout: cfg.Timeout}
	resp, err := httpClient.Do(req)
	if err != nil {
		return models.Response{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Response{}, fmt.Errorf("brave API returned status: %d", resp.StatusCode)
	}

	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
				PageAge     string `json:"page_age"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.Response{}, fmt.Errorf("failed to parse response: %w", err)
	}

	out := models.Response{Query: query}
	for _, r := range raw.Web.Results {
		if len(out.Results) >= cfg.MaxResults {
			break
		}
		if !domainAllowed(r.URL, cfg.IncludeDomains, cfg.ExcludeDomains) {
			continue
		}
		out.Results = append(out.Results, models.Result{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Description,
			PublishedDate: r.PageAge,
		})
	}
	return out, nil
}

// domainAllowed applies include/exclude domain filters client side since the
// Brave API has no equivalent request parameters.
func domainAllowed(rawURL string, include, exclude []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range exclude {
		if matchDomain(host, d) {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, d := range include {
		if matchDomain(host, d) {
			return true
		}
	}
	return false
}

func matchDomain(host, domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
