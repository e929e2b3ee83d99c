package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/edvm/autoblogger/tools/search/models"
)

func TestSearch(t *testing.T) {
	t.Parallel()
	var gotReq request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tvly-test" {
			t.Errorf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"query":  "electric cars",
			"answer": "summary answer",
			"results": []map[string]interface{}{
				{"title": "EV adoption", "url": "https://example.com/ev", "content": "snippet", "raw_content": "full page text", "score": 0.92},
				{"title": "Battery tech", "url": "https://example.com/battery", "content": "snippet two", "score": 0.81},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("tvly-test")
	c.BaseURL = srv.URL

	resp, err := c.Search(context.Background(), "electric cars", models.Config{
		Depth:         "advanced",
		MaxResults:    2,
		IncludeAnswer: true,
		IncludeRaw:    true,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotReq.SearchDepth != "advanced" {
		t.Fatalf("search_depth = %q", gotReq.SearchDepth)
	}
	if gotReq.MaxResults != 2 {
		t.Fatalf("max_results = %d", gotReq.MaxResults)
	}
	if resp.Answer != "summary answer" {
		t.Fatalf("answer = %q", resp.Answer)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	// raw content preferred when requested and present
	if resp.Results[0].Content != "full page text" {
		t.Fatalf("results[0].Content = %q", resp.Results[0].Content)
	}
	if resp.Results[1].Content != "snippet two" {
		t.Fatalf("results[1].Content = %q", resp.Results[1].Content)
	}
}

func TestSearchDaysOnlyForNews(t *testing.T) {
	t.Parallel()
	var gotReq request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"query": "q", "results": []interface{}{}})
	}))
	defer srv.Close()

	c := NewClient("tvly-test")
	c.BaseURL = srv.URL

	if _, err := c.Search(context.Background(), "q", models.Config{Topic: "general", Days: 3}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotReq.Days != 0 {
		t.Fatalf("days sent for general topic: %d", gotReq.Days)
	}

	if _, err := c.Search(context.Background(), "q", models.Config{Topic: "news", Days: 3}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotReq.Days != 3 {
		t.Fatalf("days = %d for news topic, want 3", gotReq.Days)
	}
}

func TestSearchErrorStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-key")
	c.BaseURL = srv.URL
	if _, err := c.Search(context.Background(), "q", models.Config{}); err == nil {
		t.Fatalf("expected error on 401 response")
	}
}
