package server

import (
	"testing"
	"time"

	"github.com/edvm/autoblogger/tools/search/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestBuildSearchConfigDefaults(t *testing.T) {
	t.Parallel()
	defaults := models.Config{
		Depth:      "basic",
		Topic:      "general",
		TimeRange:  "month",
		Days:       7,
		MaxResults: 5,
		Timeout:    30 * time.Second,
	}

	got := buildSearchConfig(defaults, GenerateRequest{Topic: "anything"})
	if got.Depth != "basic" || got.Topic != "general" || got.MaxResults != 5 {
		t.Fatalf("defaults not preserved: %+v", got)
	}
}

func TestBuildSearchConfigOverrides(t *testing.T) {
	t.Parallel()
	defaults := models.Config{
		Depth:         "basic",
		Topic:         "general",
		MaxResults:    5,
		IncludeAnswer: true,
		Timeout:       30 * time.Second,
	}
	req := GenerateRequest{
		Topic:             "anything",
		SearchDepth:       strPtr("advanced"),
		SearchTopic:       strPtr("news"),
		TimeRange:         strPtr("week"),
		Days:              intPtr(3),
		MaxResults:        intPtr(10),
		IncludeAnswer:     boolPtr(false),
		IncludeRawContent: boolPtr(true),
		IncludeDomains:    []string{"example.com"},
		TimeoutSeconds:    intPtr(90),
	}

	got := buildSearchConfig(defaults, req)
	if got.Depth != "advanced" {
		t.Fatalf("depth = %q", got.Depth)
	}
	if got.Topic != "news" || got.TimeRange != "week" || got.Days != 3 {
		t.Fatalf("news params = %+v", got)
	}
	if got.MaxResults != 10 {
		t.Fatalf("max results = %d", got.MaxResults)
	}
	if got.IncludeAnswer {
		t.Fatalf("include_answer override lost")
	}
	if !got.IncludeRaw {
		t.Fatalf("include_raw_content override lost")
	}
	if len(got.IncludeDomains) != 1 || got.IncludeDomains[0] != "example.com" {
		t.Fatalf("include domains = %v", got.IncludeDomains)
	}
	if got.Timeout != 90*time.Second {
		t.Fatalf("timeout = %v", got.Timeout)
	}
}

func TestBuildSearchConfigClampsMaxResults(t *testing.T) {
	t.Parallel()
	got := buildSearchConfig(models.Config{}, GenerateRequest{MaxResults: intPtr(500)})
	if got.MaxResults != 20 {
		t.Fatalf("max results not clamped: %d", got.MaxResults)
	}
	got = buildSearchConfig(models.Config{}, GenerateRequest{MaxResults: intPtr(-2)})
	if got.MaxResults != 5 {
		t.Fatalf("negative max results not defaulted: %d", got.MaxResults)
	}
}
