package models

import (
	"time"

	"github.com/edvm/autoblogger/config"
)

// Result is a single web search hit.
type Result struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Response carries everything a search provider returned for one query.
type Response struct {
	Query   string   `json:"query"`
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
	Images  []string `json:"images,omitempty"`
}

// Config holds per-request search parameters. Callers typically start from
// FromAppConfig and override fields for a single request.
type Config struct {
	Depth          string
	Topic          string
	TimeRange      string
	Days           int
	MaxResults     int
	IncludeAnswer  bool
	IncludeRaw     bool
	IncludeImages  bool
	IncludeDomains []string
	ExcludeDomains []string
	Timeout        time.Duration
}

// Normalize fills zero values with usable defaults.
func (c *Config) Normalize() {
	if c.Depth == "" {
		c.Depth = "basic"
	}
	if c.Topic == "" {
		c.Topic = "general"
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.MaxResults > 20 {
		c.MaxResults = 20
	}
	if c.Days <= 0 {
		c.Days = 7
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// FromAppConfig maps the application search section onto request parameters.
func FromAppConfig(sc config.SearchConfig) Config {
	c := Config{
		Depth:          sc.Depth,
		Topic:          sc.Topic,
		TimeRange:      sc.TimeRange,
		Days:           sc.Days,
		MaxResults:     sc.MaxResults,
		IncludeAnswer:  sc.IncludeAnswer,
		IncludeRaw:     sc.IncludeRaw,
		IncludeImages:  sc.IncludeImages,
		IncludeDomains: sc.IncludeDomains,
		ExcludeDomains: sc.ExcludeDomains,
		Timeout:        sc.Timeout,
	}
	c.Normalize()
	return c
}
