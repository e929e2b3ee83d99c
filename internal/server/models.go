package server

import (
	"encoding/json"
	"time"
)

// HTTPError is the JSON error body returned by the unified error handler.
type HTTPError struct {
	Error string `json:"error"`
}

type AuthSignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// GenerateRequest is the content generation intake. Every field except Topic
// is optional; nil pointers fall back to the configured search defaults.
type GenerateRequest struct {
	Topic string `json:"topic"`

	SearchDepth       *string  `json:"search_depth,omitempty"`
	SearchTopic       *string  `json:"search_topic,omitempty"`
	TimeRange         *string  `json:"time_range,omitempty"`
	Days              *int     `json:"days,omitempty"`
	MaxResults        *int     `json:"max_results,omitempty"`
	IncludeAnswer     *bool    `json:"include_answer,omitempty"`
	IncludeRawContent *bool    `json:"include_raw_content,omitempty"`
	IncludeImages     *bool    `json:"include_images,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
	ExcludeDomains    []string `json:"exclude_domains,omitempty"`
	TimeoutSeconds    *int     `json:"timeout,omitempty"`
}

// PostResponse summarizes one generation run for list endpoints.
type PostResponse struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostDetailResponse carries the full persisted run record.
type PostDetailResponse struct {
	ID     string          `json:"id"`
	Topic  string          `json:"topic"`
	Status string          `json:"status"`
	Record json.RawMessage `json:"record"`
}

type UsageResponse struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}
