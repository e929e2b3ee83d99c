package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/edvm/autoblogger/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements the provider interface using OpenAI's chat completions API.
type Client struct {
	cfg        config.LLMProvider
	baseURL    string
	httpClient *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request represents a request to the OpenAI API
type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// response represents a response from the OpenAI API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a new OpenAI client from provider configuration.
func NewClient(cfg config.LLMProvider) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate returns the completion for the given prompts using the named model.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, error) {
	content, _, err := c.GenerateWithTokens(ctx, systemPrompt, userPrompt, model)
	return content, err
}

// GenerateWithTokens returns the completion plus total token usage.
func (c *Client) GenerateWithTokens(ctx context.Context, systemPrompt, userPrompt, model string) (string, int64, error) {
	mc, ok := c.cfg.Models[model]
	apiName := model
	temperature := 0.7
	maxTokens := 4000
	if ok {
		if mc.APIName != "" {
			apiName = mc.APIName
		}
		if mc.Temperature > 0 {
			temperature = mc.Temperature
		}
		if mc.MaxTokens > 0 {
			maxTokens = mc.MaxTokens
		}
	}

	messages := make([]Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, Message{Role: "user", Content: userPrompt})

	body := request{
		Model:       apiName,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var openaiResp response
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if openaiResp.Error != nil {
			return "", 0, fmt.Errorf("API returned status %d: %s", resp.StatusCode, openaiResp.Error.Message)
		}
		return "", 0, fmt.Errorf("API returned status: %d", resp.StatusCode)
	}
	if len(openaiResp.Choices) == 0 {
		return "", 0, fmt.Errorf("no choices in response")
	}
	return strings.TrimSpace(openaiResp.Choices[0].Message.Content), openaiResp.Usage.TotalTokens, nil
}

// AvailableModels returns the configured model names.
func (c *Client) AvailableModels() []string {
	models := make([]string, 0, len(c.cfg.Models))
	for name := range c.cfg.Models {
		models = append(models, name)
	}
	return models
}
