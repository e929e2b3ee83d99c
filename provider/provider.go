package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/edvm/autoblogger/config"
	openai_provider "github.com/edvm/autoblogger/provider/openai"
)

// Provider is the interface every LLM implementation must satisfy. The model
// argument selects a tier from the routing configuration; implementations map
// it to their own API model names.
type Provider interface {
	// Generate returns the completion for a system prompt and user prompt.
	Generate(ctx context.Context, systemPrompt, userPrompt, model string) (string, error)

	// GenerateWithTokens additionally reports total token usage.
	GenerateWithTokens(ctx context.Context, systemPrompt, userPrompt, model string) (string, int64, error)

	// AvailableModels returns the configured model names.
	AvailableModels() []string
}

// New creates an LLM provider from configuration. A missing API key or an
// unsupported provider type is a configuration error: the system cannot
// process any request without a working provider.
func New(cfg config.LLMConfig) (Provider, error) {
	if len(cfg.Providers) == 0 {
		return nil, errors.New("no LLM providers configured")
	}
	// sorted so selection does not depend on map iteration order
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pc := cfg.Providers[name]
		switch pc.Type {
		case "openai":
			if pc.APIKey == "" {
				return nil, fmt.Errorf("llm provider %q: api_key not set", name)
			}
			return openai_provider.NewClient(pc), nil
		default:
			return nil, fmt.Errorf("unsupported LLM provider type: %s", pc.Type)
		}
	}
	return nil, errors.New("no valid LLM providers found")
}
