package provider

import (
	"strings"
	"testing"

	"github.com/edvm/autoblogger/config"
)

func TestNewSingleProvider(t *testing.T) {
	t.Parallel()
	cfg := config.LLMConfig{Providers: map[string]config.LLMProvider{
		"openai": {Type: "openai", APIKey: "sk-test"},
	}}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p == nil {
		t.Fatalf("nil provider")
	}
}

func TestNewRejectsMissingKey(t *testing.T) {
	t.Parallel()
	cfg := config.LLMConfig{Providers: map[string]config.LLMProvider{
		"openai": {Type: "openai"},
	}}
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestNewRejectsUnsupportedType(t *testing.T) {
	t.Parallel()
	cfg := config.LLMConfig{Providers: map[string]config.LLMProvider{
		"other": {Type: "anthropic", APIKey: "k"},
	}}
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected error for unsupported provider type")
	}
}

// With several configured providers, selection follows sorted name order
// regardless of map iteration, so the same config always yields the same
// provider and the same error.
func TestNewSelectionIsDeterministic(t *testing.T) {
	t.Parallel()
	cfg := config.LLMConfig{Providers: map[string]config.LLMProvider{
		"beta":  {Type: "openai", APIKey: "sk-test"},
		"alpha": {Type: "openai"},
	}}
	for i := 0; i < 50; i++ {
		_, err := New(cfg)
		if err == nil {
			t.Fatalf("expected error from first provider in sorted order")
		}
		if !strings.Contains(err.Error(), `"alpha"`) {
			t.Fatalf("error should name alpha, got: %v", err)
		}
	}
}
