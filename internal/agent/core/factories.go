package core

import (
	"context"
	"errors"
	"log"

	"github.com/edvm/autoblogger/config"
	"github.com/edvm/autoblogger/internal/agent/telemetry"
	"github.com/edvm/autoblogger/internal/workflow"
	"github.com/edvm/autoblogger/provider"
	"github.com/edvm/autoblogger/tools/fetch"
	"github.com/edvm/autoblogger/tools/search"
	"github.com/edvm/autoblogger/tools/search/models"
)

// Service owns the shared, expensive collaborators (LLM provider, searcher,
// fetcher) and assembles a fresh agent pipeline per generation request.
type Service struct {
	cfg       *config.Config
	telemetry *telemetry.Telemetry
	provider  provider.Provider
	searcher  search.Searcher
	fetcher   fetch.Fetcher
	pricing   map[string]float64
	logger    *log.Logger
}

// NewService wires the pipeline collaborators from configuration. Every
// failure here is a ConfigurationError: nothing can be generated without a
// working provider and searcher.
func NewService(cfg *config.Config, tele *telemetry.Telemetry) (*Service, error) {
	p, err := provider.New(cfg.LLM)
	if err != nil {
		return nil, &ConfigurationError{Component: "llm provider", Err: err}
	}

	searchProvider := search.Provider(cfg.Search.Provider)
	apiKey := cfg.Search.TavilyAPIKey
	if searchProvider == search.BraveProvider {
		apiKey = cfg.Search.BraveAPIKey
	}
	s, err := search.NewSearcher(searchProvider, apiKey)
	if err != nil {
		return nil, &ConfigurationError{Component: "search provider", Err: err}
	}

	return &Service{
		cfg:       cfg,
		telemetry: tele,
		provider:  p,
		searcher:  s,
		fetcher:   fetch.NewClient(cfg.Search.Timeout, 0),
		pricing:   modelPricing(cfg.LLM),
		logger:    log.New(log.Writer(), "[SERVICE] ", log.LstdFlags),
	}, nil
}

// modelPricing collects per-1K token prices by model tier so the orchestrator
// can attribute dollar cost to each stage.
func modelPricing(cfg config.LLMConfig) map[string]float64 {
	pricing := make(map[string]float64)
	for _, pc := range cfg.Providers {
		for name, m := range pc.Models {
			if m.CostPer1K > 0 {
				pricing[name] = m.CostPer1K
			}
		}
	}
	return pricing
}

// modelFor resolves the model tier for a pipeline stage, falling back to the
// routing fallback and then to any configured model.
func (s *Service) modelFor(stage string) string {
	routing := s.cfg.LLM.Routing
	var model string
	switch stage {
	case "research":
		model = routing.Research
	case "writing":
		model = routing.Writing
	case "editing":
		model = routing.Editing
	}
	if model == "" {
		model = routing.Fallback
	}
	if model == "" {
		if available := s.provider.AvailableModels(); len(available) > 0 {
			model = available[0]
		}
	}
	return model
}

// Generate runs the full pipeline for one topic. opts carries the
// per-request search parameters; callers usually start from
// models.FromAppConfig and override individual fields.
func (s *Service) Generate(ctx context.Context, topic string, opts models.Config) (*workflow.State, error) {
	if s.provider == nil || s.searcher == nil {
		return nil, errors.New("service not initialized")
	}
	opts.Normalize()

	editingEnabled := s.cfg.Pipeline.EditingEnabled

	agents := []Agent{
		NewResearchAgent(s.provider, s.searcher, s.fetcher, opts, s.modelFor("research")),
		NewWritingAgent(s.provider, s.modelFor("writing"), !editingEnabled),
	}
	if editingEnabled {
		agents = append(agents, NewEditorAgent(s.provider, s.modelFor("editing")))
	}

	orch := NewOrchestrator(agents, s.telemetry, s.cfg.Pipeline.StageTimeout, s.pricing)
	state := workflow.New(topic)
	s.logger.Printf("generate request: topic=%q editing=%t", topic, editingEnabled)
	return orch.Run(ctx, state)
}

// SearchDefaults returns the configured baseline search parameters.
func (s *Service) SearchDefaults() models.Config {
	return models.FromAppConfig(s.cfg.Search)
}
