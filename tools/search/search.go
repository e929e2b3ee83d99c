package search

import (
	"context"
	"errors"

	"github.com/edvm/autoblogger/tools/search/brave"
	"github.com/edvm/autoblogger/tools/search/models"
	"github.com/edvm/autoblogger/tools/search/tavily"
)

// Searcher is the interface every web search implementation must satisfy.
type Searcher interface {
	Search(ctx context.Context, query string, cfg models.Config) (models.Response, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
	BraveProvider  Provider = "brave"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

func NewSearcher(provider Provider, apiKey string) (Searcher, error) {
	if apiKey == "" {
		return nil, errors.New("search api key not set")
	}
	switch provider {
	case TavilyProvider:
		return tavily.NewClient(apiKey), nil
	case BraveProvider:
		return brave.NewClient(apiKey), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
