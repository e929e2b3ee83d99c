package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/edvm/autoblogger/internal/helpers"
	"github.com/edvm/autoblogger/internal/workflow"
	"github.com/edvm/autoblogger/provider"
	"github.com/edvm/autoblogger/tools/fetch"
	"github.com/edvm/autoblogger/tools/search"
	"github.com/edvm/autoblogger/tools/search/models"
)

const researchSystemPrompt = `You are a research assistant. You receive web search results about a topic and
produce a research brief for a writer. Respond with JSON only, in this shape:
{"summary": "<2-4 paragraph synthesis of the findings>", "facts": ["<specific fact or statistic>", ...]}
Include only facts supported by the provided results. Do not invent sources.`

// thin results get a full-page fetch before synthesis
const thinContentThreshold = 200

// snippetLimit bounds per-result text in the degraded snippet brief
const snippetLimit = 300

// ResearchAgent gathers web sources for a topic and synthesizes them into a
// research brief on the shared run state.
type ResearchAgent struct {
	provider  provider.Provider
	searcher  search.Searcher
	fetcher   fetch.Fetcher
	searchCfg models.Config
	model     string
	logger    *log.Logger
}

func NewResearchAgent(p provider.Provider, s search.Searcher, f fetch.Fetcher, searchCfg models.Config, model string) *ResearchAgent {
	return &ResearchAgent{
		provider:  p,
		searcher:  s,
		fetcher:   f,
		searchCfg: searchCfg,
		model:     model,
		logger:    log.New(log.Writer(), "[RESEARCH-AGENT] ", log.LstdFlags),
	}
}

func (a *ResearchAgent) Name() string { return "ResearchAgent" }

func (a *ResearchAgent) Execute(ctx context.Context, state *workflow.State) (map[string]interface{}, error) {
	details := map[string]interface{}{
		"query": state.CleanTopic,
		"model": a.model,
	}

	a.logger.Printf("searching for: %s", state.CleanTopic)
	resp, err := a.searcher.Search(ctx, state.CleanTopic, a.searchCfg)
	if err != nil {
		return details, &ResearchError{Reason: "web search failed", Err: err}
	}
	details["result_count"] = len(resp.Results)
	if len(resp.Results) == 0 {
		return details, &ResearchError{Reason: "no search results for topic"}
	}

	urls := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		// canonical form so tracking-param variants of one page dedup
		if canonical, err := helpers.CanonicalURL(r.URL); err == nil {
			urls = append(urls, canonical)
		} else {
			urls = append(urls, r.URL)
		}
	}
	details["sources_added"] = state.AddSources(urls)

	enriched := a.enrich(ctx, resp.Results)
	if enriched > 0 {
		details["pages_fetched"] = enriched
	}

	brief, tokens, synthErr := a.synthesize(ctx, state.CleanTopic, resp)
	details["tokens"] = tokens
	if synthErr != nil {
		// survivable: fall back to raw snippets so the writer still has material
		a.logger.Printf("synthesis failed, using snippet brief: %v", synthErr)
		brief = snippetBrief(resp)
		details["synthesis"] = "snippet_fallback"
	} else {
		details["synthesis"] = "llm"
	}
	brief.Sources = append([]string(nil), state.Sources...)
	state.ResearchBrief = brief
	details["fact_count"] = len(brief.Facts)
	return details, nil
}

// enrich replaces thin search snippets with readable full-page text. Fetch
// failures are ignored; the snippet is still usable.
func (a *ResearchAgent) enrich(ctx context.Context, results []models.Result) int {
	if a.fetcher == nil {
		return 0
	}
	fetched := 0
	for i := range results {
		if len(results[i].Content) >= thinContentThreshold {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		page, err := a.fetcher.Exec(ctx, results[i].URL)
		if err != nil || page.Text == "" {
			continue
		}
		results[i].Content = page.Text
		fetched++
	}
	return fetched
}

func (a *ResearchAgent) synthesize(ctx context.Context, topic string, resp models.Response) (*workflow.Brief, int64, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n\n", topic)
	if resp.Answer != "" {
		fmt.Fprintf(&sb, "Search engine answer: %s\n\n", resp.Answer)
	}
	sb.WriteString("Search results:\n")
	for i, r := range resp.Results {
		fmt.Fprintf(&sb, "\n[%d] %s\nURL: %s\n%s\n", i+1, r.Title, r.URL, r.Content)
	}

	content, tokens, err := a.provider.GenerateWithTokens(ctx, researchSystemPrompt, sb.String(), a.model)
	if err != nil {
		return nil, tokens, err
	}

	brief, err := parseBrief(content)
	if err != nil {
		return nil, tokens, err
	}
	return brief, tokens, nil
}

func parseBrief(content string) (*workflow.Brief, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed struct {
		Summary string   `json:"summary"`
		Facts   []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("brief is not valid JSON: %w", err)
	}
	if parsed.Summary == "" && len(parsed.Facts) == 0 {
		return nil, fmt.Errorf("brief JSON carries no summary or facts")
	}
	return &workflow.Brief{Summary: parsed.Summary, Facts: parsed.Facts}, nil
}

// snippetBrief builds a degraded brief straight from search output.
func snippetBrief(resp models.Response) *workflow.Brief {
	brief := &workflow.Brief{Summary: resp.Answer}
	for _, r := range resp.Results {
		snippet := r.Content
		if len(snippet) > snippetLimit {
			// cut on a rune boundary; snippets feed straight into prompts
			cut := snippetLimit
			for cut > 0 && !utf8.RuneStart(snippet[cut]) {
				cut--
			}
			snippet = snippet[:cut]
		}
		if snippet == "" {
			continue
		}
		brief.Facts = append(brief.Facts, fmt.Sprintf("%s: %s", r.Title, snippet))
	}
	if brief.Summary == "" && len(brief.Facts) > 0 {
		brief.Summary = "Raw search findings, unsynthesized."
	}
	return brief
}
