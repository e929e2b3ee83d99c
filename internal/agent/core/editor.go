package core

import (
	"context"
	"log"
	"strings"

	"github.com/edvm/autoblogger/internal/workflow"
	"github.com/edvm/autoblogger/provider"
)

const editorSystemPrompt = `You are a meticulous editor. You receive a draft blog post in markdown and
return an improved version. Fix grammar, tighten prose, improve flow and
heading structure, and keep the author's voice and all factual claims intact.
Return only the edited markdown, nothing else.`

// EditorAgent refines the draft into final content. Refinement is best
// effort: when the pass fails for any reason the unedited draft is promoted
// to final content so the run still completes.
type EditorAgent struct {
	provider provider.Provider
	model    string
	logger   *log.Logger
}

func NewEditorAgent(p provider.Provider, model string) *EditorAgent {
	return &EditorAgent{
		provider: p,
		model:    model,
		logger:   log.New(log.Writer(), "[EDITOR-AGENT] ", log.LstdFlags),
	}
}

func (a *EditorAgent) Name() string { return "EditorAgent" }

func (a *EditorAgent) Execute(ctx context.Context, state *workflow.State) (map[string]interface{}, error) {
	details := map[string]interface{}{"model": a.model}

	if strings.TrimSpace(state.DraftContent) == "" {
		return details, &EditingError{Reason: "no draft to edit"}
	}

	a.logger.Printf("refining draft for: %s", state.CleanTopic)
	refined, tokens, err := a.provider.GenerateWithTokens(ctx, editorSystemPrompt, state.DraftContent, a.model)
	details["tokens"] = tokens
	refined = strings.TrimSpace(refined)

	if err != nil || refined == "" {
		// promote the draft so the failed pass never loses the article
		if setErr := state.SetFinalContent(state.DraftContent); setErr != nil {
			a.logger.Printf("draft promotion after failed edit: %v", setErr)
		}
		details["promoted_draft"] = true
		if err != nil {
			return details, &EditingError{Reason: "llm refinement failed", Err: err}
		}
		return details, &EditingError{Reason: "llm returned empty refinement"}
	}

	if err := state.SetFinalContent(refined); err != nil {
		return details, &EditingError{Reason: "could not set refined content", Err: err}
	}
	details["word_count"] = len(strings.Fields(refined))
	return details, nil
}
