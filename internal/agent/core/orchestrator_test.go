package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/edvm/autoblogger/config"
	"github.com/edvm/autoblogger/internal/agent/telemetry"
	"github.com/edvm/autoblogger/internal/workflow"
	"github.com/edvm/autoblogger/tools/search/models"
)

// fakeProvider routes canned responses by model tier so each stage can be
// scripted independently.
type fakeProvider struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeProvider) Generate(ctx context.Context, system, user, model string) (string, error) {
	content, _, err := f.GenerateWithTokens(ctx, system, user, model)
	return content, err
}

func (f *fakeProvider) GenerateWithTokens(ctx context.Context, system, user, model string) (string, int64, error) {
	f.calls = append(f.calls, model)
	if err := f.errs[model]; err != nil {
		return "", 0, err
	}
	return f.responses[model], 10, nil
}

func (f *fakeProvider) AvailableModels() []string { return []string{"fast", "quality", "editor"} }

type fakeSearcher struct {
	resp models.Response
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, cfg models.Config) (models.Response, error) {
	return f.resp, f.err
}

func goodSearchResponse() models.Response {
	return models.Response{
		Query:  "q",
		Answer: "engines answer",
		Results: []models.Result{
			{Title: "A", URL: "https://example.com/a", Content: strings.Repeat("alpha ", 60)},
			{Title: "B", URL: "https://example.com/b", Content: strings.Repeat("beta ", 60)},
		},
	}
}

func newPipeline(p *fakeProvider, s *fakeSearcher, editing bool) *Orchestrator {
	agents := []Agent{
		NewResearchAgent(p, s, nil, models.Config{}, "fast"),
		NewWritingAgent(p, "quality", !editing),
	}
	if editing {
		agents = append(agents, NewEditorAgent(p, "editor"))
	}
	return NewOrchestrator(agents, nil, 0, nil)
}

func TestRunHappyPath(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{responses: map[string]string{
		"fast":    `{"summary": "synth", "facts": ["fact one"]}`,
		"quality": "# Article\n\nbody",
	}}
	orch := newPipeline(p, &fakeSearcher{resp: goodSearchResponse()}, false)

	state, err := orch.Run(context.Background(), workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s, error = %q", state.Status, state.ErrorMessage)
	}
	if state.FinalContent != "# Article\n\nbody" {
		t.Fatalf("final content = %q", state.FinalContent)
	}
	if state.DraftContent != state.FinalContent {
		t.Fatalf("draft and final should match when editing is disabled")
	}
	if state.ResearchBrief.Empty() {
		t.Fatalf("research brief missing")
	}
	if len(state.Sources) != 2 {
		t.Fatalf("sources = %v", state.Sources)
	}
	if len(state.Logs) != 2 {
		t.Fatalf("expected one log entry per stage, got %d", len(state.Logs))
	}
	for _, entry := range state.Logs {
		if !entry.Success {
			t.Fatalf("stage %s logged failure: %v", entry.AgentName, entry.Details)
		}
		if entry.DurationSeconds < 0 {
			t.Fatalf("negative duration for %s", entry.AgentName)
		}
	}
}

func TestRunSearchFailureDegradesButCompletes(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{responses: map[string]string{
		"quality": "written from general knowledge",
	}}
	orch := newPipeline(p, &fakeSearcher{err: errors.New("search down")}, false)

	state, err := orch.Run(context.Background(), workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s, want completed despite research failure", state.Status)
	}
	if state.FinalContent == "" {
		t.Fatalf("no final content")
	}
	if len(state.Logs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(state.Logs))
	}
	if state.Logs[0].Success {
		t.Fatalf("research stage should be logged as failed")
	}
	if state.Logs[1].Success != true {
		t.Fatalf("writing stage should succeed")
	}
}

func TestRunWritingFailureIsFatal(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{
		responses: map[string]string{"fast": `{"summary": "synth"}`},
		errs:      map[string]error{"quality": errors.New("model overloaded")},
	}
	orch := newPipeline(p, &fakeSearcher{resp: goodSearchResponse()}, false)

	state, err := orch.Run(context.Background(), workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusFailed {
		t.Fatalf("status = %s, want failed", state.Status)
	}
	if !strings.Contains(state.ErrorMessage, "writing failed") {
		t.Fatalf("error message = %q", state.ErrorMessage)
	}
	if state.FinalContent != "" {
		t.Fatalf("failed run should not carry final content")
	}
}

func TestRunEditorFailurePromotesDraft(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{
		responses: map[string]string{
			"fast":    `{"summary": "synth"}`,
			"quality": "# Draft",
		},
		errs: map[string]error{"editor": errors.New("editor down")},
	}
	orch := newPipeline(p, &fakeSearcher{resp: goodSearchResponse()}, true)

	state, err := orch.Run(context.Background(), workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s, want completed with promoted draft", state.Status)
	}
	if state.FinalContent != "# Draft" {
		t.Fatalf("final content = %q, want unedited draft", state.FinalContent)
	}
	if state.Logs[2].Success {
		t.Fatalf("editor stage should be logged as failed")
	}
}

func TestRunEditorRefinesDraft(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{responses: map[string]string{
		"fast":    `{"summary": "synth"}`,
		"quality": "# Draft",
		"editor":  "# Refined Draft",
	}}
	orch := newPipeline(p, &fakeSearcher{resp: goodSearchResponse()}, true)

	state, err := orch.Run(context.Background(), workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.FinalContent != "# Refined Draft" {
		t.Fatalf("final content = %q", state.FinalContent)
	}
	if state.DraftContent != "# Draft" {
		t.Fatalf("draft overwritten: %q", state.DraftContent)
	}
}

func TestRunEmptyTopicFailsFast(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	orch := newPipeline(p, &fakeSearcher{resp: goodSearchResponse()}, false)

	state, err := orch.Run(context.Background(), workflow.New("[tone:casual]"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusFailed {
		t.Fatalf("status = %s", state.Status)
	}
	if len(state.Logs) != 0 {
		t.Fatalf("no stage should run on empty topic, got %d logs", len(state.Logs))
	}
	if len(p.calls) != 0 {
		t.Fatalf("no LLM call expected, got %v", p.calls)
	}
}

func TestRunCancelledContext(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{}
	orch := newPipeline(p, &fakeSearcher{resp: goodSearchResponse()}, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state, err := orch.Run(ctx, workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusFailed {
		t.Fatalf("status = %s", state.Status)
	}
	if !strings.Contains(state.ErrorMessage, "cancelled") {
		t.Fatalf("error message = %q", state.ErrorMessage)
	}
}

func TestRunRejectsTerminalState(t *testing.T) {
	t.Parallel()
	orch := newPipeline(&fakeProvider{}, &fakeSearcher{}, false)
	state := workflow.New("topic")
	state.Fail("already done")

	if _, err := orch.Run(context.Background(), state); err == nil {
		t.Fatalf("expected misuse error for terminal state")
	}
	if _, err := orch.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected misuse error for nil state")
	}
}

func TestRunAlwaysTerminal(t *testing.T) {
	t.Parallel()
	scenarios := []struct {
		name string
		p    *fakeProvider
		s    *fakeSearcher
	}{
		{"all good", &fakeProvider{responses: map[string]string{"fast": `{"summary":"s"}`, "quality": "body"}}, &fakeSearcher{resp: goodSearchResponse()}},
		{"search down", &fakeProvider{responses: map[string]string{"quality": "body"}}, &fakeSearcher{err: errors.New("down")}},
		{"everything down", &fakeProvider{errs: map[string]error{"fast": errors.New("x"), "quality": errors.New("y")}}, &fakeSearcher{err: errors.New("down")}},
	}
	for i, sc := range scenarios {
		i, sc := i, sc
		t.Run(sc.name, func(t *testing.T) {
			t.Parallel()
			orch := newPipeline(sc.p, sc.s, false)
			state, err := orch.Run(context.Background(), workflow.New(fmt.Sprintf("topic %d", i)))
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if !state.Status.Terminal() {
				t.Fatalf("state not terminal: %s", state.Status)
			}
			if state.CompletedAt.IsZero() {
				t.Fatalf("CompletedAt not stamped")
			}
		})
	}
}

func TestRunAttributesLLMCost(t *testing.T) {
	t.Parallel()
	p := &fakeProvider{responses: map[string]string{
		"fast":    `{"summary": "synth", "facts": ["f"]}`,
		"quality": "# Article\n\nbody",
	}}
	tele := telemetry.New(config.TelemetryConfig{Enabled: true, CostTracking: true})
	agents := []Agent{
		NewResearchAgent(p, &fakeSearcher{resp: goodSearchResponse()}, nil, models.Config{}, "fast"),
		NewWritingAgent(p, "quality", true),
	}
	pricing := map[string]float64{"fast": 0.5, "quality": 2}
	orch := NewOrchestrator(agents, tele, 0, pricing)

	state, err := orch.Run(context.Background(), workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s, error = %q", state.Status, state.ErrorMessage)
	}

	// fakeProvider reports 10 tokens per call, one call per stage
	costs := tele.GetCostSummary()
	if costs.TotalTokens != 20 {
		t.Fatalf("total tokens = %d, want 20", costs.TotalTokens)
	}
	if costs.ModelTokens["fast"] != 10 || costs.ModelTokens["quality"] != 10 {
		t.Fatalf("per-model tokens = %v", costs.ModelTokens)
	}
	want := 10.0/1000*0.5 + 10.0/1000*2
	if math.Abs(costs.TotalCost-want) > 1e-9 {
		t.Fatalf("total cost = %f, want %f", costs.TotalCost, want)
	}
}

func TestResearchFallbackToSnippets(t *testing.T) {
	t.Parallel()
	// research model returns junk JSON; stage still succeeds with a snippet brief
	p := &fakeProvider{responses: map[string]string{
		"fast":    "not json at all",
		"quality": "body",
	}}
	orch := newPipeline(p, &fakeSearcher{resp: goodSearchResponse()}, false)

	state, err := orch.Run(context.Background(), workflow.New("Electric cars"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Status != workflow.StatusCompleted {
		t.Fatalf("status = %s", state.Status)
	}
	if state.ResearchBrief.Empty() {
		t.Fatalf("fallback brief missing")
	}
	if !state.Logs[0].Success {
		t.Fatalf("snippet fallback should still count as research success")
	}
	if state.Logs[0].Details["synthesis"] != "snippet_fallback" {
		t.Fatalf("synthesis detail = %v", state.Logs[0].Details["synthesis"])
	}
}
