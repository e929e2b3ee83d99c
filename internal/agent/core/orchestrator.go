package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/edvm/autoblogger/internal/agent/telemetry"
	"github.com/edvm/autoblogger/internal/workflow"
)

// Orchestrator drives the agent pipeline over a single run state. It owns
// every lifecycle transition and appends exactly one audit log entry per
// stage; agents only mutate domain fields.
type Orchestrator struct {
	agents       []Agent
	telemetry    *telemetry.Telemetry
	stageTimeout time.Duration
	// pricing maps model tier names to dollars per 1K tokens
	pricing map[string]float64
	logger  *log.Logger
}

func NewOrchestrator(agents []Agent, tele *telemetry.Telemetry, stageTimeout time.Duration, pricing map[string]float64) *Orchestrator {
	return &Orchestrator{
		agents:       agents,
		telemetry:    tele,
		stageTimeout: stageTimeout,
		pricing:      pricing,
		logger:       log.New(log.Writer(), "[ORCH] ", log.LstdFlags),
	}
}

// Run executes the pipeline. The returned error reports caller misuse only;
// stage failures are encoded in the returned state, which is always terminal.
func (o *Orchestrator) Run(ctx context.Context, state *workflow.State) (*workflow.State, error) {
	if state == nil {
		return nil, errors.New("nil run state")
	}
	if state.Status.Terminal() {
		return nil, fmt.Errorf("run %s already terminal (%s)", state.ID, state.Status)
	}
	if err := state.Begin(); err != nil {
		return nil, err
	}

	o.logger.Printf("run %s started: %q", state.ID, state.Topic)

	if state.CleanTopic == "" {
		state.Fail("topic is empty after directive extraction")
		o.finish(ctx, state)
		return state, nil
	}

	for _, agent := range o.agents {
		if err := ctx.Err(); err != nil {
			state.Fail(fmt.Sprintf("cancelled: %v", err))
			break
		}
		if halt := o.runStage(ctx, agent, state); halt {
			break
		}
	}

	if !state.Status.Terminal() {
		if state.FinalContent == "" {
			state.Fail("pipeline finished without final content")
		} else if err := state.Complete(); err != nil {
			state.Fail(err.Error())
		}
	}

	o.finish(ctx, state)
	return state, nil
}

// runStage executes one agent, appends its single audit log entry, and
// applies the failure policy. It reports whether the pipeline must halt.
func (o *Orchestrator) runStage(ctx context.Context, agent Agent, state *workflow.State) bool {
	stageCtx := ctx
	var cancel context.CancelFunc
	if o.stageTimeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	start := time.Now()
	details, err := agent.Execute(stageCtx, state)
	elapsed := time.Since(start)

	entry := workflow.LogEntry{
		AgentName:       agent.Name(),
		Action:          "execute",
		Timestamp:       start,
		DurationSeconds: elapsed.Seconds(),
		Details:         details,
		Success:         err == nil,
	}
	if err != nil {
		if entry.Details == nil {
			entry.Details = map[string]interface{}{}
		}
		entry.Details["error"] = err.Error()
	}
	state.AppendLog(entry)

	if o.telemetry != nil {
		event := telemetry.StageEvent{
			RunID:     state.ID,
			AgentName: agent.Name(),
			Duration:  elapsed,
			Success:   err == nil,
		}
		if err != nil {
			event.Error = err.Error()
		}
		if details != nil {
			if m, ok := details["model"].(string); ok {
				event.ModelUsed = m
			}
			if tok, ok := details["tokens"].(int64); ok {
				event.TokensUsed = tok
			}
		}
		if event.ModelUsed != "" && event.TokensUsed > 0 {
			event.Cost = o.telemetry.CalculateCost(event.TokensUsed, o.pricing[event.ModelUsed])
		}
		o.telemetry.RecordStageEvent(ctx, event)
	}

	if err == nil {
		o.logger.Printf("run %s: %s completed in %.2fs", state.ID, agent.Name(), elapsed.Seconds())
		return false
	}

	var researchErr *ResearchError
	var editingErr *EditingError
	switch {
	case errors.As(err, &researchErr):
		// survivable: the writer can still work from the topic alone
		o.logger.Printf("run %s: %s degraded, continuing: %v", state.ID, agent.Name(), err)
		return false
	case errors.As(err, &editingErr):
		// survivable: the editor promotes the draft before returning
		o.logger.Printf("run %s: %s absorbed, continuing: %v", state.ID, agent.Name(), err)
		return false
	default:
		o.logger.Printf("run %s: %s failed fatally: %v", state.ID, agent.Name(), err)
		state.Fail(err.Error())
		return true
	}
}

func (o *Orchestrator) finish(ctx context.Context, state *workflow.State) {
	o.logger.Printf("run %s finished: status=%s", state.ID, state.Status)

	if o.telemetry == nil {
		return
	}
	agents := make([]string, 0, len(state.Logs))
	for _, entry := range state.Logs {
		agents = append(agents, entry.AgentName)
	}
	o.telemetry.RecordRunEvent(ctx, telemetry.RunEvent{
		ID:         state.ID,
		Topic:      state.Topic,
		StartTime:  state.StartedAt,
		EndTime:    state.CompletedAt,
		Duration:   state.CompletedAt.Sub(state.StartedAt),
		Success:    state.Status == workflow.StatusCompleted,
		Error:      state.ErrorMessage,
		AgentsUsed: agents,
	})
}
