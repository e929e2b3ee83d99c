package telemetry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/edvm/autoblogger/config"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autoblogger",
		Name:      "runs_total",
		Help:      "Generation runs by terminal status.",
	}, []string{"status"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "autoblogger",
		Name:      "stage_duration_seconds",
		Help:      "Wall clock duration of each pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"agent", "success"})

	llmTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "autoblogger",
		Name:      "llm_tokens_total",
		Help:      "Total LLM tokens consumed by model tier.",
	}, []string{"model"})
)

// Telemetry provides run monitoring and cost tracking.
type Telemetry struct {
	config      config.TelemetryConfig
	logger      *log.Logger
	metrics     *Metrics
	costTracker *CostTracker
	mu          sync.RWMutex
}

// Metrics holds aggregate pipeline performance counters.
type Metrics struct {
	TotalRuns      int64
	SuccessfulRuns int64
	FailedRuns     int64
	AverageRunTime time.Duration

	AgentExecutions   map[string]int64
	AgentSuccessRates map[string]float64
	AgentAverageTimes map[string]time.Duration
}

// CostTracker accumulates LLM spend across models.
type CostTracker struct {
	ModelCosts  map[string]float64
	ModelTokens map[string]int64
	TotalCost   float64
	TotalTokens int64
}

// RunEvent describes one finished generation run.
type RunEvent struct {
	ID         string
	Topic      string
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Success    bool
	Error      string
	AgentsUsed []string
}

// StageEvent describes one finished agent stage within a run.
type StageEvent struct {
	RunID      string
	AgentName  string
	Duration   time.Duration
	Success    bool
	Error      string
	ModelUsed  string
	TokensUsed int64
	Cost       float64
}

// New creates a telemetry instance.
func New(cfg config.TelemetryConfig) *Telemetry {
	return &Telemetry{
		config: cfg,
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		metrics: &Metrics{
			AgentExecutions:   make(map[string]int64),
			AgentSuccessRates: make(map[string]float64),
			AgentAverageTimes: make(map[string]time.Duration),
		},
		costTracker: &CostTracker{
			ModelCosts:  make(map[string]float64),
			ModelTokens: make(map[string]int64),
		},
	}
}

// RecordRunEvent records a completed generation run.
func (t *Telemetry) RecordRunEvent(ctx context.Context, event RunEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.TotalRuns++
	status := "failed"
	if event.Success {
		t.metrics.SuccessfulRuns++
		status = "completed"
	} else {
		t.metrics.FailedRuns++
	}
	runsTotal.WithLabelValues(status).Inc()

	if t.metrics.TotalRuns == 1 {
		t.metrics.AverageRunTime = event.Duration
	} else {
		total := t.metrics.AverageRunTime * time.Duration(t.metrics.TotalRuns-1)
		t.metrics.AverageRunTime = (total + event.Duration) / time.Duration(t.metrics.TotalRuns)
	}

	t.logger.Printf("Run Event: ID=%s, Success=%t, Duration=%v, Agents=%v",
		event.ID, event.Success, event.Duration, event.AgentsUsed)
}

// RecordStageEvent records one agent stage execution.
func (t *Telemetry) RecordStageEvent(ctx context.Context, event StageEvent) {
	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.metrics.AgentExecutions[event.AgentName]++
	executions := t.metrics.AgentExecutions[event.AgentName]

	currentSuccess := t.metrics.AgentSuccessRates[event.AgentName] * float64(executions-1)
	if event.Success {
		currentSuccess += 1.0
	}
	t.metrics.AgentSuccessRates[event.AgentName] = currentSuccess / float64(executions)

	currentAvg := t.metrics.AgentAverageTimes[event.AgentName]
	if executions == 1 {
		t.metrics.AgentAverageTimes[event.AgentName] = event.Duration
	} else {
		total := currentAvg * time.Duration(executions-1)
		t.metrics.AgentAverageTimes[event.AgentName] = (total + event.Duration) / time.Duration(executions)
	}

	stageDuration.WithLabelValues(event.AgentName, successLabel(event.Success)).Observe(event.Duration.Seconds())

	if t.config.CostTracking && event.ModelUsed != "" {
		t.costTracker.TotalCost += event.Cost
		t.costTracker.TotalTokens += event.TokensUsed
		t.costTracker.ModelCosts[event.ModelUsed] += event.Cost
		t.costTracker.ModelTokens[event.ModelUsed] += event.TokensUsed
		llmTokensTotal.WithLabelValues(event.ModelUsed).Add(float64(event.TokensUsed))
	}

	t.logger.Printf("Stage Event: Agent=%s, Success=%t, Duration=%v, Tokens=%d",
		event.AgentName, event.Success, event.Duration, event.TokensUsed)
}

func successLabel(ok bool) string {
	if ok {
		return "true"
	}
	return "false"
}

// CalculateCost converts token usage into dollars using per-1K pricing.
func (t *Telemetry) CalculateCost(tokens int64, costPer1K float64) float64 {
	return float64(tokens) / 1000.0 * costPer1K
}

// GetMetrics returns a copy of the current metrics.
func (t *Telemetry) GetMetrics() Metrics {
	t.mu.RLock()
	defer t.mu.RUnlock()

	metrics := *t.metrics
	metrics.AgentExecutions = make(map[string]int64, len(t.metrics.AgentExecutions))
	metrics.AgentSuccessRates = make(map[string]float64, len(t.metrics.AgentSuccessRates))
	metrics.AgentAverageTimes = make(map[string]time.Duration, len(t.metrics.AgentAverageTimes))
	for k, v := range t.metrics.AgentExecutions {
		metrics.AgentExecutions[k] = v
	}
	for k, v := range t.metrics.AgentSuccessRates {
		metrics.AgentSuccessRates[k] = v
	}
	for k, v := range t.metrics.AgentAverageTimes {
		metrics.AgentAverageTimes[k] = v
	}
	return metrics
}

// GetCostSummary returns a copy of the accumulated cost totals.
func (t *Telemetry) GetCostSummary() CostSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := CostSummary{
		TotalCost:   t.costTracker.TotalCost,
		TotalTokens: t.costTracker.TotalTokens,
		ModelCosts:  make(map[string]float64, len(t.costTracker.ModelCosts)),
		ModelTokens: make(map[string]int64, len(t.costTracker.ModelTokens)),
	}
	for k, v := range t.costTracker.ModelCosts {
		summary.ModelCosts[k] = v
	}
	for k, v := range t.costTracker.ModelTokens {
		summary.ModelTokens[k] = v
	}
	return summary
}

// CostSummary provides a snapshot of accumulated spend.
type CostSummary struct {
	TotalCost   float64
	TotalTokens int64
	ModelCosts  map[string]float64
	ModelTokens map[string]int64
}

// Shutdown logs a final report.
func (t *Telemetry) Shutdown() {
	metrics := t.GetMetrics()
	costs := t.GetCostSummary()
	if metrics.TotalRuns == 0 {
		return
	}
	t.logger.Printf("Final Report: Runs=%d, Success=%d, AvgTime=%v, Cost=$%.4f, Tokens=%d",
		metrics.TotalRuns, metrics.SuccessfulRuns, metrics.AverageRunTime,
		costs.TotalCost, costs.TotalTokens)
}
