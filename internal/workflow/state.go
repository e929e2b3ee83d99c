package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status represents the overall status of a generation run.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is final. Terminal states are sticky:
// a run never leaves completed or failed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// LogEntry records one agent action in the run's audit trail.
type LogEntry struct {
	AgentName       string                 `json:"agent_name"`
	Action          string                 `json:"action"`
	Timestamp       time.Time              `json:"timestamp"`
	DurationSeconds float64                `json:"duration_seconds"`
	Details         map[string]interface{} `json:"details,omitempty"`
	Success         bool                   `json:"success"`
}

// Brief holds the research stage output: a synthesized summary, extracted
// facts and the citation URLs they came from.
type Brief struct {
	Summary string   `json:"summary"`
	Facts   []string `json:"facts,omitempty"`
	Sources []string `json:"sources,omitempty"`
}

// Empty reports whether the brief carries no usable research.
func (b *Brief) Empty() bool {
	return b == nil || (b.Summary == "" && len(b.Facts) == 0)
}

// State is the aggregate root for one generation run. It is created by the
// orchestrator, mutated in place by each agent in sequence, and finalized by
// the orchestrator. One instance per request; never shared across runs.
type State struct {
	ID            string
	Topic         string
	CleanTopic    string
	Directives    map[string]string
	ResearchBrief *Brief
	Sources       []string
	DraftContent  string
	FinalContent  string
	Status        Status
	ErrorMessage  string
	Logs          []LogEntry
	StartedAt     time.Time
	CompletedAt   time.Time

	seen map[string]struct{}
}

// New creates a pending run state for the given raw topic. Directives are
// parsed immediately so CleanTopic is always derived from Topic.
func New(topic string) *State {
	clean, directives := ParseDirectives(topic)
	return &State{
		ID:         uuid.New().String(),
		Topic:      topic,
		CleanTopic: clean,
		Directives: directives,
		Status:     StatusPending,
		seen:       make(map[string]struct{}),
	}
}

// AddSource appends a citation URL, preserving first-discovery order and
// dropping duplicates. Reports whether the URL was new.
func (s *State) AddSource(url string) bool {
	if url == "" {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{}, len(s.Sources))
		for _, u := range s.Sources {
			s.seen[u] = struct{}{}
		}
	}
	if _, ok := s.seen[url]; ok {
		return false
	}
	s.seen[url] = struct{}{}
	s.Sources = append(s.Sources, url)
	return true
}

// AddSources adds every URL in order and returns how many were new.
func (s *State) AddSources(urls []string) int {
	added := 0
	for _, u := range urls {
		if s.AddSource(u) {
			added++
		}
	}
	return added
}

// AppendLog appends an entry to the audit trail.
func (s *State) AppendLog(entry LogEntry) {
	s.Logs = append(s.Logs, entry)
}

// SetFinalContent sets the publishable article body. It may be set at most
// once per run; later calls are rejected.
func (s *State) SetFinalContent(content string) error {
	if s.FinalContent != "" {
		return fmt.Errorf("final content already set for run %s", s.ID)
	}
	s.FinalContent = content
	return nil
}

// Begin moves the run from pending to in_progress and stamps StartedAt.
func (s *State) Begin() error {
	if s.Status != StatusPending {
		return fmt.Errorf("cannot begin run %s from status %s", s.ID, s.Status)
	}
	s.Status = StatusInProgress
	s.StartedAt = time.Now()
	return nil
}

// Complete moves the run to its completed terminal state.
func (s *State) Complete() error {
	if s.Status != StatusInProgress {
		return fmt.Errorf("cannot complete run %s from status %s", s.ID, s.Status)
	}
	s.Status = StatusCompleted
	s.CompletedAt = time.Now()
	return nil
}

// Fail moves the run to its failed terminal state. The first error message
// wins; it is never cleared or overwritten within a run. Fail on an already
// terminal run is a no-op so terminal states stay sticky.
func (s *State) Fail(message string) {
	if s.Status.Terminal() {
		return
	}
	s.Status = StatusFailed
	if s.ErrorMessage == "" {
		s.ErrorMessage = message
	}
	s.CompletedAt = time.Now()
}

// Record is the serialized form of a terminal run handed to persistence and
// file output collaborators.
type Record struct {
	ID            string            `json:"id"`
	Topic         string            `json:"topic"`
	CleanTopic    string            `json:"clean_topic"`
	Directives    map[string]string `json:"directives"`
	ResearchBrief *Brief            `json:"research_brief,omitempty"`
	Sources       []string          `json:"sources"`
	Status        Status            `json:"status"`
	ErrorMessage  string            `json:"error_message,omitempty"`
	Logs          []LogEntry        `json:"logs"`
	FinalContent  string            `json:"final_content"`
	StartedAt     *time.Time        `json:"started_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

// Record snapshots the state into its persistence form.
func (s *State) Record() Record {
	rec := Record{
		ID:            s.ID,
		Topic:         s.Topic,
		CleanTopic:    s.CleanTopic,
		Directives:    s.Directives,
		ResearchBrief: s.ResearchBrief,
		Sources:       s.Sources,
		Status:        s.Status,
		ErrorMessage:  s.ErrorMessage,
		Logs:          s.Logs,
		FinalContent:  s.FinalContent,
	}
	if rec.Sources == nil {
		rec.Sources = []string{}
	}
	if rec.Logs == nil {
		rec.Logs = []LogEntry{}
	}
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		rec.StartedAt = &t
	}
	if !s.CompletedAt.IsZero() {
		t := s.CompletedAt
		rec.CompletedAt = &t
	}
	return rec
}
