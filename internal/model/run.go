package model

import "time"

// RunStatus represents the current state of a roadmap generation run.
type RunStatus string

const (
	RunStatusQueued       RunStatus = "queued"
	RunStatusInterviewing RunStatus = "interviewing"
	RunStatusEvaluating   RunStatus = "evaluating"
	RunStatusPlanning     RunStatus = "planning"
	RunStatusRetrieving   RunStatus = "retrieving"
	RunStatusScheduling   RunStatus = "scheduling"
	RunStatusAssembling   RunStatus = "assembling"
	RunStatusComplete     RunStatus = "complete"
	RunStatusFailed       RunStatus = "failed"
)

// Request holds the immutable inputs for a single roadmap generation run.
type Request struct {
	LearningGoal   string `json:"learning_goal"`
	Subject        string `json:"subject"`
	UserBackground string `json:"user_background"`
	HoursPerWeek   int    `json:"hours_per_week"`
}

// Run represents a single roadmap generation run.
type Run struct {
	ID        string    `json:"id"`
	Request   Request   `json:"request"`
	Status    RunStatus `json:"status"`
	Roadmap   []byte    `json:"roadmap,omitempty"` // serialized Roadmap artifact
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StageStat accumulates call statistics for a single pipeline stage.
type StageStat struct {
	CallCount       int   `json:"call_count"`
	SuccessCount    int   `json:"success_count"`
	DegradedCount   int   `json:"degraded_count"`
	TotalDurationMs int64 `json:"total_duration_ms"`
}

// TokenUsage tracks token consumption across LLM calls.
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
	t.Cost += other.Cost
}
