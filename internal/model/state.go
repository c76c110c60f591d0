package model

// PipelineState is the single mutable record threaded through all stages.
// One instance exists per run; it is never shared across requests. Stages
// mutate it in strict sequence, except the per-phase resource retrieval
// workers, which each write a disjoint PhaseResources entry.
type PipelineState struct {
	Request Request `json:"request"`

	InterviewQuestions []Question        `json:"interview_questions"`
	InterviewAnswers   map[string]string `json:"interview_answers"`

	SkillEvaluation     SkillEvaluation        `json:"skill_evaluation"`
	KnowledgeGaps       []string               `json:"knowledge_gaps"`
	PrerequisitesNeeded []string               `json:"prerequisites_needed"`
	LearningPhases      []Phase                `json:"learning_phases"`
	PhaseResources      map[int]PhaseResources `json:"phase_resources"`
	CourseProject       CourseProject          `json:"course_project"`
	Schedule            Schedule               `json:"schedule"`

	TokenUsage TokenUsage `json:"token_usage"`

	// Errors accumulates non-fatal issues; never cleared.
	Errors []string `json:"errors,omitempty"`
}

// NewPipelineState creates the state for a single run.
func NewPipelineState(req Request) *PipelineState {
	return &PipelineState{
		Request:          req,
		InterviewAnswers: make(map[string]string),
		PhaseResources:   make(map[int]PhaseResources),
	}
}

// AddWarning appends a non-fatal issue to the state's error log.
func (s *PipelineState) AddWarning(msg string) {
	s.Errors = append(s.Errors, msg)
}
