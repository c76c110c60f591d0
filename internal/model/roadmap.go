package model

import "time"

// UserProfile summarizes the learner for the final artifact.
type UserProfile struct {
	Background   string `json:"background,omitempty"`
	Level        Level  `json:"level"`
	HoursPerWeek int    `json:"hours_per_week"`
}

// RoadmapPhase is a phase enriched with its retrieved resources.
type RoadmapPhase struct {
	Phase
	Resources PhaseResources `json:"resources"`
}

// Analytics holds aggregate numbers about the generated roadmap.
type Analytics struct {
	TotalPhases         int `json:"total_phases"`
	TotalEstimatedHours int `json:"total_estimated_hours"`
	SkillGapsIdentified int `json:"skill_gaps_identified"`
	TotalResources      int `json:"total_resources"`
}

// Meta records how the roadmap was generated.
type Meta struct {
	GeneratedAt    time.Time            `json:"generated_at"`
	DurationMs     int64                `json:"duration_ms"`
	DegradedStages int                  `json:"degraded_stages"`
	StageStats     map[string]StageStat `json:"stage_stats"`
	TokenUsage     TokenUsage           `json:"token_usage"`
	Warnings       []string             `json:"warnings,omitempty"`
}

// Roadmap is the final validated artifact produced by a completed run.
type Roadmap struct {
	RoadmapID        string         `json:"roadmap_id"`
	LearningGoal     string         `json:"learning_goal"`
	Subject          string         `json:"subject"`
	UserProfile      UserProfile    `json:"user_profile"`
	Phases           []RoadmapPhase `json:"phases"`
	KnowledgeGaps    []string       `json:"knowledge_gaps"`
	Prerequisites    []string       `json:"prerequisites"`
	CourseProject    CourseProject  `json:"course_project"`
	LearningSchedule Schedule       `json:"learning_schedule"`
	Analytics        Analytics      `json:"analytics"`
	Meta             Meta           `json:"meta"`
}
