package model

// WeekPlan covers one week of the learning schedule.
type WeekPlan struct {
	Week    int      `json:"week"`
	PhaseID int      `json:"phase_id"`
	Focus   string   `json:"focus"`
	Topics  []string `json:"topics,omitempty"`
	Hours   int      `json:"hours"`
}

// ReviewCycle marks a recurring review checkpoint.
type ReviewCycle struct {
	Week        int    `json:"week"`
	Description string `json:"description"`
}

// ProjectTimeline maps project work onto the schedule.
type ProjectTimeline struct {
	StartWeek int `json:"start_week"`
	EndWeek   int `json:"end_week"`
}

// Schedule is the time plan covering the full roadmap duration.
type Schedule struct {
	TotalWeeks      int             `json:"total_weeks"`
	HoursPerWeek    int             `json:"hours_per_week"`
	WeeklyPlan      []WeekPlan      `json:"weekly_plan"`
	ReviewCycles    []ReviewCycle   `json:"review_cycles,omitempty"`
	ProjectTimeline ProjectTimeline `json:"project_timeline"`
}
