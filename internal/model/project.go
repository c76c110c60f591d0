package model

// Deliverable is a concrete artifact the learner produces during the project.
type Deliverable struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	DuePhase    int    `json:"due_phase"` // 1..4
}

// Milestone is a checkpoint in the capstone project tied to a phase.
type Milestone struct {
	Description    string `json:"description"`
	Phase          int    `json:"phase"` // 1..4
	EstimatedHours int    `json:"estimated_hours"`
}

// CourseProject is the single capstone project spanning all four phases.
type CourseProject struct {
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Objectives     []string      `json:"objectives"`
	Complexity     string        `json:"complexity"`
	EstimatedHours int           `json:"estimated_hours"`
	Deliverables   []Deliverable `json:"deliverables"`
	Milestones     []Milestone   `json:"milestones"`
}

// UnreferencedPhases returns phase IDs (1..PhaseCount) that no milestone
// references. The executor appends a warning per unreferenced phase rather
// than failing the run.
func (p CourseProject) UnreferencedPhases() []int {
	referenced := make(map[int]bool, PhaseCount)
	for _, m := range p.Milestones {
		referenced[m.Phase] = true
	}
	var missing []int
	for id := 1; id <= PhaseCount; id++ {
		if !referenced[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
