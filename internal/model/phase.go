package model

// PhaseCount is the fixed number of learning phases in every roadmap.
const PhaseCount = 4

// Phase is one of exactly four sequential learning units in a roadmap.
type Phase struct {
	PhaseID    int      `json:"phase_id"`
	Title      string   `json:"title"`
	Concepts   []string `json:"concepts"`
	Difficulty Level    `json:"difficulty"`
}

// ValidatePhases checks the phase invariants: exactly PhaseCount phases,
// IDs strictly increasing 1..PhaseCount, and difficulty non-decreasing
// except phase 3 may repeat phase 2's difficulty. Returns a list of
// human-readable violations (empty when valid).
func ValidatePhases(phases []Phase) []string {
	var violations []string
	if len(phases) != PhaseCount {
		violations = append(violations, "expected exactly 4 learning phases")
		return violations
	}
	for i, p := range phases {
		if p.PhaseID != i+1 {
			violations = append(violations, "phase IDs must be strictly increasing 1..4")
			break
		}
	}
	for i := 1; i < len(phases); i++ {
		if phases[i].Difficulty.Rank() < phases[i-1].Difficulty.Rank() {
			violations = append(violations, "phase difficulty must be non-decreasing")
			break
		}
	}
	return violations
}
