package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/sells-group/roadmap-cli/internal/extract"
	"github.com/sells-group/roadmap-cli/internal/fallback"
	"github.com/sells-group/roadmap-cli/internal/model"
	"github.com/sells-group/roadmap-cli/internal/schema"
)

type phaseWire struct {
	PhaseID    int      `json:"phase_id"`
	Title      string   `json:"title"`
	Concepts   []string `json:"concepts"`
	Difficulty string   `json:"difficulty"`
}

type phasesWire struct {
	Phases []phaseWire `json:"phases"`
}

// runPrerequisiteGraph builds the 4-phase learning structure. Short or
// malformed phase lists are padded from the subject template instead of
// failing the run.
func (p *Pipeline) runPrerequisiteGraph(ctx context.Context, state *model.PipelineState) {
	fbCtx := fallbackContext(state)
	prompt := fmt.Sprintf(phasesPrompt,
		state.Request.Subject,
		state.Request.LearningGoal,
		state.SkillEvaluation.Level,
		strings.Join(state.KnowledgeGaps, "; "),
		strings.Join(state.PrerequisitesNeeded, "; "),
	)

	value, _ := p.invoker.Invoke(ctx, schema.StagePhases, phasesSystem, prompt, tempSchema, extract.ShapeObject, func() any {
		return phasesWire{Phases: toPhaseWire(fallback.Phases(fbCtx))}
	})

	var wire phasesWire
	if err := extract.Decode(value, &wire); err != nil {
		state.AddWarning("prerequisite graph: undecodable response, using standard phase template")
		state.LearningPhases = fallback.Phases(fbCtx)
		return
	}

	var phases []model.Phase
	for _, pw := range wire.Phases {
		title := strings.TrimSpace(pw.Title)
		if title == "" {
			continue
		}
		phases = append(phases, model.Phase{
			PhaseID:    pw.PhaseID,
			Title:      title,
			Concepts:   dedupeStrings(pw.Concepts),
			Difficulty: model.Level(strings.ToLower(pw.Difficulty)),
		})
	}

	if len(phases) != model.PhaseCount {
		state.AddWarning(fmt.Sprintf("prerequisite graph: model returned %d phases, normalizing to %d", len(phases), model.PhaseCount))
	}
	state.LearningPhases = fallback.PadPhases(fbCtx, phases)

	if violations := model.ValidatePhases(state.LearningPhases); len(violations) > 0 {
		// PadPhases guarantees the invariant; reaching here means a bug,
		// so repair hard from the template and record it.
		state.AddWarning("prerequisite graph: phase invariant violated after normalization, using standard template")
		state.LearningPhases = fallback.Phases(fbCtx)
	}
}

func toPhaseWire(phases []model.Phase) []phaseWire {
	out := make([]phaseWire, len(phases))
	for i, ph := range phases {
		out[i] = phaseWire{
			PhaseID:    ph.PhaseID,
			Title:      ph.Title,
			Concepts:   ph.Concepts,
			Difficulty: string(ph.Difficulty),
		}
	}
	return out
}

// describePhases renders the phase list for downstream prompts.
func describePhases(phases []model.Phase) string {
	var b strings.Builder
	for _, ph := range phases {
		fmt.Fprintf(&b, "Phase %d: %s (%s): %s\n", ph.PhaseID, ph.Title, ph.Difficulty, strings.Join(ph.Concepts, ", "))
	}
	return strings.TrimSpace(b.String())
}
