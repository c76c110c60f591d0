package pipeline

import (
	"context"
	"fmt"

	"github.com/sells-group/roadmap-cli/internal/extract"
	"github.com/sells-group/roadmap-cli/internal/fallback"
	"github.com/sells-group/roadmap-cli/internal/model"
	"github.com/sells-group/roadmap-cli/internal/schema"
)

// runProjectGeneration designs the single capstone project spanning all
// phases. Milestones that miss a phase produce a warning, not a failure.
func (p *Pipeline) runProjectGeneration(ctx context.Context, state *model.PipelineState) {
	fbCtx := fallbackContext(state)
	prompt := fmt.Sprintf(projectPrompt,
		state.Request.Subject,
		state.Request.LearningGoal,
		state.SkillEvaluation.Level,
		describePhases(state.LearningPhases),
	)

	value, _ := p.invoker.Invoke(ctx, schema.StageProject, projectSystem, prompt, tempSchema, extract.ShapeObject, func() any {
		return fallback.Project(fbCtx)
	})

	var project model.CourseProject
	if err := extract.Decode(value, &project); err != nil {
		state.AddWarning("project generation: undecodable response, using capstone template")
		project = fallback.Project(fbCtx)
	}

	if project.Title == "" || len(project.Milestones) == 0 {
		state.AddWarning("project generation: incomplete project, using capstone template")
		project = fallback.Project(fbCtx)
	}
	if project.EstimatedHours <= 0 {
		project.EstimatedHours = fallback.Project(fbCtx).EstimatedHours
	}

	// Clamp milestone and deliverable phase references into range.
	for i := range project.Milestones {
		project.Milestones[i].Phase = clampPhase(project.Milestones[i].Phase)
	}
	for i := range project.Deliverables {
		project.Deliverables[i].DuePhase = clampPhase(project.Deliverables[i].DuePhase)
	}

	for _, id := range project.UnreferencedPhases() {
		state.AddWarning(fmt.Sprintf("project generation: no milestone covers phase %d", id))
	}

	state.CourseProject = project
}

func clampPhase(id int) int {
	if id < 1 {
		return 1
	}
	if id > model.PhaseCount {
		return model.PhaseCount
	}
	return id
}
