package pipeline

import (
	"context"
	"fmt"

	"github.com/sells-group/roadmap-cli/internal/extract"
	"github.com/sells-group/roadmap-cli/internal/fallback"
	"github.com/sells-group/roadmap-cli/internal/model"
	"github.com/sells-group/roadmap-cli/internal/schema"
)

// hoursPerPhase is the baseline study estimate when phases carry no
// explicit workload of their own.
const hoursPerPhase = 15

// runTimePlanning spreads the total workload across at least 4 weeks.
func (p *Pipeline) runTimePlanning(ctx context.Context, state *model.PipelineState) {
	fbCtx := fallbackContext(state)
	totalHours := p.estimateWorkload(state)

	hoursPerWeek := state.Request.HoursPerWeek
	if hoursPerWeek <= 0 {
		hoursPerWeek = 5
	}

	prompt := fmt.Sprintf(schedulePrompt,
		state.Request.Subject,
		hoursPerWeek,
		totalHours,
		describePhases(state.LearningPhases),
		hoursPerWeek,
		hoursPerWeek,
	)

	value, _ := p.invoker.Invoke(ctx, schema.StageSchedule, scheduleSystem, prompt, tempSchema, extract.ShapeObject, func() any {
		return fallback.Schedule(fbCtx, state.LearningPhases, totalHours)
	})

	var schedule model.Schedule
	if err := extract.Decode(value, &schedule); err != nil {
		state.AddWarning("time planning: undecodable response, using computed schedule")
		state.Schedule = fallback.Schedule(fbCtx, state.LearningPhases, totalHours)
		return
	}

	if schedule.TotalWeeks < model.PhaseCount || len(schedule.WeeklyPlan) == 0 {
		state.AddWarning("time planning: schedule below minimum duration, using computed schedule")
		schedule = fallback.Schedule(fbCtx, state.LearningPhases, totalHours)
	}
	if schedule.TotalWeeks > 52 {
		state.AddWarning("time planning: schedule exceeds one year, clamping to 52 weeks")
		schedule.TotalWeeks = 52
		if len(schedule.WeeklyPlan) > 52 {
			schedule.WeeklyPlan = schedule.WeeklyPlan[:52]
		}
	}
	if schedule.HoursPerWeek <= 0 {
		schedule.HoursPerWeek = hoursPerWeek
	}
	if schedule.ProjectTimeline.EndWeek == 0 {
		schedule.ProjectTimeline = model.ProjectTimeline{StartWeek: 1, EndWeek: schedule.TotalWeeks}
	}

	state.Schedule = schedule
}

// estimateWorkload sums per-phase study hours and the capstone estimate.
func (p *Pipeline) estimateWorkload(state *model.PipelineState) int {
	total := len(state.LearningPhases) * hoursPerPhase
	if total == 0 {
		total = model.PhaseCount * hoursPerPhase
	}
	return total + state.CourseProject.EstimatedHours
}
