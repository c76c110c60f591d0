package pipeline

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// assembleRoadmap folds the completed state into the final artifact. No LLM
// call happens here; missing pieces were already normalized upstream, so
// assembly only aggregates and cross-checks.
func (p *Pipeline) assembleRoadmap(state *model.PipelineState, started time.Time) *model.Roadmap {
	phases := make([]model.RoadmapPhase, 0, len(state.LearningPhases))
	totalResources := 0
	for _, ph := range state.LearningPhases {
		res, ok := state.PhaseResources[ph.PhaseID]
		if !ok {
			state.AddWarning(fmt.Sprintf("assembly: phase %d has no retrieved resources", ph.PhaseID))
			res = model.PhaseResources{PhaseID: ph.PhaseID}
		}
		totalResources += len(res.Materials)
		if res.ReferenceBook != nil {
			totalResources++
		}
		phases = append(phases, model.RoadmapPhase{Phase: ph, Resources: res})
	}

	schedule := state.Schedule
	// Phase workload plus the capstone, not schedule capacity: the fallback
	// schedule already sized its weeks from these same hours.
	totalHours := p.estimateWorkload(state)

	stats := p.invoker.Stats()
	return &model.Roadmap{
		RoadmapID:    uuid.NewString(),
		LearningGoal: state.Request.LearningGoal,
		Subject:      state.Request.Subject,
		UserProfile: model.UserProfile{
			Background:   state.Request.UserBackground,
			Level:        state.SkillEvaluation.Level,
			HoursPerWeek: schedule.HoursPerWeek,
		},
		Phases:           phases,
		KnowledgeGaps:    state.KnowledgeGaps,
		Prerequisites:    state.PrerequisitesNeeded,
		CourseProject:    state.CourseProject,
		LearningSchedule: schedule,
		Analytics: model.Analytics{
			TotalPhases:         len(phases),
			TotalEstimatedHours: totalHours,
			SkillGapsIdentified: len(state.KnowledgeGaps),
			TotalResources:      totalResources,
		},
		Meta: model.Meta{
			GeneratedAt:    time.Now().UTC(),
			DurationMs:     time.Since(started).Milliseconds(),
			DegradedStages: stats.DegradedTotal(),
			StageStats:     stats.Snapshot(),
			TokenUsage:     stats.UsageTotal(),
			Warnings:       state.Errors,
		},
	}
}
