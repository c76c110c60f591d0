package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roadmap-cli/internal/agent"
	"github.com/sells-group/roadmap-cli/internal/fallback"
	"github.com/sells-group/roadmap-cli/internal/model"
)

func TestNormalizeQuestionsPadsAndTruncates(t *testing.T) {
	fbCtx := fallback.Context{Subject: "Go"}
	state := model.NewPipelineState(model.Request{Subject: "Go"})

	short := []questionWire{
		{ID: "a", Text: "One?"},
		{Text: "Two, no id"},
		{Text: "   "}, // dropped
	}
	out := normalizeQuestions(short, fbCtx, state)
	require.Len(t, out, interviewQuestionCount)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "q2", out[1].ID)
	assert.NotEmpty(t, state.Errors)

	long := make([]questionWire, 9)
	for i := range long {
		long[i] = questionWire{Text: "Q"}
	}
	out = normalizeQuestions(long, fbCtx, model.NewPipelineState(model.Request{}))
	assert.Len(t, out, interviewQuestionCount)
}

func TestBuildTranscript(t *testing.T) {
	questions := []model.Question{
		{ID: "q1", Text: "Prior exposure?"},
		{ID: "q2", Text: "Topics studied?"},
	}
	answers := map[string]string{"q1": "Some coursework"}

	transcript := buildTranscript(questions, answers)
	assert.Contains(t, transcript, "Q: Prior exposure?")
	assert.Contains(t, transcript, "A: Some coursework")
	assert.Contains(t, transcript, "A: (no answer)")
}

func TestDedupeStrings(t *testing.T) {
	in := []string{"Matrices", "matrices", "  vectors ", "", "Vectors"}
	assert.Equal(t, []string{"Matrices", "vectors"}, dedupeStrings(in))
}

func TestClampPhase(t *testing.T) {
	assert.Equal(t, 1, clampPhase(0))
	assert.Equal(t, 1, clampPhase(-3))
	assert.Equal(t, 2, clampPhase(2))
	assert.Equal(t, model.PhaseCount, clampPhase(9))
}

func TestEstimateWorkload(t *testing.T) {
	p := &Pipeline{}
	state := model.NewPipelineState(model.Request{})
	state.LearningPhases = fallback.Phases(fallback.Context{Subject: "Go"})
	state.CourseProject.EstimatedHours = 40

	assert.Equal(t, model.PhaseCount*hoursPerPhase+40, p.estimateWorkload(state))

	// No phases yet still yields a positive baseline.
	empty := model.NewPipelineState(model.Request{})
	assert.Equal(t, model.PhaseCount*hoursPerPhase, p.estimateWorkload(empty))
}

func TestAssembleTotalHoursFromWorkload(t *testing.T) {
	p := &Pipeline{invoker: agent.New(nil, agent.Config{}, nil)}
	state := model.NewPipelineState(model.Request{HoursPerWeek: 6})
	state.LearningPhases = fallback.Phases(fallback.Context{Subject: "Go"})
	state.CourseProject.EstimatedHours = 40
	// Capacity (weeks * hours) deliberately exceeds the workload; the
	// analytics figure must come from phase plus project hours.
	state.Schedule = model.Schedule{TotalWeeks: 52, HoursPerWeek: 6}

	roadmap := p.assembleRoadmap(state, time.Now())
	assert.Equal(t, model.PhaseCount*hoursPerPhase+40, roadmap.Analytics.TotalEstimatedHours)
}

func TestDescribePhases(t *testing.T) {
	phases := fallback.Phases(fallback.Context{Subject: "Go"})
	text := describePhases(phases)
	assert.Contains(t, text, "Phase 1: Foundations of Go")
	assert.Contains(t, text, "Phase 4:")
}

func TestSubjectKeywords(t *testing.T) {
	kw := subjectKeywords("Go", "Advanced Topics in Go")
	assert.Contains(t, kw, "Go")
	assert.Contains(t, kw, "Advanced")
	assert.Contains(t, kw, "Topics")
	assert.NotContains(t, kw, "in")
}
