package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/roadmap-cli/internal/model"
)

var mathCtx = Context{Subject: "Linear Algebra", Goal: "pass the qualifying exam", Level: model.LevelIntermediate, HoursPerWeek: 6}

func TestQuestionsDeterministic(t *testing.T) {
	first := Questions(mathCtx)
	second := Questions(mathCtx)

	require.Len(t, first, 5)
	assert.Equal(t, first, second)
	for _, q := range first {
		assert.NotEmpty(t, q.ID)
		assert.NotEmpty(t, q.Text)
	}
	assert.Contains(t, first[0].Text, "Linear Algebra")
}

func TestQuestionsEmptySubject(t *testing.T) {
	questions := Questions(Context{})
	require.Len(t, questions, 5)
	assert.Contains(t, questions[0].Text, "the subject")
}

func TestAnswersCoverAllQuestions(t *testing.T) {
	questions := Questions(mathCtx)
	answers := Answers(mathCtx, questions)

	require.Len(t, answers, len(questions))
	for _, q := range questions {
		assert.NotEmpty(t, answers[q.ID], "question %s has no answer", q.ID)
	}
}

func TestEvaluationUsesContextLevel(t *testing.T) {
	eval := Evaluation(mathCtx)
	assert.Equal(t, model.LevelIntermediate, eval.Level)
	assert.NotEmpty(t, eval.Strengths)
	assert.NotEmpty(t, eval.Weaknesses)

	eval = Evaluation(Context{Subject: "Go"})
	assert.Equal(t, model.LevelIntermediate, eval.Level)
}

func TestGapsNonEmpty(t *testing.T) {
	gaps, prereqs := Gaps(mathCtx)
	assert.NotEmpty(t, gaps)
	assert.NotEmpty(t, prereqs)
	assert.Contains(t, gaps[0], "Linear Algebra")
}

func TestPhasesSatisfyInvariant(t *testing.T) {
	phases := Phases(mathCtx)
	require.Len(t, phases, model.PhaseCount)
	assert.Empty(t, model.ValidatePhases(phases))
}

func TestPadPhases(t *testing.T) {
	cases := []struct {
		name string
		got  []model.Phase
	}{
		{"empty", nil},
		{"short", []model.Phase{
			{PhaseID: 9, Title: "Vectors", Difficulty: model.LevelBeginner, Concepts: []string{"dot product"}},
			{PhaseID: 2, Title: "Matrices", Difficulty: model.LevelIntermediate},
		}},
		{"long", make([]model.Phase, 7)},
		{"decreasing difficulty", []model.Phase{
			{PhaseID: 1, Title: "A", Difficulty: model.LevelAdvanced},
			{PhaseID: 2, Title: "B", Difficulty: model.LevelBeginner},
			{PhaseID: 3, Title: "C", Difficulty: model.LevelBeginner},
			{PhaseID: 4, Title: "D", Difficulty: model.LevelBeginner},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := PadPhases(mathCtx, tc.got)
			require.Len(t, out, model.PhaseCount)
			assert.Empty(t, model.ValidatePhases(out))
			for i, p := range out {
				assert.Equal(t, i+1, p.PhaseID)
			}
		})
	}
}

func TestPadPhasesKeepsReturnedPhases(t *testing.T) {
	got := []model.Phase{{PhaseID: 3, Title: "Eigenvalues", Difficulty: model.LevelBeginner}}
	out := PadPhases(mathCtx, got)

	assert.Equal(t, "Eigenvalues", out[0].Title)
	assert.Equal(t, 1, out[0].PhaseID)
}

func TestVideoPlanShape(t *testing.T) {
	plan := VideoPlan(mathCtx, model.Phase{PhaseID: 2, Title: "Matrix Decompositions"})
	require.Len(t, plan.PlaylistQueries, 2)
	assert.NotEmpty(t, plan.OneshotQuery)
	assert.Contains(t, plan.OneshotQuery, "Matrix Decompositions")

	// Empty phase title falls back to the subject.
	plan = VideoPlan(mathCtx, model.Phase{PhaseID: 1})
	assert.Contains(t, plan.OneshotQuery, "Linear Algebra")
}

func TestProjectCoversAllPhases(t *testing.T) {
	project := Project(mathCtx)
	assert.Empty(t, project.UnreferencedPhases())
	assert.Greater(t, project.EstimatedHours, 0)
	assert.NotEmpty(t, project.Deliverables)
}

func TestScheduleBounds(t *testing.T) {
	phases := Phases(mathCtx)

	cases := []struct {
		name       string
		totalHours int
		hoursWeek  int
		wantWeeks  int
	}{
		{"tiny workload clamps to 4", 5, 10, 4},
		{"normal workload", 60, 6, 10},
		{"huge workload clamps to 52", 10000, 5, 52},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := mathCtx
			ctx.HoursPerWeek = tc.hoursWeek
			s := Schedule(ctx, phases, tc.totalHours)

			assert.Equal(t, tc.wantWeeks, s.TotalWeeks)
			assert.Len(t, s.WeeklyPlan, s.TotalWeeks)
			assert.Equal(t, 1, s.ProjectTimeline.StartWeek)
			assert.Equal(t, s.TotalWeeks, s.ProjectTimeline.EndWeek)
		})
	}
}

func TestScheduleWeeksVisitPhasesInOrder(t *testing.T) {
	s := Schedule(mathCtx, Phases(mathCtx), 60)

	last := 0
	for _, w := range s.WeeklyPlan {
		assert.GreaterOrEqual(t, w.PhaseID, last)
		last = w.PhaseID
	}
	assert.Equal(t, model.PhaseCount, last)
}

func TestScheduleEmptyPhases(t *testing.T) {
	s := Schedule(mathCtx, nil, 40)
	assert.GreaterOrEqual(t, s.TotalWeeks, model.PhaseCount)
	assert.NotEmpty(t, s.WeeklyPlan)
}
