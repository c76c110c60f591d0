// Package fallback produces deterministic, schema-valid stage results for
// use when LLM extraction fails. Every stage has exactly one synthesis rule
// parameterized by the run's subject and difficulty, so a degraded pipeline
// still completes with topically plausible output.
package fallback

import (
	"fmt"

	"github.com/sells-group/roadmap-cli/internal/model"
)

// Context carries the inputs a synthesis rule may draw on. Identical
// contexts always yield structurally identical results.
type Context struct {
	Subject      string
	Goal         string
	Level        model.Level
	HoursPerWeek int
}

func (c Context) subject() string {
	if c.Subject != "" {
		return c.Subject
	}
	if c.Goal != "" {
		return c.Goal
	}
	return "the subject"
}

func (c Context) level() model.Level {
	if c.Level == "" {
		return model.LevelIntermediate
	}
	return c.Level
}

// Questions returns the fixed 5-question interview set for the subject.
func Questions(ctx Context) []model.Question {
	subj := ctx.subject()
	return []model.Question{
		{ID: "q1", Text: fmt.Sprintf("What prior experience do you have with %s?", subj), Type: model.QuestionOpenEnded, Category: "background", Required: true},
		{ID: "q2", Text: fmt.Sprintf("Which topics in %s have you already studied?", subj), Type: model.QuestionOpenEnded, Category: "knowledge", Required: true},
		{ID: "q3", Text: "How would you rate your programming and problem-solving skills?", Type: model.QuestionRatingScale, Category: "skills", Required: true},
		{ID: "q4", Text: fmt.Sprintf("What is your main motivation for learning %s?", subj), Type: model.QuestionOpenEnded, Category: "goals", Required: false},
		{ID: "q5", Text: "Do you prefer reading, videos, or hands-on projects when learning?", Type: model.QuestionMultipleChoice, Category: "preferences", Required: false},
	}
}

// Answers returns deterministic sample answers for the given questions,
// derived from the user's stated background. Used when the caller supplies
// no interview answers (non-interactive mode) and when the interview stage
// itself degraded.
func Answers(ctx Context, questions []model.Question) map[string]string {
	background := ctx.Goal
	if background == "" {
		background = "general interest in " + ctx.subject()
	}
	answers := make(map[string]string, len(questions))
	for i, q := range questions {
		switch q.Type {
		case model.QuestionRatingScale:
			answers[q.ID] = "3"
		case model.QuestionMultipleChoice:
			answers[q.ID] = "hands-on projects"
		default:
			if i == 0 {
				answers[q.ID] = fmt.Sprintf("Some exposure through coursework; %s.", background)
			} else {
				answers[q.ID] = fmt.Sprintf("Basic familiarity with %s fundamentals.", ctx.subject())
			}
		}
	}
	return answers
}

// Evaluation returns a neutral skill evaluation for the subject.
func Evaluation(ctx Context) model.SkillEvaluation {
	subj := ctx.subject()
	return model.SkillEvaluation{
		Level:      ctx.level(),
		Strengths:  []string{"motivation to learn " + subj},
		Weaknesses: []string{"unverified depth in " + subj},
		Notes:      []string{"evaluation synthesized from defaults; interview signal unavailable"},
	}
}

// Gaps returns subject-aware knowledge gaps and prerequisites.
func Gaps(ctx Context) (gaps, prerequisites []string) {
	subj := ctx.subject()
	gaps = []string{
		"fundamentals of " + subj,
		"core terminology of " + subj,
		"practical application of " + subj + " concepts",
	}
	prerequisites = []string{
		"basic programming proficiency",
		"introductory computer science concepts",
	}
	return gaps, prerequisites
}

// Phases returns the standard 4-phase template for the subject. The
// difficulty ramp satisfies the phase invariant: non-decreasing, with
// phase 3 repeating phase 2.
func Phases(ctx Context) []model.Phase {
	subj := ctx.subject()
	return []model.Phase{
		{PhaseID: 1, Title: "Foundations of " + subj, Difficulty: model.LevelBeginner,
			Concepts: []string{"core concepts", "terminology", "motivation and history"}},
		{PhaseID: 2, Title: "Core " + subj + " Techniques", Difficulty: model.LevelIntermediate,
			Concepts: []string{"principal techniques", "standard models", "worked examples"}},
		{PhaseID: 3, Title: "Applied " + subj, Difficulty: model.LevelIntermediate,
			Concepts: []string{"practical applications", "tooling", "common pitfalls"}},
		{PhaseID: 4, Title: "Advanced Topics in " + subj, Difficulty: model.LevelAdvanced,
			Concepts: []string{"advanced theory", "current practice", "open problems"}},
	}
}

// PadPhases extends a short phase list to the full template, keeping any
// phases the LLM did return and renumbering IDs 1..4. Longer lists are
// truncated. The result always satisfies ValidatePhases.
func PadPhases(ctx Context, got []model.Phase) []model.Phase {
	template := Phases(ctx)
	out := make([]model.Phase, 0, model.PhaseCount)
	out = append(out, got...)
	if len(out) > model.PhaseCount {
		out = out[:model.PhaseCount]
	}
	for len(out) < model.PhaseCount {
		out = append(out, template[len(out)])
	}
	prev := model.LevelBeginner
	for i := range out {
		out[i].PhaseID = i + 1
		if out[i].Difficulty == "" || out[i].Difficulty.Rank() < prev.Rank() {
			out[i].Difficulty = template[i].Difficulty
			if out[i].Difficulty.Rank() < prev.Rank() {
				out[i].Difficulty = prev
			}
		}
		prev = out[i].Difficulty
	}
	return out
}

// VideoPlan returns deterministic video search queries for a phase.
func VideoPlan(ctx Context, phase model.Phase) model.VideoPlan {
	topic := phase.Title
	if topic == "" {
		topic = ctx.subject()
	}
	return model.VideoPlan{
		PlaylistQueries: []string{
			topic + " full course playlist",
			topic + " lecture series",
		},
		OneshotQuery: topic + " complete tutorial one video",
	}
}

// Project returns a generic capstone project referencing every phase.
func Project(ctx Context) model.CourseProject {
	subj := ctx.subject()
	return model.CourseProject{
		Title:       "Capstone: Build a Working " + subj + " Project",
		Description: "An incremental project applying each phase of the roadmap to a single " + subj + " system, growing from a minimal prototype to a polished deliverable.",
		Objectives: []string{
			"apply " + subj + " fundamentals in code",
			"integrate concepts across phases",
			"produce a portfolio-ready artifact",
		},
		Complexity:     string(ctx.level()),
		EstimatedHours: 40,
		Deliverables: []model.Deliverable{
			{Name: "Design document", Kind: "document", Description: "Scope and architecture of the capstone.", DuePhase: 1},
			{Name: "Prototype", Kind: "code", Description: "Minimal working implementation.", DuePhase: 2},
			{Name: "Feature-complete build", Kind: "code", Description: "All planned functionality implemented.", DuePhase: 3},
			{Name: "Final report and demo", Kind: "document", Description: "Results, evaluation, and demonstration.", DuePhase: 4},
		},
		Milestones: []model.Milestone{
			{Description: "Project scoped and environment set up", Phase: 1, EstimatedHours: 6},
			{Description: "Core functionality prototyped", Phase: 2, EstimatedHours: 12},
			{Description: "Applied features integrated and tested", Phase: 3, EstimatedHours: 12},
			{Description: "Final polish, evaluation, and writeup", Phase: 4, EstimatedHours: 10},
		},
	}
}

// Schedule returns a deterministic schedule covering the roadmap duration.
// totalHours should be the sum of phase and project hours; weeks are
// clamped to [4, 52].
func Schedule(ctx Context, phases []model.Phase, totalHours int) model.Schedule {
	if len(phases) == 0 {
		phases = Phases(ctx)
	}
	hoursPerWeek := ctx.HoursPerWeek
	if hoursPerWeek <= 0 {
		hoursPerWeek = 5
	}
	weeks := (totalHours + hoursPerWeek - 1) / hoursPerWeek
	if weeks < model.PhaseCount {
		weeks = model.PhaseCount
	}
	if weeks > 52 {
		weeks = 52
	}

	plan := make([]model.WeekPlan, 0, weeks)
	for w := 1; w <= weeks; w++ {
		// Distribute weeks across phases proportionally by position.
		phaseIdx := (w - 1) * len(phases) / weeks
		p := phases[phaseIdx]
		plan = append(plan, model.WeekPlan{
			Week:    w,
			PhaseID: p.PhaseID,
			Focus:   p.Title,
			Topics:  p.Concepts,
			Hours:   hoursPerWeek,
		})
	}

	var reviews []model.ReviewCycle
	for w := 4; w <= weeks; w += 4 {
		reviews = append(reviews, model.ReviewCycle{Week: w, Description: "Review and consolidate the last four weeks"})
	}

	return model.Schedule{
		TotalWeeks:      weeks,
		HoursPerWeek:    hoursPerWeek,
		WeeklyPlan:      plan,
		ReviewCycles:    reviews,
		ProjectTimeline: model.ProjectTimeline{StartWeek: 1, EndWeek: weeks},
	}
}
