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

type evaluationWire struct {
	Level      string   `json:"level"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Notes      []string `json:"notes"`
}

// runSkillEvaluation assesses the learner from the interview transcript.
// Unknown level values coerce to intermediate rather than failing.
func (p *Pipeline) runSkillEvaluation(ctx context.Context, state *model.PipelineState) {
	fbCtx := fallbackContext(state)
	prompt := fmt.Sprintf(evaluationPrompt,
		state.Request.Subject,
		state.Request.LearningGoal,
		buildTranscript(state.InterviewQuestions, state.InterviewAnswers),
	)

	value, _ := p.invoker.Invoke(ctx, schema.StageEvaluation, evaluationSystem, prompt, tempSchema, extract.ShapeObject, func() any {
		return fallback.Evaluation(fbCtx)
	})

	var wire evaluationWire
	if err := extract.Decode(value, &wire); err != nil {
		state.AddWarning("skill evaluation: undecodable response, using fallback evaluation")
		state.SkillEvaluation = fallback.Evaluation(fbCtx)
		return
	}

	state.SkillEvaluation = model.SkillEvaluation{
		Level:      model.ParseLevel(wire.Level),
		Strengths:  dedupeStrings(wire.Strengths),
		Weaknesses: dedupeStrings(wire.Weaknesses),
		Notes:      wire.Notes,
	}
}

// buildTranscript pairs each question with its answer for the prompt.
func buildTranscript(questions []model.Question, answers map[string]string) string {
	var b strings.Builder
	for _, q := range questions {
		answer := answers[q.ID]
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", q.Text, answer)
	}
	return strings.TrimSpace(b.String())
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}
