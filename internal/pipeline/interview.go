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

// interviewQuestionCount is fixed: fewer questions are padded from the
// fallback set, more are truncated, never silently accepted.
const interviewQuestionCount = 5

type questionWire struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Required bool   `json:"required"`
	Context  string `json:"context"`
}

type interviewWire struct {
	Questions []questionWire `json:"questions"`
}

// runInterview generates the 5-question interview and, when the caller
// supplied no answers, simulates them from the learner's background.
func (p *Pipeline) runInterview(ctx context.Context, state *model.PipelineState) {
	fbCtx := fallbackContext(state)
	prompt := fmt.Sprintf(interviewPrompt,
		state.Request.LearningGoal,
		state.Request.Subject,
		orDefault(state.Request.UserBackground, "not stated"),
	)

	value, _ := p.invoker.Invoke(ctx, schema.StageInterview, interviewSystem, prompt, tempCreative, extract.ShapeObject, func() any {
		return map[string]any{"questions": fallback.Questions(fbCtx)}
	})

	var wire interviewWire
	if err := extract.Decode(value, &wire); err != nil {
		state.AddWarning("interview: undecodable response, using fallback questions")
		state.InterviewQuestions = fallback.Questions(fbCtx)
	} else {
		state.InterviewQuestions = normalizeQuestions(wire.Questions, fbCtx, state)
	}

	if len(state.InterviewAnswers) == 0 {
		// Non-interactive mode: synthesize sample answers so skill
		// evaluation always has a transcript to work from.
		state.InterviewAnswers = fallback.Answers(fbCtx, state.InterviewQuestions)
	}
}

// normalizeQuestions enforces the exact question count and fills in
// missing IDs and types.
func normalizeQuestions(wire []questionWire, fbCtx fallback.Context, state *model.PipelineState) []model.Question {
	questions := make([]model.Question, 0, interviewQuestionCount)
	for _, q := range wire {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		id := strings.TrimSpace(q.ID)
		if id == "" {
			id = fmt.Sprintf("q%d", len(questions)+1)
		}
		questions = append(questions, model.Question{
			ID:       id,
			Text:     text,
			Type:     model.ParseQuestionType(q.Type),
			Category: q.Category,
			Required: q.Required,
			Context:  q.Context,
		})
	}

	if len(questions) != interviewQuestionCount {
		state.AddWarning(fmt.Sprintf("interview: model returned %d usable questions, normalizing to %d", len(questions), interviewQuestionCount))
	}
	if len(questions) > interviewQuestionCount {
		questions = questions[:interviewQuestionCount]
	}
	for _, fq := range fallback.Questions(fbCtx) {
		if len(questions) >= interviewQuestionCount {
			break
		}
		fq.ID = fmt.Sprintf("q%d", len(questions)+1)
		questions = append(questions, fq)
	}
	return questions
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
