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

type gapsWire struct {
	KnowledgeGaps       []string `json:"knowledge_gaps"`
	PrerequisitesNeeded []string `json:"prerequisites_needed"`
}

// runGapDetection derives knowledge gaps and prerequisites from the
// skill evaluation.
func (p *Pipeline) runGapDetection(ctx context.Context, state *model.PipelineState) {
	fbCtx := fallbackContext(state)
	prompt := fmt.Sprintf(gapsPrompt,
		state.Request.Subject,
		state.Request.LearningGoal,
		state.SkillEvaluation.Level,
		strings.Join(state.SkillEvaluation.Strengths, "; "),
		strings.Join(state.SkillEvaluation.Weaknesses, "; "),
	)

	value, _ := p.invoker.Invoke(ctx, schema.StageGaps, gapsSystem, prompt, tempSchema, extract.ShapeObject, func() any {
		gaps, prereqs := fallback.Gaps(fbCtx)
		return gapsWire{KnowledgeGaps: gaps, PrerequisitesNeeded: prereqs}
	})

	var wire gapsWire
	if err := extract.Decode(value, &wire); err != nil {
		state.AddWarning("gap detection: undecodable response, using fallback gaps")
		wire.KnowledgeGaps, wire.PrerequisitesNeeded = fallback.Gaps(fbCtx)
	}

	state.KnowledgeGaps = dedupeStrings(wire.KnowledgeGaps)
	state.PrerequisitesNeeded = dedupeStrings(wire.PrerequisitesNeeded)

	if len(state.KnowledgeGaps) == 0 {
		gaps, _ := fallback.Gaps(fbCtx)
		state.KnowledgeGaps = gaps
		state.AddWarning("gap detection: model returned no gaps, using subject defaults")
	}
}
