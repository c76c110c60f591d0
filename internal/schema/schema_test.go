package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateInterview(t *testing.T) {
	valid := map[string]any{
		"questions": []any{
			map[string]any{"id": "q1", "text": "What do you know?", "type": "open_ended"},
		},
	}
	assert.NoError(t, Validate(StageInterview, valid))

	missingText := map[string]any{
		"questions": []any{map[string]any{"id": "q1"}},
	}
	assert.Error(t, Validate(StageInterview, missingText))

	notAnObject := []any{"q1"}
	assert.Error(t, Validate(StageInterview, notAnObject))
}

func TestValidateEvaluation(t *testing.T) {
	assert.NoError(t, Validate(StageEvaluation, map[string]any{
		"level":     "beginner",
		"strengths": []any{"curiosity"},
	}))
	assert.Error(t, Validate(StageEvaluation, map[string]any{
		"strengths": []any{"curiosity"},
	}))
}

func TestValidatePhases(t *testing.T) {
	assert.NoError(t, Validate(StagePhases, map[string]any{
		"phases": []any{
			map[string]any{"phase_id": 1, "title": "Foundations", "difficulty": "beginner"},
		},
	}))
	assert.Error(t, Validate(StagePhases, map[string]any{
		"phases": []any{map[string]any{"phase_id": 1, "title": ""}},
	}))
}

func TestValidateVideoPlan(t *testing.T) {
	assert.NoError(t, Validate(StageVideoPlan, map[string]any{
		"playlist_queries": []any{"full course"},
		"oneshot_query":    "complete tutorial",
	}))
	assert.Error(t, Validate(StageVideoPlan, map[string]any{
		"playlist_queries": []any{},
		"oneshot_query":    "complete tutorial",
	}))
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, Validate(StageSchedule, map[string]any{
		"total_weeks": 8,
		"weekly_plan": []any{map[string]any{"week": 1}},
	}))
	assert.Error(t, Validate(StageSchedule, map[string]any{
		"total_weeks": 0,
		"weekly_plan": []any{map[string]any{"week": 1}},
	}))
}

func TestValidateTypedValue(t *testing.T) {
	// Typed structs normalize through JSON before validation.
	type eval struct {
		Level string `json:"level"`
	}
	assert.NoError(t, Validate(StageEvaluation, eval{Level: "advanced"}))
}

func TestValidateUnregisteredStage(t *testing.T) {
	assert.NoError(t, Validate(RetrievalStage(2), map[string]any{"anything": true}))
	assert.NoError(t, Validate(StageAssembly, nil))
}

func TestRetrievalStage(t *testing.T) {
	assert.Equal(t, "resource_retrieval_phase_3", RetrievalStage(3))
}

func TestValidateCachesCompiledSchema(t *testing.T) {
	// Two validations of the same stage must both succeed through the cache.
	doc := map[string]any{"knowledge_gaps": []any{"basics"}}
	assert.NoError(t, Validate(StageGaps, doc))
	assert.NoError(t, Validate(StageGaps, doc))
}
