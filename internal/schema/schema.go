// Package schema defines the JSON shape each pipeline stage's LLM output
// must conform to, and validates extracted values against it. Validation
// failure is treated by the caller as extraction failure (degrade path),
// never as a hard error.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Stage identifiers. These double as keys into the stage-statistics map.
const (
	StageInterview    = "interview"
	StageEvaluation   = "skill_evaluation"
	StageGaps         = "gap_detection"
	StagePhases       = "prerequisite_graph"
	StageVideoPlan    = "video_plan"
	StageProject      = "project_generation"
	StageSchedule     = "time_planning"
	StageAssembly     = "final_assembly"
	StageRetrievalFmt = "resource_retrieval_phase_%d"
)

// RetrievalStage returns the stage identifier for one phase's retrieval.
func RetrievalStage(phaseID int) string {
	return fmt.Sprintf(StageRetrievalFmt, phaseID)
}

var definitions = map[string]map[string]any{
	StageInterview: {
		"type":     "object",
		"required": []any{"questions"},
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"text"},
					"properties": map[string]any{
						"id":       map[string]any{"type": "string"},
						"text":     map[string]any{"type": "string", "minLength": 1},
						"type":     map[string]any{"type": "string"},
						"category": map[string]any{"type": "string"},
						"required": map[string]any{"type": "boolean"},
						"context":  map[string]any{"type": "string"},
					},
				},
			},
		},
	},
	StageEvaluation: {
		"type":     "object",
		"required": []any{"level"},
		"properties": map[string]any{
			"level":      map[string]any{"type": "string"},
			"strengths":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"weaknesses": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"notes":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	},
	StageGaps: {
		"type":     "object",
		"required": []any{"knowledge_gaps"},
		"properties": map[string]any{
			"knowledge_gaps":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"prerequisites_needed": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	},
	StagePhases: {
		"type":     "object",
		"required": []any{"phases"},
		"properties": map[string]any{
			"phases": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"title"},
					"properties": map[string]any{
						"phase_id":   map[string]any{"type": "integer"},
						"title":      map[string]any{"type": "string", "minLength": 1},
						"concepts":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"difficulty": map[string]any{"type": "string"},
					},
				},
			},
		},
	},
	StageVideoPlan: {
		"type":     "object",
		"required": []any{"playlist_queries", "oneshot_query"},
		"properties": map[string]any{
			"playlist_queries": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": 1,
			},
			"oneshot_query": map[string]any{"type": "string", "minLength": 1},
		},
	},
	StageProject: {
		"type":     "object",
		"required": []any{"title"},
		"properties": map[string]any{
			"title":           map[string]any{"type": "string", "minLength": 1},
			"description":     map[string]any{"type": "string"},
			"objectives":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"complexity":      map[string]any{"type": "string"},
			"estimated_hours": map[string]any{"type": "integer", "minimum": 1},
			"deliverables":    map[string]any{"type": "array"},
			"milestones":      map[string]any{"type": "array"},
		},
	},
	StageSchedule: {
		"type":     "object",
		"required": []any{"total_weeks", "weekly_plan"},
		"properties": map[string]any{
			"total_weeks":    map[string]any{"type": "integer", "minimum": 1},
			"hours_per_week": map[string]any{"type": "integer"},
			"weekly_plan":    map[string]any{"type": "array", "minItems": 1},
		},
	},
}

// compiled caches compiled schemas by stage name.
var compiled sync.Map // map[string]*jsonschema.Schema

// Validate checks an extracted value against the stage's schema. Stages
// without a registered schema (retrieval sub-stages) validate trivially.
func Validate(stage string, value any) error {
	def, ok := definitions[stage]
	if !ok {
		return nil
	}
	sch, err := compile(stage, def)
	if err != nil {
		return eris.Wrap(err, "schema: compile "+stage)
	}
	// The validator expects a plain decoded JSON value; round-trip to
	// normalize whatever the extractor produced.
	b, err := json.Marshal(value)
	if err != nil {
		return eris.Wrap(err, "schema: marshal value")
	}
	var plain any
	if err := json.Unmarshal(b, &plain); err != nil {
		return eris.Wrap(err, "schema: normalize value")
	}
	if err := sch.Validate(plain); err != nil {
		return eris.Wrap(err, "schema: validate "+stage)
	}
	return nil
}

func compile(stage string, def map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(stage); ok {
		return cached.(*jsonschema.Schema), nil
	}

	b, err := json.Marshal(def)
	if err != nil {
		return nil, err
	}
	var parsed any
	if err := json.Unmarshal(b, &parsed); err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", stage)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	compiled.Store(stage, sch)
	return sch, nil
}
