package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/roadmap-cli/internal/extract"
	"github.com/sells-group/roadmap-cli/internal/fallback"
	"github.com/sells-group/roadmap-cli/internal/model"
	"github.com/sells-group/roadmap-cli/internal/ranker"
	"github.com/sells-group/roadmap-cli/internal/schema"
)

type videoPlanWire struct {
	PlaylistQueries []string `json:"playlist_queries"`
	OneshotQuery    string   `json:"oneshot_query"`
}

// runResourceRetrieval fetches and ranks resources for all four phases in
// parallel. The phases have no data dependency on each other; each worker
// gets its own timeout so one slow phase cannot stall its siblings, and a
// timed-out phase degrades to a synthesized video plan with no materials.
func (p *Pipeline) runResourceRetrieval(ctx context.Context, state *model.PipelineState) {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(model.PhaseCount)

	for _, phase := range state.LearningPhases {
		g.Go(func() error {
			start := time.Now()
			stage := schema.RetrievalStage(phase.PhaseID)

			pctx, cancel := context.WithTimeout(gctx, p.phaseTimeout)
			defer cancel()

			pr, warnings := p.retrievePhase(pctx, state, phase)

			mu.Lock()
			state.PhaseResources[phase.PhaseID] = pr
			state.Errors = append(state.Errors, warnings...)
			mu.Unlock()

			p.invoker.Stats().Record(stage, len(warnings) == 0, false, time.Since(start).Milliseconds())
			return nil
		})
	}
	// Worker failures surface as warnings, never as pipeline errors.
	_ = g.Wait()
}

// retrievePhase gathers one phase's materials, reference book, and video
// plan. Store errors degrade to empty results with a warning; only the
// caller's startup ping treats the store as fatal.
func (p *Pipeline) retrievePhase(ctx context.Context, state *model.PipelineState, phase model.Phase) (model.PhaseResources, []string) {
	var warnings []string
	pr := model.PhaseResources{PhaseID: phase.PhaseID}

	target := ranker.Target{
		Concepts:        phase.Concepts,
		Difficulty:      phase.Difficulty,
		SubjectKeywords: subjectKeywords(state.Request.Subject, phase.Title),
	}

	// Slide materials for this unit: up to N, never invented.
	materials, err := p.store.FindMaterials(ctx, state.Request.Subject, phase.PhaseID)
	if err != nil {
		zap.L().Warn("pipeline: materials lookup failed",
			zap.Int("phase", phase.PhaseID),
			zap.Error(err),
		)
		warnings = append(warnings, fmt.Sprintf("phase %d: materials lookup failed", phase.PhaseID))
	} else {
		pr.Materials = p.ranker.SelectBest(materials, target, ranker.Policy{
			Count:      p.materialsPerPhase,
			KindFilter: model.ResourceSlideMaterial,
		})
		if len(pr.Materials) == 0 {
			warnings = append(warnings, fmt.Sprintf("phase %d: no slide materials found", phase.PhaseID))
		}
	}

	// Single best reference book.
	books, err := p.store.FindReferenceBooks(ctx, state.Request.Subject, phase.Difficulty)
	if err != nil {
		zap.L().Warn("pipeline: reference book lookup failed",
			zap.Int("phase", phase.PhaseID),
			zap.Error(err),
		)
		warnings = append(warnings, fmt.Sprintf("phase %d: reference book lookup failed", phase.PhaseID))
	} else {
		best := p.ranker.SelectBest(books, target, ranker.Policy{
			Count:      1,
			KindFilter: model.ResourceReferenceBook,
		})
		if len(best) == 1 {
			pr.ReferenceBook = &best[0]
		} else {
			warnings = append(warnings, fmt.Sprintf("phase %d: no reference book available", phase.PhaseID))
		}
	}

	pr.VideoPlan = p.generateVideoPlan(ctx, state, phase)
	return pr, warnings
}

// generateVideoPlan asks the model for search queries and normalizes the
// result to exactly 2 playlist queries plus 1 oneshot query.
func (p *Pipeline) generateVideoPlan(ctx context.Context, state *model.PipelineState, phase model.Phase) model.VideoPlan {
	fbCtx := fallbackContext(state)
	prompt := fmt.Sprintf(videoPlanPrompt,
		phase.PhaseID,
		state.Request.Subject,
		phase.Title,
		strings.Join(phase.Concepts, ", "),
		phase.Difficulty,
	)

	value, _ := p.invoker.Invoke(ctx, schema.StageVideoPlan, videoPlanSystem, prompt, tempSchema, extract.ShapeObject, func() any {
		return fallback.VideoPlan(fbCtx, phase)
	})

	var wire videoPlanWire
	if err := extract.Decode(value, &wire); err != nil {
		return fallback.VideoPlan(fbCtx, phase)
	}

	fb := fallback.VideoPlan(fbCtx, phase)
	plan := model.VideoPlan{
		PlaylistQueries: dedupeStrings(wire.PlaylistQueries),
		OneshotQuery:    strings.TrimSpace(wire.OneshotQuery),
	}
	if len(plan.PlaylistQueries) > 2 {
		plan.PlaylistQueries = plan.PlaylistQueries[:2]
	}
	for _, q := range fb.PlaylistQueries {
		if len(plan.PlaylistQueries) >= 2 {
			break
		}
		plan.PlaylistQueries = append(plan.PlaylistQueries, q)
	}
	if plan.OneshotQuery == "" {
		plan.OneshotQuery = fb.OneshotQuery
	}
	return plan
}

// subjectKeywords splits the subject and phase title into match terms.
func subjectKeywords(subject, title string) []string {
	keywords := []string{subject}
	for _, w := range strings.Fields(title) {
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}
