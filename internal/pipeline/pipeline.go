// Package pipeline executes the roadmap generation stage graph. Stages run
// in strict sequence except per-phase resource retrieval, which fans out to
// one worker per phase. Stage failures degrade to synthesized results; the
// only fatal boundary is the run store being unreachable at startup.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/roadmap-cli/internal/agent"
	"github.com/sells-group/roadmap-cli/internal/fallback"
	"github.com/sells-group/roadmap-cli/internal/model"
	"github.com/sells-group/roadmap-cli/internal/ranker"
	"github.com/sells-group/roadmap-cli/internal/store"
)

// Sampling temperatures. Schema-critical stages run cold; the interview
// benefits from some variety.
const (
	tempSchema   = 0.2
	tempCreative = 0.4
)

// Config tunes the executor.
type Config struct {
	// MaterialsPerPhase caps slide materials selected per phase.
	MaterialsPerPhase int
	// PhaseTimeout bounds each resource retrieval worker.
	PhaseTimeout time.Duration
}

// Pipeline generates one roadmap per Run call. It is safe for concurrent
// use; all per-run state lives in the PipelineState.
type Pipeline struct {
	store   store.Store
	invoker *agent.Invoker
	ranker  *ranker.Ranker

	materialsPerPhase int
	phaseTimeout      time.Duration
}

// New wires the executor. Zero config fields get working defaults.
func New(st store.Store, invoker *agent.Invoker, rk *ranker.Ranker, cfg Config) *Pipeline {
	if cfg.MaterialsPerPhase <= 0 {
		cfg.MaterialsPerPhase = 3
	}
	if cfg.PhaseTimeout <= 0 {
		cfg.PhaseTimeout = 90 * time.Second
	}
	if rk == nil {
		rk = ranker.New(ranker.DefaultWeights())
	}
	return &Pipeline{
		store:             st,
		invoker:           invoker,
		ranker:            rk,
		materialsPerPhase: cfg.MaterialsPerPhase,
		phaseTimeout:      cfg.PhaseTimeout,
	}
}

// Run executes the full stage graph for one request. Answers may be nil;
// the interview stage simulates them. The returned error is non-nil only
// when the run store is unreachable or persistence of the result fails.
func (p *Pipeline) Run(ctx context.Context, req model.Request, answers map[string]string) (*model.Roadmap, error) {
	if err := p.store.Ping(ctx); err != nil {
		return nil, eris.Wrap(err, "pipeline: run store unreachable")
	}

	run, err := p.store.CreateRun(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	started := time.Now()
	state := model.NewPipelineState(req)
	if len(answers) > 0 {
		state.InterviewAnswers = answers
	}

	// Stage statistics and token usage are scoped to this run; recording
	// into the shared invoker would leak counts across requests.
	exec := p.forRun()

	log := zap.L().With(zap.String("run_id", run.ID), zap.String("subject", req.Subject))
	log.Info("pipeline: run started", zap.String("goal", req.LearningGoal))

	// setStatus persists progress; a status write failing mid-run is logged
	// and ignored since the run itself can still complete.
	setStatus := func(status model.RunStatus) {
		if err := p.store.UpdateRunStatus(ctx, run.ID, status); err != nil {
			log.Warn("pipeline: status update failed", zap.String("status", string(status)), zap.Error(err))
		}
	}
	trackStage := func(name string, fn func()) {
		stageStart := time.Now()
		fn()
		log.Info("pipeline: stage complete",
			zap.String("stage", name),
			zap.Duration("elapsed", time.Since(stageStart)),
		)
	}

	setStatus(model.RunStatusInterviewing)
	trackStage("interview", func() { exec.runInterview(ctx, state) })

	setStatus(model.RunStatusEvaluating)
	trackStage("skill_evaluation", func() { exec.runSkillEvaluation(ctx, state) })
	trackStage("gap_detection", func() { exec.runGapDetection(ctx, state) })

	setStatus(model.RunStatusPlanning)
	trackStage("prerequisite_graph", func() { exec.runPrerequisiteGraph(ctx, state) })

	setStatus(model.RunStatusRetrieving)
	trackStage("resource_retrieval", func() { exec.runResourceRetrieval(ctx, state) })
	trackStage("project_generation", func() { exec.runProjectGeneration(ctx, state) })

	setStatus(model.RunStatusScheduling)
	trackStage("time_planning", func() { exec.runTimePlanning(ctx, state) })

	setStatus(model.RunStatusAssembling)
	roadmap := exec.assembleRoadmap(state, started)

	doc, err := json.Marshal(roadmap)
	if err != nil {
		reason := eris.Wrap(err, "pipeline: marshal roadmap")
		if ferr := p.store.FailRun(ctx, run.ID, reason.Error()); ferr != nil {
			log.Error("pipeline: fail-run write failed", zap.Error(ferr))
		}
		return nil, reason
	}
	if err := p.store.CompleteRun(ctx, run.ID, doc); err != nil {
		return nil, eris.Wrap(err, "pipeline: persist roadmap")
	}

	log.Info("pipeline: run complete",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("degraded_stages", roadmap.Meta.DegradedStages),
		zap.Int("warnings", len(roadmap.Meta.Warnings)),
	)
	return roadmap, nil
}

// forRun returns a copy of the executor whose invoker records into a fresh
// stats recorder, so each run's meta reports only its own calls.
func (p *Pipeline) forRun() *Pipeline {
	c := *p
	c.invoker = p.invoker.WithStats(agent.NewStatsRecorder())
	return &c
}

// fallbackContext derives the synthesis context from whatever the state
// holds so far. Early stages see only the request; later ones also see the
// assessed level.
func fallbackContext(state *model.PipelineState) fallback.Context {
	return fallback.Context{
		Subject:      state.Request.Subject,
		Goal:         state.Request.LearningGoal,
		Level:        state.SkillEvaluation.Level,
		HoursPerWeek: state.Request.HoursPerWeek,
	}
}
