// Package agent wraps the render-call-extract-fallback cycle every LLM-backed
// stage shares. The invoker is the only component that talks to the LLM
// boundary; stages hand it a prompt and a fallback closure and always get a
// usable value back.
package agent

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/roadmap-cli/internal/extract"
	"github.com/sells-group/roadmap-cli/internal/model"
	"github.com/sells-group/roadmap-cli/internal/resilience"
	"github.com/sells-group/roadmap-cli/internal/schema"
	"github.com/sells-group/roadmap-cli/pkg/anthropic"
)

// Config controls the invoker's LLM calls.
type Config struct {
	Model       string
	MaxTokens   int64
	CallTimeout time.Duration
	Retry       resilience.RetryConfig

	// Breaker guards the LLM boundary. Nil gets a default breaker that
	// opens after five consecutive failed calls.
	Breaker *resilience.CircuitBreaker
}

// Diagnostics reports how a single Invoke went. Degraded means the value
// came from the fallback synthesizer, not the model.
type Diagnostics struct {
	Stage      string
	Degraded   bool
	Attempts   int
	DurationMs int64
	Usage      model.TokenUsage
}

// Invoker executes one structured LLM call per stage. It does not mutate
// pipeline state; the calling stage applies the returned value itself.
type Invoker struct {
	client  anthropic.Client
	cfg     Config
	stats   *StatsRecorder
	breaker *resilience.CircuitBreaker
}

// New creates an Invoker. A nil stats recorder is replaced with a fresh one.
func New(client anthropic.Client, cfg Config, stats *StatsRecorder) *Invoker {
	if stats == nil {
		stats = NewStatsRecorder()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	breaker := cfg.Breaker
	if breaker == nil {
		breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			OnStateChange: func(from, to resilience.CircuitState) {
				zap.L().Warn("agent: llm circuit state change",
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
	return &Invoker{client: client, cfg: cfg, stats: stats, breaker: breaker}
}

// WithStats returns an Invoker sharing the client, config, and circuit
// breaker but recording into the given recorder. The pipeline uses it to
// scope statistics and token usage to a single run.
func (inv *Invoker) WithStats(stats *StatsRecorder) *Invoker {
	if stats == nil {
		stats = NewStatsRecorder()
	}
	return &Invoker{client: inv.client, cfg: inv.cfg, stats: stats, breaker: inv.breaker}
}

// Stats exposes the recorder for final aggregation.
func (inv *Invoker) Stats() *StatsRecorder { return inv.stats }

// Invoke calls the LLM with retry/backoff, extracts a value of the requested
// shape, validates it against the stage's schema, and falls back to synth()
// on any failure. The prompt is already final text.
// The returned value is always non-nil and schema-valid for the stage.
func (inv *Invoker) Invoke(ctx context.Context, stage, system, prompt string, temperature float64, shape extract.Shape, synth func() any) (any, Diagnostics) {
	start := time.Now()
	diag := Diagnostics{Stage: stage}

	// The breaker sees one result per stage call, not per retry attempt, so
	// a persistently dead boundary opens it after a few stages instead of
	// burning the full backoff schedule on every one.
	resp, err := resilience.ExecuteVal(ctx, inv.breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.DoVal(ctx, inv.cfg.Retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			diag.Attempts++
			return inv.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:       inv.cfg.Model,
				MaxTokens:   inv.cfg.MaxTokens,
				System:      system,
				CacheSystem: true,
				Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
				Temperature: &temperature,
				Timeout:     inv.cfg.CallTimeout,
			})
		})
	})

	var value any
	ok := false
	if err != nil {
		zap.L().Warn("agent: llm call failed, degrading",
			zap.String("stage", stage),
			zap.Int("attempts", diag.Attempts),
			zap.Error(err),
		)
	} else {
		diag.Usage.InputTokens = int(resp.Usage.InputTokens)
		diag.Usage.OutputTokens = int(resp.Usage.OutputTokens)
		diag.Usage.Cost = resp.Usage.EstimateCost(inv.cfg.Model)

		value, ok = extract.Extract(resp.Text, shape)
		if ok {
			if verr := schema.Validate(stage, value); verr != nil {
				zap.L().Warn("agent: response failed schema validation, degrading",
					zap.String("stage", stage),
					zap.Error(verr),
				)
				ok = false
			}
		} else {
			zap.L().Warn("agent: no structured output recovered, degrading",
				zap.String("stage", stage),
			)
		}
	}

	if !ok {
		value = synth()
		diag.Degraded = true
	}

	diag.DurationMs = time.Since(start).Milliseconds()
	inv.stats.Record(stage, ok, diag.Degraded, diag.DurationMs)
	inv.stats.AddUsage(diag.Usage)

	zap.L().Debug("agent: stage call complete",
		zap.String("stage", stage),
		zap.Bool("degraded", diag.Degraded),
		zap.Int64("duration_ms", diag.DurationMs),
	)
	return value, diag
}
