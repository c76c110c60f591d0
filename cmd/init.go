package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/roadmap-cli/internal/agent"
	"github.com/sells-group/roadmap-cli/internal/pipeline"
	"github.com/sells-group/roadmap-cli/internal/resilience"
	"github.com/sells-group/roadmap-cli/internal/store"
	anthropicpkg "github.com/sells-group/roadmap-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "roadmap.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline builds the executor with a migrated store and a rate-limited
// Anthropic client. The caller closes the returned store.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	client := anthropicpkg.WithRateLimit(
		anthropicpkg.NewClient(cfg.Anthropic.Key),
		cfg.Anthropic.RequestsPerSec,
	)

	retry := resilience.DefaultRetryConfig()
	if cfg.Anthropic.RetryMaxAttempts > 0 {
		retry.MaxAttempts = cfg.Anthropic.RetryMaxAttempts
	}
	retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")

	invoker := agent.New(client, agent.Config{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   int64(cfg.Anthropic.MaxTokens),
		CallTimeout: time.Duration(cfg.Anthropic.CallTimeoutSecs) * time.Second,
		Retry:       retry,
	}, nil)

	p := pipeline.New(st, invoker, nil, pipeline.Config{
		MaterialsPerPhase: cfg.Pipeline.MaterialsPerPhase,
		PhaseTimeout:      time.Duration(cfg.Pipeline.PhaseTimeoutSecs) * time.Second,
	})
	return p, st, nil
}
